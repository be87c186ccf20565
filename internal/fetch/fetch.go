package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"questlog/internal/logging"
)

const (
	// MaxAttempts bounds the total number of tries for one request,
	// including the first.
	MaxAttempts = 5

	backoffBase      = 700 * time.Millisecond
	backoffJitterCap = 300 * time.Millisecond

	defaultTimeout = 20 * time.Second
)

// ErrRateLimitExhausted reports that the upstream kept answering 429 until
// the attempt budget ran out.
var ErrRateLimitExhausted = errors.New("rate limit exhausted")

// StatusError reports a non-success, non-429 HTTP status.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected http status %s", e.Status)
}

// Client issues requests with 429-aware retries.
type Client struct {
	http   *http.Client
	logger *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewClient wraps httpClient; a nil httpClient gets a default with a total
// timeout. Clients are long-lived and safe for concurrent use: construct
// one per transport configuration and share it.
func NewClient(httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		http:   httpClient,
		logger: logging.NewComponentLogger(logger, "fetch"),
		sleep:  SleepWithContext,
	}
}

// Do sends the request. On 429 it waits (Retry-After when parseable, else a
// jittered base delay) and retries, up to MaxAttempts total. The caller owns
// the response body on success; any other outcome returns a closed-body
// error: ErrRateLimitExhausted, *StatusError, or a wrapped transport error.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	for attempt := 1; ; attempt++ {
		resp, err := c.http.Do(req.Clone(ctx))
		if err != nil {
			return nil, fmt.Errorf("execute request: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			drain(resp)
			if attempt >= MaxAttempts {
				return nil, fmt.Errorf("%w after %d attempts", ErrRateLimitExhausted, attempt)
			}
			wait := retryAfter(resp.Header)
			c.logger.Debug("rate limited, backing off",
				logging.String("url", req.URL.String()),
				logging.Int("attempt", attempt),
				logging.Duration("wait", wait))
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			drain(resp)
			return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
		}

		return resp, nil
	}
}

// GetJSON issues a GET for url with the supplied headers and decodes the
// response body into a generic JSON tree.
func (c *Client) GetJSON(ctx context.Context, url string, header http.Header) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return payload, nil
}

// retryAfter derives the wait duration from a Retry-After header carrying
// integer seconds. Anything else falls back to the base delay plus a small
// jitter taken from the clock's sub-second component.
func retryAfter(header http.Header) time.Duration {
	if value := header.Get("Retry-After"); value != "" {
		if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
			if secs < 1 {
				secs = 1
			}
			return time.Duration(secs) * time.Second
		}
	}
	jitter := time.Duration(time.Now().Nanosecond()/int(time.Millisecond)) * time.Millisecond % backoffJitterCap
	return backoffBase + jitter
}

// SleepWithContext blocks for d, returning early if the context is
// cancelled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}

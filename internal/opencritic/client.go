package opencritic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"questlog/internal/fetch"
	"questlog/internal/logging"
)

const (
	defaultHost = "opencritic-api.p.rapidapi.com"

	// EnvAPIKey names the environment variable holding the gateway
	// credential. EnvHost optionally overrides the gateway host.
	EnvAPIKey = "OPENCRITIC_API_KEY"
	EnvHost   = "OPENCRITIC_HOST"

	defaultTimeout = 20 * time.Second
)

// ErrMissingAPIKey reports an absent gateway credential. This is the one
// hard, caller-visible configuration error in the resolution pipeline.
var ErrMissingAPIKey = fmt.Errorf("opencritic: %s is not set", EnvAPIKey)

// Result is a search hit: the candidate's display name and the identifier
// used to fetch its detail record.
type Result struct {
	ID   int64
	Name string
}

// Config describes the OpenCritic client configuration.
type Config struct {
	APIKey     string
	Host       string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client wraps the gateway's search and detail endpoints.
type Client struct {
	apiKey  string
	host    string
	baseURL string
	fetcher *fetch.Client
	logger  *slog.Logger
}

// New creates a Client. A missing API key is a hard error, never a soft
// miss: without a credential the source cannot degrade gracefully.
func New(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = defaultHost
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	// A host override may carry its own scheme (used by tests and local
	// proxies); the gateway default is always https.
	baseURL := host
	if !strings.Contains(baseURL, "://") {
		baseURL = "https://" + baseURL
	}
	return &Client{
		apiKey:  apiKey,
		host:    hostOnly(baseURL),
		baseURL: strings.TrimRight(baseURL, "/"),
		fetcher: fetch.NewClient(httpClient, cfg.Logger),
		logger:  logging.NewComponentLogger(cfg.Logger, "opencritic"),
	}, nil
}

// NewFromEnv creates a Client with the credential and optional host
// override read from the process environment.
func NewFromEnv(httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	return New(Config{
		APIKey:     os.Getenv(EnvAPIKey),
		Host:       os.Getenv(EnvHost),
		HTTPClient: httpClient,
		Logger:     logger,
	})
}

// Search queries the gateway for games matching criteria. The response is
// accepted in either known shape: a bare array, or an object carrying a
// results field.
func (c *Client) Search(ctx context.Context, criteria string) ([]Result, error) {
	endpoint := fmt.Sprintf("%s/game/search?criteria=%s", c.baseURL, url.QueryEscape(criteria))
	payload, err := c.fetcher.GetJSON(ctx, endpoint, c.headers())
	if err != nil {
		return nil, fmt.Errorf("opencritic search: %w", err)
	}

	var items []any
	switch v := payload.(type) {
	case []any:
		items = v
	case map[string]any:
		items, _ = v["results"].([]any)
	}

	results := make([]Result, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name, _ := obj["name"].(string)
		id, ok := obj["id"].(float64)
		if !ok || name == "" {
			continue
		}
		results = append(results, Result{ID: int64(id), Name: name})
	}
	c.logger.Debug("search results",
		logging.String("criteria", criteria),
		logging.Int("count", len(results)))
	return results, nil
}

// TopCriticScore fetches the detail record for gameID and extracts the
// aggregated critic score. A structurally absent score field yields nil,
// not an error.
func (c *Client) TopCriticScore(ctx context.Context, gameID int64) (*float64, error) {
	endpoint := fmt.Sprintf("%s/game/%d", c.baseURL, gameID)
	payload, err := c.fetcher.GetJSON(ctx, endpoint, c.headers())
	if err != nil {
		return nil, fmt.Errorf("opencritic detail: %w", err)
	}

	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, nil
	}
	score, ok := obj["topCriticScore"].(float64)
	if !ok {
		return nil, nil
	}
	return &score, nil
}

func (c *Client) headers() http.Header {
	header := http.Header{}
	header.Set("x-rapidapi-key", c.apiKey)
	header.Set("x-rapidapi-host", c.host)
	return header
}

func hostOnly(baseURL string) string {
	if parsed, err := url.Parse(baseURL); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return baseURL
}

// IsMissingAPIKey reports whether err is the missing-credential error.
func IsMissingAPIKey(err error) bool {
	return errors.Is(err, ErrMissingAPIKey)
}

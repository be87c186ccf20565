package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(server *httptest.Server) (*Client, *[]time.Duration) {
	client := NewClient(server.Client(), nil)
	var waits []time.Duration
	client.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return client, &waits
}

func TestDoSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	}))
	defer server.Close()

	client, _ := newTestClient(server)
	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	resp, err := client.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok" {
		t.Errorf("body = %q, want ok", body)
	}
}

func TestDoRetriesOn429(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		io.WriteString(w, "done")
	}))
	defer server.Close()

	client, waits := newTestClient(server)
	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	resp, err := client.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	resp.Body.Close()

	if calls != 3 {
		t.Errorf("server saw %d calls, want 3", calls)
	}
	if len(*waits) != 2 {
		t.Fatalf("expected 2 backoff sleeps, got %d", len(*waits))
	}
	for _, wait := range *waits {
		if wait != 2*time.Second {
			t.Errorf("Retry-After wait = %v, want 2s", wait)
		}
	}
}

func TestDoRateLimitExhausted(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, waits := newTestClient(server)
	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	_, err := client.Do(context.Background(), req)
	if !errors.Is(err, ErrRateLimitExhausted) {
		t.Fatalf("err = %v, want ErrRateLimitExhausted", err)
	}
	if calls != MaxAttempts {
		t.Errorf("server saw %d calls, want %d", calls, MaxAttempts)
	}
	if len(*waits) != MaxAttempts-1 {
		t.Errorf("expected %d sleeps, got %d", MaxAttempts-1, len(*waits))
	}
}

func TestDoStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, _ := newTestClient(server)
	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	_, err := client.Do(context.Background(), req)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", statusErr.StatusCode)
	}
}

func TestRetryAfterFallbackJitter(t *testing.T) {
	// Unparseable Retry-After falls back to base delay plus sub-second jitter.
	header := http.Header{}
	header.Set("Retry-After", "soon")
	for i := 0; i < 20; i++ {
		wait := retryAfter(header)
		if wait < backoffBase || wait >= backoffBase+backoffJitterCap {
			t.Fatalf("fallback wait %v outside [%v, %v)", wait, backoffBase, backoffBase+backoffJitterCap)
		}
	}
}

func TestRetryAfterMinimumSecond(t *testing.T) {
	header := http.Header{}
	header.Set("Retry-After", "0")
	if wait := retryAfter(header); wait != time.Second {
		t.Errorf("zero Retry-After should clamp to 1s, got %v", wait)
	}
}

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Probe") != "yes" {
			t.Errorf("missing forwarded header")
		}
		io.WriteString(w, `{"answer": 42}`)
	}))
	defer server.Close()

	client, _ := newTestClient(server)
	header := http.Header{}
	header.Set("X-Probe", "yes")
	payload, err := client.GetJSON(context.Background(), server.URL, header)
	if err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	obj, ok := payload.(map[string]any)
	if !ok {
		t.Fatalf("payload type %T, want object", payload)
	}
	if obj["answer"] != float64(42) {
		t.Errorf("answer = %v, want 42", obj["answer"])
	}
}

func TestSleepWithContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := SleepWithContext(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestSleepWithContextZero(t *testing.T) {
	if err := SleepWithContext(context.Background(), 0); err != nil {
		t.Errorf("zero sleep should return nil, got %v", err)
	}
}

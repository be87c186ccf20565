package hltb

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"
)

const homepageHTML = `<html><head>
<script id="__NEXT_DATA__" type="application/json">{"buildId":"abc123","props":{}}</script>
</head><body></body></html>`

const searchJSON = `{
  "pageProps": {
    "data": {
      "games": [
        {"name": "Half-Life", "gameplayMain": 12.0, "extra": {"name": "Half-Life: Decay", "gameplayMain": 4.5}},
        {"name": "No Main Story", "gameplayMain": 0},
        {"name": "Nameless"}
      ]
    }
  }
}`

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(Config{
		BaseURL:        server.URL,
		BuildCachePath: filepath.Join(t.TempDir(), "build.json"),
		BuildTTL:       time.Hour,
		HTTPClient:     server.Client(),
	})
}

func TestSearchCollectsCandidates(t *testing.T) {
	var homepageHits int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			homepageHits++
			io.WriteString(w, homepageHTML)
		case "/_next/data/abc123/search.json":
			if r.URL.Query().Get("game") != "half life" {
				t.Errorf("query game = %q, want %q", r.URL.Query().Get("game"), "half life")
			}
			io.WriteString(w, searchJSON)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	candidates, err := client.Search(context.Background(), "half life")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	// The recursive walk finds nested nodes too, and skips entries without
	// a positive main-story value.
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2: %+v", len(candidates), candidates)
	}
	names := map[string]float64{}
	for _, candidate := range candidates {
		names[candidate.Name] = candidate.MainHours
	}
	if names["Half-Life"] != 12.0 {
		t.Errorf("Half-Life hours = %v, want 12", names["Half-Life"])
	}
	if names["Half-Life: Decay"] != 4.5 {
		t.Errorf("nested candidate hours = %v, want 4.5", names["Half-Life: Decay"])
	}

	// Second search reuses the cached build id.
	if _, err := client.Search(context.Background(), "half life"); err != nil {
		t.Fatalf("second Search failed: %v", err)
	}
	if homepageHits != 1 {
		t.Errorf("homepage fetched %d times, want 1 (build id should be cached)", homepageHits)
	}
}

func TestSearchNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			io.WriteString(w, homepageHTML)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.Search(context.Background(), "nothing here")
	if !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestSearchBuildIDMissing(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html><body>no blob here</body></html>")
	}))

	_, err := client.Search(context.Background(), "anything")
	if !errors.Is(err, ErrBuildIDNotFound) {
		t.Errorf("err = %v, want ErrBuildIDNotFound", err)
	}
}

func TestSearchPageEmbeddedBlob(t *testing.T) {
	page := `<html><head>
<script id="__NEXT_DATA__" type="application/json">
{"props":{"pageProps":{"data":{"games":[{"name":"Portal","gameplayMain":3.0}]}}}}
</script></head><body></body></html>`
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, page)
	}))

	result, err := client.SearchPage(context.Background(), "portal")
	if err != nil {
		t.Fatalf("SearchPage failed: %v", err)
	}
	if len(result.Candidates) != 1 || result.Candidates[0].Name != "Portal" {
		t.Fatalf("candidates = %+v, want Portal", result.Candidates)
	}
	// The serialized blob also satisfies the positional regex.
	if result.RegexHours == nil || *result.RegexHours != 3.0 {
		t.Errorf("RegexHours = %v, want 3.0", result.RegexHours)
	}
}

func TestSearchPageRegexFallback(t *testing.T) {
	page := `<html><body>
<div>Main Story</div> <span class="time">11.5</span>
</body></html>`
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, page)
	}))

	result, err := client.SearchPage(context.Background(), "some game")
	if err != nil {
		t.Fatalf("SearchPage failed: %v", err)
	}
	if len(result.Candidates) != 0 {
		t.Errorf("expected no blob candidates, got %+v", result.Candidates)
	}
	if result.RegexHours == nil || *result.RegexHours != 11.5 {
		t.Errorf("RegexHours = %v, want 11.5", result.RegexHours)
	}
}

func TestSearchPageNothingFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html><body>empty results</body></html>")
	}))

	result, err := client.SearchPage(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("SearchPage failed: %v", err)
	}
	if len(result.Candidates) != 0 || result.RegexHours != nil {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestBuildCacheExpiry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build.json")
	cache := NewBuildCache(path, 50*time.Millisecond, nil)

	if err := cache.Store("build-1"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if id, ok := cache.Lookup(); !ok || id != "build-1" {
		t.Fatalf("fresh Lookup = %q/%v, want build-1/true", id, ok)
	}

	time.Sleep(60 * time.Millisecond)
	if _, ok := cache.Lookup(); ok {
		t.Error("expired build id should miss")
	}
}

func TestBuildCacheMissingAndClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build.json")
	cache := NewBuildCache(path, time.Hour, nil)

	if _, ok := cache.Lookup(); ok {
		t.Error("Lookup on missing document should miss")
	}
	if err := cache.Clear(); err != nil {
		t.Errorf("Clear of missing document should not error: %v", err)
	}

	if err := cache.Store("build-2"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := cache.Lookup(); ok {
		t.Error("Lookup after Clear should miss")
	}
}

func TestSearchRateLimitedThenSuccess(t *testing.T) {
	var searchCalls int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			io.WriteString(w, homepageHTML)
		default:
			searchCalls++
			if searchCalls == 1 {
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			io.WriteString(w, searchJSON)
		}
	}))

	start := time.Now()
	candidates, err := client.Search(context.Background(), "half life")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(candidates) == 0 {
		t.Error("expected candidates after retry")
	}
	if elapsed := time.Since(start); elapsed < time.Second {
		t.Errorf("expected Retry-After pause, elapsed %v", elapsed)
	}
	if searchCalls != 2 {
		t.Errorf("search endpoint saw %d calls, want 2", searchCalls)
	}
}

func TestCollectCandidatesDeterministicOrder(t *testing.T) {
	node := map[string]any{
		"b": map[string]any{"name": "Second", "gameplayMain": 2.0},
		"a": map[string]any{"name": "First", "gameplayMain": 1.0},
	}
	for i := 0; i < 10; i++ {
		var out []Candidate
		collectCandidates(node, &out)
		if len(out) != 2 {
			t.Fatalf("got %d candidates, want 2", len(out))
		}
		if out[0].Name != "First" || out[1].Name != "Second" {
			t.Fatalf("order = %v, want sorted-key traversal", out)
		}
	}
}

package hltb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"questlog/internal/fetch"
	"questlog/internal/logging"
)

const (
	defaultBaseURL = "https://howlongtobeat.com"

	// The site rejects non-browser user agents.
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119 Safari/537.36"

	defaultTimeout = 20 * time.Second
)

// ErrNoData reports that the data endpoint answered 404: the upstream has
// confirmed it holds nothing for this query.
var ErrNoData = errors.New("hltb: no data for query")

// ErrBuildIDNotFound reports that the homepage scrape yielded no usable
// build identifier.
var ErrBuildIDNotFound = errors.New("hltb: build id not found")

var (
	mainStoryJSONPattern   = regexp.MustCompile(`"gameplayMain"\s*:\s*([0-9]+(?:\.[0-9]+)?)`)
	mainStoryMarkupPattern = regexp.MustCompile(`(?i)Main\s+Story</div>\s*<span[^>]*>\s*([0-9]+(?:\.[0-9]+)?)`)
)

// Candidate is a search hit exposing a positive main-story duration. It is
// ephemeral: only the chosen candidate's hours are ever persisted.
type Candidate struct {
	Name      string
	MainHours float64
}

// PageResult holds everything the HTML fallback path could extract from
// one search page: embedded-blob candidates for fuzzy selection, plus a
// positional-regex value used as a last resort without verification.
type PageResult struct {
	Candidates []Candidate
	RegexHours *float64
}

// Config describes the HowLongToBeat client configuration.
type Config struct {
	BaseURL        string
	BuildCachePath string
	BuildTTL       time.Duration
	HTTPClient     *http.Client
	Logger         *slog.Logger
}

// Client talks to the unofficial HowLongToBeat endpoints.
type Client struct {
	baseURL string
	fetcher *fetch.Client
	builds  *BuildCache
	logger  *slog.Logger
}

// New creates a Client from the supplied configuration.
func New(cfg Config) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	logger := logging.NewComponentLogger(cfg.Logger, "hltb")
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		fetcher: fetch.NewClient(httpClient, cfg.Logger),
		builds:  NewBuildCache(cfg.BuildCachePath, cfg.BuildTTL, cfg.Logger),
		logger:  logger,
	}
}

// Search queries the versioned search endpoint and collects every node in
// the response tree exposing a positive main-story duration. Selection
// among the candidates is the caller's concern. A 404 translates to
// ErrNoData.
func (c *Client) Search(ctx context.Context, title string) ([]Candidate, error) {
	buildID, err := c.buildID(ctx)
	if err != nil {
		return nil, err
	}

	query := url.QueryEscape(title)
	endpoint := fmt.Sprintf("%s/_next/data/%s/search.json?game=%s&sort=popular", c.baseURL, buildID, query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Referer", fmt.Sprintf("%s/?q=%s", c.baseURL, query))

	resp, err := c.fetcher.Do(ctx, req)
	if err != nil {
		var statusErr *fetch.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, ErrNoData
		}
		return nil, err
	}
	defer resp.Body.Close()

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	var candidates []Candidate
	collectCandidates(dig(payload, "pageProps", "data", "games"), &candidates)
	c.logger.Debug("search candidates collected",
		logging.String("title", title),
		logging.Int("count", len(candidates)))
	return candidates, nil
}

// SearchPage fetches the HTML search results page and extracts what it can:
// the embedded data blob's candidates when present, and the positional
// regex value as a last resort.
func (c *Client) SearchPage(ctx context.Context, title string) (PageResult, error) {
	endpoint := fmt.Sprintf("%s/?q=%s", c.baseURL, url.QueryEscape(title))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return PageResult{}, fmt.Errorf("build page request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := c.fetcher.Do(ctx, req)
	if err != nil {
		return PageResult{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return PageResult{}, fmt.Errorf("read search page: %w", err)
	}

	var result PageResult
	if blob := embeddedData(body); blob != nil {
		collectCandidates(dig(blob, "props", "pageProps", "data", "games"), &result.Candidates)
	}
	result.RegexHours = regexHours(body)
	c.logger.Debug("search page scraped",
		logging.String("title", title),
		logging.Int("candidates", len(result.Candidates)),
		logging.Bool("regex_value", result.RegexHours != nil))
	return result, nil
}

// buildID returns the cached build identifier, refreshing it from the
// homepage when absent or expired.
func (c *Client) buildID(ctx context.Context) (string, error) {
	if id, ok := c.builds.Lookup(); ok {
		return id, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return "", fmt.Errorf("build homepage request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := c.fetcher.Do(ctx, req)
	if err != nil {
		return "", fmt.Errorf("fetch homepage: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read homepage: %w", err)
	}

	blob := embeddedData(body)
	if blob == nil {
		return "", ErrBuildIDNotFound
	}
	id, _ := dig(blob, "buildId").(string)
	if strings.TrimSpace(id) == "" {
		return "", ErrBuildIDNotFound
	}

	if err := c.builds.Store(id); err != nil {
		c.logger.Warn("failed to persist build id",
			logging.Error(err))
	}
	c.logger.Debug("build id refreshed", logging.String("build_id", id))
	return id, nil
}

// embeddedData extracts and decodes the __NEXT_DATA__ script blob from a
// page, or nil when the page carries none.
func embeddedData(page []byte) any {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil
	}
	text := doc.Find("script#__NEXT_DATA__").First().Text()
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var payload any
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil
	}
	return payload
}

// collectCandidates walks the JSON tree and appends every object node that
// pairs a positive gameplayMain number with a name. Object keys are visited
// in sorted order so traversal is deterministic.
func collectCandidates(node any, out *[]Candidate) {
	switch v := node.(type) {
	case map[string]any:
		if main, ok := v["gameplayMain"].(float64); ok && main > 0 {
			name, _ := v["name"].(string)
			*out = append(*out, Candidate{Name: name, MainHours: main})
		}
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			collectCandidates(v[key], out)
		}
	case []any:
		for _, child := range v {
			collectCandidates(child, out)
		}
	}
}

// regexHours runs the two positional extractions against the raw markup:
// the serialized gameplayMain field first, then the rendered Main Story
// span.
func regexHours(page []byte) *float64 {
	for _, pattern := range []*regexp.Regexp{mainStoryJSONPattern, mainStoryMarkupPattern} {
		if match := pattern.FindSubmatch(page); match != nil {
			if value, err := strconv.ParseFloat(string(match[1]), 64); err == nil {
				return &value
			}
		}
	}
	return nil
}

// dig walks nested JSON objects by key, returning nil when any step is
// absent or not an object.
func dig(node any, path ...string) any {
	for _, key := range path {
		obj, ok := node.(map[string]any)
		if !ok {
			return nil
		}
		node = obj[key]
	}
	return node
}

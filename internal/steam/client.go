package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"questlog/internal/fetch"
	"questlog/internal/logging"
)

const (
	defaultBaseURL = "https://store.steampowered.com"

	// DefaultRegion is the country code used when the caller supplies none.
	DefaultRegion = "us"

	userAgent = "questlog/1.0 (+https://questlog.local)"

	defaultTimeout = 20 * time.Second
)

// Price is a resolved store price.
type Price struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// The appdetails envelope is keyed by appid; data is present only on
// success and price_overview only for priced, released titles.
type appResult struct {
	Success bool `json:"success"`
	Data    *struct {
		PriceOverview *struct {
			Final    int64  `json:"final"`
			Currency string `json:"currency"`
		} `json:"price_overview"`
	} `json:"data"`
}

// Config describes the Steam client configuration.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client queries the Steam storefront.
type Client struct {
	baseURL string
	fetcher *fetch.Client
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
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		fetcher: fetch.NewClient(httpClient, cfg.Logger),
		logger:  logging.NewComponentLogger(cfg.Logger, "steam"),
	}
}

// Price fetches the current price for appID in the given region. A blank
// region falls back to DefaultRegion. Unpriced or unknown apps yield nil,
// not an error.
func (c *Client) Price(ctx context.Context, appID uint32, region string) (*Price, error) {
	cc := strings.ToLower(strings.TrimSpace(region))
	if cc == "" {
		cc = DefaultRegion
	}

	endpoint := fmt.Sprintf("%s/api/appdetails?appids=%d&cc=%s&filters=price_overview", c.baseURL, appID, cc)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build price request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.fetcher.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("steam price: %w", err)
	}
	defer resp.Body.Close()

	var envelope map[string]appResult
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode price response: %w", err)
	}

	entry, ok := envelope[strconv.FormatUint(uint64(appID), 10)]
	if !ok || !entry.Success || entry.Data == nil || entry.Data.PriceOverview == nil {
		c.logger.Debug("no price data",
			logging.Int64("app_id", int64(appID)),
			logging.String("region", cc))
		return nil, nil
	}

	overview := entry.Data.PriceOverview
	return &Price{
		Amount:   float64(overview.Final) / 100.0,
		Currency: strings.ToUpper(overview.Currency),
	}, nil
}

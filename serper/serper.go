// Package serper queries the Serper.dev Google search API.
package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ConTROLLAPP/controll/httpcache"
	"github.com/ConTROLLAPP/controll/quota"
)

const defaultEndpoint = "https://google.serper.dev/search"

// Result is one organic search hit.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Response is the subset of the Serper payload the scan pipeline consumes.
type Response struct {
	Organic         []Result `json:"organic"`
	RelatedSearches []struct {
		Query string `json:"query"`
	} `json:"relatedSearches"`
}

// Client calls the search API with caching, retries, and quota enforcement.
type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	cache      httpcache.Cacher
	quota      *quota.Tracker
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*config)

type config struct {
	endpoint   string
	httpClient *http.Client
	cache      httpcache.Cacher
	quota      *quota.Tracker
	logger     *slog.Logger
}

// WithEndpoint overrides the API endpoint, for tests.
func WithEndpoint(url string) Option {
	return func(c *config) { c.endpoint = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) { c.httpClient = client }
}

// WithCache sets the HTTP response cache. Cached queries do not spend quota.
func WithCache(cache httpcache.Cacher) Option {
	return func(c *config) { c.cache = cache }
}

// WithQuota sets the daily budget tracker.
func WithQuota(tracker *quota.Tracker) Option {
	return func(c *config) { c.quota = tracker }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// New creates a search client. The API key is required.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("serper: API key is required")
	}
	cfg := &config{
		endpoint:   defaultEndpoint,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Client{
		apiKey:     apiKey,
		endpoint:   cfg.endpoint,
		httpClient: cfg.httpClient,
		cache:      cfg.cache,
		quota:      cfg.quota,
		logger:     cfg.logger,
	}, nil
}

// Search runs one query and returns its organic results. Quota is spent
// only when the response is not already cached; quota.ErrExhausted
// propagates to the caller so scans can degrade gracefully.
func (c *Client) Search(ctx context.Context, query string, numResults int) ([]Result, error) {
	if numResults <= 0 {
		numResults = 5
	}

	payload, err := json.Marshal(map[string]any{"q": query, "num": numResults})
	if err != nil {
		return nil, fmt.Errorf("encode search payload: %w", err)
	}

	key := httpcache.Key(http.MethodPost, c.endpoint, string(payload))

	// Serve from cache without touching quota.
	if c.cache != nil {
		if data, found := c.cacheLookup(ctx, key); found {
			return decodeResults(data, query)
		}
	}

	if c.quota != nil {
		if err := c.quota.Spend(); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	c.logger.InfoContext(ctx, "serper search", "query", query, "num", numResults)

	data, err := httpcache.FetchWithKey(ctx, c.cache, c.httpClient, req, key, c.logger)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return decodeResults(data, query)
}

// cacheLookup probes the cache without triggering a fetch.
func (c *Client) cacheLookup(ctx context.Context, key string) ([]byte, bool) {
	var miss bool
	data, err := c.cache.GetSet(ctx, key, func(context.Context) ([]byte, error) {
		miss = true
		return nil, fmt.Errorf("probe only")
	}, c.cache.TTL())
	if err != nil || miss {
		return nil, false
	}
	return data, true
}

func decodeResults(data []byte, query string) ([]Result, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode search response for %q: %w", query, err)
	}
	return resp.Organic, nil
}

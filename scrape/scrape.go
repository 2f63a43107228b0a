// Package scrape fetches rendered page text from the headless browser
// service. Review platforms are JavaScript-heavy; raw HTTP bodies rarely
// contain the review text, so scraping goes through a render endpoint.
package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ConTROLLAPP/controll/httpcache"
)

const defaultEndpoint = "https://controll-puppeteer.onrender.com/scrape"

// renderWaitMillis gives client-side review widgets time to populate.
const renderWaitMillis = 2000

// Client talks to the render endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	cache      httpcache.Cacher
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*config)

type config struct {
	endpoint   string
	httpClient *http.Client
	cache      httpcache.Cacher
	logger     *slog.Logger
}

// WithEndpoint overrides the render endpoint.
func WithEndpoint(url string) Option {
	return func(c *config) { c.endpoint = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) { c.httpClient = client }
}

// WithCache sets the response cache.
func WithCache(cache httpcache.Cacher) Option {
	return func(c *config) { c.cache = cache }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// New creates a scrape client.
func New(opts ...Option) *Client {
	cfg := &config{
		endpoint:   defaultEndpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Client{
		endpoint:   cfg.endpoint,
		httpClient: cfg.httpClient,
		cache:      cfg.cache,
		logger:     cfg.logger,
	}
}

type renderRequest struct {
	URL         string `json:"url"`
	WaitFor     int    `json:"waitFor"`
	ExtractText bool   `json:"extractText"`
}

type renderResponse struct {
	Content string `json:"content"`
}

// Text fetches the rendered text content of a page. An empty string with a
// nil error means the page rendered but carried no text.
func (c *Client) Text(ctx context.Context, pageURL string) (string, error) {
	payload, err := json.Marshal(renderRequest{URL: pageURL, WaitFor: renderWaitMillis, ExtractText: true})
	if err != nil {
		return "", fmt.Errorf("encode render payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build render request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", httpcache.UserAgent)

	c.logger.InfoContext(ctx, "scraping page", "url", pageURL)

	key := httpcache.Key(http.MethodPost, c.endpoint, pageURL)
	data, err := httpcache.FetchWithKey(ctx, c.cache, c.httpClient, req, key, c.logger)
	if err != nil {
		return "", fmt.Errorf("scrape %s: %w", pageURL, err)
	}

	var resp renderResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("decode render response for %s: %w", pageURL, err)
	}
	return resp.Content, nil
}

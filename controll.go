// Package controll provides a unified API for scoring reviewer risk.
//
// Basic usage:
//
//	report, err := controll.Investigate(ctx, controll.Request{Alias: "Seth D."},
//	    controll.WithAPIKey(os.Getenv("SERPER_API_KEY")))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(report.StarRating, report.RatingReason)
//
// Or assemble the pipeline packages directly:
//
//	import "github.com/ConTROLLAPP/controll/scan"
//	searcher, _ := serper.New(apiKey)
//	scanner, _ := scan.New(searcher, scan.WithStore(st))
//	report, _ := scanner.Investigate(ctx, scan.Request{Alias: "Seth D."})
package controll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ConTROLLAPP/controll/httpcache"
	"github.com/ConTROLLAPP/controll/identity"
	"github.com/ConTROLLAPP/controll/quota"
	"github.com/ConTROLLAPP/controll/scan"
	"github.com/ConTROLLAPP/controll/scrape"
	"github.com/ConTROLLAPP/controll/serper"
	"github.com/ConTROLLAPP/controll/store"
)

type (
	// Request re-exports scan.Request for convenience.
	Request = scan.Request
	// Report re-exports scan.Report for convenience.
	Report = scan.Report
	// Record re-exports identity.Record for convenience.
	Record = identity.Record
)

// Re-export common errors.
var (
	ErrInsufficientInput = identity.ErrInsufficientInput
	ErrRecordNotFound    = identity.ErrRecordNotFound
	ErrQuotaExhausted    = quota.ErrExhausted
)

// Option configures an Investigate call.
type Option func(*config)

type config struct {
	apiKey         string
	scrapeEndpoint string
	dataDir        string
	cacheTTL       time.Duration
	quotaLimit     int
	logger         *slog.Logger
	cache          httpcache.Cacher
	searcher       scan.Searcher
	scraper        scan.Scraper
	store          store.Store
}

// WithAPIKey sets the search API key. Required.
func WithAPIKey(key string) Option {
	return func(c *config) { c.apiKey = key }
}

// WithScrapeEndpoint overrides the headless render service URL.
func WithScrapeEndpoint(url string) Option {
	return func(c *config) { c.scrapeEndpoint = url }
}

// WithDataDir sets the directory for identity records and the quota log.
// Empty disables persistence; each scan then stands alone.
func WithDataDir(dir string) Option {
	return func(c *config) { c.dataDir = dir }
}

// WithCache sets the HTTP response cache shared by search and scrape.
func WithCache(cache httpcache.Cacher) Option {
	return func(c *config) { c.cache = cache }
}

// WithCacheTTL enables a disk-backed HTTP cache with the given lifetime.
// Ignored when WithCache is also set.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *config) { c.cacheTTL = ttl }
}

// WithQuotaLimit overrides the daily search call budget.
func WithQuotaLimit(n int) Option {
	return func(c *config) { c.quotaLimit = n }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithSearcher injects a search client, bypassing serper assembly. The API
// key is not required when a searcher is injected.
func WithSearcher(s scan.Searcher) Option {
	return func(c *config) { c.searcher = s }
}

// WithScraper injects a scrape client, bypassing render-endpoint assembly.
func WithScraper(s scan.Scraper) Option {
	return func(c *config) { c.scraper = s }
}

// WithStore injects a record store, overriding WithDataDir persistence.
func WithStore(st store.Store) Option {
	return func(c *config) { c.store = st }
}

// Investigate runs one full scan with a pipeline assembled from the
// options. Long-running services should build a scan.Scanner once instead.
func Investigate(ctx context.Context, req Request, opts ...Option) (*Report, error) {
	cfg := &config{logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}

	scanner, err := newScanner(cfg)
	if err != nil {
		return nil, err
	}
	return scanner.Investigate(ctx, req)
}

func newScanner(cfg *config) (*scan.Scanner, error) {
	cache := cfg.cache
	if cache == nil && cfg.cacheTTL > 0 {
		c, err := httpcache.New(cfg.cacheTTL)
		if err != nil {
			return nil, fmt.Errorf("create HTTP cache: %w", err)
		}
		cache = c
	}

	serperOpts := []serper.Option{serper.WithLogger(cfg.logger)}
	if cache != nil {
		serperOpts = append(serperOpts, serper.WithCache(cache))
	}

	scanOpts := []scan.Option{scan.WithLogger(cfg.logger)}

	switch {
	case cfg.store != nil:
		scanOpts = append(scanOpts, scan.WithStore(cfg.store))
	case cfg.dataDir != "":
		st, err := store.NewFileStore(cfg.dataDir+"/records", cfg.logger)
		if err != nil {
			return nil, err
		}
		scanOpts = append(scanOpts, scan.WithStore(st))
	}

	searcher := cfg.searcher
	if searcher == nil {
		if cfg.dataDir != "" {
			quotaOpts := []quota.Option{quota.WithLogger(cfg.logger)}
			if cfg.quotaLimit > 0 {
				quotaOpts = append(quotaOpts, quota.WithLimit(cfg.quotaLimit))
			}
			serperOpts = append(serperOpts,
				serper.WithQuota(quota.New(cfg.dataDir+"/api_usage_log.json", quotaOpts...)))
		}
		s, err := serper.New(cfg.apiKey, serperOpts...)
		if err != nil {
			return nil, err
		}
		searcher = s
	}

	scraper := cfg.scraper
	if scraper == nil {
		scrapeOpts := []scrape.Option{scrape.WithLogger(cfg.logger)}
		if cfg.scrapeEndpoint != "" {
			scrapeOpts = append(scrapeOpts, scrape.WithEndpoint(cfg.scrapeEndpoint))
		}
		if cache != nil {
			scrapeOpts = append(scrapeOpts, scrape.WithCache(cache))
		}
		scraper = scrape.New(scrapeOpts...)
	}
	scanOpts = append(scanOpts, scan.WithScraper(scraper))

	return scan.New(searcher, scanOpts...)
}

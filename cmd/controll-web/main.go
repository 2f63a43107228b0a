// Command controll-web serves the scanning and scoring API over HTTP.
//
// Configuration layers: defaults, then a YAML file named by CONTROLL_CONFIG,
// then CONTROLL_* environment variables. SERPER_API_KEY is also honored for
// compatibility with the CLI.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ConTROLLAPP/controll/config"
	"github.com/ConTROLLAPP/controll/httpcache"
	"github.com/ConTROLLAPP/controll/metrics"
	"github.com/ConTROLLAPP/controll/quota"
	"github.com/ConTROLLAPP/controll/scan"
	"github.com/ConTROLLAPP/controll/scrape"
	"github.com/ConTROLLAPP/controll/serper"
	"github.com/ConTROLLAPP/controll/store"
	"github.com/ConTROLLAPP/controll/web"
)

func main() {
	_ = godotenv.Load() //nolint:errcheck // intentional

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if cfg.SerperAPIKey == "" {
		cfg.SerperAPIKey = os.Getenv("SERPER_API_KEY")
	}

	srv, err := buildServer(cfg, logger)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func buildServer(cfg *config.Config, logger *slog.Logger) (*web.Server, error) {
	st, err := store.NewFileStore(cfg.RecordsDir(), logger)
	if err != nil {
		return nil, err
	}

	m := metrics.NewManager()

	webOpts := []web.Option{
		web.WithStore(st),
		web.WithMetrics(m),
		web.WithLogger(logger),
		web.WithSearchReady(cfg.SerperAPIKey != ""),
	}

	// Without a search key the analysis endpoints still work; the scan
	// endpoints report 503.
	if cfg.SerperAPIKey == "" {
		logger.Warn("no search API key configured, scan endpoints disabled")
		return web.NewServer(nil, webOpts...), nil
	}

	var cache httpcache.Cacher
	if cfg.CacheDir != "" {
		c, err := httpcache.NewWithPath(time.Duration(cfg.CacheTTLHours)*time.Hour, cfg.CacheDir)
		if err != nil {
			logger.Warn("cache unavailable, continuing without", "error", err)
		} else {
			cache = c
		}
	}

	tracker := quota.New(cfg.QuotaPath(),
		quota.WithLimit(cfg.DailyQuota), quota.WithLogger(logger))

	serperOpts := []serper.Option{
		serper.WithQuota(tracker),
		serper.WithLogger(logger),
	}
	scrapeOpts := []scrape.Option{
		scrape.WithEndpoint(cfg.ScrapeEndpoint),
		scrape.WithLogger(logger),
	}
	if cache != nil {
		serperOpts = append(serperOpts, serper.WithCache(cache))
		scrapeOpts = append(scrapeOpts, scrape.WithCache(cache))
	}

	searcher, err := serper.New(cfg.SerperAPIKey, serperOpts...)
	if err != nil {
		return nil, err
	}

	scanner, err := scan.New(searcher,
		scan.WithScraper(scrape.New(scrapeOpts...)),
		scan.WithStore(st),
		scan.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	return web.NewServer(scanner, webOpts...), nil
}

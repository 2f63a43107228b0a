// Command controll scans one guest alias and prints the risk report.
//
// Usage:
//
//	controll "Seth D."
//	controll -location "Waltham, MA" -review "Me thinks not. Overcooked scallops." "Seth D."
//	controll -email seth.doria@gmail.com "Seth D."   # requires SERPER_API_KEY
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/ConTROLLAPP/controll"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	location := flag.String("location", "", "guest location hint, e.g. \"Waltham, MA\"")
	email := flag.String("email", "", "known guest email")
	phone := flag.String("phone", "", "known guest phone")
	reviewText := flag.String("review", "", "review text presented by the guest")
	platform := flag.String("platform", "", "platform the review appeared on")
	dataDir := flag.String("data-dir", "data", "directory for identity records and quota log (empty disables persistence)")
	noCache := flag.Bool("no-cache", false, "disable HTTP caching (enabled by default with 24h TTL)")
	cacheTTL := flag.Duration("cache-ttl", 24*time.Hour, "cache time-to-live")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: controll [options] <alias>")
		fmt.Fprintln(os.Stderr, "\nOptions:")
		flag.PrintDefaults()
		fmt.Fprintln(os.Stderr, "\nEnvironment:")
		fmt.Fprintln(os.Stderr, "  SERPER_API_KEY  search API key (required)")
		os.Exit(1)
	}
	alias := flag.Arg(0)

	// Best effort; missing .env is fine.
	_ = godotenv.Load() //nolint:errcheck // intentional

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	apiKey := os.Getenv("SERPER_API_KEY")
	if apiKey == "" {
		logger.Error("SERPER_API_KEY is not set")
		os.Exit(1)
	}

	opts := []controll.Option{
		controll.WithAPIKey(apiKey),
		controll.WithLogger(logger),
		controll.WithDataDir(*dataDir),
	}
	if !*noCache {
		opts = append(opts, controll.WithCacheTTL(*cacheTTL))
	}
	if endpoint := os.Getenv("PUPPETEER_ENDPOINT"); endpoint != "" {
		opts = append(opts, controll.WithScrapeEndpoint(endpoint))
	}

	ctx := context.Background()
	report, err := controll.Investigate(ctx, controll.Request{
		Alias:      alias,
		Location:   *location,
		Email:      *email,
		Phone:      *phone,
		ReviewText: *reviewText,
		Platform:   *platform,
	}, opts...)
	if err != nil {
		logger.Error("scan failed", "alias", alias, "error", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logger.Error("encode report", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

package httpcache

import (
	"log/slog"
	"net/url"
	"sync"
	"time"
)

// Per-domain pacing for outbound requests. Search and scrape providers
// throttle aggressively; a floor between requests to the same host keeps
// scans under their limits.
var globalRateLimiter = newDomainRateLimiter()

func newDomainRateLimiter() *domainRateLimiter {
	return &domainRateLimiter{
		minDelay: 1100 * time.Millisecond,
		overrides: map[string]time.Duration{
			"google.serper.dev": 200 * time.Millisecond,
		},
	}
}

type domainRateLimiter struct {
	overrides   map[string]time.Duration
	lastRequest sync.Map
	mu          sync.Map
	minDelay    time.Duration
}

func (r *domainRateLimiter) Wait(rawURL string, logger *slog.Logger) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return
	}
	domain := u.Host

	muI, _ := r.mu.LoadOrStore(domain, &sync.Mutex{})
	mu, ok := muI.(*sync.Mutex)
	if !ok {
		return
	}

	mu.Lock()
	defer mu.Unlock()

	delay := r.minDelay
	if override, ok := r.overrides[domain]; ok {
		delay = override
	}

	if lastI, ok := r.lastRequest.Load(domain); ok {
		if last, ok := lastI.(time.Time); ok {
			if elapsed := time.Since(last); elapsed < delay {
				waitTime := delay - elapsed
				if logger != nil {
					logger.Debug("rate limit pause", "domain", domain, "wait", waitTime)
				}
				time.Sleep(waitTime)
			}
		}
	}

	r.lastRequest.Store(domain, time.Now())
}

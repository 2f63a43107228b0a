// Package quota enforces the daily search API budget.
package quota

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// DefaultDailyLimit is the number of paid search calls allowed per day.
const DefaultDailyLimit = 5000

// ErrExhausted is returned when the day's budget is spent. Scans should
// degrade to cached data rather than fail outright.
var ErrExhausted = errors.New("daily API quota exhausted")

// Tracker counts API calls per calendar day, persisted as a small JSON map
// so the budget survives restarts. Safe for concurrent use.
type Tracker struct {
	path   string
	limit  int
	logger *slog.Logger
	now    func() time.Time

	mu sync.Mutex
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLimit overrides the daily call budget.
func WithLimit(n int) Option {
	return func(t *Tracker) { t.limit = n }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) { t.logger = logger }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// New creates a Tracker persisting to path.
func New(path string, opts ...Option) *Tracker {
	t := &Tracker{
		path:   path,
		limit:  DefaultDailyLimit,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Spend consumes one unit of today's budget. Returns ErrExhausted when the
// limit is reached; the counter is not incremented past the limit.
func (t *Tracker) Spend() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	day := t.today()
	log := t.load()
	if log[day] >= t.limit {
		t.logger.Warn("API quota exhausted", "day", day, "limit", t.limit)
		return ErrExhausted
	}
	log[day]++
	return t.save(log)
}

// Remaining reports how many calls are left today.
func (t *Tracker) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	left := t.limit - t.load()[t.today()]
	if left < 0 {
		return 0
	}
	return left
}

func (t *Tracker) today() string {
	return t.now().Format("2006-01-02")
}

// load reads the usage map. A missing or corrupt file starts a fresh map;
// losing a partial day's count is preferable to blocking all scans.
func (t *Tracker) load() map[string]int {
	data, err := os.ReadFile(t.path)
	if err != nil {
		return map[string]int{}
	}
	var log map[string]int
	if err := json.Unmarshal(data, &log); err != nil {
		t.logger.Warn("resetting corrupt quota log", "path", t.path, "error", err)
		return map[string]int{}
	}
	return log
}

func (t *Tracker) save(log map[string]int) error {
	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return fmt.Errorf("encode quota log: %w", err)
	}
	if err := os.WriteFile(t.path, data, 0o644); err != nil {
		return fmt.Errorf("write quota log: %w", err)
	}
	return nil
}

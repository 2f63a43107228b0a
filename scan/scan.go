// Package scan orchestrates an open-web sweep for one guest alias: search,
// clue extraction, targeted scraping, scoring, and record merging.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ConTROLLAPP/controll/conflict"
	"github.com/ConTROLLAPP/controll/engine"
	"github.com/ConTROLLAPP/controll/identity"
	"github.com/ConTROLLAPP/controll/junk"
	"github.com/ConTROLLAPP/controll/platforms"
	"github.com/ConTROLLAPP/controll/quota"
	"github.com/ConTROLLAPP/controll/review"
	"github.com/ConTROLLAPP/controll/serper"
	"github.com/ConTROLLAPP/controll/store"
	"github.com/ConTROLLAPP/controll/stylometry"
	"github.com/google/uuid"
)

const (
	// maxScrapes bounds deep scraping per scan; pages beyond the cap stay
	// queued in the report for a later pass.
	maxScrapes = 8

	resultsPerQuery = 5

	// Confidence assigned when a scan surfaces contact info, and the floor
	// when it does not.
	confidenceWithContacts = 85
	confidenceBaseline     = 30

	// Trigger and literary thresholds for critic classification.
	confirmedCriticTriggers = 2
	weakCriticLiteraryScore = 3
)

// Searcher runs one web search query.
type Searcher interface {
	Search(ctx context.Context, query string, numResults int) ([]serper.Result, error)
}

// Scraper fetches rendered page text.
type Scraper interface {
	Text(ctx context.Context, pageURL string) (string, error)
}

// Request describes one guest to investigate. Alias is required; everything
// else sharpens the scan.
type Request struct {
	Alias      string `json:"alias"`
	Location   string `json:"location,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	ReviewText string `json:"review_text,omitempty"`
	Platform   string `json:"platform,omitempty"`
}

// Profile is a discovered reviewer profile page.
type Profile struct {
	URL      string `json:"url"`
	Platform string `json:"platform"`
}

// Discovered aggregates the identity material a scan turned up.
type Discovered struct {
	Emails    []string  `json:"emails"`
	Phones    []string  `json:"phones"`
	Profiles  []Profile `json:"profiles"`
	Platforms []string  `json:"platforms"`
}

// Summary captures scan mechanics for the report.
type Summary struct {
	QueriesRun     int  `json:"queries_run"`
	ResultsSeen    int  `json:"results_seen"`
	URLsScraped    int  `json:"urls_scraped"`
	URLsQueued     int  `json:"urls_queued"`
	QuotaExhausted bool `json:"quota_exhausted"`
}

// Report is the outcome of one scan.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Report struct {
	ID              string           `json:"id"`
	Alias           string           `json:"alias"`
	NormalizedAlias string           `json:"normalized_alias"`
	CreatedAt       time.Time        `json:"created_at"`
	RiskScore       int              `json:"risk_score"`
	StarRating      int              `json:"star_rating"`
	RatingReason    string           `json:"rating_reason"`
	ConfidenceScore int              `json:"confidence_score"`
	CriticFlag      bool             `json:"critic_flag"`
	StylometryFlags []string         `json:"stylometry_flags,omitempty"`
	ReviewAnalysis  *review.Analysis `json:"review_analysis,omitempty"`
	Discovered      Discovered       `json:"discovered_data"`
	Summary         Summary          `json:"scan_summary"`
	Record          *identity.Record `json:"record,omitempty"`
}

// Scanner runs investigations. Searcher is required; Scraper and Store are
// optional and disable deep scraping and persistence respectively.
type Scanner struct {
	searcher Searcher
	scraper  Scraper
	store    store.Store
	logger   *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithScraper enables deep scraping of discovered URLs.
func WithScraper(s Scraper) Option {
	return func(sc *Scanner) { sc.scraper = s }
}

// WithStore enables persistence and merge-on-rescan.
func WithStore(st store.Store) Option {
	return func(sc *Scanner) { sc.store = st }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(sc *Scanner) { sc.logger = logger }
}

// New creates a Scanner.
func New(searcher Searcher, opts ...Option) (*Scanner, error) {
	if searcher == nil {
		return nil, fmt.Errorf("scan: searcher is required")
	}
	sc := &Scanner{
		searcher: searcher,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(sc)
	}
	return sc, nil
}

// Investigate runs the full pipeline for one request. Insufficient input is
// not an error: the report falls back to a baseline low-risk rating so the
// caller always has something to show.
func (s *Scanner) Investigate(ctx context.Context, req Request) (*Report, error) {
	alias := strings.TrimSpace(req.Alias)
	report := &Report{
		ID:              uuid.NewString(),
		Alias:           alias,
		NormalizedAlias: identity.NormalizeAlias(alias),
		CreatedAt:       time.Now().UTC(),
	}

	if !identity.HasMinimumInput(alias, req.Email, req.Phone) {
		s.logger.InfoContext(ctx, "insufficient input, returning baseline report", "alias", alias)
		report.RiskScore = 0
		report.StarRating = 5
		report.ConfidenceScore = 0
		report.RatingReason = "Insufficient input for scan"
		return report, nil
	}

	// Operator-supplied contacts count as discoveries unless they are junk.
	if req.Email != "" && !junk.Email(req.Email) {
		report.Discovered.Emails = appendUnique(report.Discovered.Emails, strings.ToLower(req.Email))
	}
	if req.Phone != "" && !junk.Phone(req.Phone) {
		report.Discovered.Phones = appendUnique(report.Discovered.Phones, NormalizePhone(req.Phone))
	}

	samples := s.collectSamples(ctx, req, report)

	flags := stylometry.Analyze(samples)
	report.StylometryFlags = flags

	var analysis *review.Analysis
	if req.ReviewText != "" {
		a := review.AnalyzeText(req.ReviewText)
		analysis = &a
		report.ReviewAnalysis = analysis
	}

	isCritic, isWeak := classifyCritic(analysis, samples)
	report.CriticFlag = isCritic

	confidence := confidenceBaseline
	if len(report.Discovered.Emails) > 0 || len(report.Discovered.Phones) > 0 {
		confidence = confidenceWithContacts
	}
	report.ConfidenceScore = confidence

	eval := engine.Evaluate(engine.Input{
		Confidence:      confidence,
		PlatformHits:    len(report.Discovered.Platforms),
		StylometryFlags: len(flags),
		WritingSamples:  len(samples),
		IsCritic:        isCritic,
		IsWeakCritic:    isWeak,
	})
	report.RiskScore = eval.Risk
	report.StarRating = eval.Stars
	report.RatingReason = eval.Reason

	if err := s.persist(ctx, req, report, flags, isCritic); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "scan complete",
		"alias", alias,
		"risk", report.RiskScore,
		"stars", report.StarRating,
		"platforms", len(report.Discovered.Platforms),
		"scraped", report.Summary.URLsScraped)
	return report, nil
}

// collectSamples runs the search and scrape phases, filling the report's
// discovery and summary fields, and returns the writing samples gathered.
func (s *Scanner) collectSamples(ctx context.Context, req Request, report *Report) []string {
	var samples []string
	if req.ReviewText != "" {
		samples = append(samples, req.ReviewText)
	}

	var scrapeQueue []string
	for _, query := range PlatformQueries(req.Alias, req.Location) {
		if ctx.Err() != nil {
			break
		}
		results, err := s.searcher.Search(ctx, query, resultsPerQuery)
		if err != nil {
			if errors.Is(err, quota.ErrExhausted) {
				report.Summary.QuotaExhausted = true
				s.logger.WarnContext(ctx, "search quota exhausted, stopping query phase", "alias", req.Alias)
				break
			}
			s.logger.WarnContext(ctx, "search query failed", "query", query, "error", err)
			continue
		}
		report.Summary.QueriesRun++
		report.Summary.ResultsSeen += len(results)

		for _, r := range results {
			s.harvest(report, r.Title+" "+r.Snippet+" "+r.Link)
			if r.Link != "" && platforms.IsTarget(r.Link) {
				scrapeQueue = appendUnique(scrapeQueue, r.Link)
			}
		}
	}

	report.Summary.URLsQueued = len(scrapeQueue)

	if s.scraper == nil {
		return samples
	}
	for _, pageURL := range scrapeQueue {
		if report.Summary.URLsScraped >= maxScrapes || ctx.Err() != nil {
			break
		}
		text, err := s.scraper.Text(ctx, pageURL)
		if err != nil {
			s.logger.WarnContext(ctx, "scrape failed", "url", pageURL, "error", err)
			continue
		}
		report.Summary.URLsScraped++
		s.harvest(report, text)
		if review.IsValid(text) {
			samples = append(samples, text)
		}
	}
	return samples
}

// harvest extracts clues from text and attaches the ones that survive junk
// filtering to the report.
func (s *Scanner) harvest(report *Report, text string) {
	clues := ExtractClues(text)

	for _, email := range clues.Emails {
		if junk.Email(email) {
			continue
		}
		report.Discovered.Emails = appendUnique(report.Discovered.Emails, email)
	}
	for _, phone := range clues.Phones {
		if junk.Phone(phone) {
			continue
		}
		report.Discovered.Phones = appendUnique(report.Discovered.Phones, phone)
	}
	for _, u := range clues.URLs {
		if !platforms.IsTarget(u) {
			continue
		}
		name := platforms.NameFor(u)
		report.Discovered.Platforms = appendUnique(report.Discovered.Platforms, name)
		if platforms.IsProfileLink(u) {
			report.Discovered.Profiles = appendProfile(report.Discovered.Profiles, Profile{URL: u, Platform: name})
		}
	}
}

// classifyCritic decides critic status. Two or more distinct trigger phrases
// in the presented review confirm a critic; one trigger or a literary voice
// across the writing samples marks a possible critic.
func classifyCritic(analysis *review.Analysis, samples []string) (isCritic, isWeak bool) {
	if analysis != nil && len(analysis.TriggersFound) >= confirmedCriticTriggers {
		return true, false
	}
	if analysis != nil && len(analysis.TriggersFound) == 1 {
		isWeak = true
	}
	for _, sample := range samples {
		if score, _ := stylometry.LiteraryScore(sample); score >= weakCriticLiteraryScore {
			isWeak = true
			break
		}
	}
	return false, isWeak
}

// persist merges the scan outcome into the stored record under the per-key
// lock so concurrent scans of the same alias serialize.
func (s *Scanner) persist(ctx context.Context, req Request, report *Report, flags []string, isCritic bool) error {
	if s.store == nil {
		return nil
	}

	var matched []string
	matched = append(matched, report.Discovered.Platforms...)
	if req.Platform != "" {
		matched = appendUnique(matched, req.Platform)
	}

	incoming := &identity.Record{
		PrimaryName:      report.Alias,
		Aliases:          []string{report.NormalizedAlias},
		Phones:           report.Discovered.Phones,
		Emails:           report.Discovered.Emails,
		RiskScore:        report.RiskScore,
		StarRating:       report.StarRating,
		StylometryFlags:  flags,
		MatchedPlatforms: matched,
		CriticFlag:       isCritic,
		ConfidenceScore:  report.ConfidenceScore,
	}

	err := s.store.Update(ctx, report.NormalizedAlias, func(current *identity.Record) (*identity.Record, error) {
		if current == nil {
			report.Record = incoming.Clone()
			return incoming, nil
		}
		merged := conflict.Resolve(current, incoming)
		report.Record = merged.Clone()
		return merged, nil
	})
	if err != nil {
		return fmt.Errorf("persist record for %q: %w", report.NormalizedAlias, err)
	}

	// The stored record reflects full history; surface its scores.
	if report.Record != nil {
		report.RiskScore = report.Record.RiskScore
		report.StarRating = report.Record.StarRating
		report.CriticFlag = report.Record.CriticFlag
	}
	return nil
}

func appendProfile(list []Profile, p Profile) []Profile {
	for _, item := range list {
		if item.URL == p.URL {
			return list
		}
	}
	return append(list, p)
}

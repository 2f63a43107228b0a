package scan

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/ConTROLLAPP/controll/identity"
	"github.com/ConTROLLAPP/controll/quota"
	"github.com/ConTROLLAPP/controll/serper"
	"github.com/ConTROLLAPP/controll/store"
	"github.com/google/go-cmp/cmp"
)

type fakeSearcher struct {
	results []serper.Result
	err     error
	calls   int
}

func (f *fakeSearcher) Search(_ context.Context, _ string, _ int) ([]serper.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type fakeScraper struct {
	text  string
	calls int
}

func (f *fakeScraper) Text(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.text, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestInvestigateInsufficientInput(t *testing.T) {
	sc, err := New(&fakeSearcher{}, WithLogger(testLogger()))
	if err != nil {
		t.Fatal(err)
	}

	report, err := sc.Investigate(context.Background(), Request{Alias: "J"})
	if err != nil {
		t.Fatalf("Investigate: %v", err)
	}
	if report.StarRating != 5 || report.RiskScore != 0 {
		t.Errorf("baseline report = risk %d stars %d, want 0/5", report.RiskScore, report.StarRating)
	}
	if report.RatingReason != "Insufficient input for scan" {
		t.Errorf("reason = %q", report.RatingReason)
	}
	if report.ID == "" {
		t.Error("report must carry an ID even for baseline outcomes")
	}
}

func TestInvestigateDiscoversContacts(t *testing.T) {
	searcher := &fakeSearcher{results: []serper.Result{{
		Title:   "Seth D.'s Reviews - Yelp",
		Link:    "https://www.yelp.com/user_details?userid=abc",
		Snippet: "Contact seth.doria@gmail.com or 917-450-5555",
	}}}
	sc, err := New(searcher, WithLogger(testLogger()))
	if err != nil {
		t.Fatal(err)
	}

	report, err := sc.Investigate(context.Background(), Request{Alias: "Seth D.", Location: "Waltham, MA"})
	if err != nil {
		t.Fatalf("Investigate: %v", err)
	}

	if diff := cmp.Diff([]string{"seth.doria@gmail.com"}, report.Discovered.Emails); diff != "" {
		t.Errorf("emails mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"9174505555"}, report.Discovered.Phones); diff != "" {
		t.Errorf("phones mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Yelp"}, report.Discovered.Platforms); diff != "" {
		t.Errorf("platforms mismatch (-want +got):\n%s", diff)
	}
	if len(report.Discovered.Profiles) != 1 || report.Discovered.Profiles[0].Platform != "Yelp" {
		t.Errorf("profiles = %+v", report.Discovered.Profiles)
	}
	if report.ConfidenceScore != confidenceWithContacts {
		t.Errorf("confidence = %d, want %d", report.ConfidenceScore, confidenceWithContacts)
	}
	// High confidence, found on 1-2 platforms: risk 5, five stars.
	if report.RiskScore != 5 || report.StarRating != 5 {
		t.Errorf("evaluation = risk %d stars %d, want 5/5", report.RiskScore, report.StarRating)
	}
	if !strings.Contains(report.RatingReason, "High confidence") {
		t.Errorf("reason = %q", report.RatingReason)
	}
}

func TestInvestigateFiltersJunkClues(t *testing.T) {
	searcher := &fakeSearcher{results: []serper.Result{{
		Title:   "Spam result",
		Link:    "https://www.yelp.com/biz/somewhere",
		Snippet: "Write to info@gmail.com or call 555-555-5555 today",
	}}}
	sc, err := New(searcher, WithLogger(testLogger()))
	if err != nil {
		t.Fatal(err)
	}

	report, err := sc.Investigate(context.Background(), Request{Alias: "Jane Smith"})
	if err != nil {
		t.Fatalf("Investigate: %v", err)
	}
	if len(report.Discovered.Emails) != 0 {
		t.Errorf("junk email attached: %v", report.Discovered.Emails)
	}
	if len(report.Discovered.Phones) != 0 {
		t.Errorf("junk phone attached: %v", report.Discovered.Phones)
	}
	if report.ConfidenceScore != confidenceBaseline {
		t.Errorf("confidence = %d, want baseline %d", report.ConfidenceScore, confidenceBaseline)
	}
}

func TestInvestigateQuotaExhausted(t *testing.T) {
	searcher := &fakeSearcher{err: quota.ErrExhausted}
	sc, err := New(searcher, WithLogger(testLogger()))
	if err != nil {
		t.Fatal(err)
	}

	report, err := sc.Investigate(context.Background(), Request{Alias: "Jane Smith"})
	if err != nil {
		t.Fatalf("Investigate should degrade, not fail: %v", err)
	}
	if !report.Summary.QuotaExhausted {
		t.Error("summary should mark quota exhaustion")
	}
	if searcher.calls != 1 {
		t.Errorf("search calls = %d, want 1 (stop after first exhaustion)", searcher.calls)
	}
	// Medium confidence only: risk 10, five stars.
	if report.RiskScore != 10 || report.StarRating != 5 {
		t.Errorf("degraded evaluation = risk %d stars %d, want 10/5", report.RiskScore, report.StarRating)
	}
}

func TestInvestigateCriticReview(t *testing.T) {
	searcher := &fakeSearcher{}
	sc, err := New(searcher, WithLogger(testLogger()))
	if err != nil {
		t.Fatal(err)
	}

	report, err := sc.Investigate(context.Background(), Request{
		Alias:      "Seth D.",
		ReviewText: "Me thinks not. Overcooked scallops, and the service was terrible; hard pass.",
	})
	if err != nil {
		t.Fatalf("Investigate: %v", err)
	}
	if !report.CriticFlag {
		t.Error("three trigger phrases should confirm a critic")
	}
	if report.ReviewAnalysis == nil || !report.ReviewAnalysis.StylometricTrigger {
		t.Errorf("review analysis = %+v", report.ReviewAnalysis)
	}
	if !strings.Contains(report.RatingReason, "Confirmed critic") {
		t.Errorf("reason = %q", report.RatingReason)
	}
}

func TestInvestigateScrapeCap(t *testing.T) {
	var results []serper.Result
	for _, u := range []string{
		"https://www.yelp.com/user_details?userid=1",
		"https://www.yelp.com/user_details?userid=2",
		"https://www.yelp.com/user_details?userid=3",
		"https://www.tripadvisor.com/Profile/a",
		"https://www.tripadvisor.com/Profile/b",
		"https://www.trustpilot.com/users/c",
		"https://www.trustpilot.com/users/d",
		"https://old.reddit.com/user/e",
		"https://old.reddit.com/user/f",
		"https://old.reddit.com/user/g",
	} {
		results = append(results, serper.Result{Title: "profile", Link: u})
	}
	searcher := &fakeSearcher{results: results}
	scraper := &fakeScraper{text: "short"}

	sc, err := New(searcher, WithScraper(scraper), WithLogger(testLogger()))
	if err != nil {
		t.Fatal(err)
	}
	report, err := sc.Investigate(context.Background(), Request{Alias: "Jane Smith"})
	if err != nil {
		t.Fatalf("Investigate: %v", err)
	}
	if report.Summary.URLsScraped != maxScrapes {
		t.Errorf("URLsScraped = %d, want cap %d", report.Summary.URLsScraped, maxScrapes)
	}
	if report.Summary.URLsQueued != 10 {
		t.Errorf("URLsQueued = %d, want 10", report.Summary.URLsQueued)
	}
}

func TestInvestigatePersistsAndMerges(t *testing.T) {
	dir := t.TempDir()
	st, err := store.NewFileStore(dir, testLogger())
	if err != nil {
		t.Fatal(err)
	}

	searcher := &fakeSearcher{results: []serper.Result{{
		Title:   "Seth D. on Yelp",
		Link:    "https://www.yelp.com/user_details?userid=abc",
		Snippet: "reach seth.doria@gmail.com",
	}}}
	sc, err := New(searcher, WithStore(st), WithLogger(testLogger()))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	first, err := sc.Investigate(ctx, Request{Alias: "Seth D."})
	if err != nil {
		t.Fatalf("first Investigate: %v", err)
	}
	if first.Record == nil {
		t.Fatal("report should carry the persisted record")
	}

	// Rescan with a hostile review: merged record must keep the worst case.
	second, err := sc.Investigate(ctx, Request{
		Alias:      "Seth D.",
		ReviewText: "Me thinks not. Service was terrible and overpriced and underwhelming; hard pass.",
	})
	if err != nil {
		t.Fatalf("second Investigate: %v", err)
	}
	if !second.CriticFlag {
		t.Error("second scan should confirm critic")
	}

	stored, err := st.Load(ctx, identity.NormalizeAlias("Seth D."))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !stored.CriticFlag {
		t.Error("stored record lost critic flag")
	}
	if stored.RiskScore < second.RiskScore {
		t.Errorf("stored risk %d below report risk %d", stored.RiskScore, second.RiskScore)
	}
	if !contains(stored.Emails, "seth.doria@gmail.com") {
		t.Errorf("merged record lost discovered email: %v", stored.Emails)
	}

	// A third clean rescan cannot launder the record.
	third, err := sc.Investigate(ctx, Request{Alias: "Seth D."})
	if err != nil {
		t.Fatalf("third Investigate: %v", err)
	}
	if !third.CriticFlag {
		t.Error("clean rescan cleared critic flag")
	}
	if third.RiskScore < second.RiskScore {
		t.Errorf("clean rescan lowered risk from %d to %d", second.RiskScore, third.RiskScore)
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

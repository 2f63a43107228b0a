package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func TestScrapeOutput(t *testing.T) {
	m := NewManager()
	m.RecordScan("success", 250*time.Millisecond)
	m.RecordScan("degraded", time.Second)
	m.RecordSearchQueries(12)
	m.RecordScrapes(8)
	m.RecordQuotaExhausted()
	m.RecordMerge()
	m.RecordCritic()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	for _, want := range []string{
		`controll_scans_total{outcome="success"} 1`,
		`controll_scans_total{outcome="degraded"} 1`,
		`controll_search_queries_total 12`,
		`controll_urls_scraped_total 8`,
		`controll_quota_exhausted_total 1`,
		`controll_records_merged_total 1`,
		`controll_critics_detected_total 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("scrape output missing %q", want)
		}
	}
}

func TestNamespaceOverride(t *testing.T) {
	m := NewManager(WithNamespace("testsvc"))
	m.RecordCritic()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "testsvc_critics_detected_total 1") {
		t.Error("namespace override not applied")
	}
}

func TestMiddleware(t *testing.T) {
	m := NewManager()
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	scrape := httptest.NewRecorder()
	m.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(scrape.Body.String(),
		`controll_http_requests_total{method="GET",path="/api/status",status="418"} 1`) {
		t.Errorf("middleware did not record request:\n%s", scrape.Body.String())
	}
}

func TestMiddlewareLabelsRoutePattern(t *testing.T) {
	m := NewManager()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/guest/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, id := range []string{"alpha", "beta", "gamma"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/guest/"+id, nil))
	}

	scrape := httptest.NewRecorder()
	m.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := scrape.Body.String()
	if !strings.Contains(body,
		`controll_http_requests_total{method="GET",path="/api/guest/{id}",status="200"} 3`) {
		t.Errorf("requests not collapsed onto the route pattern:\n%s", body)
	}
	if strings.Contains(body, "/api/guest/alpha") {
		t.Error("raw URL path leaked into metric labels")
	}
}

// Package web exposes the scanning and scoring pipeline over HTTP.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ConTROLLAPP/controll/identity"
	"github.com/ConTROLLAPP/controll/metrics"
	"github.com/ConTROLLAPP/controll/scan"
	"github.com/ConTROLLAPP/controll/store"
)

// Version reported by the status endpoint.
const Version = "2.0"

// Investigator runs alias scans. Satisfied by *scan.Scanner.
type Investigator interface {
	Investigate(ctx context.Context, req scan.Request) (*scan.Report, error)
}

// Server is the HTTP front end.
type Server struct {
	router       *chi.Mux
	investigator Investigator
	store        store.Store
	metrics      *metrics.Manager
	logger       *slog.Logger
	searchReady  bool
}

// Option configures a Server.
type Option func(*Server)

// WithStore enables the shared-alert lookup endpoint.
func WithStore(st store.Store) Option {
	return func(s *Server) { s.store = st }
}

// WithMetrics wires request metrics and the /metrics endpoint.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Server) { s.metrics = m }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithSearchReady marks the search API as configured, for the status page.
func WithSearchReady(ready bool) Option {
	return func(s *Server) { s.searchReady = ready }
}

// NewServer builds the router. The investigator may be nil, in which case
// the scan endpoints return 503 and the analysis endpoints still work.
func NewServer(investigator Investigator, opts ...Option) *Server {
	s := &Server{
		router:       chi.NewRouter(),
		investigator: investigator,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(120 * time.Second))
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware)
		s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	s.router.Get("/api/status", s.handleStatus)
	s.router.Post("/api/alias/investigate", s.handleInvestigate)
	s.router.Post("/api/review/analyze", s.handleAnalyzeReview)
	s.router.Post("/api/guest/search", s.handleGuestSearch)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	searchState := "Not configured"
	if s.searchReady {
		searchState = "Connected"
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ConTROLL Web API Running",
		"version":    Version,
		"scanner":    scannerState(s.investigator),
		"search_api": searchState,
	})
}

func scannerState(inv Investigator) string {
	if inv == nil {
		return "Unavailable"
	}
	return "Active"
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close() //nolint:errcheck // intentional
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}

// notFoundToNil maps the record-not-found sentinel to a nil record so the
// alert endpoints can answer 200 with found=false.
func notFoundToNil(rec *identity.Record, err error) (*identity.Record, error) {
	if errors.Is(err, identity.ErrRecordNotFound) {
		return nil, nil
	}
	return rec, err
}

package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/ConTROLLAPP/controll/review"
	"github.com/ConTROLLAPP/controll/scan"
	"github.com/ConTROLLAPP/controll/stylometry"
)

type investigateRequest struct {
	Handle     string `json:"handle"`
	Location   string `json:"location,omitempty"`
	Platform   string `json:"platform,omitempty"`
	ReviewText string `json:"review_text,omitempty"`
}

func (s *Server) handleInvestigate(w http.ResponseWriter, r *http.Request) {
	if s.investigator == nil {
		s.writeError(w, http.StatusServiceUnavailable, "scanner not available")
		return
	}

	var req investigateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Handle) == "" {
		s.writeError(w, http.StatusBadRequest, "missing handle")
		return
	}

	start := time.Now()
	report, err := s.investigator.Investigate(r.Context(), scan.Request{
		Alias:      req.Handle,
		Location:   req.Location,
		Platform:   req.Platform,
		ReviewText: req.ReviewText,
	})
	if err != nil {
		s.logger.Error("investigate failed", "handle", req.Handle, "error", err)
		s.recordScan("error", start)
		s.writeError(w, http.StatusInternalServerError, "scan failed: "+err.Error())
		return
	}

	s.observeReport(report, start)
	s.writeJSON(w, http.StatusOK, report)
}

type analyzeReviewRequest struct {
	Text string `json:"text"`
}

type analyzeReviewResponse struct {
	Analysis        review.Analysis `json:"analysis"`
	StylometryFlags []string        `json:"stylometry_flags,omitempty"`
	LiteraryScore   int             `json:"literary_score"`
	ValidSample     bool            `json:"valid_sample"`
}

func (s *Server) handleAnalyzeReview(w http.ResponseWriter, r *http.Request) {
	var req analyzeReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.writeError(w, http.StatusBadRequest, "missing text")
		return
	}

	score, _ := stylometry.LiteraryScore(req.Text)
	s.writeJSON(w, http.StatusOK, analyzeReviewResponse{
		Analysis:        review.AnalyzeText(req.Text),
		StylometryFlags: stylometry.Analyze([]string{req.Text}),
		LiteraryScore:   score,
		ValidSample:     review.IsValid(req.Text),
	})
}

type guestSearchRequest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type guestSearchResponse struct {
	Report *scan.Report `json:"report"`

	// Alert is set when a stored record from an earlier scan matches the
	// guest's contact info under a different alias.
	Alert *alertInfo `json:"alert,omitempty"`
}

type alertInfo struct {
	PrimaryName string `json:"primary_name"`
	RiskScore   int    `json:"risk_score"`
	StarRating  int    `json:"star_rating"`
	CriticFlag  bool   `json:"critic_flag"`
}

func (s *Server) handleGuestSearch(w http.ResponseWriter, r *http.Request) {
	if s.investigator == nil {
		s.writeError(w, http.StatusServiceUnavailable, "scanner not available")
		return
	}

	var req guestSearchRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.writeError(w, http.StatusBadRequest, "missing guest name")
		return
	}

	start := time.Now()
	report, err := s.investigator.Investigate(r.Context(), scan.Request{
		Alias: req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		s.logger.Error("guest search failed", "name", req.Name, "error", err)
		s.recordScan("error", start)
		s.writeError(w, http.StatusInternalServerError, "scan failed: "+err.Error())
		return
	}

	resp := guestSearchResponse{Report: report}

	if s.store != nil && (req.Email != "" || req.Phone != "") {
		// Stored contacts are lower-cased emails and digits-only phones, so
		// the lookup sides must match that form.
		rec, err := notFoundToNil(s.store.FindByContact(r.Context(),
			strings.ToLower(req.Email), scan.NormalizePhone(req.Phone)))
		if err != nil {
			s.logger.Warn("shared alert lookup failed", "name", req.Name, "error", err)
		} else if rec != nil && rec.PrimaryName != report.Alias {
			resp.Alert = &alertInfo{
				PrimaryName: rec.PrimaryName,
				RiskScore:   rec.RiskScore,
				StarRating:  rec.StarRating,
				CriticFlag:  rec.CriticFlag,
			}
		}
	}

	s.observeReport(report, start)
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) observeReport(report *scan.Report, start time.Time) {
	outcome := "success"
	if report.Summary.QuotaExhausted {
		outcome = "degraded"
	}
	s.recordScan(outcome, start)
	if s.metrics == nil {
		return
	}
	s.metrics.RecordSearchQueries(report.Summary.QueriesRun)
	s.metrics.RecordScrapes(report.Summary.URLsScraped)
	if report.Summary.QuotaExhausted {
		s.metrics.RecordQuotaExhausted()
	}
	if report.CriticFlag {
		s.metrics.RecordCritic()
	}
	if report.Record != nil && len(report.Record.ConflictNotes) > 0 {
		s.metrics.RecordMerge()
	}
}

func (s *Server) recordScan(outcome string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordScan(outcome, time.Since(start))
	}
}

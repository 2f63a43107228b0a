// Package identity defines the common types for reviewer identity records.
package identity

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors returned by the scoring and storage layers.
var (
	// ErrInsufficientInput indicates that name, email, and phone are all
	// empty or below minimum length. This is a valid, common outcome, not
	// a fault; callers should fall back to a baseline low-risk report.
	ErrInsufficientInput = errors.New("insufficient identity input")

	// ErrMalformedRecord indicates a stored record failed validation on
	// load. Malformed records must never be merged.
	ErrMalformedRecord = errors.New("malformed identity record")

	ErrRecordNotFound = errors.New("identity record not found")
)

// Minimum input thresholds for a scan to have anything to work with.
const (
	minNameLen   = 3
	minEmailLen  = 3
	minPhoneDigs = 7
)

// Record represents what is known about one real or aliased person at a
// point in time.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Record struct {
	PrimaryName string   `json:"primary_name"`
	Aliases     []string `json:"aliases,omitempty"`

	// First element of each list is the primary contact value.
	Phones []string `json:"phones,omitempty"`
	Emails []string `json:"emails,omitempty"`

	RiskScore  int `json:"risk_score"`  // 0-100
	StarRating int `json:"star_rating"` // 1-5

	RiskScoreHistory  []int `json:"risk_score_history,omitempty"`
	StarRatingHistory []int `json:"star_rating_history,omitempty"`

	StylometryFlags  []string `json:"stylometry_flags,omitempty"`
	MatchedPlatforms []string `json:"matched_platforms,omitempty"`

	CriticFlag      bool `json:"critic_flag"`
	ConfidenceScore int  `json:"confidence_score"` // 0-100

	// ConflictNotes is a human-readable audit trail of merge decisions.
	ConflictNotes []string `json:"conflict_notes,omitempty"`
}

// NormalizeAlias produces the storage key for an alias: whitespace-trimmed,
// lower-cased, trailing periods stripped. Must stay stable across releases;
// persisted history is keyed on it.
func NormalizeAlias(alias string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(alias)), ".")
}

// HasMinimumInput reports whether at least one of name, email, or phone
// carries enough signal to start a scan. Phone length is counted in digits.
func HasMinimumInput(name, email, phone string) bool {
	if len(strings.TrimSpace(name)) >= minNameLen {
		return true
	}
	if len(strings.TrimSpace(email)) >= minEmailLen {
		return true
	}
	var digits int
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= minPhoneDigs
}

// Validate checks a record against the schema invariants. Records loaded
// from storage must pass Validate before they may be merged.
func (r *Record) Validate() error {
	if r.PrimaryName == "" {
		return fmt.Errorf("%w: empty primary name", ErrMalformedRecord)
	}
	if r.RiskScore < 0 || r.RiskScore > 100 {
		return fmt.Errorf("%w: risk score %d outside [0,100]", ErrMalformedRecord, r.RiskScore)
	}
	if r.StarRating < 1 || r.StarRating > 5 {
		return fmt.Errorf("%w: star rating %d outside [1,5]", ErrMalformedRecord, r.StarRating)
	}
	if r.ConfidenceScore < 0 || r.ConfidenceScore > 100 {
		return fmt.Errorf("%w: confidence %d outside [0,100]", ErrMalformedRecord, r.ConfidenceScore)
	}
	return nil
}

// PrimaryPhone returns the primary phone, or "" if none is known.
func (r *Record) PrimaryPhone() string {
	if len(r.Phones) == 0 {
		return ""
	}
	return r.Phones[0]
}

// PrimaryEmail returns the primary email, or "" if none is known.
func (r *Record) PrimaryEmail() string {
	if len(r.Emails) == 0 {
		return ""
	}
	return r.Emails[0]
}

// HasFlag reports whether a stylometry flag is present on the record.
func (r *Record) HasFlag(flag string) bool {
	for _, f := range r.StylometryFlags {
		if f == flag {
			return true
		}
	}
	return false
}

// Clone returns a deep copy. Merge logic works on copies so callers never
// see a half-merged record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	dup := *r
	dup.Aliases = append([]string(nil), r.Aliases...)
	dup.Phones = append([]string(nil), r.Phones...)
	dup.Emails = append([]string(nil), r.Emails...)
	dup.RiskScoreHistory = append([]int(nil), r.RiskScoreHistory...)
	dup.StarRatingHistory = append([]int(nil), r.StarRatingHistory...)
	dup.StylometryFlags = append([]string(nil), r.StylometryFlags...)
	dup.MatchedPlatforms = append([]string(nil), r.MatchedPlatforms...)
	dup.ConflictNotes = append([]string(nil), r.ConflictNotes...)
	return &dup
}

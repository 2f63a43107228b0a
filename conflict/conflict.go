// Package conflict merges two identity records describing the same person.
//
// Merge rules are deliberately pessimistic: the worst risk wins, the lowest
// star rating wins, flags and platforms accumulate, and a critic flag never
// clears. Repeated scans can only refine a record, never launder it.
package conflict

import (
	"fmt"
	"strings"

	"github.com/ConTROLLAPP/controll/identity"
)

// Confidence boost applied when a merge surfaces multiple corroborating
// contact values for the same person.
const corroborationBoost = 10

// Resolve merges incoming into existing and returns the merged record. Both
// inputs are left untouched. Resolve is idempotent (merging a record with
// itself changes nothing) and commutative for the risk, star, flag, and
// platform fields; only the phone/email ordering depends on argument order.
func Resolve(existing, incoming *identity.Record) *identity.Record {
	merged := existing.Clone()

	merged.Aliases = unionStrings(existing.Aliases, incoming.Aliases)

	merged.Phones = unionStrings(existing.Phones, incoming.Phones)
	if len(merged.Phones) > 1 {
		merged.ConflictNotes = appendNote(merged.ConflictNotes,
			"multiple phone numbers on record: "+strings.Join(merged.Phones, ", "))
	}

	merged.Emails = unionStrings(existing.Emails, incoming.Emails)
	if len(merged.Emails) > 1 {
		merged.ConflictNotes = appendNote(merged.ConflictNotes,
			"multiple email addresses on record: "+strings.Join(merged.Emails, ", "))
	}

	if existing.RiskScore != incoming.RiskScore {
		merged.RiskScoreHistory = appendMissing(merged.RiskScoreHistory, existing.RiskScore, incoming.RiskScore)
		merged.ConflictNotes = appendNote(merged.ConflictNotes,
			fmt.Sprintf("risk score conflict: %d vs %d, keeping %d",
				existing.RiskScore, incoming.RiskScore, max(existing.RiskScore, incoming.RiskScore)))
	}
	merged.RiskScore = max(existing.RiskScore, incoming.RiskScore)

	if existing.StarRating != incoming.StarRating {
		merged.StarRatingHistory = appendMissing(merged.StarRatingHistory, existing.StarRating, incoming.StarRating)
		merged.ConflictNotes = appendNote(merged.ConflictNotes,
			fmt.Sprintf("star rating conflict: %d vs %d, keeping %d",
				existing.StarRating, incoming.StarRating, min(existing.StarRating, incoming.StarRating)))
	}
	merged.StarRating = min(existing.StarRating, incoming.StarRating)

	merged.StylometryFlags = unionStrings(existing.StylometryFlags, incoming.StylometryFlags)
	merged.MatchedPlatforms = unionStrings(existing.MatchedPlatforms, incoming.MatchedPlatforms)

	merged.CriticFlag = existing.CriticFlag || incoming.CriticFlag

	merged.ConfidenceScore = max(existing.ConfidenceScore, incoming.ConfidenceScore)
	if len(merged.Phones) > 1 || len(merged.Emails) > 1 {
		merged.ConfidenceScore = min(merged.ConfidenceScore+corroborationBoost, 100)
	}

	return merged
}

// unionStrings merges b into a, preserving a's order, appending unseen
// values from b in their own order.
func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, lst := range [2][]string{a, b} {
		for _, v := range lst {
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// appendMissing appends each value not already present in history.
func appendMissing(history []int, values ...int) []int {
	for _, v := range values {
		found := false
		for _, h := range history {
			if h == v {
				found = true
				break
			}
		}
		if !found {
			history = append(history, v)
		}
	}
	return history
}

// appendNote appends a note unless the identical note is already recorded.
// Keeps repeated merges from flooding the audit trail.
func appendNote(notes []string, note string) []string {
	for _, n := range notes {
		if n == note {
			return notes
		}
	}
	return append(notes, note)
}

// Package engine maps discovery signals to a risk score and star rating.
//
// Evaluate is a pure function: no I/O, no randomness, identical output for
// identical input. All numeric inputs are clamped rather than rejected.
package engine

import (
	"reflect"
	"strings"
)

// Risk contributions per signal band.
const (
	riskLowConfidence    = 20
	riskMediumConfidence = 10
	riskConfirmedCritic  = 40
	riskPossibleCritic   = 20
	riskManyPlatforms    = 20
	riskSomePlatforms    = 10
	riskFewPlatforms     = 5
	riskAggression       = 20
	riskToneFlag         = 10
	riskHighVolume       = 10

	maxRisk = 100
)

// Input holds the normalized signal counts for one evaluation. Use Tally to
// convert collections to counts before filling this in, or call Signals.Eval
// which does it for you.
type Input struct {
	Confidence      int
	PlatformHits    int
	StylometryFlags int
	WritingSamples  int
	IsCritic        bool
	IsWeakCritic    bool
}

// Result is the outcome of one evaluation.
type Result struct {
	Risk   int    // 0-100
	Stars  int    // 1-5, derived from Risk via StarsForRisk
	Reason string // comma-joined labels of the bands that fired
}

// Signals is the loosely-typed form accepted at API boundaries: the count
// fields may hold an int, a slice, a map, or nil. Upstream callers pass both
// raw counts and collections, so both must work.
type Signals struct {
	Confidence      int
	PlatformHits    any
	StylometryFlags any
	WritingSamples  any
	IsCritic        bool
	IsWeakCritic    bool
}

// Eval normalizes the signal collections to counts and evaluates them.
func (s Signals) Eval() Result {
	return Evaluate(Input{
		Confidence:      s.Confidence,
		PlatformHits:    Tally(s.PlatformHits),
		StylometryFlags: Tally(s.StylometryFlags),
		WritingSamples:  Tally(s.WritingSamples),
		IsCritic:        s.IsCritic,
		IsWeakCritic:    s.IsWeakCritic,
	})
}

// Tally converts a scalar-or-collection value to a count: collections yield
// their element count, nil yields 0, integers of any width pass through
// (negatives clamp to 0). Anything else counts as 0.
func Tally(v any) int {
	switch val := v.(type) {
	case nil:
		return 0
	case int:
		return max(val, 0)
	case []string:
		return len(val)
	case []any:
		return len(val)
	case map[string]struct{}:
		return len(val)
	case map[string]bool:
		return len(val)
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map:
			return rv.Len()
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return max(int(rv.Int()), 0)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return max(int(rv.Uint()), 0)
		default:
			return 0
		}
	}
}

// Evaluate assigns a risk score and star rating from search findings.
// Reason labels fire in a fixed order: confidence, critic, platform,
// stylometry, writing volume. The confidence label always fires.
func Evaluate(in Input) Result {
	risk := 0
	var reason []string

	switch {
	case in.Confidence < 30:
		risk += riskLowConfidence
		reason = append(reason, "Low confidence")
	case in.Confidence < 70:
		risk += riskMediumConfidence
		reason = append(reason, "Medium confidence")
	default:
		reason = append(reason, "High confidence")
	}

	switch {
	case in.IsCritic:
		risk += riskConfirmedCritic
		reason = append(reason, "Confirmed critic")
	case in.IsWeakCritic:
		risk += riskPossibleCritic
		reason = append(reason, "Possible critic")
	}

	switch hits := max(in.PlatformHits, 0); {
	case hits >= 5:
		risk += riskManyPlatforms
		reason = append(reason, "Found on 5+ platforms")
	case hits >= 3:
		risk += riskSomePlatforms
		reason = append(reason, "Found on 3–4 platforms")
	case hits >= 1:
		risk += riskFewPlatforms
		reason = append(reason, "Found on 1–2 platforms")
	}

	switch flags := max(in.StylometryFlags, 0); {
	case flags >= 2:
		risk += riskAggression
		reason = append(reason, "Stylometric aggression detected")
	case flags == 1:
		risk += riskToneFlag
		reason = append(reason, "Tone flag detected")
	}

	if in.WritingSamples >= 10 {
		risk += riskHighVolume
		reason = append(reason, "High writing volume")
	}

	risk = min(risk, maxRisk)

	return Result{
		Risk:   risk,
		Stars:  StarsForRisk(risk),
		Reason: strings.Join(reason, ", "),
	}
}

// StarsForRisk maps a clamped risk score to a star rating. The five bands
// are total and non-overlapping; risk and stars move in opposite directions.
func StarsForRisk(risk int) int {
	switch {
	case risk >= 85:
		return 1
	case risk >= 60:
		return 2
	case risk >= 40:
		return 3
	case risk >= 20:
		return 4
	default:
		return 5
	}
}

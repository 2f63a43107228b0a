// Package review scores individual review texts for tone and risk.
package review

import (
	"fmt"
	"strings"
)

// Word vocabularies for tone counting. Presence per keyword counts once;
// frequency does not matter.
var (
	positiveWords = []string{
		"great", "excellent", "wonderful", "amazing", "fantastic", "love", "perfect", "best",
	}
	negativeWords = []string{
		"terrible", "awful", "worst", "horrible", "disgusting", "never again", "waste", "inedible",
	}
	concernWords = []string{
		"but", "however", "unfortunately", "disappointed",
	}
)

// Trigger phrases associated with habitual negative reviewers. A single hit
// adds a flat risk boost; two or more distinct hits add a second boost.
var triggerPhrases = []string{
	"i really wanted to like this place but",
	"i usually don't write bad reviews but",
	"me thinks not",
	"hard pass",
	"i heard great things about this place but",
	"overhyped",
	"used to be good",
	"won't be coming back",
	"save your money",
	"service was non-existent",
	"not worth the hype",
	"i won't be back",
	"overpriced and underwhelming",
	"should have listened",
	"service was terrible",
	"waited over an hour",
	"cold and greasy",
	"not as advertised",
	"wouldn't recommend",
	"do yourself a favor",
}

// Terms that mark a text as scrape garbage rather than a review: adult-ad
// spam, SQL error pages, contact-card boilerplate.
var garbageTerms = []string{
	"escort",
	"call girls",
	"adult dating",
	"hot singles",
	"xxx",
	"viagra",
	"casino bonus",
	"crypto investment",
	"loan approval",
	"sql syntax",
	"mysql error",
	"database error",
	"mysqli",
	"undefined index",
	"click here to unsubscribe",
	"add to contacts",
	"vcard",
}

const (
	minReviewLen       = 40
	negativeWeight     = 20
	concernWeight      = 10
	positiveWeight     = 5
	triggerBoost       = 15
	multiTriggerBoost  = 10
	multiTriggerNeeded = 2
)

// Analysis is the outcome of scoring one review text.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Analysis struct {
	Tone               string   `json:"tone"` // "Positive", "Negative", or "Neutral"
	RiskScore          int      `json:"risk_score"`
	NegativeIndicators int      `json:"negative_indicators"`
	PositiveIndicators int      `json:"positive_indicators"`
	ConcernIndicators  int      `json:"concern_indicators"`
	StylometricTrigger bool     `json:"stylometric_trigger"`
	TriggersFound      []string `json:"stylometric_triggers_found,omitempty"`

	// Handle is set by AnalyzeBlock when the text carried an author handle.
	Handle       string `json:"handle,omitempty"`
	OriginalText string `json:"original_text,omitempty"`
}

// AnalyzeText scores a review for tone, risk indicators, and trigger
// phrases.
func AnalyzeText(text string) Analysis {
	lowered := strings.ToLower(text)

	positive := countPresent(lowered, positiveWords)
	negative := countPresent(lowered, negativeWords)
	concern := countPresent(lowered, concernWords)

	risk := negative*negativeWeight + concern*concernWeight - positive*positiveWeight
	risk = min(max(risk, 0), 100)

	var triggers []string
	for _, phrase := range triggerPhrases {
		if strings.Contains(lowered, phrase) {
			triggers = append(triggers, phrase)
		}
	}

	if len(triggers) > 0 {
		risk = min(risk+triggerBoost, 100)
		if len(triggers) >= multiTriggerNeeded {
			risk = min(risk+multiTriggerBoost, 100)
		}
	}

	tone := "Neutral"
	switch {
	case negative > positive:
		tone = "Negative"
	case positive > negative:
		tone = "Positive"
	}

	return Analysis{
		Tone:               tone,
		RiskScore:          risk,
		NegativeIndicators: negative,
		PositiveIndicators: positive,
		ConcernIndicators:  concern,
		StylometricTrigger: len(triggers) > 0,
		TriggersFound:      triggers,
	}
}

// AnalyzeBlock parses "<handle>: <review text>" or "<handle>. <review text>"
// and scores the review part, tagging the result with the handle.
func AnalyzeBlock(block string) (Analysis, error) {
	for _, sep := range []string{": ", ". "} {
		handle, text, found := strings.Cut(block, sep)
		if !found {
			continue
		}
		a := AnalyzeText(text)
		a.Handle = strings.TrimSpace(handle)
		a.OriginalText = text
		return a, nil
	}
	return Analysis{}, fmt.Errorf("review block missing handle separator: %q", truncate(block, 40))
}

// AnalyzeLines scores each non-blank line of a multi-review block.
func AnalyzeLines(block string) []Analysis {
	var results []Analysis
	for _, line := range strings.Split(strings.TrimSpace(block), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		results = append(results, AnalyzeText(line))
	}
	return results
}

// IsValid reports whether text qualifies as a legitimate review sample:
// long enough, at least one sentence-terminal punctuation mark, and free of
// garbage-domain terms. Runs before stylometry and before a text counts as a
// writing sample.
func IsValid(text string) bool {
	lowered := strings.ToLower(text)
	for _, term := range garbageTerms {
		if strings.Contains(lowered, term) {
			return false
		}
	}
	if len(text) < minReviewLen {
		return false
	}
	return strings.ContainsAny(text, ".!?")
}

func countPresent(lowered string, vocab []string) int {
	n := 0
	for _, word := range vocab {
		if strings.Contains(lowered, word) {
			n++
		}
	}
	return n
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

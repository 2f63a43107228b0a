// Package stylometry scans writing samples for hostile authorial voice.
//
// The classifier is pure substring matching over fixed phrase vocabularies.
// Presence per category is all that matters; the first hit in a category
// settles it and counts beyond the first carry no extra weight.
package stylometry

import (
	"strings"

	"github.com/ConTROLLAPP/controll/review"
)

// Categorical tone flags emitted by Analyze.
const (
	FlagAggressiveTone   = "aggressive_tone"
	FlagTrollIndicators  = "troll_indicators"
	FlagExtremeSentiment = "extreme_sentiment"
)

var aggressivePhrases = []string{
	"absolutely disgusting",
	"worst experience",
	"worst service",
	"never again",
	"rude",
	"unprofessional",
	"scam",
	"zero stars",
	"appalling",
	"pathetic",
	"incompetent",
	"horrendous",
	"a disgrace",
	"avoid at all costs",
	"insulting",
}

var trollPhrases = []string{
	"called my lawyer",
	"filed a complaint",
	"scammy",
	"stay away",
	"ripoff",
	"rip-off",
	"fraud",
	"lawsuit",
	"better business bureau",
	"health department",
	"demand a refund",
	"shut this place down",
	"do not give them your money",
}

// Analyze gates the samples through the valid-review filter, then scans the
// surviving text for aggressive and troll phrase hits. Returns the set of
// tone flags found; an empty result is a normal outcome.
func Analyze(samples []string) []string {
	var kept []string
	for _, s := range samples {
		if review.IsValid(s) {
			kept = append(kept, strings.ToLower(s))
		}
	}
	if len(kept) == 0 {
		return nil
	}

	combined := strings.Join(kept, " ")

	var flags []string
	if anyPhrase(combined, aggressivePhrases) {
		flags = append(flags, FlagAggressiveTone)
	}
	if anyPhrase(combined, trollPhrases) {
		flags = append(flags, FlagTrollIndicators)
	}
	if len(flags) == 2 {
		flags = append(flags, FlagExtremeSentiment)
	}
	return flags
}

// LiteraryScore counts matches against a vocabulary of ornate, literary
// phrasing. Reviewers with a writerly voice across aliases tend to reuse
// these; the score feeds weak-critic detection.
func LiteraryScore(text string) (int, []string) {
	lowered := strings.ToLower(text)
	var matched []string
	for _, phrase := range literaryPhrases {
		if strings.Contains(lowered, phrase) {
			matched = append(matched, phrase)
		}
	}
	return len(matched), matched
}

var literaryPhrases = []string{
	"like a serpent",
	"coiled",
	"in the dust",
	"betrayal",
	"promise held",
	"lay before me",
	"the light failed",
	"nothingness",
	"rubble",
	"fate",
	"abyss",
	"metaphor",
	"dusk",
	"withered",
	"unforgiving",
	"ashen",
	"echoed",
	"forgotten",
	"godless",
	"tumbled",
	"scorched",
	"mythic",
	"language held weight",
	"the silence stretched",
	"as if",
}

func anyPhrase(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

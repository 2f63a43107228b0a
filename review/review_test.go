package review

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAnalyzeText(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantTone  string
		wantRisk  int
		wantNeg   int
		wantPos   int
		wantConc  int
		wantTrig  bool
		wantFound int
	}{
		{
			name:     "glowing review",
			text:     "Great food, excellent service, we love this place. Simply the best!",
			wantTone: "Positive",
			wantRisk: 0,
			wantPos:  4,
		},
		{
			name:     "hostile review",
			text:     "Terrible. The worst, most horrible experience. Awful.",
			wantTone: "Negative",
			wantRisk: 80,
			wantNeg:  4,
		},
		{
			name:     "neutral text",
			text:     "We came on a Tuesday and ordered the pasta.",
			wantTone: "Neutral",
			wantRisk: 0,
		},
		{
			name:      "single trigger phrase",
			text:      "Honestly kind of overhyped if you ask me.",
			wantTone:  "Neutral",
			wantRisk:  15,
			wantTrig:  true,
			wantFound: 1,
		},
		{
			name:      "multiple trigger phrases stack",
			text:      "I usually don't write bad reviews but this was overhyped. Hard pass.",
			wantTone:  "Neutral",
			wantRisk:  10 + 15 + 10, // one concern word plus the stacked trigger boosts
			wantConc:  1,
			wantTrig:  true,
			wantFound: 3,
		},
		{
			name:     "concern words add risk",
			text:     "The food was great but unfortunately we were disappointed by the wait.",
			wantTone: "Positive",
			wantRisk: 30 - 5, // 3 concern words minus 1 positive
			wantPos:  1,
			wantConc: 3,
		},
		{
			name:      "risk clamps at 100",
			text:      "Terrible awful worst horrible disgusting waste, never again. Overhyped. Hard pass. Save your money.",
			wantTone:  "Negative",
			wantRisk:  100,
			wantNeg:   7,
			wantConc:  0,
			wantTrig:  true,
			wantFound: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeText(tt.text)
			if got.Tone != tt.wantTone {
				t.Errorf("Tone = %q, want %q", got.Tone, tt.wantTone)
			}
			if got.RiskScore != tt.wantRisk {
				t.Errorf("RiskScore = %d, want %d", got.RiskScore, tt.wantRisk)
			}
			if got.NegativeIndicators != tt.wantNeg {
				t.Errorf("NegativeIndicators = %d, want %d", got.NegativeIndicators, tt.wantNeg)
			}
			if got.PositiveIndicators != tt.wantPos {
				t.Errorf("PositiveIndicators = %d, want %d", got.PositiveIndicators, tt.wantPos)
			}
			if got.ConcernIndicators != tt.wantConc {
				t.Errorf("ConcernIndicators = %d, want %d", got.ConcernIndicators, tt.wantConc)
			}
			if got.StylometricTrigger != tt.wantTrig {
				t.Errorf("StylometricTrigger = %v, want %v", got.StylometricTrigger, tt.wantTrig)
			}
			if len(got.TriggersFound) != tt.wantFound {
				t.Errorf("TriggersFound = %v, want %d entries", got.TriggersFound, tt.wantFound)
			}
		})
	}
}

func TestAnalyzeBlock(t *testing.T) {
	got, err := AnalyzeBlock("SethD: Me thinks not. Overcooked scallops and the worst service.")
	if err != nil {
		t.Fatalf("AnalyzeBlock() error = %v", err)
	}
	if got.Handle != "SethD" {
		t.Errorf("Handle = %q, want %q", got.Handle, "SethD")
	}
	if !got.StylometricTrigger {
		t.Error("expected stylometric trigger for 'me thinks not'")
	}
	if got.Tone != "Negative" {
		t.Errorf("Tone = %q, want Negative", got.Tone)
	}

	if _, err := AnalyzeBlock("no separator here"); err == nil {
		t.Error("AnalyzeBlock() without separator should error")
	}
}

func TestAnalyzeLines(t *testing.T) {
	block := "Great spot, love it!\n\nTerrible experience, never again.\n"
	got := AnalyzeLines(block)
	if len(got) != 2 {
		t.Fatalf("AnalyzeLines() returned %d results, want 2", len(got))
	}
	want := []string{"Positive", "Negative"}
	tones := []string{got[0].Tone, got[1].Tone}
	if diff := cmp.Diff(want, tones); diff != "" {
		t.Errorf("tones mismatch (-want +got):\n%s", diff)
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			name: "normal review",
			text: "The tasting menu was inventive and the staff friendly throughout the night.",
			want: true,
		},
		{
			name: "too short",
			text: "Good food. Liked it.",
			want: false,
		},
		{
			name: "no sentence punctuation",
			text: "good food nice ambiance will come back again soon with my whole family",
			want: false,
		},
		{
			name: "garbage indicator beats length",
			text: "escort services available, call now",
			want: false,
		},
		{
			name: "sql error page",
			text: "You have an error in your SQL syntax; check the manual that corresponds to your server version.",
			want: false,
		},
		{
			name: "long garbage still rejected",
			text: "Hot singles in your area are waiting to meet you tonight. Click now for more!",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.text); got != tt.want {
				t.Errorf("IsValid(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

package identity

import (
	"errors"
	"testing"
)

func TestNormalizeAlias(t *testing.T) {
	tests := []struct {
		name  string
		alias string
		want  string
	}{
		{"already normal", "seth d", "seth d"},
		{"mixed case", "Seth D.", "seth d"},
		{"surrounding whitespace", "  Jane Smith \t", "jane smith"},
		{"multiple trailing periods", "J. R. Jr..", "j. r. jr"},
		{"empty", "", ""},
		{"only periods", "...", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeAlias(tt.alias); got != tt.want {
				t.Errorf("NormalizeAlias(%q) = %q, want %q", tt.alias, got, tt.want)
			}
		})
	}
}

func TestHasMinimumInput(t *testing.T) {
	tests := []struct {
		name  string
		guest string
		email string
		phone string
		want  bool
	}{
		{"all empty", "", "", "", false},
		{"short name only", "Jo", "", "", false},
		{"name long enough", "Joe", "", "", true},
		{"email long enough", "", "a@b", "", true},
		{"phone too short", "", "", "555-12", false},
		{"phone seven digits", "", "", "555-1234", true},
		{"formatted phone", "", "", "(917) 450-5555", true},
		{"whitespace name", "   ", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasMinimumInput(tt.guest, tt.email, tt.phone); got != tt.want {
				t.Errorf("HasMinimumInput(%q, %q, %q) = %v, want %v",
					tt.guest, tt.email, tt.phone, got, tt.want)
			}
		})
	}
}

func TestRecordValidate(t *testing.T) {
	valid := Record{PrimaryName: "Seth D", RiskScore: 40, StarRating: 3, ConfidenceScore: 75}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() on valid record = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Record)
	}{
		{"empty name", func(r *Record) { r.PrimaryName = "" }},
		{"risk too high", func(r *Record) { r.RiskScore = 120 }},
		{"risk negative", func(r *Record) { r.RiskScore = -1 }},
		{"zero stars", func(r *Record) { r.StarRating = 0 }},
		{"six stars", func(r *Record) { r.StarRating = 6 }},
		{"confidence overflow", func(r *Record) { r.ConfidenceScore = 150 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			err := r.Validate()
			if !errors.Is(err, ErrMalformedRecord) {
				t.Errorf("Validate() = %v, want ErrMalformedRecord", err)
			}
		})
	}
}

func TestRecordClone(t *testing.T) {
	orig := &Record{
		PrimaryName:     "Seth D",
		Phones:          []string{"5551234567"},
		StylometryFlags: []string{"aggressive_tone"},
		RiskScore:       40,
		StarRating:      3,
	}

	dup := orig.Clone()
	dup.Phones[0] = "changed"
	dup.StylometryFlags = append(dup.StylometryFlags, "troll_indicators")

	if orig.Phones[0] != "5551234567" {
		t.Error("Clone() shares phone backing array with original")
	}
	if len(orig.StylometryFlags) != 1 {
		t.Error("Clone() shares stylometry flags with original")
	}
}

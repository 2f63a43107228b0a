package scan

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	urlPattern   = regexp.MustCompile(`https?://[^\s<>"']+[^\s<>"'.,;!?]`)

	// Phone forms seen in snippets and scraped pages. Matches normalize to
	// bare digits; only 10-digit US numbers are kept.
	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`),
		regexp.MustCompile(`\(\d{3}\)\s*\d{3}[-.]?\d{4}`),
		regexp.MustCompile(`\b\d{10}\b`),
	}

	nonDigit = regexp.MustCompile(`[^\d]`)
)

// NormalizePhone strips formatting from a phone number, leaving bare digits.
// Stored records only ever hold phones in this form.
func NormalizePhone(phone string) string {
	return nonDigit.ReplaceAllString(phone, "")
}

// Clues is the identity material pulled out of one blob of text.
type Clues struct {
	Emails []string
	Phones []string
	URLs   []string
}

// ExtractClues pulls candidate emails, phones, and URLs from text. Emails
// are lower-cased; phones are normalized to 10 bare digits. Junk filtering
// happens later, at attachment time.
func ExtractClues(text string) Clues {
	var c Clues

	for _, m := range emailPattern.FindAllString(text, -1) {
		c.Emails = appendUnique(c.Emails, strings.ToLower(m))
	}

	for _, p := range phonePatterns {
		for _, m := range p.FindAllString(text, -1) {
			digits := NormalizePhone(m)
			if len(digits) == 10 {
				c.Phones = appendUnique(c.Phones, digits)
			}
		}
	}

	for _, m := range urlPattern.FindAllString(text, -1) {
		c.URLs = appendUnique(c.URLs, m)
	}

	return c
}

func appendUnique(list []string, v string) []string {
	for _, item := range list {
		if item == v {
			return list
		}
	}
	return append(list, v)
}

// Package junk classifies discovered contact artifacts as placeholder noise.
//
// Search snippets and scraped pages are full of info@ addresses, sample phone
// numbers, and SEO filler. None of that is evidence of a real individual, so
// this gate runs before any artifact is attached to an identity record or
// counted toward confidence.
package junk

import "strings"

// Exact-match placeholder addresses seen repeatedly in scrape output.
var junkEmails = map[string]bool{
	"email@example.com":              true,
	"user@example.com":               true,
	"name@example.com":               true,
	"test@test.com":                  true,
	"test@example.com":               true,
	"example@example.com":            true,
	"noreply@example.com":            true,
	"no-reply@example.com":           true,
	"someone@example.com":            true,
	"your@email.com":                 true,
	"youremail@example.com":          true,
	"john.doe@example.com":           true,
	"jane.doe@example.com":           true,
	"firstname.lastname@example.com": true,
}

// Generic business mailbox prefixes. A hit on one of these means the address
// identifies an organization, not a reviewer.
var genericLocalParts = []string{
	"info@",
	"contact@",
	"support@",
	"admin@",
	"webmaster@",
	"sales@",
	"marketing@",
}

// Exact-match placeholder phone numbers.
var junkPhones = map[string]bool{
	"0000000000": true,
	"1111111111": true,
	"2222222222": true,
	"3333333333": true,
	"4444444444": true,
	"5555555555": true,
	"6666666666": true,
	"7777777777": true,
	"8888888888": true,
	"9999999999": true,
	"1234567890": true,
	"0123456789": true,
	"5555555": true,
	"1234567": true,
}

// Email reports whether an email address is a placeholder or generic
// business mailbox.
func Email(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	if junkEmails[email] {
		return true
	}
	for _, prefix := range genericLocalParts {
		if strings.HasPrefix(email, prefix) {
			return true
		}
	}
	return false
}

// Phone reports whether a phone number is a known placeholder. The number is
// compared digits-only so formatting does not matter.
func Phone(phone string) bool {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if d == "" {
		return false
	}
	return junkPhones[d] || allSameDigit(d)
}

// Identity reports whether a discovered (email, phone) pair is junk and must
// be discarded. Either argument may be empty; an empty pair is not junk, it
// is simply nothing.
func Identity(email, phone string) bool {
	if email == "" && phone == "" {
		return false
	}
	if email != "" && !Email(email) {
		return false
	}
	if phone != "" && !Phone(phone) {
		return false
	}
	return true
}

func allSameDigit(digits string) bool {
	if len(digits) < 7 {
		return false
	}
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}

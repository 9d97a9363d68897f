package contacts

import (
	"regexp"
	"strings"
)

// emailPattern matches local@domain.tld shapes in lower-cased content.
var emailPattern = regexp.MustCompile(`\b[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}\b`)

// phonePattern matches Spanish mobile and landline numbers with an optional
// +34 / 0034 prefix.
var phonePattern = regexp.MustCompile(`(?:\+34|0034)?\s*[6-9][0-9]{8}`)

// Extraction holds the validator-accepted contact signals found on one page.
// Both slices are de-duplicated and preserve first-seen order.
type Extraction struct {
	Emails []string
	Phones []string
}

// Extract scans rendered page content for contact signals. Emails are matched
// case-insensitively and filtered through IsValidEmail; phones are normalized
// to +34 form but not validated further. The input is never mutated and an
// empty result is a normal outcome.
func Extract(content string) Extraction {
	lowered := strings.ToLower(content)

	var result Extraction
	seenEmails := make(map[string]struct{})
	for _, candidate := range emailPattern.FindAllString(lowered, -1) {
		if !IsValidEmail(candidate) {
			continue
		}
		if _, dup := seenEmails[candidate]; dup {
			continue
		}
		seenEmails[candidate] = struct{}{}
		result.Emails = append(result.Emails, candidate)
	}

	seenPhones := make(map[string]struct{})
	for _, candidate := range phonePattern.FindAllString(content, -1) {
		phone := NormalizePhone(candidate)
		if _, dup := seenPhones[phone]; dup {
			continue
		}
		seenPhones[phone] = struct{}{}
		result.Phones = append(result.Phones, phone)
	}
	return result
}

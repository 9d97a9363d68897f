package contacts

import "strings"

var phoneSeparators = strings.NewReplacer(" ", "", "\t", "", "\n", "", "-", "", "(", "", ")", "")

// NormalizePhone rewrites a raw phone candidate to canonical +34 form. It
// strips whitespace, hyphens, and parentheses, then rewrites 0034- and bare
// 34-prefixed numbers and prefixes bare 9-digit numbers with +34. Anything
// else (including numbers already in +34 form) is returned unchanged, so the
// function is idempotent. No validation happens beyond shape.
func NormalizePhone(raw string) string {
	if raw == "" {
		return ""
	}
	clean := phoneSeparators.Replace(raw)
	switch {
	case strings.HasPrefix(clean, "0034"):
		return "+34" + clean[4:]
	case strings.HasPrefix(clean, "34") && len(clean) >= 11:
		return "+34" + clean[2:]
	case !strings.HasPrefix(clean, "+34") && len(clean) == 9:
		return "+34" + clean
	}
	return clean
}

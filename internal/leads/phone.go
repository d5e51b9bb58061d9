package leads

import (
	"strings"
	"unicode"
)

// NormalizePhone removes all whitespace and guarantees a single leading +.
// Applying it twice yields the same string.
func NormalizePhone(value string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, value)
	if stripped == "" {
		return ""
	}
	if strings.HasPrefix(stripped, "+") {
		return stripped
	}
	return "+" + stripped
}

// Package strcase converts identifier casings.
package strcase

import (
	"strings"
	"unicode"
)

// ToLowerSnake converts a string to snake_case. Acronyms are kept together:
// userID becomes user_id and HTTPServer becomes http_server.
func ToLowerSnake(s string) string {
	if s == "" {
		return ""
	}

	runes := []rune(s)

	var b strings.Builder
	b.Grow(len(s) + 4)

	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

			// Boundary: lower/digit before upper, or end of an acronym.
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteRune('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}

// Package textutil holds small string helpers for commit metadata.
package textutil

import (
	"strings"
	"unicode/utf8"
)

// ShortIDLength is the abbreviated commit id length used in human output.
const ShortIDLength = 7

// FirstLine returns s up to, not including, the first newline.
func FirstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// ShortID abbreviates a commit id for display.
func ShortID(id string) string {
	if len(id) <= ShortIDLength {
		return id
	}
	return id[:ShortIDLength]
}

// Truncate shortens s to at most max runes, marking the cut with an ellipsis.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	if maxRunes == 1 {
		return "…"
	}
	return strings.TrimSpace(string(runes[:maxRunes-1])) + "…"
}

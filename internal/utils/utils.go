package utils

import "strings"

const Ellipsis = "..."

// Truncate shortens s to at most limit runes, appending an ellipsis when something
// was cut. Surrounding whitespace is trimmed first.
func Truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimRight(string(runes[:limit]), " ") + Ellipsis
}

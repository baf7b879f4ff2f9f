package normalize

import "strings"

// Email returns a normalized form of an email address suitable for
// storage and comparisons. Normalization currently trims surrounding
// whitespace and lower-cases the address.
func Email(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// Text trims surrounding whitespace from free-form form input.
func Text(s string) string {
	return strings.TrimSpace(s)
}

// Blank reports whether s is empty or whitespace-only.
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

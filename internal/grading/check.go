// Package grading compares submitted answers with stored ones.
package grading

import "strings"

// normalize folds case and trims surrounding whitespace. Interior spacing and
// punctuation are kept as typed.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Check reports whether submitted matches correct after normalization.
// An absent answer arrives as "" and is compared like any other.
func Check(submitted, correct string) bool {
	return normalize(submitted) == normalize(correct)
}

// Key is the normalized form used to dedupe answer options.
func Key(s string) string { return normalize(s) }

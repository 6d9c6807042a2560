// Package randid generates short random identifiers for log correlation.
// They are not unique across processes and must not be stored.
package randid

import "math/rand/v2"

// Alphabet is the set of characters identifiers are drawn from.
const Alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// DefaultLength is the length used by New.
const DefaultLength = 6

// Generate creates a random alphanumeric ID of the specified length.
func Generate(length int) string {
	if length <= 0 {
		return ""
	}
	b := make([]byte, length)
	for i := range b {
		b[i] = Alphabet[rand.IntN(len(Alphabet))]
	}
	return string(b)
}

// New creates a random ID of DefaultLength.
func New() string {
	return Generate(DefaultLength)
}

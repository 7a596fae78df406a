// Package randid generates short random identifiers used to correlate log
// lines for a single request.
package randid

import "math/rand/v2"

const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Generate creates a random alphanumeric ID of the specified length.
func Generate(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return string(b)
}

// Request returns a new request ID such as "req-3k9x0a1b2c".
func Request() string {
	return "req-" + Generate(10)
}

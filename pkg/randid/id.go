// Package randid generates short random identifiers.
package randid

import "crypto/rand"

const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Generate returns a random lowercase alphanumeric string of the given length.
func Generate(length int) string {
	if length <= 0 {
		return ""
	}

	buf := make([]byte, length)
	_, _ = rand.Read(buf)

	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}

	return string(buf)
}

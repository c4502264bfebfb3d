// Package token issues the single-use confirmation tokens embedded in
// subscription confirmation links.
package token

import (
	"crypto/rand"
)

const (
	// Length is the fixed token length. 25 alphanumeric characters give
	// ~148 bits of entropy, far beyond guessability.
	Length = 25

	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// Generate returns a Length-character token drawn uniformly from
// [A-Za-z0-9] using crypto/rand. The value carries no information about
// the subscriber or the submission time.
func Generate() string {
	out := make([]byte, 0, Length)
	buf := make([]byte, 32)
	for len(out) < Length {
		// crypto/rand.Read never returns an error on supported platforms.
		rand.Read(buf)
		for _, b := range buf {
			// Rejection sampling: 62*4 = 248, so bytes 248..255 would
			// bias the low end of the alphabet if mapped by modulo.
			if b >= 248 {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == Length {
				break
			}
		}
	}
	return string(out)
}

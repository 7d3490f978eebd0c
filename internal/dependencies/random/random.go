// Package random provides injectable randomness for verification-code
// generation.
package random

import (
	"crypto/rand"
	"math/big"
)

// Random is the source of randomness behind code generation; mock it in
// tests to pin the generated codes.
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int

	// String draws a string of the given length from the alphabet.
	// Empty means the inputs were unusable, never a valid code.
	String(length int, alphabet string) string
}

// CryptoRandom implements Random on crypto/rand. Codes are a possession
// credential, so they must not come from a seedable generator.
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Intn returns a uniformly random int in [0, n)
func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// String draws each character independently from the alphabet
func (r *CryptoRandom) String(length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	out := make([]byte, length)
	for i := range out {
		out[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(out)
}

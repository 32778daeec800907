// Package pkce generates the code verifier and S256 challenge for the
// OAuth authorization-code flow with proof key for code exchange (RFC 7636).
package pkce

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/oauth2"
)

// Alphabet is the character set verifiers are drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// VerifierLength is the number of characters in a generated verifier (the RFC maximum).
const VerifierLength = 128

// Method is the challenge method sent with the authorization request.
const Method = "S256"

// Pair is a verifier and the challenge derived from it.
type Pair struct {
	Verifier  string
	Challenge string
}

// Generator produces [Pair] values from a source of random bytes.
type Generator struct {
	random io.Reader
}

// NewGenerator returns a Generator reading from r. A nil reader uses [crypto/rand.Reader].
func NewGenerator(r io.Reader) *Generator {
	if r == nil {
		r = rand.Reader
	}
	return &Generator{random: r}
}

// Generate returns a fresh verifier and its challenge.
func (g *Generator) Generate() (Pair, error) {
	buf := make([]byte, VerifierLength)
	if _, err := io.ReadFull(g.random, buf); err != nil {
		return Pair{}, fmt.Errorf("failed to read random bytes: %w", err)
	}

	// Modulo 62 biases slightly toward the first 8 characters (~5.95 bits each).
	for i, b := range buf {
		buf[i] = Alphabet[int(b)%len(Alphabet)]
	}

	verifier := string(buf)
	return Pair{Verifier: verifier, Challenge: Challenge(verifier)}, nil
}

// Generate returns a Pair using [crypto/rand.Reader].
func Generate() (Pair, error) {
	return NewGenerator(nil).Generate()
}

// Challenge returns base64url(sha256(verifier)) without padding.
func Challenge(verifier string) string {
	return oauth2.S256ChallengeFromVerifier(verifier)
}

package otp

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// DefaultLength is the code length used when none is configured.
const DefaultLength = 6

// Digits is the alphabet for numeric codes.
const Digits = "0123456789"

// Generator produces random codes from a fixed alphabet.
type Generator struct {
	length   int
	alphabet string
	max      *big.Int
}

// NewGenerator returns a numeric code generator of the given length.
func NewGenerator(length int) *Generator {
	return NewGeneratorWithAlphabet(length, Digits)
}

// NewGeneratorWithAlphabet returns a generator drawing from alphabet.
// A non-positive length falls back to DefaultLength and an empty alphabet to Digits.
func NewGeneratorWithAlphabet(length int, alphabet string) *Generator {
	if length <= 0 {
		length = DefaultLength
	}
	if alphabet == "" {
		alphabet = Digits
	}

	return &Generator{
		length:   length,
		alphabet: alphabet,
		max:      big.NewInt(int64(len(alphabet))),
	}
}

// Length returns the number of characters in generated codes.
func (g *Generator) Length() int {
	return g.length
}

// Generate returns a uniformly random code read from crypto/rand.
func (g *Generator) Generate() (string, error) {
	var b strings.Builder
	b.Grow(g.length)

	for range g.length {
		n, err := rand.Int(rand.Reader, g.max)
		if err != nil {
			return "", err
		}
		b.WriteByte(g.alphabet[n.Int64()])
	}

	return b.String(), nil
}

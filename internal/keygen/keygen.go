// Package keygen produces random keys for encryption commands.
package keygen

import (
	"crypto/rand"
	"fmt"
	"io"
)

// Generator draws key material from a random source.
type Generator struct {
	src io.Reader
}

// New returns a Generator reading from the system CSPRNG.
func New() *Generator {
	return &Generator{src: rand.Reader}
}

// NewWithReader returns a Generator reading from src.
func NewWithReader(src io.Reader) *Generator {
	return &Generator{src: src}
}

// RandomBytes returns n random bytes, suitable as a one-time pad.
func (g *Generator) RandomBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("invalid key length %d", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(g.src, buf); err != nil {
		return nil, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return buf, nil
}

// letterCutoff is the largest multiple of 26 that fits in a byte; bytes at or
// above it are discarded so every letter is equally likely.
const letterCutoff = 256 - 256%26

// RandomLetters returns n uniformly random uppercase letters.
func (g *Generator) RandomLetters(n int) (string, error) {
	if n < 1 {
		return "", fmt.Errorf("invalid key length %d", n)
	}
	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		if _, err := io.ReadFull(g.src, buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= letterCutoff {
				continue
			}
			out = append(out, 'A'+b%26)
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}

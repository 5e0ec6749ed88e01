// Package caesar solves single-shift substitution ciphers by exhaustive search.
package caesar

import (
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/cryptology/internal/frequency"
)

// Shifts is the number of distinct Caesar shifts.
const Shifts = frequency.AlphabetSize

// Candidate is one decryption attempt.
type Candidate struct {
	Shift     int
	Plaintext string
	Score     float64
}

// Less orders candidates by score, then by shift.
func (c Candidate) Less(other Candidate) bool {
	if c.Score != other.Score {
		return c.Score < other.Score
	}
	return c.Shift < other.Shift
}

// DecryptWithShift rotates every ASCII letter back by shift positions.
// Case is preserved and other characters are copied unchanged.
func DecryptWithShift(text string, shift int) string {
	return rotate(text, -shift)
}

// EncryptWithShift rotates every ASCII letter forward by shift positions.
func EncryptWithShift(text string, shift int) string {
	return rotate(text, shift)
}

// ShiftByte rotates a single ASCII letter by delta; other bytes are returned as is.
func ShiftByte(c byte, delta int) byte {
	var base byte
	switch {
	case c >= 'a' && c <= 'z':
		base = 'a'
	case c >= 'A' && c <= 'Z':
		base = 'A'
	default:
		return c
	}
	d := delta % Shifts
	if d < 0 {
		d += Shifts
	}
	return base + byte((int(c-base)+d)%Shifts)
}

func rotate(text string, delta int) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		b.WriteByte(ShiftByte(text[i], delta))
	}
	return b.String()
}

// Candidates decrypts text under all 26 shifts concurrently and returns the
// scored results indexed by shift.
func Candidates(text string) []Candidate {
	out := make([]Candidate, Shifts)
	var g errgroup.Group
	for shift := 0; shift < Shifts; shift++ {
		g.Go(func() error {
			plain := DecryptWithShift(text, shift)
			out[shift] = Candidate{
				Shift:     shift,
				Plaintext: plain,
				Score:     frequency.Score(plain),
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Best folds candidates into the one with the lowest (score, shift).
func Best(candidates []Candidate) Candidate {
	if len(candidates) == 0 {
		return Candidate{}
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Less(best) {
			best = c
		}
	}
	return best
}

// FindBestShift returns the plaintext and shift whose letter distribution is
// closest to English. Ties go to the lowest shift.
func FindBestShift(text string) (string, int) {
	best := Best(Candidates(text))
	return best.Plaintext, best.Shift
}

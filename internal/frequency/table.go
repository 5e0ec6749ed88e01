// Package frequency provides letter frequency tables and chi-square scoring.
package frequency

import (
	"errors"
	"fmt"
	"sort"
)

// AlphabetSize is the number of letters in the reference alphabet.
const AlphabetSize = 26

// ErrInvalidTable is returned when a reference table does not cover exactly A-Z.
var ErrInvalidTable = errors.New("invalid frequency table")

// Table maps the 26 uppercase letters to their expected relative weight.
// A Table is immutable once built.
type Table struct {
	weights [AlphabetSize]float64
	scale   float64
}

var englishWeights = map[rune]float64{
	'E': 12359,
	'T': 8952,
	'A': 8050,
	'O': 7715,
	'N': 6958,
	'I': 6871,
	'H': 6502,
	'S': 6290,
	'R': 5746,
	'D': 4537,
	'L': 4030,
	'U': 2805,
	'M': 2591,
	'C': 2378,
	'W': 2354,
	'F': 2181,
	'Y': 2119,
	'G': 2042,
	'P': 1682,
	'B': 1494,
	'V': 1032,
	'K': 853,
	'X': 145,
	'J': 127,
	'Q': 99,
	'Z': 88,
}

// English is the reference table for ordinary English text.
var English = mustTable(englishWeights)

// NewTable builds a table from letter weights. Keys are case-insensitive and
// every letter A-Z must appear exactly once with a non-negative weight.
func NewTable(weights map[rune]float64) (*Table, error) {
	t := &Table{}
	var seen [AlphabetSize]bool
	for r, w := range weights {
		idx, ok := letterIndex(r)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a letter", ErrInvalidTable, r)
		}
		if seen[idx] {
			return nil, fmt.Errorf("%w: duplicate letter %q", ErrInvalidTable, rune('A'+idx))
		}
		if w < 0 {
			return nil, fmt.Errorf("%w: negative weight for %q", ErrInvalidTable, rune('A'+idx))
		}
		seen[idx] = true
		t.weights[idx] = w
		t.scale += w
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("%w: missing letter %q", ErrInvalidTable, rune('A'+i))
		}
	}
	if t.scale <= 0 {
		return nil, fmt.Errorf("%w: weights sum to zero", ErrInvalidTable)
	}
	return t, nil
}

func mustTable(weights map[rune]float64) *Table {
	t, err := NewTable(weights)
	if err != nil {
		panic(err)
	}
	return t
}

// Weight returns the raw weight for a letter, or 0 for non-letters.
func (t *Table) Weight(r rune) float64 {
	idx, ok := letterIndex(r)
	if !ok {
		return 0
	}
	return t.weights[idx]
}

// Scale returns the sum of all weights.
func (t *Table) Scale() float64 {
	return t.scale
}

// Proportion returns the expected share of a letter in the range [0, 1].
func (t *Table) Proportion(r rune) float64 {
	return t.Weight(r) / t.scale
}

// Ranked returns the letters ordered by descending weight, ties by letter.
func (t *Table) Ranked() []rune {
	letters := make([]rune, AlphabetSize)
	for i := range letters {
		letters[i] = rune('A' + i)
	}
	sort.SliceStable(letters, func(i, j int) bool {
		wi := t.weights[letters[i]-'A']
		wj := t.weights[letters[j]-'A']
		if wi == wj {
			return letters[i] < letters[j]
		}
		return wi > wj
	})
	return letters
}

func letterIndex(r rune) (int, bool) {
	switch {
	case r >= 'A' && r <= 'Z':
		return int(r - 'A'), true
	case r >= 'a' && r <= 'z':
		return int(r - 'a'), true
	default:
		return 0, false
	}
}

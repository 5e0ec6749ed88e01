package frequency

import (
	"sort"
	"strings"
)

// LetterCount is a single row of a frequency report.
type LetterCount struct {
	Letter  rune
	Count   int
	Percent float64
}

// Report summarizes the letter distribution of a text.
type Report struct {
	Letters []LetterCount
	Total   int
	Score   float64
}

// Analyze counts the letters of text and returns them ordered by count,
// most frequent first. Letters that never occur are omitted.
func Analyze(text string) Report {
	sample := Count(text)
	rows := make([]LetterCount, 0, AlphabetSize)
	for i, n := range sample.Counts {
		if n == 0 {
			continue
		}
		rows = append(rows, LetterCount{
			Letter:  rune('A' + i),
			Count:   n,
			Percent: float64(n) / float64(sample.Total) * 100,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count == rows[j].Count {
			return rows[i].Letter < rows[j].Letter
		}
		return rows[i].Count > rows[j].Count
	})
	return Report{
		Letters: rows,
		Total:   sample.Total,
		Score:   English.ChiSquare(sample),
	}
}

// Substitution maps ciphertext letters to plaintext letters.
type Substitution map[rune]rune

// RankSubstitution pairs the sample's letters, most frequent first, with the
// table's letters in the same rank order.
func RankSubstitution(s Sample, t *Table) Substitution {
	type entry struct {
		letter rune
		count  int
	}
	observed := make([]entry, 0, AlphabetSize)
	for i, n := range s.Counts {
		if n == 0 {
			continue
		}
		observed = append(observed, entry{letter: rune('A' + i), count: n})
	}
	sort.Slice(observed, func(i, j int) bool {
		if observed[i].count == observed[j].count {
			return observed[i].letter < observed[j].letter
		}
		return observed[i].count > observed[j].count
	})
	ranked := t.Ranked()
	sub := make(Substitution, len(observed))
	for i, e := range observed {
		sub[e.letter] = ranked[i]
	}
	return sub
}

// Apply rewrites letters through the substitution, keeping their case.
// Letters without a mapping and non-letters are copied unchanged.
func (s Substitution) Apply(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= 'A' && c <= 'Z':
			if to, ok := s[rune(c)]; ok {
				c = byte(to)
			}
		case c >= 'a' && c <= 'z':
			if to, ok := s[rune(c-'a'+'A')]; ok {
				c = byte(to - 'A' + 'a')
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Pairs returns the mapping ordered by source letter.
func (s Substitution) Pairs() [][2]rune {
	out := make([][2]rune, 0, len(s))
	for from, to := range s {
		out = append(out, [2]rune{from, to})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

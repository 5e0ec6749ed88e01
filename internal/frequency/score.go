package frequency

// Sample holds the observed letter counts of a text.
type Sample struct {
	Counts [AlphabetSize]int
	Total  int
}

// Count tallies ASCII letters case-insensitively and ignores everything else.
func Count(text string) Sample {
	var s Sample
	for i := 0; i < len(text); i++ {
		idx, ok := letterIndex(rune(text[i]))
		if !ok {
			continue
		}
		s.Counts[idx]++
		s.Total++
	}
	return s
}

// Count returns the number of occurrences of a letter.
func (s Sample) Count(r rune) int {
	idx, ok := letterIndex(r)
	if !ok {
		return 0
	}
	return s.Counts[idx]
}

// Score returns the chi-square distance between text and the English table.
func Score(text string) float64 {
	return English.Score(text)
}

// Score returns the chi-square distance between text and the table. Lower is
// a closer fit. A text without letters scores 0, which means "no evidence"
// rather than "perfect match".
func (t *Table) Score(text string) float64 {
	return t.ChiSquare(Count(text))
}

// ChiSquare computes the statistic for an already counted sample. Letters
// with zero expected count are skipped.
func (t *Table) ChiSquare(s Sample) float64 {
	total := float64(s.Total)
	var score float64
	for i := 0; i < AlphabetSize; i++ {
		expected := t.weights[i] / t.scale * total
		if expected <= 0 {
			continue
		}
		diff := float64(s.Counts[i]) - expected
		score += diff * diff / expected
	}
	return score
}

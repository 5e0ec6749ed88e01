package vigenere

import (
	"math"
	"sort"
)

// englishIoC is the index of coincidence of ordinary English text.
const englishIoC = 0.0667

// KeyLengthScore ranks a candidate key length by the average index of
// coincidence of its columns.
type KeyLengthScore struct {
	KeyLength int
	IoC       float64
	Distance  float64
}

// RankKeyLengths orders key lengths 2..maxKeyLength by how close the average
// column index of coincidence is to English. It is a hint only; the solver
// does not depend on it.
func RankKeyLengths(text string, maxKeyLength int) []KeyLengthScore {
	if maxKeyLength < 1 {
		maxKeyLength = DefaultMaxKeyLength
	}
	out := make([]KeyLengthScore, 0, maxKeyLength)
	for length := 2; length <= maxKeyLength; length++ {
		var sum float64
		for _, col := range Columns(text, length) {
			sum += indexOfCoincidence(col)
		}
		avg := sum / float64(length)
		out = append(out, KeyLengthScore{
			KeyLength: length,
			IoC:       avg,
			Distance:  math.Abs(avg - englishIoC),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Distance == out[j].Distance {
			return out[i].KeyLength < out[j].KeyLength
		}
		return out[i].Distance < out[j].Distance
	})
	return out
}

func indexOfCoincidence(col string) float64 {
	var counts [26]int
	n := 0
	for i := 0; i < len(col); i++ {
		c := col[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c < 'A' || c > 'Z' {
			continue
		}
		counts[c-'A']++
		n++
	}
	if n < 2 {
		return 0
	}
	var sum float64
	for _, k := range counts {
		sum += float64(k * (k - 1))
	}
	return sum / float64(n*(n-1))
}

package frequency

import (
	"errors"
	"strings"
	"testing"
)

func TestEnglishTableCoversAlphabet(t *testing.T) {
	for r := 'A'; r <= 'Z'; r++ {
		if English.Weight(r) <= 0 {
			t.Fatalf("expected positive weight for %q", r)
		}
		if English.Weight(r) != English.Weight(r+'a'-'A') {
			t.Fatalf("expected case-insensitive lookup for %q", r)
		}
	}
	if English.Weight(' ') != 0 || English.Weight('#') != 0 {
		t.Fatalf("expected zero weight for non-letters")
	}
	if English.Scale() != 100000 {
		t.Fatalf("expected scale 100000, got %v", English.Scale())
	}
}

func TestNewTableRejectsIncompleteTables(t *testing.T) {
	weights := map[rune]float64{}
	for r := 'a'; r <= 'y'; r++ {
		weights[r] = 1
	}
	if _, err := NewTable(weights); !errors.Is(err, ErrInvalidTable) {
		t.Fatalf("expected ErrInvalidTable for missing letter, got %v", err)
	}
	weights['z'] = 1
	weights['Z'] = 2
	if _, err := NewTable(weights); !errors.Is(err, ErrInvalidTable) {
		t.Fatalf("expected ErrInvalidTable for duplicate letter, got %v", err)
	}
	delete(weights, 'Z')
	weights['1'] = 1
	if _, err := NewTable(weights); !errors.Is(err, ErrInvalidTable) {
		t.Fatalf("expected ErrInvalidTable for non-letter, got %v", err)
	}
}

func TestScoreReferenceAgainstItself(t *testing.T) {
	var b strings.Builder
	for r := 'A'; r <= 'Z'; r++ {
		b.WriteString(strings.Repeat(string(r), int(English.Weight(r))))
	}
	if got := Score(b.String()); got >= 1.0 {
		t.Fatalf("expected score < 1.0 for the reference distribution, got %v", got)
	}
}

func TestScoreFlatDistribution(t *testing.T) {
	text := strings.Repeat("ABCDEFGHIJKLMNOPQRSTUVWXYZ", 100)
	if got := Score(text); got <= 1000 {
		t.Fatalf("expected score > 1000 for a flat distribution, got %v", got)
	}
}

func TestScoreIgnoresCaseAndPunctuation(t *testing.T) {
	a := Score("Hello, World!")
	b := Score("HELLOWORLD")
	if a != b {
		t.Fatalf("expected equal scores, got %v and %v", a, b)
	}
}

func TestScoreIsRepeatable(t *testing.T) {
	text := "It was the best of times, it was the worst of times."
	first := Score(text)
	second := Score(text)
	if first != second {
		t.Fatalf("expected identical scores, got %v and %v", first, second)
	}
}

func TestScoreWithoutLetters(t *testing.T) {
	if got := Score("12345 !@#$%"); got != 0 {
		t.Fatalf("expected 0 for text without letters, got %v", got)
	}
	if got := Score(""); got != 0 {
		t.Fatalf("expected 0 for empty text, got %v", got)
	}
}

func TestEnglishScoresBetterThanShifted(t *testing.T) {
	plain := "The quick brown fox jumps over the lazy dog."
	shifted := "Dro aesmu lbygx pyh tewzc yfob dro vkji nyq."
	if Score(plain) >= Score(shifted) {
		t.Fatalf("expected plaintext to score lower than ciphertext")
	}
}

// Package vigenere encrypts, decrypts and cracks Vigenère ciphers.
package vigenere

import (
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/cryptology/internal/caesar"
	"github.com/verte-zerg/cryptology/internal/frequency"
)

// DefaultMaxKeyLength bounds the key length search when the caller gives none.
const DefaultMaxKeyLength = 20

// Result is a recovered key and the plaintext it produces.
type Result struct {
	Plaintext string
	Key       string
	KeyLength int
	Score     float64
}

func (r Result) less(other Result) bool {
	if r.Score != other.Score {
		return r.Score < other.Score
	}
	return r.KeyLength < other.KeyLength
}

// Encrypt shifts each letter forward by the matching key letter. Non-letters
// are copied and do not consume a key letter.
func Encrypt(text, key string) string {
	return apply(text, key, 1)
}

// DecryptWithKey reverses Encrypt. The key is case-insensitive; its
// non-letter characters are ignored.
func DecryptWithKey(text, key string) string {
	return apply(text, key, -1)
}

func apply(text, key string, direction int) string {
	shifts := keyShifts(key)
	if len(shifts) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	k := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if !isLetter(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte(caesar.ShiftByte(c, direction*shifts[k%len(shifts)]))
		k++
	}
	return b.String()
}

func keyShifts(key string) []int {
	key = strings.ToUpper(key)
	shifts := make([]int, 0, len(key))
	for i := 0; i < len(key); i++ {
		if key[i] >= 'A' && key[i] <= 'Z' {
			shifts = append(shifts, int(key[i]-'A'))
		}
	}
	return shifts
}

// Columns splits the letters of text into keyLength columns: the n-th letter
// goes to column n mod keyLength.
func Columns(text string, keyLength int) []string {
	if keyLength < 1 {
		keyLength = 1
	}
	cols := make([]strings.Builder, keyLength)
	n := 0
	for i := 0; i < len(text); i++ {
		if !isLetter(text[i]) {
			continue
		}
		cols[n%keyLength].WriteByte(text[i])
		n++
	}
	out := make([]string, keyLength)
	for i := range cols {
		out[i] = cols[i].String()
	}
	return out
}

// DecryptWithKeyLength solves every column as a Caesar cipher and decrypts
// text with the resulting key.
func DecryptWithKeyLength(text string, keyLength int) Result {
	if keyLength < 1 {
		keyLength = 1
	}
	key := make([]byte, keyLength)
	for i, col := range Columns(text, keyLength) {
		_, shift := caesar.FindBestShift(col)
		key[i] = byte('A' + shift)
	}
	plain := DecryptWithKey(text, string(key))
	return Result{
		Plaintext: plain,
		Key:       string(key),
		KeyLength: keyLength,
		Score:     frequency.Score(plain),
	}
}

// DecryptWithUnknownKeyLength tries every key length from 2 to maxKeyLength
// and keeps the decryption closest to English. Ties go to the shorter key.
// A maxKeyLength below 1 selects DefaultMaxKeyLength.
func DecryptWithUnknownKeyLength(text string, maxKeyLength int) Result {
	if maxKeyLength < 1 {
		maxKeyLength = DefaultMaxKeyLength
	}
	if maxKeyLength < 2 {
		return DecryptWithKeyLength(text, 2)
	}
	results := make([]Result, maxKeyLength-1)
	var g errgroup.Group
	for length := 2; length <= maxKeyLength; length++ {
		g.Go(func() error {
			results[length-2] = DecryptWithKeyLength(text, length)
			return nil
		})
	}
	_ = g.Wait()

	best := results[0]
	for _, r := range results[1:] {
		if r.less(best) {
			best = r
		}
	}
	return best
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// Package cribs loads crib words and sweeps them across ciphertext pairs.
package cribs

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/verte-zerg/cryptology/internal/mtp"
)

// Default is used when no crib file is given.
var Default = []string{" the ", " and ", " of ", " to ", " that ", " is ", "ing ", "tion"}

// Load reads one crib per line from path. Leading and trailing spaces are
// part of a crib, so only the line terminator is stripped. Lines that are not
// printable ASCII are dropped.
func Load(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only crib list.
			_ = cerr
		}
	}()

	var out []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || !Printable(line) {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("crib list is empty")
	}
	return out, nil
}

// Printable reports whether s is made of printable ASCII only.
func Printable(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

// Textlike reports whether s only holds letters, digits, spaces and common
// punctuation, the way running English does.
func Textlike(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case strings.IndexByte(" .,;:'!?-\"", c) >= 0:
		default:
			return false
		}
	}
	return s != ""
}

// Hit is a crib placement whose partner text looks like English.
type Hit struct {
	Crib string
	mtp.CribMatch
}

// Sweep drags every crib across ciphertexts and keeps the text-like reveals,
// ordered by pair, offset and crib.
func Sweep(ciphertexts [][]byte, cribs []string) []Hit {
	var out []Hit
	for _, crib := range cribs {
		for _, m := range mtp.DragCrib(ciphertexts, []byte(crib)) {
			if Textlike(m.Revealed) {
				out = append(out, Hit{Crib: crib, CribMatch: m})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Pair != b.Pair {
			if a.Pair.I != b.Pair.I {
				return a.Pair.I < b.Pair.I
			}
			return a.Pair.J < b.Pair.J
		}
		if a.Offset != b.Offset {
			return a.Offset < b.Offset
		}
		return a.Crib < b.Crib
	})
	return out
}

// Package mtp attacks ciphertexts that were XORed with the same keystream.
//
// The attack relies on ASCII text being full of spaces: a space XORed with a
// letter flips the letter's case, so wherever two ciphertexts XOR to a letter
// with its case flipped one of the two plaintexts likely holds a space there.
// Votes gathered across every pair decide which one.
package mtp

import (
	"errors"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/cryptology/internal/xor"
)

// DefaultSpaceThreshold is how many times more votes a space needs than the
// next candidate before it is accepted.
const DefaultSpaceThreshold = 1.7

const space = ' '

var ErrTooFewCiphertexts = errors.New("at least two ciphertexts are required")

// Pair identifies two ciphertexts by index, I < J.
type Pair struct {
	I int
	J int
}

// Position is one byte of one ciphertext.
type Position struct {
	Text   int
	Offset int
}

// VoteTable counts plaintext byte hypotheses per position.
type VoteTable map[Position]map[byte]int

func (v VoteTable) add(p Position, b byte, n int) {
	m := v[p]
	if m == nil {
		m = make(map[byte]int)
		v[p] = m
	}
	m[b] += n
}

func (v VoteTable) merge(other VoteTable) {
	for p, m := range other {
		for b, n := range m {
			v.add(p, b, n)
		}
	}
}

// Deductions holds one plaintext byte per resolved position.
type Deductions map[Position]byte

// Engine runs the many-time-pad attack. The zero value is not ready for use;
// call New.
type Engine struct {
	SpaceThreshold float64
	// Workers bounds vote collection parallelism; 0 means GOMAXPROCS.
	Workers int
}

// New returns an engine with the default space threshold.
func New() *Engine {
	return &Engine{SpaceThreshold: DefaultSpaceThreshold}
}

// Result is the outcome of Decrypt. Plaintexts and Fragments follow the
// order of the input ciphertexts.
type Result struct {
	Plaintexts []string
	Fragments  []string
	Key        []byte
	// Resolved reports, per key byte, whether any ciphertext voted for it.
	// Unresolved bytes are 0x00 and decrypt to the raw ciphertext byte.
	Resolved []bool
}

// Decrypt recovers the shared key and the plaintexts of ciphertexts.
func (e *Engine) Decrypt(ciphertexts [][]byte) (Result, error) {
	if len(ciphertexts) < 2 {
		return Result{}, ErrTooFewCiphertexts
	}
	deductions := e.Deduce(e.Votes(ciphertexts))
	key, resolved := RecoverKey(ciphertexts, deductions)
	plaintexts := make([]string, len(ciphertexts))
	for i, c := range ciphertexts {
		plaintexts[i] = string(xor.Padded(c, key))
	}
	return Result{
		Plaintexts: plaintexts,
		Fragments:  Assemble(deductions, len(ciphertexts)),
		Key:        key,
		Resolved:   resolved,
	}, nil
}

// PairwiseXor XORs every pair of ciphertexts over their common length.
func PairwiseXor(ciphertexts [][]byte) map[Pair][]byte {
	out := make(map[Pair][]byte, len(ciphertexts)*(len(ciphertexts)-1)/2)
	for _, p := range pairs(len(ciphertexts)) {
		out[p] = xor.Overlap(ciphertexts[p.I], ciphertexts[p.J])
	}
	return out
}

func pairs(n int) []Pair {
	var out []Pair
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, Pair{I: i, J: j})
		}
	}
	return out
}

// Votes collects space and letter hypotheses from every pair. Pairs are
// split across workers, each filling its own table; the tables are summed
// at the end.
func (e *Engine) Votes(ciphertexts [][]byte) VoteTable {
	all := pairs(len(ciphertexts))
	workers := e.workers()
	if workers > len(all) {
		workers = len(all)
	}
	partial := make([]VoteTable, workers)
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			table := make(VoteTable)
			for k := w; k < len(all); k += workers {
				p := all[k]
				votePair(table, p, xor.Overlap(ciphertexts[p.I], ciphertexts[p.J]))
			}
			partial[w] = table
			return nil
		})
	}
	_ = g.Wait()

	votes := make(VoteTable)
	for _, t := range partial {
		votes.merge(t)
	}
	return votes
}

func votePair(table VoteTable, p Pair, x []byte) {
	for off, b := range x {
		c := b ^ space
		if !isLetter(c) {
			continue
		}
		left := Position{Text: p.I, Offset: off}
		right := Position{Text: p.J, Offset: off}
		table.add(left, space, 1)
		table.add(right, c, 1)
		table.add(left, c, 1)
		table.add(right, space, 1)
	}
}

func (e *Engine) workers() int {
	if e.Workers > 0 {
		return e.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (e *Engine) threshold() float64 {
	if e.SpaceThreshold > 0 {
		return e.SpaceThreshold
	}
	return DefaultSpaceThreshold
}

type candidate struct {
	b     byte
	votes int
}

// Deduce picks one plaintext byte per voted position. Candidates are ranked
// by votes, then by byte value. A leading space must beat the runner-up by
// the space threshold, otherwise the runner-up wins.
func (e *Engine) Deduce(votes VoteTable) Deductions {
	th := e.threshold()
	out := make(Deductions, len(votes))
	for pos, m := range votes {
		ranked := rank(m)
		if len(ranked) == 0 {
			continue
		}
		top := ranked[0]
		if len(ranked) == 1 || top.b != space {
			out[pos] = top.b
			continue
		}
		if float64(top.votes) >= th*float64(ranked[1].votes) {
			out[pos] = space
		} else {
			out[pos] = ranked[1].b
		}
	}
	return out
}

func rank(m map[byte]int) []candidate {
	out := make([]candidate, 0, len(m))
	for b, n := range m {
		out = append(out, candidate{b: b, votes: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].votes != out[j].votes {
			return out[i].votes > out[j].votes
		}
		return out[i].b < out[j].b
	})
	return out
}

// Assemble renders the deductions of n ciphertexts as text. Unresolved
// positions become spaces; each fragment ends at its last resolved byte.
func Assemble(d Deductions, n int) []string {
	lengths := make([]int, n)
	for pos := range d {
		if pos.Text < 0 || pos.Text >= n {
			continue
		}
		lengths[pos.Text] = max(lengths[pos.Text], pos.Offset+1)
	}
	out := make([]string, n)
	for i := range out {
		buf := make([]byte, lengths[i])
		for off := range buf {
			if b, ok := d[Position{Text: i, Offset: off}]; ok {
				buf[off] = b
			} else {
				buf[off] = space
			}
		}
		out[i] = string(buf)
	}
	return out
}

// RecoverKey derives one key byte per position of the shortest ciphertext.
// Each ciphertext with a non-space deduction at a position votes for
// ciphertext XOR deduction; the most common byte wins, ties going to the
// smaller byte. Positions without votes get 0x00 and resolved false.
func RecoverKey(ciphertexts [][]byte, d Deductions) ([]byte, []bool) {
	if len(ciphertexts) == 0 {
		return nil, nil
	}
	n := len(ciphertexts[0])
	for _, c := range ciphertexts[1:] {
		n = min(n, len(c))
	}
	key := make([]byte, n)
	resolved := make([]bool, n)
	for off := 0; off < n; off++ {
		var counts [256]int
		seen := false
		for k, c := range ciphertexts {
			b, ok := d[Position{Text: k, Offset: off}]
			if !ok || b == space {
				continue
			}
			counts[c[off]^b]++
			seen = true
		}
		if !seen {
			continue
		}
		best := 0
		for b := 1; b < len(counts); b++ {
			if counts[b] > counts[best] {
				best = b
			}
		}
		key[off] = byte(best)
		resolved[off] = true
	}
	return key, resolved
}

// Mask replaces every byte of plaintext whose key byte is unresolved, or
// beyond the recovered key, with mask.
func Mask(plaintext string, resolved []bool, mask byte) string {
	buf := []byte(plaintext)
	for i := range buf {
		if i >= len(resolved) || !resolved[i] {
			buf[i] = mask
		}
	}
	return string(buf)
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

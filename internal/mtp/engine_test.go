package mtp

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

var fixturePlaintexts = []string{
	"the quick brown fox jumps over the lazy dog and keeps running",
	"a stitch in time saves nine so mend your nets before the storm",
	"never reuse a one time pad because the keystream leaks quickly",
	"all that glitters is not gold and all who wander are not lost",
	"we shall fight on the beaches and we shall never surrender now",
	"to be or not to be that is the question whether tis nobler",
	"it was the best of times it was the worst of times in london",
	"call me ishmael some years ago never mind how long precisely",
	"in the beginning the universe was created and many were upset",
	"the only thing we have to fear is fear itself said the leader",
	"ask not what your country can do for you but what you can do",
	"my dog is a good boy he runs at dawn in a park by the lake",
	" no man is an island entire of itself every man is a piece",
}

const fixtureShortest = 58

func fixtureKey() []byte {
	key := make([]byte, 64)
	for i := range key {
		key[i] = byte(i*37 + 11)
	}
	return key
}

func fixtureCiphertexts() [][]byte {
	key := fixtureKey()
	out := make([][]byte, len(fixturePlaintexts))
	for i, p := range fixturePlaintexts {
		c := []byte(p)
		for j := range c {
			c[j] ^= key[j]
		}
		out[i] = c
	}
	return out
}

func TestDecryptRecoversKeyAndPlaintexts(t *testing.T) {
	res, err := New().Decrypt(fixtureCiphertexts())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Key) != fixtureShortest {
		t.Fatalf("expected key length %d, got %d", fixtureShortest, len(res.Key))
	}
	if !bytes.Equal(res.Key, fixtureKey()[:fixtureShortest]) {
		t.Fatalf("expected key %x, got %x", fixtureKey()[:fixtureShortest], res.Key)
	}
	for i, r := range res.Resolved {
		if !r {
			t.Fatalf("expected key byte %d to be resolved", i)
		}
	}
	if len(res.Plaintexts) != len(fixturePlaintexts) {
		t.Fatalf("expected %d plaintexts, got %d", len(fixturePlaintexts), len(res.Plaintexts))
	}
	for i, want := range fixturePlaintexts {
		got := res.Plaintexts[i]
		if len(got) != len(want) {
			t.Fatalf("plaintext %d: expected length %d, got %d", i, len(want), len(got))
		}
		if got[:fixtureShortest] != want[:fixtureShortest] {
			t.Fatalf("plaintext %d: expected %q, got %q", i, want[:fixtureShortest], got[:fixtureShortest])
		}
	}
	if !strings.HasPrefix(res.Fragments[0], "the quick brown fox") {
		t.Fatalf("unexpected fragment: %q", res.Fragments[0])
	}
}

func TestDecryptIsIndependentOfWorkers(t *testing.T) {
	cts := fixtureCiphertexts()
	want, err := (&Engine{SpaceThreshold: DefaultSpaceThreshold, Workers: 1}).Decrypt(cts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, workers := range []int{2, 3, 7, 64} {
		got, err := (&Engine{SpaceThreshold: DefaultSpaceThreshold, Workers: workers}).Decrypt(cts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.Equal(got.Key, want.Key) {
			t.Fatalf("workers %d: expected key %x, got %x", workers, want.Key, got.Key)
		}
		for i := range want.Fragments {
			if got.Fragments[i] != want.Fragments[i] {
				t.Fatalf("workers %d: fragment %d differs", workers, i)
			}
		}
	}
}

func TestSpaceThresholdOverride(t *testing.T) {
	cts := fixtureCiphertexts()
	res, err := (&Engine{SpaceThreshold: 1.0}).Decrypt(cts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Accepting every tied space throws away all letter votes.
	if bytes.Equal(res.Key, fixtureKey()[:fixtureShortest]) {
		t.Fatalf("expected a threshold of 1.0 to lose the key")
	}
	res, err = (&Engine{SpaceThreshold: 2.5}).Decrypt(cts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(res.Key, fixtureKey()[:fixtureShortest]) {
		t.Fatalf("expected threshold 2.5 to recover the key, got %x", res.Key)
	}
}

func TestDecryptTooFewCiphertexts(t *testing.T) {
	_, err := New().Decrypt([][]byte{[]byte("only one")})
	if !errors.Is(err, ErrTooFewCiphertexts) {
		t.Fatalf("expected ErrTooFewCiphertexts, got %v", err)
	}
	if _, err := New().Decrypt(nil); !errors.Is(err, ErrTooFewCiphertexts) {
		t.Fatalf("expected ErrTooFewCiphertexts, got %v", err)
	}
}

func TestPairwiseXor(t *testing.T) {
	cts := [][]byte{[]byte("abc"), []byte("ab"), []byte("xyz1")}
	got := PairwiseXor(cts)
	if len(got) != 3 {
		t.Fatalf("expected 3 pairs, got %d", len(got))
	}
	if x := got[Pair{I: 0, J: 1}]; !bytes.Equal(x, []byte{0, 0}) {
		t.Fatalf("expected zero overlap, got %x", x)
	}
	if x := got[Pair{I: 0, J: 2}]; len(x) != 3 {
		t.Fatalf("expected overlap of 3 bytes, got %d", len(x))
	}
}

func TestVotesAreSymmetric(t *testing.T) {
	// The two bytes XOR to 'A', a case-flipped 'a': either text may hold the space.
	votes := New().Votes([][]byte{{'a'}, {' '}})
	left := votes[Position{Text: 0, Offset: 0}]
	right := votes[Position{Text: 1, Offset: 0}]
	if left[' '] != 1 || left['a'] != 1 {
		t.Fatalf("unexpected left votes: %v", left)
	}
	if right[' '] != 1 || right['a'] != 1 {
		t.Fatalf("unexpected right votes: %v", right)
	}
}

func TestDeduce(t *testing.T) {
	votes := VoteTable{
		{Text: 0, Offset: 0}: {' ': 4, 'e': 2},
		{Text: 0, Offset: 1}: {' ': 3, 'e': 2},
		{Text: 0, Offset: 2}: {'t': 2, 'e': 2},
		{Text: 0, Offset: 3}: {' ': 1},
	}
	d := New().Deduce(votes)
	want := map[int]byte{0: ' ', 1: 'e', 2: 'e', 3: ' '}
	for off, b := range want {
		if got := d[Position{Text: 0, Offset: off}]; got != b {
			t.Fatalf("offset %d: expected %q, got %q", off, b, got)
		}
	}
}

func TestAssemble(t *testing.T) {
	d := Deductions{
		{Text: 0, Offset: 0}: 'h',
		{Text: 0, Offset: 2}: 'y',
		{Text: 1, Offset: 1}: 'o',
	}
	got := Assemble(d, 3)
	want := []string{"h y", " o", ""}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("fragment %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestRecoverKeyMarksUnresolved(t *testing.T) {
	cts := [][]byte{{0x10, 0x20, 0x30}, {0x11, 0x21}}
	d := Deductions{
		{Text: 0, Offset: 0}: 'a',
		{Text: 1, Offset: 0}: 'a' ^ 0x01,
		{Text: 0, Offset: 1}: ' ',
	}
	key, resolved := RecoverKey(cts, d)
	if len(key) != 2 {
		t.Fatalf("expected key length 2, got %d", len(key))
	}
	if key[0] != 0x10^'a' || !resolved[0] {
		t.Fatalf("expected resolved key byte %x, got %x", 0x10^'a', key[0])
	}
	if key[1] != 0 || resolved[1] {
		t.Fatalf("expected unresolved zero byte, got %x (%v)", key[1], resolved[1])
	}
}

func TestRecoverKeyTieTakesSmallestByte(t *testing.T) {
	cts := [][]byte{{0x00}, {0x00}}
	d := Deductions{
		{Text: 0, Offset: 0}: 'z',
		{Text: 1, Offset: 0}: 'b',
	}
	key, _ := RecoverKey(cts, d)
	if key[0] != 'b' {
		t.Fatalf("expected %q, got %q", 'b', key[0])
	}
}

func TestMask(t *testing.T) {
	got := Mask("secret!", []bool{true, false, true, true}, '_')
	if got != "s_cr___" {
		t.Fatalf("expected s_cr___, got %q", got)
	}
}

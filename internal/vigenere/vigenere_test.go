package vigenere

import (
	"reflect"
	"testing"
)

const orwell = "It was a bright cold day in April, and the clocks were striking thirteen. " +
	"Winston Smith, his chin nuzzled into his breast in an effort to escape the vile wind, " +
	"slipped quickly through the glass doors of Victory Mansions, though not quickly enough " +
	"to prevent a swirl of gritty dust from entering along with him. The hallway smelt of " +
	"boiled cabbage and old rag mats. At one end of it a coloured poster, too large for " +
	"indoor display, had been tacked to the wall."

func TestEncrypt(t *testing.T) {
	cases := []struct {
		in, key, want string
	}{
		{"HELLO WORLD", "KEY", "RIJVS UYVJN"},
		{"hello world", "key", "rijvs uyvjn"},
		{"HELLO, WORLD!", "KEY", "RIJVS, UYVJN!"},
	}
	for _, tc := range cases {
		if got := Encrypt(tc.in, tc.key); got != tc.want {
			t.Fatalf("Encrypt(%q, %q): expected %q, got %q", tc.in, tc.key, tc.want, got)
		}
	}
}

func TestDecryptWithKey(t *testing.T) {
	cases := []struct {
		in, key, want string
	}{
		{"RIJVS UYVJN", "KEY", "HELLO WORLD"},
		{"rijvs uyvjn", "key", "hello world"},
		{"RiJvS UyVjN", "KeY", "HeLlO WoRlD"},
		{"RIJVS, UYVJN!", "KEY", "HELLO, WORLD!"},
	}
	for _, tc := range cases {
		if got := DecryptWithKey(tc.in, tc.key); got != tc.want {
			t.Fatalf("DecryptWithKey(%q, %q): expected %q, got %q", tc.in, tc.key, tc.want, got)
		}
	}
}

func TestDecryptWithKeyRoundTripsPrintableASCII(t *testing.T) {
	var text []byte
	for c := byte(' '); c <= '~'; c++ {
		text = append(text, c)
	}
	for _, key := range []string{"A", "KEY", "Lemon", "zzz", "CRYPTOLOGY"} {
		if got := DecryptWithKey(Encrypt(string(text), key), key); got != string(text) {
			t.Fatalf("key %q: round trip mismatch: %q", key, got)
		}
	}
}

func TestDecryptWithEmptyKeyIsIdentity(t *testing.T) {
	if got := DecryptWithKey("RIJVS", "123"); got != "RIJVS" {
		t.Fatalf("expected text unchanged, got %q", got)
	}
}

func TestColumns(t *testing.T) {
	cases := []struct {
		in     string
		length int
		want   []string
	}{
		{"VIGENERE", 3, []string{"VER", "INE", "GE"}},
		{"VIGENERE CIPHER", 4, []string{"VNCE", "IEIR", "GRP", "EEH"}},
		{"V1G3N!E#R$E%", 5, []string{"VE", "G", "N", "E", "R"}},
	}
	for _, tc := range cases {
		if got := Columns(tc.in, tc.length); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("Columns(%q, %d): expected %q, got %q", tc.in, tc.length, tc.want, got)
		}
	}
}

func TestDecryptWithKeyLength(t *testing.T) {
	res := DecryptWithKeyLength(Encrypt(orwell, "LEMON"), 5)
	if res.Key != "LEMON" {
		t.Fatalf("expected key LEMON, got %q", res.Key)
	}
	if res.Plaintext != orwell {
		t.Fatalf("unexpected plaintext: %q", res.Plaintext)
	}
	if res.KeyLength != 5 {
		t.Fatalf("expected key length 5, got %d", res.KeyLength)
	}
}

func TestDecryptWithUnknownKeyLength(t *testing.T) {
	res := DecryptWithUnknownKeyLength(Encrypt(orwell, "LEMON"), 9)
	if res.Key != "LEMON" || res.Plaintext != orwell {
		t.Fatalf("expected LEMON and the original text, got %q: %q", res.Key, res.Plaintext)
	}
}

func TestDecryptWithUnknownKeyLengthPrefersShortestOnTie(t *testing.T) {
	// Lengths 3, 6, 9 and 12 all decrypt to the same text with the same score.
	res := DecryptWithUnknownKeyLength(Encrypt(orwell, "KEY"), 12)
	if res.KeyLength != 3 || res.Key != "KEY" {
		t.Fatalf("expected key KEY of length 3, got %q (%d)", res.Key, res.KeyLength)
	}
	if res.Plaintext != orwell {
		t.Fatalf("unexpected plaintext: %q", res.Plaintext)
	}
}

func TestDecryptWithUnknownKeyLengthIsStable(t *testing.T) {
	ct := Encrypt(orwell, "CIPHER")
	first := DecryptWithUnknownKeyLength(ct, 11)
	for i := 0; i < 5; i++ {
		if got := DecryptWithUnknownKeyLength(ct, 11); got != first {
			t.Fatalf("expected identical results across runs, got %+v and %+v", first, got)
		}
	}
	if first.Key != "CIPHER" {
		t.Fatalf("expected key CIPHER, got %q", first.Key)
	}
}

func TestDecryptWithUnknownKeyLengthDefaultBound(t *testing.T) {
	res := DecryptWithUnknownKeyLength("RIJVS UYVJN", 0)
	if res.KeyLength < 2 || res.KeyLength > DefaultMaxKeyLength {
		t.Fatalf("expected key length within [2, %d], got %d", DefaultMaxKeyLength, res.KeyLength)
	}
}

func TestRankKeyLengths(t *testing.T) {
	ranked := RankKeyLengths(Encrypt(orwell, "LEMON"), 20)
	if len(ranked) != 19 {
		t.Fatalf("expected 19 lengths, got %d", len(ranked))
	}
	if ranked[0].KeyLength%5 != 0 {
		t.Fatalf("expected a multiple of 5 first, got %d", ranked[0].KeyLength)
	}
}

// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Cipher names one of the supported ciphers.
type Cipher string

const (
	CipherCaesar       Cipher = "caesar"
	CipherVigenere     Cipher = "vigenere"
	CipherOneTimePad   Cipher = "one-time-pad"
	CipherManyTimePad  Cipher = "many-time-pad"
	CipherSubstitution Cipher = "monoalphabetic-substitution"
)

// Ciphers lists every cipher in display order.
var Ciphers = []Cipher{CipherCaesar, CipherVigenere, CipherOneTimePad, CipherManyTimePad, CipherSubstitution}

// ParseCipher resolves a cipher name, case-insensitively.
func ParseCipher(name string) (Cipher, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, c := range Ciphers {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown cipher %q", name)
}

// Binary reports whether the cipher works on raw bytes rather than letters.
func (c Cipher) Binary() bool {
	return c == CipherOneTimePad || c == CipherManyTimePad
}

// Operation is what a run did with its cipher.
type Operation string

const (
	OpEncrypt Operation = "encrypt"
	OpDecrypt Operation = "decrypt"
	OpCrack   Operation = "crack"
)

// Run is one recorded command execution. InputDigest is the hex SHA3-256 of
// the raw input.
type Run struct {
	ID          int64
	CreatedAt   time.Time
	Operation   Operation
	Cipher      Cipher
	Key         string
	KeyLength   int
	Score       float64
	InputSize   int
	InputDigest string
	Output      string
	DurationMs  int64
}

// Candidate is one ranked alternative considered during a crack, such as a
// shift or a key length.
type Candidate struct {
	Rank  int
	Label string
	Score float64
}

// HistoryFilter narrows history listings. InputDigest keeps only runs over
// an identical input.
type HistoryFilter struct {
	Cipher      Cipher
	Since       *time.Time
	Last        int
	InputDigest string
}

// CipherSummary aggregates runs of one cipher.
type CipherSummary struct {
	Cipher   Cipher
	Runs     int
	Cracks   int
	AvgScore float64
	LastRun  time.Time
}

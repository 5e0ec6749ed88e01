// Package hexutil converts between hex text and bytes for ciphertext input.
package hexutil

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrOddLength  = errors.New("hex string has odd length")
	ErrInvalidHex = errors.New("invalid hex character")
)

// Decode parses a hex string. Surrounding whitespace and an optional 0x
// prefix are ignored; upper and lower case digits are accepted.
func Decode(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("%w: %d characters", ErrOddLength, len(s))
	}
	out, err := hex.DecodeString(s)
	if err != nil {
		var invalid hex.InvalidByteError
		if errors.As(err, &invalid) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidHex, rune(invalid))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	return out, nil
}

// Encode renders b as lowercase hex.
func Encode(b []byte) string {
	return hex.EncodeToString(b)
}

// DecodeLines decodes one hex string per non-empty line. Errors carry the
// 1-based line number.
func DecodeLines(text string) ([][]byte, error) {
	var out [][]byte
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		b, err := Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, b)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read hex lines: %w", err)
	}
	return out, nil
}

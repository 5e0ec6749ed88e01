package hexutil

import (
	"bytes"
	"errors"
	"testing"
)

func TestDecode(t *testing.T) {
	got, err := Decode("  48656C6c6f\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "Hello" {
		t.Fatalf("expected Hello, got %q", got)
	}
}

func TestDecodePrefix(t *testing.T) {
	got, err := Decode("0xff00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, []byte{0xff, 0x00}) {
		t.Fatalf("expected ff00, got %x", got)
	}
}

func TestDecodeOddLength(t *testing.T) {
	if _, err := Decode("abc"); !errors.Is(err, ErrOddLength) {
		t.Fatalf("expected ErrOddLength, got %v", err)
	}
}

func TestDecodeInvalid(t *testing.T) {
	if _, err := Decode("zz"); !errors.Is(err, ErrInvalidHex) {
		t.Fatalf("expected ErrInvalidHex, got %v", err)
	}
}

func TestEncodeLowercase(t *testing.T) {
	if got := Encode([]byte{0xAB, 0x01}); got != "ab01" {
		t.Fatalf("expected ab01, got %q", got)
	}
}

func TestDecodeLines(t *testing.T) {
	got, err := DecodeLines("6869\n\n  7468657265 \n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || string(got[0]) != "hi" || string(got[1]) != "there" {
		t.Fatalf("unexpected lines: %q", got)
	}
}

func TestDecodeLinesReportsLine(t *testing.T) {
	_, err := DecodeLines("6869\nxyz\n")
	if !errors.Is(err, ErrOddLength) {
		t.Fatalf("expected ErrOddLength, got %v", err)
	}
	if err.Error() != "line 2: hex string has odd length: 3 characters" {
		t.Fatalf("unexpected message: %v", err)
	}
}

// Package xor combines byte strings.
package xor

// Overlap XORs a and b over the length of the shorter one.
func Overlap(a, b []byte) []byte {
	n := min(len(a), len(b))
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// Padded XORs a and b over the length of the longer one. The shorter operand
// is treated as if zero bytes were appended to it, so the tail of the longer
// operand is copied as is.
func Padded(a, b []byte) []byte {
	if len(a) < len(b) {
		a, b = b, a
	}
	out := make([]byte, len(a))
	copy(out, a)
	for i := range b {
		out[i] ^= b[i]
	}
	return out
}

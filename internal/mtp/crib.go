package mtp

import "github.com/verte-zerg/cryptology/internal/xor"

// CribMatch is an offset where sliding a crib over the XOR of two
// ciphertexts reveals printable text in the other message.
type CribMatch struct {
	Pair     Pair
	Offset   int
	Revealed string
	// Key is the keystream implied by the crib sitting in ciphertext Pair.I.
	Key []byte
}

// DragCrib slides crib across every pairwise XOR and keeps the offsets where
// the partner text is printable ASCII. Matches are ordered by pair, then
// offset.
func DragCrib(ciphertexts [][]byte, crib []byte) []CribMatch {
	if len(crib) == 0 {
		return nil
	}
	var out []CribMatch
	for _, p := range pairs(len(ciphertexts)) {
		x := xor.Overlap(ciphertexts[p.I], ciphertexts[p.J])
		for off := 0; off+len(crib) <= len(x); off++ {
			revealed := xor.Overlap(x[off:off+len(crib)], crib)
			if !printable(revealed) {
				continue
			}
			out = append(out, CribMatch{
				Pair:     p,
				Offset:   off,
				Revealed: string(revealed),
				Key:      xor.Overlap(ciphertexts[p.I][off:off+len(crib)], crib),
			})
		}
	}
	return out
}

func printable(b []byte) bool {
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}

// Package keccak implements Ethereum's Keccak-256 (the pre-NIST-finalization
// padding, not SHA3-256): rate 136 bytes, suffix 0x01, final bit 0x80
// (spec.md 4.1). golang.org/x/crypto/sha3's NewLegacyKeccak256 implements
// exactly this variant, which is why go-ethereum itself (vendored by every
// repo in the example pack that touches Ethereum) depends on the same
// package for its own crypto.Keccak256.
package keccak

import (
	"golang.org/x/crypto/sha3"
)

// Sum256 returns the 32-byte Keccak-256 digest of data, concatenating every
// argument before hashing (mirrors go-ethereum's crypto.Keccak256 signature
// so call sites that build up a hash from several byte slices read the
// same way as the teacher's domainSeparator/authHash helpers).
func Sum256(data ...[]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	var out [32]byte
	h.Sum(out[:0])
	return out
}

// Sum256Slice is Sum256 but returns a []byte instead of a fixed array, for
// call sites that immediately reslice the result (e.g. selector = hash[:4]).
func Sum256Slice(data ...[]byte) []byte {
	out := Sum256(data...)
	return out[:]
}

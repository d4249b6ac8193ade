// Package address derives EVM addresses from secp256k1 public keys
// (spec.md 4.1): Keccak-256 the 64-byte uncompressed key (no 0x04 prefix),
// take the low 20 bytes.
package address

import (
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ethdenver2026/relay/internal/codec/keccak"
	"github.com/ethdenver2026/relay/internal/types"
)

// FromUncompressedPubkey derives the Address for a 64-byte uncompressed
// public key (X||Y, no leading 0x04 byte).
func FromUncompressedPubkey(pub [64]byte) types.Address {
	h := keccak.Sum256(pub[:])
	var a types.Address
	copy(a[:], h[12:])
	return a
}

// FromCompressedPubkey decompresses a 33-byte compressed secp256k1 public
// key (as returned by the tECDSA oracle's public_key(path) method, spec.md
// 1) and derives its Address.
func FromCompressedPubkey(compressed []byte) (types.Address, error) {
	if len(compressed) != 33 {
		return types.Address{}, fmt.Errorf("address: compressed pubkey must be 33 bytes, got %d", len(compressed))
	}
	pub, err := crypto.DecompressPubkey(compressed)
	if err != nil {
		return types.Address{}, fmt.Errorf("address: invalid compressed pubkey: %w", err)
	}
	var uncompressed [64]byte
	xBytes := pub.X.Bytes()
	yBytes := pub.Y.Bytes()
	copy(uncompressed[32-len(xBytes):32], xBytes)
	copy(uncompressed[64-len(yBytes):64], yBytes)
	return FromUncompressedPubkey(uncompressed), nil
}

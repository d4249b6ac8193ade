// Package signer wraps the external tECDSA oracle (spec.md 1, 4.3): the
// relay never holds a raw private key in process memory (spec.md 9); it
// calls out to sign(path, digest) and locally derives the recovery id by
// recomputing the public key for each candidate.
//
// The concrete LocalOracle implementation in this repo signs with a plain
// in-process ecdsa key, grounded on the teacher's LocalFacilitator, which
// stands in for a production threshold-KMS client behind the same Oracle
// interface.
package signer

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/ethdenver2026/relay/internal/codec/address"
	"github.com/ethdenver2026/relay/internal/types"
)

// ErrSignerMismatch is returned when neither recovery-id candidate recovers
// to the configured relayer address (spec.md 4.3 step 4).
var ErrSignerMismatch = fmt.Errorf("signer_mismatch")

// secp256k1N is the order of the secp256k1 curve group.
var secp256k1N, _ = new(big.Int).SetString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141", 16)
var secp256k1HalfN = new(big.Int).Rsh(secp256k1N, 1)

// Oracle models the external threshold-ECDSA signer (spec.md 1): it knows
// nothing about Ethereum, only a derivation path and a 32-byte digest.
type Oracle interface {
	PublicKey(ctx context.Context, keyName string, path [][]byte) ([]byte, error)
	Sign(ctx context.Context, keyName string, path [][]byte, digest [32]byte) (r, s [32]byte, err error)
}

// Signer is component C3: normalizes signatures to low-s and derives the
// recovery id by brute force against the cached relayer address.
type Signer struct {
	oracle Oracle
}

// New creates a Signer around the given tECDSA Oracle.
func New(oracle Oracle) *Signer {
	return &Signer{oracle: oracle}
}

// Sign implements spec.md 4.3's sign(digest32) -> (r, s, v) algorithm.
// relayerAddress is the cached address this signature must recover to.
func (s *Signer) Sign(ctx context.Context, keyName string, path [][]byte, digest types.Hash, relayerAddress types.Address) (r, sOut [32]byte, yParity uint8, err error) {
	r, sOut, err = s.oracle.Sign(ctx, keyName, path, digest)
	if err != nil {
		return [32]byte{}, [32]byte{}, 0, fmt.Errorf("tecdsa sign: %w", err)
	}

	sBig := new(big.Int).SetBytes(sOut[:])
	if sBig.Cmp(secp256k1HalfN) > 0 {
		sBig = new(big.Int).Sub(secp256k1N, sBig)
		var normalized [32]byte
		b := sBig.Bytes()
		copy(normalized[32-len(b):], b)
		sOut = normalized
	}

	for candidate := uint8(0); candidate < 2; candidate++ {
		sig := make([]byte, 65)
		copy(sig[0:32], r[:])
		copy(sig[32:64], sOut[:])
		sig[64] = candidate

		pubBytes, recErr := gethcrypto.Ecrecover(digest[:], sig)
		if recErr != nil {
			continue
		}
		var uncompressed [64]byte
		copy(uncompressed[:], pubBytes[1:]) // drop the 0x04 prefix
		recovered := address.FromUncompressedPubkey(uncompressed)
		if recovered == relayerAddress {
			return r, sOut, candidate, nil
		}
	}

	return [32]byte{}, [32]byte{}, 0, ErrSignerMismatch
}

// DeriveAddress requests the compressed public key for path and derives its
// Address (spec.md 4.3: derive_address()).
func (s *Signer) DeriveAddress(ctx context.Context, keyName string, path [][]byte) (types.Address, error) {
	compressed, err := s.oracle.PublicKey(ctx, keyName, path)
	if err != nil {
		return types.Address{}, fmt.Errorf("tecdsa public_key: %w", err)
	}
	return address.FromCompressedPubkey(compressed)
}

// LocalOracle is an in-process Oracle backed by a plain ecdsa.PrivateKey.
// It satisfies the same interface a remote threshold-KMS client would, so
// swapping in production signing never touches signer.Signer's logic
// (spec.md 9: "do not add a cache the private key optimization" — this
// type exists only for local development / the mock-RPC test harness, not
// as the production design).
type LocalOracle struct {
	key *ecdsa.PrivateKey
}

// NewLocalOracle wraps an existing private key as a signer.Oracle.
func NewLocalOracle(key *ecdsa.PrivateKey) *LocalOracle {
	return &LocalOracle{key: key}
}

// PublicKey ignores keyName/path (a single local key serves every path) and
// returns the compressed secp256k1 public key.
func (o *LocalOracle) PublicKey(_ context.Context, _ string, _ [][]byte) ([]byte, error) {
	return gethcrypto.CompressPubkey(&o.key.PublicKey), nil
}

// Sign signs digest with the wrapped key and returns raw (r, s), uncorrected
// for canonical form — Signer.Sign performs the low-s normalization.
func (o *LocalOracle) Sign(_ context.Context, _ string, _ [][]byte, digest [32]byte) (r, s [32]byte, err error) {
	sig, err := gethcrypto.Sign(digest[:], o.key)
	if err != nil {
		return [32]byte{}, [32]byte{}, err
	}
	copy(r[:], sig[0:32])
	copy(s[:], sig[32:64])
	return r, s, nil
}

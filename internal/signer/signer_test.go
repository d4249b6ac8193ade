package signer

import (
	"context"
	"math/big"
	"testing"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethdenver2026/relay/internal/codec/address"
	"github.com/ethdenver2026/relay/internal/types"
)

func recoverAddress(t *testing.T, digest types.Hash, r, s [32]byte, yParity uint8) types.Address {
	t.Helper()
	sig := make([]byte, 65)
	copy(sig[0:32], r[:])
	copy(sig[32:64], s[:])
	sig[64] = yParity
	pubBytes, err := gethcrypto.Ecrecover(digest[:], sig)
	require.NoError(t, err)
	var uncompressed [64]byte
	copy(uncompressed[:], pubBytes[1:])
	return address.FromUncompressedPubkey(uncompressed)
}

func TestSign_RecoversToRelayerAddress(t *testing.T) {
	key, err := gethcrypto.GenerateKey()
	require.NoError(t, err)
	relayer := gethcrypto.PubkeyToAddress(key.PublicKey)
	var relayerAddr types.Address
	copy(relayerAddr[:], relayer.Bytes())

	s := New(NewLocalOracle(key))
	var digest types.Hash
	digest[0] = 0xaa
	digest[31] = 0x01

	r, sOut, yParity, err := s.Sign(context.Background(), "", nil, digest, relayerAddr)
	require.NoError(t, err)
	assert.True(t, yParity == 0 || yParity == 1)
	assert.Equal(t, relayerAddr, recoverAddress(t, digest, r, sOut, yParity))
}

func TestSign_MismatchedRelayerAddressErrors(t *testing.T) {
	key, err := gethcrypto.GenerateKey()
	require.NoError(t, err)

	s := New(NewLocalOracle(key))
	var digest types.Hash
	digest[0] = 0xbb

	var wrongAddr types.Address
	wrongAddr[0] = 0xff

	_, _, _, err = s.Sign(context.Background(), "", nil, digest, wrongAddr)
	assert.ErrorIs(t, err, ErrSignerMismatch)
}

func TestSign_NormalizesHighSToLowS(t *testing.T) {
	key, err := gethcrypto.GenerateKey()
	require.NoError(t, err)
	relayer := gethcrypto.PubkeyToAddress(key.PublicKey)
	var relayerAddr types.Address
	copy(relayerAddr[:], relayer.Bytes())

	s := New(NewLocalOracle(key))

	for i := byte(0); i < 20; i++ {
		var digest types.Hash
		digest[0] = i
		digest[10] = i * 3

		_, sOut, _, err := s.Sign(context.Background(), "", nil, digest, relayerAddr)
		require.NoError(t, err)

		sBig := new(big.Int).SetBytes(sOut[:])
		assert.True(t, sBig.Cmp(secp256k1HalfN) <= 0, "s value must be normalized to the lower half of the curve order")
	}
}

func TestDeriveAddress_MatchesGoEthereum(t *testing.T) {
	key, err := gethcrypto.GenerateKey()
	require.NoError(t, err)

	s := New(NewLocalOracle(key))
	addr, err := s.DeriveAddress(context.Background(), "", nil)
	require.NoError(t, err)

	var expected types.Address
	copy(expected[:], gethcrypto.PubkeyToAddress(key.PublicKey).Bytes())
	assert.Equal(t, expected, addr)
}

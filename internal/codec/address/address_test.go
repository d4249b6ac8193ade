package address

import (
	"testing"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

// TestFromCompressedPubkey_MatchesGoEthereum covers the address-determinism
// property: deriving an address from a key's compressed public key must
// agree with go-ethereum's own crypto.PubkeyToAddress for the same key.
func TestFromCompressedPubkey_MatchesGoEthereum(t *testing.T) {
	key, err := gethcrypto.GenerateKey()
	require.NoError(t, err)

	want := gethcrypto.PubkeyToAddress(key.PublicKey)
	compressed := gethcrypto.CompressPubkey(&key.PublicKey)

	got, err := FromCompressedPubkey(compressed)
	require.NoError(t, err)
	require.Equal(t, want.Bytes(), got[:])
}

func TestFromCompressedPubkey_RejectsWrongLength(t *testing.T) {
	_, err := FromCompressedPubkey([]byte{0x02, 0x01})
	require.Error(t, err)
}

func TestFromCompressedPubkey_Deterministic(t *testing.T) {
	key, err := gethcrypto.GenerateKey()
	require.NoError(t, err)
	compressed := gethcrypto.CompressPubkey(&key.PublicKey)

	a, err := FromCompressedPubkey(compressed)
	require.NoError(t, err)
	b, err := FromCompressedPubkey(compressed)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

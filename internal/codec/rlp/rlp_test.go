package rlp

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeUint_MinimalBigEndianNoLeadingZero(t *testing.T) {
	assert.Nil(t, EncodeUint(0))
	assert.Equal(t, []byte{0x01}, EncodeUint(1))
	assert.Equal(t, []byte{0x01, 0x00}, EncodeUint(256))
}

func TestEncodeString_ShortSingleByteIsItself(t *testing.T) {
	assert.Equal(t, []byte{0x7f}, EncodeString([]byte{0x7f}))
}

func TestEncodeString_EmptyIsSingleByteHeader(t *testing.T) {
	assert.Equal(t, []byte{0x80}, EncodeString(nil))
}

func TestEncodeString_LongStringUsesMultiByteHeader(t *testing.T) {
	long := make([]byte, 60)
	for i := range long {
		long[i] = byte(i)
	}
	encoded := EncodeString(long)
	assert.Equal(t, byte(0xb8), encoded[0])
	assert.Equal(t, byte(60), encoded[1])
	assert.Equal(t, long, encoded[2:])
}

func TestEncodeList_WrapsConcatenatedItems(t *testing.T) {
	items := EncodeList(EncodeString([]byte{0x01}), EncodeString([]byte{0x02}))
	payload, isList, consumed, err := Decode(items)
	require.NoError(t, err)
	assert.True(t, isList)
	assert.Equal(t, len(items), consumed)

	decodedItems, err := DecodeItems(payload)
	require.NoError(t, err)
	require.Len(t, decodedItems, 2)
}

func TestDecode_RoundTripsStringAndList(t *testing.T) {
	original := EncodeList(
		EncodeString(EncodeUint(9)),
		EncodeString([]byte("hello")),
	)
	payload, isList, consumed, err := Decode(original)
	require.NoError(t, err)
	assert.True(t, isList)
	assert.Equal(t, len(original), consumed)

	items, err := DecodeItems(payload)
	require.NoError(t, err)
	require.Len(t, items, 2)

	n, err := DecodeUint(items[0])
	require.NoError(t, err)
	assert.Equal(t, uint64(9), n)
}

func TestDecodeBigInt_MatchesEncodeBigInt(t *testing.T) {
	v := big.NewInt(123456789)
	encoded := EncodeString(EncodeBigInt(v))
	decoded, err := DecodeBigInt(encoded)
	require.NoError(t, err)
	assert.Equal(t, v, decoded)
}

func TestDecode_RejectsEmptyInput(t *testing.T) {
	_, _, _, err := Decode(nil)
	assert.Error(t, err)
}

func TestDecode_RejectsTruncatedString(t *testing.T) {
	_, _, _, err := Decode([]byte{0x83, 0x01, 0x02}) // claims 3-byte string, only 2 given
	assert.Error(t, err)
}

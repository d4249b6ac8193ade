package keccak

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSum256_KnownVectors(t *testing.T) {
	// Keccak-256 (not NIST SHA3-256) of the empty string and "abc", the two
	// most commonly cited test vectors for the Ethereum variant.
	empty := Sum256(nil)
	assert.Equal(t, "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", hex.EncodeToString(empty[:]))

	abc := Sum256([]byte("abc"))
	assert.Equal(t, "4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45", hex.EncodeToString(abc[:]))
}

func TestSum256_ConcatenatesArguments(t *testing.T) {
	whole := Sum256([]byte("hello world"))
	split := Sum256([]byte("hello "), []byte("world"))
	assert.Equal(t, whole, split)
}

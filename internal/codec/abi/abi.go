// Package abi packs the transferWithAuthorization calldata and decodes
// Solidity revert strings (spec.md 4.1, 4.5 step 8), grounded on the
// teacher's packTransferWithAuth.
package abi

import (
	"fmt"
	"math/big"

	"github.com/ethdenver2026/relay/internal/codec/keccak"
	"github.com/ethdenver2026/relay/internal/types"
)

// TransferWithAuthorizationSelector is the first 4 bytes of
// keccak256("transferWithAuthorization(address,address,uint256,uint256,uint256,bytes32,uint8,bytes32,bytes32)")
// (0xe3ee160e).
var TransferWithAuthorizationSelector = func() [4]byte {
	h := keccak.Sum256([]byte(
		"transferWithAuthorization(address,address,uint256,uint256,uint256,bytes32,uint8,bytes32,bytes32)",
	))
	var sel [4]byte
	copy(sel[:], h[:4])
	return sel
}()

// authorizationStateSelector is keccak256("authorizationState(address,bytes32)")[:4],
// used by the on-chain replay check (spec.md 4.5 step 7).
var authorizationStateSelector = func() [4]byte {
	h := keccak.Sum256([]byte("authorizationState(address,bytes32)"))
	var sel [4]byte
	copy(sel[:], h[:4])
	return sel
}()

// revertSelector is the selector of Solidity's built-in Error(string).
var revertSelector = [4]byte{0x08, 0xc3, 0x79, 0xa0}

func pad32(n *big.Int) []byte {
	b := n.Bytes()
	if len(b) >= 32 {
		return b[len(b)-32:]
	}
	padded := make([]byte, 32)
	copy(padded[32-len(b):], b)
	return padded
}

func addrPad(a types.Address) []byte {
	padded := make([]byte, 32)
	copy(padded[12:], a[:])
	return padded
}

// PackTransferWithAuthorization ABI-encodes the call to
// transferWithAuthorization(address,address,uint256,uint256,uint256,bytes32,uint8,bytes32,bytes32).
// Every argument is scalar, so the head-only encoding of spec.md 4.1 applies:
// selector followed by nine 32-byte slots, no tail section.
func PackTransferWithAuthorization(
	from, to types.Address,
	value *big.Int,
	validAfter, validBefore int64,
	nonce types.Nonce32,
	v uint8,
	r, s [32]byte,
) []byte {
	data := make([]byte, 4+9*32)
	copy(data[:4], TransferWithAuthorizationSelector[:])
	off := 4
	copy(data[off:off+32], addrPad(from))
	off += 32
	copy(data[off:off+32], addrPad(to))
	off += 32
	copy(data[off:off+32], pad32(value))
	off += 32
	copy(data[off:off+32], pad32(big.NewInt(validAfter)))
	off += 32
	copy(data[off:off+32], pad32(big.NewInt(validBefore)))
	off += 32
	copy(data[off:off+32], nonce[:])
	off += 32
	data[off+31] = v
	off += 32
	copy(data[off:off+32], r[:])
	off += 32
	copy(data[off:off+32], s[:])
	return data
}

// PackAuthorizationState ABI-encodes authorizationState(address,bytes32),
// the on-chain replay-detection call (spec.md 4.5 step 7).
func PackAuthorizationState(from types.Address, nonce types.Nonce32) []byte {
	data := make([]byte, 4+2*32)
	copy(data[:4], authorizationStateSelector[:])
	copy(data[4:36], addrPad(from))
	copy(data[36:68], nonce[:])
	return data
}

// DecodeRevertString extracts the human-readable message from Solidity
// revert data shaped as Error(string): selector 0x08c379a0 followed by the
// ABI encoding of a single string. Returns ok=false if data isn't shaped
// that way (e.g. a custom error or panic code), in which case callers
// should fall back to the raw hex.
func DecodeRevertString(data []byte) (msg string, ok bool) {
	if len(data) < 4 || data[0] != revertSelector[0] || data[1] != revertSelector[1] ||
		data[2] != revertSelector[2] || data[3] != revertSelector[3] {
		return "", false
	}
	body := data[4:]
	if len(body) < 64 {
		return "", false
	}
	offset := new(big.Int).SetBytes(body[0:32]).Uint64()
	if offset+32 > uint64(len(body)) {
		return "", false
	}
	strLen := new(big.Int).SetBytes(body[offset : offset+32]).Uint64()
	start := offset + 32
	end := start + strLen
	if end > uint64(len(body)) {
		return "", false
	}
	return string(body[start:end]), true
}

// DecodeUint256 decodes a single 32-byte ABI-encoded uint256 from an
// eth_call result, used for the authorizationState(from, nonce) check.
func DecodeUint256(data []byte) (*big.Int, error) {
	if len(data) < 32 {
		return nil, fmt.Errorf("abi: result too short for uint256: %d bytes", len(data))
	}
	return new(big.Int).SetBytes(data[len(data)-32:]), nil
}

// Package rlp implements just enough RLP to build and decode the typed
// EIP-1559 (tx type 0x02) envelope spec.md 4.1 pins bit-exactly:
//
//	0x02 || rlp([chainId, nonce, maxPriorityFeePerGas, maxFeePerGas,
//	            gasLimit, to, value, data, accessList])
//
// go-ethereum's own rlp package targets its internal types.Transaction
// struct via reflection; this relay needs a narrower, auditable encoder
// for exactly one envelope shape, so it is hand-rolled (see DESIGN.md).
package rlp

import (
	"encoding/binary"
	"fmt"
	"math/big"
)

// EncodeUint encodes a non-negative integer as minimal big-endian bytes
// with no leading zero byte; zero encodes as the empty byte string
// (spec.md 4.1).
func EncodeUint(v uint64) []byte {
	if v == 0 {
		return nil
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	i := 0
	for i < len(buf) && buf[i] == 0 {
		i++
	}
	return buf[i:]
}

// EncodeBigInt encodes a non-negative big.Int the same way: minimal
// big-endian, zero as empty string.
func EncodeBigInt(v *big.Int) []byte {
	if v == nil || v.Sign() == 0 {
		return nil
	}
	return v.Bytes()
}

// EncodeString RLP-encodes a byte string item.
func EncodeString(b []byte) []byte {
	if len(b) == 1 && b[0] < 0x80 {
		return b
	}
	return append(encodeLength(len(b), 0x80, 0xb7, 0xb8), b...)
}

// EncodeList RLP-encodes a sequence of already-encoded items as a list.
func EncodeList(items ...[]byte) []byte {
	var payload []byte
	for _, it := range items {
		payload = append(payload, it...)
	}
	return append(encodeLength(len(payload), 0xc0, 0xf7, 0xf8), payload...)
}

// encodeLength builds the RLP length prefix for a string (shortBase=0x80) or
// list (shortBase=0xc0). shortMax is the last single-byte-header length
// (0xb7 for strings, 0xf7 for lists); longBase is the first multi-byte
// header code (0xb8 / 0xf8).
func encodeLength(n int, shortBase, shortMax, longBase byte) []byte {
	if n <= int(shortMax-shortBase) {
		return []byte{shortBase + byte(n)}
	}
	lenBytes := EncodeUint(uint64(n))
	return append([]byte{longBase + byte(len(lenBytes))}, lenBytes...)
}

// Decode parses a single RLP item (string or list) from b, returning its
// payload (the raw bytes of a string, or the still-encoded concatenated
// items of a list), whether it was a list, and the number of bytes
// consumed from b.
func Decode(b []byte) (payload []byte, isList bool, consumed int, err error) {
	if len(b) == 0 {
		return nil, false, 0, fmt.Errorf("rlp: empty input")
	}
	first := b[0]
	switch {
	case first < 0x80:
		return b[0:1], false, 1, nil
	case first <= 0xb7:
		n := int(first - 0x80)
		if len(b) < 1+n {
			return nil, false, 0, fmt.Errorf("rlp: short string truncated")
		}
		return b[1 : 1+n], false, 1 + n, nil
	case first <= 0xbf:
		lenOfLen := int(first - 0xb7)
		if len(b) < 1+lenOfLen {
			return nil, false, 0, fmt.Errorf("rlp: long string header truncated")
		}
		n := decodeBigEndianLen(b[1 : 1+lenOfLen])
		if len(b) < 1+lenOfLen+n {
			return nil, false, 0, fmt.Errorf("rlp: long string truncated")
		}
		return b[1+lenOfLen : 1+lenOfLen+n], false, 1 + lenOfLen + n, nil
	case first <= 0xf7:
		n := int(first - 0xc0)
		if len(b) < 1+n {
			return nil, false, 0, fmt.Errorf("rlp: short list truncated")
		}
		return b[1 : 1+n], true, 1 + n, nil
	default:
		lenOfLen := int(first - 0xf7)
		if len(b) < 1+lenOfLen {
			return nil, false, 0, fmt.Errorf("rlp: long list header truncated")
		}
		n := decodeBigEndianLen(b[1 : 1+lenOfLen])
		if len(b) < 1+lenOfLen+n {
			return nil, false, 0, fmt.Errorf("rlp: long list truncated")
		}
		return b[1+lenOfLen : 1+lenOfLen+n], true, 1 + lenOfLen + n, nil
	}
}

// DecodeItems splits a list payload (as returned by Decode) into its
// individual still-encoded items.
func DecodeItems(payload []byte) ([][]byte, error) {
	var items [][]byte
	for len(payload) > 0 {
		_, _, n, err := Decode(payload)
		if err != nil {
			return nil, err
		}
		items = append(items, payload[:n])
		payload = payload[n:]
	}
	return items, nil
}

// DecodeUint decodes an RLP string item as a big-endian unsigned integer.
func DecodeUint(b []byte) (uint64, error) {
	payload, isList, _, err := Decode(b)
	if err != nil {
		return 0, err
	}
	if isList {
		return 0, fmt.Errorf("rlp: expected string, got list")
	}
	if len(payload) > 8 {
		return 0, fmt.Errorf("rlp: uint overflow")
	}
	var buf [8]byte
	copy(buf[8-len(payload):], payload)
	return binary.BigEndian.Uint64(buf[:]), nil
}

// DecodeBigInt decodes an RLP string item as a big-endian big.Int.
func DecodeBigInt(b []byte) (*big.Int, error) {
	payload, isList, _, err := Decode(b)
	if err != nil {
		return nil, err
	}
	if isList {
		return nil, fmt.Errorf("rlp: expected string, got list")
	}
	return new(big.Int).SetBytes(payload), nil
}

func decodeBigEndianLen(b []byte) int {
	n := 0
	for _, c := range b {
		n = n<<8 | int(c)
	}
	return n
}

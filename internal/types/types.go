// Package types holds the wire-and-memory data model shared by every
// relay component: addresses, hashes, nonces, the asset registry, the
// process-wide config, and the log entry shape.
package types

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Address is a 20-byte EVM account address.
type Address [20]byte

// Hash is a 32-byte keccak digest or transaction hash.
type Hash [32]byte

// Nonce32 is the 32-byte EIP-3009 authorization nonce, chosen by the signer.
type Nonce32 [32]byte

// ZeroAddress is the EVM null address.
var ZeroAddress = Address{}

// ParseAddress decodes a 0x-prefixed or bare hex string into an Address.
func ParseAddress(s string) (Address, error) {
	b, err := decodeHex(s)
	if err != nil {
		return Address{}, err
	}
	if len(b) != 20 {
		return Address{}, fmt.Errorf("address must be 20 bytes, got %d", len(b))
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

// ParseHash decodes a 0x-prefixed or bare hex string into a Hash.
func ParseHash(s string) (Hash, error) {
	b, err := decodeHex(s)
	if err != nil {
		return Hash{}, err
	}
	if len(b) != 32 {
		return Hash{}, fmt.Errorf("hash must be 32 bytes, got %d", len(b))
	}
	var h Hash
	copy(h[:], b)
	return h, nil
}

// ParseNonce32 decodes a 0x-prefixed or bare hex string into a Nonce32.
func ParseNonce32(s string) (Nonce32, error) {
	h, err := ParseHash(s)
	return Nonce32(h), err
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	return hex.DecodeString(s)
}

// Hex returns the lowercase 0x-prefixed hex encoding.
func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

// Hex returns the lowercase 0x-prefixed hex encoding.
func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

// Hex returns the lowercase 0x-prefixed hex encoding.
func (n Nonce32) Hex() string { return "0x" + hex.EncodeToString(n[:]) }

func (a Address) String() string { return a.Hex() }
func (h Hash) String() string    { return h.Hex() }
func (n Nonce32) String() string { return n.Hex() }

// MarshalText implements encoding.TextMarshaler so Address round-trips
// through JSON as a 0x-hex string at the HTTP boundary.
func (a Address) MarshalText() ([]byte, error) { return []byte(a.Hex()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(b []byte) error {
	v, err := ParseAddress(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (h Hash) MarshalText() ([]byte, error) { return []byte(h.Hex()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(b []byte) error {
	v, err := ParseHash(string(b))
	if err != nil {
		return err
	}
	*h = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (n Nonce32) MarshalText() ([]byte, error) { return []byte(n.Hex()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *Nonce32) UnmarshalText(b []byte) error {
	v, err := ParseNonce32(string(b))
	if err != nil {
		return err
	}
	*n = v
	return nil
}

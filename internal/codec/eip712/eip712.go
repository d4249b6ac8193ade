// Package eip712 computes the EIP-712 typed-data digest for EIP-3009's
// TransferWithAuthorization struct (spec.md 4.1), generalized from the
// teacher's hardcoded USDC domain to accept any per-asset domain name and
// version (SPEC_FULL.md 4.9).
package eip712

import (
	"math/big"

	"github.com/ethdenver2026/relay/internal/codec/keccak"
	"github.com/ethdenver2026/relay/internal/types"
)

// DomainTypeHash is keccak256("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)").
var DomainTypeHash = keccak.Sum256([]byte(
	"EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)",
))

// TransferWithAuthorizationTypeHash is keccak256 of the TWA struct signature
// (spec.md 4.1).
var TransferWithAuthorizationTypeHash = keccak.Sum256([]byte(
	"TransferWithAuthorization(address from,address to,uint256 value,uint256 validAfter,uint256 validBefore,bytes32 nonce)",
))

func pad32(n *big.Int) []byte {
	if n == nil {
		return make([]byte, 32)
	}
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

// DomainSeparator computes domainSeparator per spec.md 4.1.
func DomainSeparator(name, version string, chainID uint64, verifyingContract types.Address) types.Hash {
	nameHash := keccak.Sum256([]byte(name))
	versionHash := keccak.Sum256([]byte(version))
	return keccak.Sum256(
		DomainTypeHash[:],
		nameHash[:],
		versionHash[:],
		pad32(new(big.Int).SetUint64(chainID)),
		addrPad(verifyingContract),
	)
}

// StructHash computes structHash(TransferWithAuthorization) per spec.md 4.1.
func StructHash(from, to types.Address, value *big.Int, validAfter, validBefore int64, nonce types.Nonce32) types.Hash {
	return keccak.Sum256(
		TransferWithAuthorizationTypeHash[:],
		addrPad(from),
		addrPad(to),
		pad32(value),
		pad32(big.NewInt(validAfter)),
		pad32(big.NewInt(validBefore)),
		nonce[:],
	)
}

// Digest computes keccak256(0x1901 || domainSeparator || structHash), the
// value that must be tECDSA-signed or brought to ecrecover (spec.md 4.1).
func Digest(domainSeparator, structHash types.Hash) types.Hash {
	return keccak.Sum256([]byte{0x19, 0x01}, domainSeparator[:], structHash[:])
}

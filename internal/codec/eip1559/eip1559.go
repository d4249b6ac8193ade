// Package eip1559 builds and decodes the type-0x02 fee-market transaction
// envelope spec.md 4.1 pins bit-exactly, and computes its keccak256 hash.
package eip1559

import (
	"fmt"
	"math/big"

	"github.com/ethdenver2026/relay/internal/codec/keccak"
	"github.com/ethdenver2026/relay/internal/codec/rlp"
	"github.com/ethdenver2026/relay/internal/types"
)

// TxType is the EIP-2718 envelope type byte for a dynamic-fee transaction.
const TxType byte = 0x02

// Tx is the unsigned body of a type-0x02 transaction. AccessList is always
// empty in this relay (spec.md 4.1: "access_list is the empty list").
type Tx struct {
	ChainID              uint64
	Nonce                uint64
	MaxPriorityFeePerGas *big.Int
	MaxFeePerGas         *big.Int
	GasLimit             uint64
	To                   types.Address
	Value                *big.Int
	Data                 []byte
}

// Signature is the (y_parity, r, s) triple appended to an unsigned Tx body
// to produce the signed envelope.
type Signature struct {
	YParity uint8
	R       [32]byte
	S       [32]byte
}

func (t Tx) encodeFields() [][]byte {
	toData := make([]byte, 20)
	copy(toData, t.To[:])
	return [][]byte{
		rlp.EncodeString(rlp.EncodeUint(t.ChainID)),
		rlp.EncodeString(rlp.EncodeUint(t.Nonce)),
		rlp.EncodeString(rlp.EncodeBigInt(t.MaxPriorityFeePerGas)),
		rlp.EncodeString(rlp.EncodeBigInt(t.MaxFeePerGas)),
		rlp.EncodeString(rlp.EncodeUint(t.GasLimit)),
		rlp.EncodeString(toData),
		rlp.EncodeString(rlp.EncodeBigInt(t.Value)),
		rlp.EncodeString(t.Data),
		rlp.EncodeList(), // access_list: empty
	}
}

// SigningHash returns the keccak256 digest that must be tECDSA-signed to
// authorize this transaction: keccak256(0x02 || rlp(unsigned fields)).
func (t Tx) SigningHash() types.Hash {
	body := append([]byte{TxType}, rlp.EncodeList(t.encodeFields()...)...)
	return keccak.Sum256(body)
}

// Encode produces the signed envelope bytes: 0x02 || rlp(fields ++ [y_parity, r, s]).
func (t Tx) Encode(sig Signature) []byte {
	fields := t.encodeFields()
	fields = append(fields,
		rlp.EncodeString(rlp.EncodeUint(uint64(sig.YParity))),
		rlp.EncodeString(sig.R[:]),
		rlp.EncodeString(sig.S[:]),
	)
	return append([]byte{TxType}, rlp.EncodeList(fields...)...)
}

// Hash returns keccak256 of the fully signed envelope — the transaction
// hash the relay reports back to the caller (spec.md 4.1).
func Hash(signedEnvelope []byte) types.Hash {
	return keccak.Sum256(signedEnvelope)
}

// Decode parses a signed type-0x02 envelope back into its Tx body and
// Signature, used by the codec round-trip test (spec.md 8 property 1).
func Decode(envelope []byte) (Tx, Signature, error) {
	if len(envelope) == 0 || envelope[0] != TxType {
		return Tx{}, Signature{}, fmt.Errorf("eip1559: not a type-0x02 envelope")
	}
	payload, isList, _, err := rlp.Decode(envelope[1:])
	if err != nil {
		return Tx{}, Signature{}, err
	}
	if !isList {
		return Tx{}, Signature{}, fmt.Errorf("eip1559: envelope body is not a list")
	}
	items, err := rlp.DecodeItems(payload)
	if err != nil {
		return Tx{}, Signature{}, err
	}
	if len(items) != 12 {
		return Tx{}, Signature{}, fmt.Errorf("eip1559: expected 12 fields, got %d", len(items))
	}

	chainID, err := rlp.DecodeUint(items[0])
	if err != nil {
		return Tx{}, Signature{}, err
	}
	nonce, err := rlp.DecodeUint(items[1])
	if err != nil {
		return Tx{}, Signature{}, err
	}
	tip, err := rlp.DecodeBigInt(items[2])
	if err != nil {
		return Tx{}, Signature{}, err
	}
	feeCap, err := rlp.DecodeBigInt(items[3])
	if err != nil {
		return Tx{}, Signature{}, err
	}
	gasLimit, err := rlp.DecodeUint(items[4])
	if err != nil {
		return Tx{}, Signature{}, err
	}
	toBytes, _, _, err := rlp.Decode(items[5])
	if err != nil {
		return Tx{}, Signature{}, err
	}
	var to types.Address
	copy(to[:], toBytes)
	value, err := rlp.DecodeBigInt(items[6])
	if err != nil {
		return Tx{}, Signature{}, err
	}
	data, _, _, err := rlp.Decode(items[7])
	if err != nil {
		return Tx{}, Signature{}, err
	}

	yParity, err := rlp.DecodeUint(items[9])
	if err != nil {
		return Tx{}, Signature{}, err
	}
	rBytes, _, _, err := rlp.Decode(items[10])
	if err != nil {
		return Tx{}, Signature{}, err
	}
	sBytes, _, _, err := rlp.Decode(items[11])
	if err != nil {
		return Tx{}, Signature{}, err
	}

	var sig Signature
	sig.YParity = uint8(yParity)
	copy(sig.R[32-len(rBytes):], rBytes)
	copy(sig.S[32-len(sBytes):], sBytes)

	tx := Tx{
		ChainID:              chainID,
		Nonce:                nonce,
		MaxPriorityFeePerGas: tip,
		MaxFeePerGas:         feeCap,
		GasLimit:             gasLimit,
		To:                   to,
		Value:                value,
		Data:                 data,
	}
	return tx, sig, nil
}

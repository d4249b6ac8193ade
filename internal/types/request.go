package types

import "math/big"

// Authorization is the off-chain EIP-3009 TransferWithAuthorization input
// (spec.md 3). The relay never verifies (r, s) cryptographically itself —
// the on-chain token's authorizationState/transferWithAuthorization does
// that; the relay only shapes, admits, and broadcasts it.
type Authorization struct {
	AssetID     string
	From        Address
	To          Address
	Value       *big.Int
	ValidAfter  int64
	ValidBefore int64
	Nonce       Nonce32
	V           uint8
	R           [32]byte
	S           [32]byte
}

// PlannedFees is the output of the fee planner (C6): the three EIP-1559
// fields the coordinator needs to build the typed envelope.
type PlannedFees struct {
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
	GasLimit             uint64
}

// SignedTx is a fully built and signed EIP-1559 envelope ready to broadcast.
type SignedTx struct {
	RawBytes []byte
	TxHash   Hash
}

package rpcoracle

import (
	"context"
	"math/big"

	"github.com/ethdenver2026/relay/internal/types"
)

// Oracle is the typed surface the admission chain, fee planner, and
// coordinator depend on. *Client implements it; tests substitute a mock.
type Oracle interface {
	EthCall(ctx context.Context, msg CallMsg) ([]byte, error)
	EstimateGas(ctx context.Context, msg CallMsg) (uint64, error)
	GetBalance(ctx context.Context, addr types.Address) (*big.Int, error)
	GetTransactionCount(ctx context.Context, addr types.Address, blockTag string) (uint64, error)
	GetBlockByNumber(ctx context.Context) (Block, error)
	MaxPriorityFeePerGas(ctx context.Context) (*big.Int, error)
	SendRawTransaction(ctx context.Context, rawTx []byte) (types.Hash, error)
}

var _ Oracle = (*Client)(nil)

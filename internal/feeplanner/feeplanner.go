// Package feeplanner implements C6: base fee + priority fee + gas estimate
// -> maxFeePerGas, maxPriorityFeePerGas, gasLimit (spec.md 4.6), grounded
// on the teacher's Settle() fee math (tip := 1 gwei, feeCap := baseFee+tip,
// gasLimit := estimate*12/10), generalized to the configurable multipliers
// and the 80,000 gas floor the relay adds.
package feeplanner

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethdenver2026/relay/internal/rpcoracle"
	"github.com/ethdenver2026/relay/internal/store"
	"github.com/ethdenver2026/relay/internal/types"
)

// FallbackTipWei is the 1 gwei fallback priority fee used when the oracle
// omits eth_maxPriorityFeePerGas (spec.md 4.6).
var FallbackTipWei = big.NewInt(1_000_000_000)

// MinGasLimit is the floor gasLimit regardless of estimate (spec.md 4.6).
const MinGasLimit = 80_000

// Planner is component C6.
type Planner struct {
	Oracle rpcoracle.Oracle
}

// New creates a Planner.
func New(oracle rpcoracle.Oracle) *Planner {
	return &Planner{Oracle: oracle}
}

// Plan computes PlannedFees for one call to msg, using cfg's multipliers
// (spec.md 4.6).
func (p *Planner) Plan(ctx context.Context, cfg store.Config, msg rpcoracle.CallMsg) (types.PlannedFees, error) {
	block, err := p.Oracle.GetBlockByNumber(ctx)
	if err != nil {
		return types.PlannedFees{}, fmt.Errorf("estimation_fail: fetching latest block: %w", err)
	}
	if block.BaseFeePerGas == nil {
		return types.PlannedFees{}, fmt.Errorf("estimation_fail: no baseFee")
	}

	tip, err := p.Oracle.MaxPriorityFeePerGas(ctx)
	if err != nil || tip == nil || tip.Sign() == 0 {
		tip = new(big.Int).Set(FallbackTipWei)
	}

	priorityMultiplier := cfg.PriorityMultiplier
	if priorityMultiplier == 0 {
		priorityMultiplier = types.DefaultPriorityMultiplier
	}
	maxFeeMultiplier := cfg.MaxFeeMultiplier
	if maxFeeMultiplier == 0 {
		maxFeeMultiplier = types.DefaultMaxFeeMultiplier
	}

	maxPriorityFeePerGas := ceilMultiply(tip, priorityMultiplier)
	maxFeePerGas := new(big.Int).Add(ceilMultiply(block.BaseFeePerGas, maxFeeMultiplier), maxPriorityFeePerGas)

	estimate, err := p.Oracle.EstimateGas(ctx, msg)
	if err != nil {
		return types.PlannedFees{}, fmt.Errorf("estimation_fail: eth_estimateGas: %w", err)
	}
	gasLimit := ceilDiv(estimate*12, 10)
	if gasLimit < MinGasLimit {
		gasLimit = MinGasLimit
	}

	return types.PlannedFees{
		MaxFeePerGas:         maxFeePerGas,
		MaxPriorityFeePerGas: maxPriorityFeePerGas,
		GasLimit:             gasLimit,
	}, nil
}

// ceilMultiply computes ceil(v * mult) for a non-negative big.Int v and a
// float32 multiplier, avoiding floating-point error accumulation on large
// wei values by doing the multiplication in fixed-point (parts-per-million).
func ceilMultiply(v *big.Int, mult float32) *big.Int {
	const scale = 1_000_000
	scaled := big.NewInt(int64(mult * scale))
	product := new(big.Int).Mul(v, scaled)
	return ceilDivBig(product, big.NewInt(scale))
}

func ceilDivBig(num, den *big.Int) *big.Int {
	q, r := new(big.Int).QuoRem(num, den, new(big.Int))
	if r.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}

func ceilDiv(num, den uint64) uint64 {
	if den == 0 {
		return 0
	}
	return (num + den - 1) / den
}

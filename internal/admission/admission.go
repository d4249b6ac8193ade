// Package admission implements C5: the fixed-order pre-broadcast validation
// chain (spec.md 4.5). Every step returns a typed Reason and short-circuits
// on the first failure.
package admission

import (
	"context"
	"fmt"
	"time"

	"github.com/ethdenver2026/relay/internal/codec/abi"
	"github.com/ethdenver2026/relay/internal/rpcoracle"
	"github.com/ethdenver2026/relay/internal/store"
	"github.com/ethdenver2026/relay/internal/types"
)

// Reason is one of the stable admission failure codes of spec.md 6.1.
type Reason string

const (
	ReasonPaused           Reason = "paused"
	ReasonAssetDisabled    Reason = "asset_disabled"
	ReasonBadInput         Reason = "bad_input"
	ReasonExpired          Reason = "expired"
	ReasonNotYetValid      Reason = "not_yet_valid"
	ReasonUnconfigured     Reason = "unconfigured"
	ReasonRateLimited      Reason = "rate_limited"
	ReasonDailyCapExceeded Reason = "daily_cap_exceeded"
	ReasonDoubleSpend      Reason = "double_spend"
	ReasonEstimationFail   Reason = "estimation_fail"
	ReasonGasEmpty         Reason = "gas_empty"
)

// Failure wraps a Reason with the internal detail that goes to the log but
// never to the caller (spec.md 7: "the log always carries the internal
// reason string; the API response carries only the stable code").
type Failure struct {
	Reason Reason
	Detail string

	// ReservationHeld is true when the admission chain reserved the
	// (from, nonce) slot and the caller must NOT release it (permanent
	// on-chain double-spend, spec.md 4.5 step 7 / 4.7).
	ReservationHeld bool
}

func (f *Failure) Error() string {
	if f.Detail == "" {
		return string(f.Reason)
	}
	return fmt.Sprintf("%s: %s", f.Reason, f.Detail)
}

func fail(reason Reason, detail string) *Failure {
	return &Failure{Reason: reason, Detail: detail}
}

// Result is the priced plan handed to the fee planner on success.
type Result struct {
	Asset types.AssetEntry
}

// Checker runs the C5 admission chain against one store snapshot + oracle.
type Checker struct {
	Store  *store.Store
	Oracle rpcoracle.Oracle
}

// New creates a Checker.
func New(s *store.Store, oracle rpcoracle.Oracle) *Checker {
	return &Checker{Store: s, Oracle: oracle}
}

// Check runs the fixed 9-step chain of spec.md 4.5 against auth, using the
// config snapshot cfg (already copied at the start of submit, spec.md 9)
// and now as the wall-clock reference. On success it has already reserved
// the (from, nonce) slot in the store; the caller owns releasing it on any
// later failure before broadcast.
func (c *Checker) Check(ctx context.Context, cfg store.Config, auth types.Authorization, now time.Time) (Result, *Failure) {
	// 1. paused
	if cfg.Paused {
		return Result{}, fail(ReasonPaused, "")
	}

	// 2. asset active
	asset, ok := c.Store.AssetLookup(auth.AssetID)
	if !ok || asset.Status != types.AssetActive {
		return Result{}, fail(ReasonAssetDisabled, fmt.Sprintf("asset %q", auth.AssetID))
	}

	// 3. basic shape
	if auth.Value == nil || auth.Value.Sign() <= 0 {
		return Result{}, fail(ReasonBadInput, "value must be positive")
	}
	if auth.From == auth.To {
		return Result{}, fail(ReasonBadInput, "from == to")
	}
	if auth.From == types.ZeroAddress {
		return Result{}, fail(ReasonBadInput, "from is the zero address")
	}

	// 4. validity window
	nowUnix := now.Unix()
	if nowUnix >= auth.ValidBefore {
		return Result{}, fail(ReasonExpired, fmt.Sprintf("now=%d validBefore=%d", nowUnix, auth.ValidBefore))
	}
	if nowUnix < auth.ValidAfter {
		return Result{}, fail(ReasonNotYetValid, fmt.Sprintf("now=%d validAfter=%d", nowUnix, auth.ValidAfter))
	}

	// 5. chain configured
	if cfg.ChainID == 0 {
		return Result{}, fail(ReasonUnconfigured, "chain_id not set")
	}

	// 6. reserve (rate/cap/idempotency)
	switch c.Store.ReserveAuthorization(auth.From, auth.Nonce, auth.Value, now) {
	case store.ReserveRateExceeded:
		return Result{}, fail(ReasonRateLimited, "")
	case store.ReserveDailyCapExceeded:
		return Result{}, fail(ReasonDailyCapExceeded, "")
	case store.ReserveAlreadySeen:
		return Result{}, fail(ReasonDoubleSpend, "seen in-memory idempotency index")
	}
	c.Store.RefreshIdempotencyExpiry(auth.From, auth.Nonce, time.Unix(auth.ValidBefore, 0))

	// 7. on-chain replay check
	stateData, err := c.Oracle.EthCall(ctx, rpcoracle.CallMsg{
		From: cfg.RelayerAddress,
		To:   asset.EVMAddress,
		Data: abi.PackAuthorizationState(auth.From, auth.Nonce),
	})
	if err != nil {
		c.Store.ReleaseAuthorization(auth.From, auth.Nonce, auth.Value)
		return Result{}, fail(ReasonEstimationFail, fmt.Sprintf("authorizationState call failed: %v", err))
	}
	stateVal, err := abi.DecodeUint256(stateData)
	if err != nil {
		c.Store.ReleaseAuthorization(auth.From, auth.Nonce, auth.Value)
		return Result{}, fail(ReasonEstimationFail, fmt.Sprintf("authorizationState decode failed: %v", err))
	}
	if stateVal.Sign() != 0 {
		// On-chain replay is permanent: the reservation stays (spec.md 4.5
		// step 7, 4.7 "Validate failure... reservation released unless the
		// failure is DoubleSpend from on-chain state, which is permanent").
		return Result{}, &Failure{Reason: ReasonDoubleSpend, Detail: "authorizationState already set on-chain", ReservationHeld: true}
	}

	// 8. static execution
	callData := abi.PackTransferWithAuthorization(auth.From, auth.To, auth.Value, auth.ValidAfter, auth.ValidBefore, auth.Nonce, auth.V, auth.R, auth.S)
	_, err = c.Oracle.EthCall(ctx, rpcoracle.CallMsg{
		From: cfg.RelayerAddress,
		To:   asset.EVMAddress,
		Data: callData,
	})
	if err != nil {
		c.Store.ReleaseAuthorization(auth.From, auth.Nonce, auth.Value)
		reason := "static execution reverted"
		if revertData, ok := extractRevertData(err); ok {
			if msg, ok := abi.DecodeRevertString(revertData); ok {
				reason = msg
			}
		}
		return Result{}, fail(ReasonEstimationFail, reason)
	}

	// 9. gas sufficiency
	balance, err := c.Oracle.GetBalance(ctx, cfg.RelayerAddress)
	if err != nil {
		c.Store.ReleaseAuthorization(auth.From, auth.Nonce, auth.Value)
		return Result{}, fail(ReasonEstimationFail, fmt.Sprintf("balance check failed: %v", err))
	}
	if cfg.ThresholdWei != nil && balance.Cmp(cfg.ThresholdWei) < 0 {
		c.Store.ReleaseAuthorization(auth.From, auth.Nonce, auth.Value)
		return Result{}, fail(ReasonGasEmpty, fmt.Sprintf("balance=%s threshold=%s", balance, cfg.ThresholdWei))
	}

	return Result{Asset: asset}, nil
}

// extractRevertData pulls the revert payload out of an RPCApplication
// error's `data` field, the de facto convention nodes use to surface
// Solidity revert bytes on a reverted eth_call (spec.md 4.5 step 8).
func extractRevertData(err error) ([]byte, bool) {
	var appErr *rpcoracle.RPCApplication
	if e, ok := err.(*rpcoracle.RPCApplication); ok {
		appErr = e
	} else {
		return nil, false
	}
	if len(appErr.Data) == 0 {
		return nil, false
	}
	return appErr.Data, true
}

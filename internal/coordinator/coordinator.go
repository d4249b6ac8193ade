// Package coordinator implements C7: orchestrates admission (C5), fee
// planning (C6), codec (C1), signing (C3), and broadcast (C2), and owns
// the submission mutex that serializes account-nonce usage across
// concurrent submissions (spec.md 4.7, 5).
package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ethdenver2026/relay/internal/admission"
	"github.com/ethdenver2026/relay/internal/codec/abi"
	"github.com/ethdenver2026/relay/internal/codec/eip1559"
	"github.com/ethdenver2026/relay/internal/feeplanner"
	"github.com/ethdenver2026/relay/internal/rpcoracle"
	"github.com/ethdenver2026/relay/internal/signer"
	"github.com/ethdenver2026/relay/internal/store"
	"github.com/ethdenver2026/relay/internal/types"
)

// Code is the stable, caller-facing error code of spec.md 6.1.
type Code string

const (
	CodePaused           Code = "paused"
	CodeAssetDisabled    Code = "asset_disabled"
	CodeBadInput         Code = "bad_input"
	CodeExpired          Code = "expired"
	CodeNotYetValid      Code = "not_yet_valid"
	CodeUnconfigured     Code = "unconfigured"
	CodeRateLimited      Code = "rate_limited"
	CodeDailyCapExceeded Code = "daily_cap_exceeded"
	CodeDoubleSpend      Code = "double_spend"
	CodeEstimationFail   Code = "estimation_fail"
	CodeGasEmpty         Code = "gas_empty"
	CodeSignerMismatch   Code = "signer_mismatch"
	CodeBroadcastFail    Code = "broadcast_fail"
	CodeRPCTransport     Code = "rpc_transport"
	CodeRPCApplication   Code = "rpc_application"
)

// SubmitError is returned by Submit; Code is safe to hand back to the
// caller, Internal is only ever logged (spec.md 7).
type SubmitError struct {
	Code     Code
	Internal string
}

func (e *SubmitError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Internal) }

// Coordinator is component C7.
type Coordinator struct {
	store   *store.Store
	oracle  rpcoracle.Oracle
	signer  *signer.Signer
	planner *feeplanner.Planner
	checker *admission.Checker

	// submitMu serializes one submission's Validate..Broadcast critical
	// section so that the relayer's account-nonce window is never raced
	// (spec.md 5: "at most one in-flight transaction occupies the
	// relayer's account-nonce window").
	submitMu sync.Mutex

	log *slog.Logger
}

// New builds a Coordinator around the given collaborators.
func New(s *store.Store, oracle rpcoracle.Oracle, sgn *signer.Signer, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		store:   s,
		oracle:  oracle,
		signer:  sgn,
		planner: feeplanner.New(oracle),
		checker: admission.New(s, oracle),
		log:     logger,
	}
}

// Submit runs the full state machine for one authorization (spec.md 4.7)
// and returns the lowercase-hex transaction hash on success.
func (c *Coordinator) Submit(ctx context.Context, auth types.Authorization) (string, error) {
	now := time.Now()
	cfg := c.store.ConfigSnapshot() // copy-on-read (spec.md 9)

	logID := c.store.LogAppend(types.LogEntry{
		TS:          now.Unix(),
		ChainID:     cfg.ChainID,
		AssetID:     auth.AssetID,
		From:        auth.From,
		To:          auth.To,
		Value:       auth.Value,
		ValidBefore: auth.ValidBefore,
		Nonce:       auth.Nonce,
		Status:      types.LogPending,
	})

	// --- Validate (admission, C5) ---
	c.submitMu.Lock()
	result, failure := c.checker.Check(ctx, cfg, auth, now)
	if failure != nil {
		c.submitMu.Unlock()
		c.markFailed(logID, failure.Error())
		return "", &SubmitError{Code: Code(failure.Reason), Internal: failure.Error()}
	}

	// --- Plan (C6), Build (C1), Sign (C3), Broadcast (C2) ---
	txHash, err := c.buildSignBroadcast(ctx, cfg, auth, result)
	c.submitMu.Unlock()

	if err != nil {
		var subErr *SubmitError
		if se, ok := err.(*SubmitError); ok {
			subErr = se
		} else {
			subErr = &SubmitError{Code: CodeEstimationFail, Internal: err.Error()}
		}
		// spec.md 5: an abort/timeout anywhere between reserve and broadcast
		// is a transport failure — the reservation is kept, since a retry
		// might otherwise race a broadcast we can no longer observe.
		aborted := ctx.Err() != nil
		keepReservation := aborted || subErr.Code == CodeBroadcastFail || subErr.Code == CodeRPCTransport || subErr.Code == CodeRPCApplication
		if aborted {
			subErr = &SubmitError{Code: CodeBroadcastFail, Internal: "aborted"}
		}
		if !keepReservation {
			// Plan/Build/Sign failures before a broadcast attempt: release
			// the reservation so the sender can retry (spec.md 4.7).
			c.store.ReleaseAuthorization(auth.From, auth.Nonce, auth.Value)
		}
		c.markFailed(logID, subErr.Internal)
		return "", subErr
	}

	c.store.LogUpdate(logID, types.LogPatch{Status: types.LogBroadcasted, TxHash: &txHash})
	c.log.Info("submission broadcasted", "log_id", logID, "tx_hash", txHash.Hex(), "from", auth.From.Hex(), "asset", auth.AssetID)
	return txHash.Hex(), nil
}

func (c *Coordinator) markFailed(logID uint64, reason string) {
	if err := c.store.LogUpdate(logID, types.LogPatch{Status: types.LogFailed, FailReason: reason}); err != nil {
		c.log.Error("failed to update log entry", "log_id", logID, "err", err)
	}
}

// buildSignBroadcast runs Plan -> Build -> Sign -> Broadcast. Called with
// submitMu already held, so the nonce fetch and broadcast are atomic with
// respect to any other submission (spec.md 5).
func (c *Coordinator) buildSignBroadcast(ctx context.Context, cfg store.Config, auth types.Authorization, result admission.Result) (types.Hash, error) {
	calldata := abi.PackTransferWithAuthorization(auth.From, auth.To, auth.Value, auth.ValidAfter, auth.ValidBefore, auth.Nonce, auth.V, auth.R, auth.S)

	fees, err := c.planner.Plan(ctx, cfg, rpcoracle.CallMsg{
		From: cfg.RelayerAddress,
		To:   result.Asset.EVMAddress,
		Data: calldata,
	})
	if err != nil {
		return types.Hash{}, &SubmitError{Code: CodeEstimationFail, Internal: err.Error()}
	}

	accountNonce, err := c.oracle.GetTransactionCount(ctx, cfg.RelayerAddress, "pending")
	if err != nil {
		return types.Hash{}, &SubmitError{Code: CodeEstimationFail, Internal: fmt.Sprintf("fetching account nonce: %v", err)}
	}

	tx := eip1559.Tx{
		ChainID:              cfg.ChainID,
		Nonce:                accountNonce,
		MaxPriorityFeePerGas: fees.MaxPriorityFeePerGas,
		MaxFeePerGas:         fees.MaxFeePerGas,
		GasLimit:             fees.GasLimit,
		To:                   result.Asset.EVMAddress,
		Value:                nil,
		Data:                 calldata,
	}

	digest := tx.SigningHash()
	r, s, yParity, err := c.signer.Sign(ctx, cfg.ECDSAKeyName, cfg.ECDSADerivationPath, digest, cfg.RelayerAddress)
	if err != nil {
		return types.Hash{}, &SubmitError{Code: CodeSignerMismatch, Internal: err.Error()}
	}

	signedEnvelope := tx.Encode(eip1559.Signature{YParity: yParity, R: r, S: s})
	localHash := eip1559.Hash(signedEnvelope)

	_, sendErr := c.oracle.SendRawTransaction(ctx, signedEnvelope)
	if sendErr != nil {
		if rpcoracle.IsSoftSuccess(sendErr) {
			// spec.md 4.2/4.7: already-disseminated is a soft success —
			// report our own locally computed hash.
			return localHash, nil
		}
		code := CodeBroadcastFail
		if _, ok := sendErr.(*rpcoracle.RPCTransport); ok {
			code = CodeRPCTransport
		} else if _, ok := sendErr.(*rpcoracle.RPCApplication); ok {
			code = CodeRPCApplication
		}
		return types.Hash{}, &SubmitError{Code: code, Internal: sendErr.Error()}
	}

	return localHash, nil
}

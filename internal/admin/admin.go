// Package admin implements C8: config mutation, asset lifecycle, pause
// switch, and address derivation, gated by the ACL of acl.go (spec.md 4.8).
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethdenver2026/relay/internal/rpcoracle"
	"github.com/ethdenver2026/relay/internal/signer"
	"github.com/ethdenver2026/relay/internal/store"
	"github.com/ethdenver2026/relay/internal/types"
)

// ErrNotAdmin is returned when the caller principal is not in the admin set.
var ErrNotAdmin = fmt.Errorf("caller is not an admin")

// Surface is component C8.
type Surface struct {
	store  *store.Store
	oracle rpcoracle.Oracle
	signer *signer.Signer
	log    *slog.Logger
}

// New builds an admin Surface.
func New(s *store.Store, oracle rpcoracle.Oracle, sgn *signer.Signer, logger *slog.Logger) *Surface {
	if logger == nil {
		logger = slog.Default()
	}
	return &Surface{store: s, oracle: oracle, signer: sgn, log: logger}
}

func (a *Surface) requireAdmin(principal string) error {
	cfg := a.store.ConfigSnapshot()
	if !cfg.IsAdmin(principal) {
		return ErrNotAdmin
	}
	return nil
}

// SetRPCTarget sets the RPC target's canister id. The human-readable
// network label is re-derived from the current ChainID (SPEC_FULL.md 3).
func (a *Surface) SetRPCTarget(principal, canisterID string) error {
	if err := a.requireAdmin(principal); err != nil {
		return err
	}
	a.store.MutateConfig(func(c *store.Config) {
		c.RPCTarget.CanisterID = canisterID
		c.RPCTarget.NetworkLabel = NetworkLabelForChainID(c.ChainID)
	})
	return nil
}

// SetChainID sets chain_id and re-derives the network label
// (SPEC_FULL.md 3, resolving spec.md 9(b)).
func (a *Surface) SetChainID(principal string, chainID uint64) error {
	if err := a.requireAdmin(principal); err != nil {
		return err
	}
	a.store.MutateConfig(func(c *store.Config) {
		c.ChainID = chainID
		c.RPCTarget.NetworkLabel = NetworkLabelForChainID(chainID)
	})
	return nil
}

// SetThreshold sets the minimum native-gas balance the relayer must hold.
func (a *Surface) SetThreshold(principal string, thresholdWei *big.Int) error {
	if err := a.requireAdmin(principal); err != nil {
		return err
	}
	a.store.MutateConfig(func(c *store.Config) {
		c.ThresholdWei = new(big.Int).Set(thresholdWei)
	})
	return nil
}

// SetECDSADerivationPath sets the key name and derivation path used for
// every tECDSA oracle call.
func (a *Surface) SetECDSADerivationPath(principal, keyName string, path [][]byte) error {
	if err := a.requireAdmin(principal); err != nil {
		return err
	}
	a.store.MutateConfig(func(c *store.Config) {
		c.ECDSAKeyName = keyName
		c.ECDSADerivationPath = path
	})
	return nil
}

// SetRelayerAddress is the operator override path: it is authoritative
// (spec.md 9(a)) and takes effect immediately. A subsequent
// DeriveRelayerAddress call will warn, not fail, if it disagrees.
func (a *Surface) SetRelayerAddress(principal string, addr types.Address) error {
	if err := a.requireAdmin(principal); err != nil {
		return err
	}
	a.store.MutateConfig(func(c *store.Config) {
		c.RelayerAddress = addr
		c.RelayerAddressSet = true
	})
	return nil
}

// DeriveRelayerAddress requests the compressed public key from the tECDSA
// oracle, derives its Address, and sets it as authoritative. If an address
// was already configured (via SetRelayerAddress) and disagrees, this logs a
// warning but still overwrites it — derive is the reconciling operation
// (spec.md 4.3, 9(a)).
func (a *Surface) DeriveRelayerAddress(ctx context.Context, principal string) (types.Address, error) {
	if err := a.requireAdmin(principal); err != nil {
		return types.Address{}, err
	}
	cfg := a.store.ConfigSnapshot()
	derived, err := a.signer.DeriveAddress(ctx, cfg.ECDSAKeyName, cfg.ECDSADerivationPath)
	if err != nil {
		return types.Address{}, err
	}
	if cfg.RelayerAddressSet && cfg.RelayerAddress != derived {
		a.log.Warn("configured relayer_address disagrees with derived address",
			"configured", cfg.RelayerAddress.Hex(), "derived", derived.Hex())
	}
	a.store.MutateConfig(func(c *store.Config) {
		c.RelayerAddress = derived
		c.RelayerAddressSet = true
	})
	return derived, nil
}

// AddAsset registers a new asset registry entry.
func (a *Surface) AddAsset(principal, id string, evmAddress types.Address, feeBPS uint16, domainName, domainVersion string) error {
	if err := a.requireAdmin(principal); err != nil {
		return err
	}
	return a.store.AddAsset(id, evmAddress, feeBPS, domainName, domainVersion)
}

// DeprecateAsset transitions id from Active to Deprecated (a no-op if not
// currently Active, spec.md 8 property 5).
func (a *Surface) DeprecateAsset(principal, id string) error {
	if err := a.requireAdmin(principal); err != nil {
		return err
	}
	return a.store.TransitionAsset(id, types.AssetDeprecated)
}

// DisableAsset transitions id from Deprecated to Disabled.
func (a *Surface) DisableAsset(principal, id string) error {
	if err := a.requireAdmin(principal); err != nil {
		return err
	}
	return a.store.TransitionAsset(id, types.AssetDisabled)
}

// Pause sets the global pause flag. A pause(true) that returns before this
// call affects only submissions started afterward (spec.md 5, 8
// property 7) — the admin mutation and every submission both serialize on
// their respective locks, so no submission can observe a torn config.
func (a *Surface) Pause(principal string, paused bool) error {
	if err := a.requireAdmin(principal); err != nil {
		return err
	}
	a.store.MutateConfig(func(c *store.Config) {
		c.Paused = paused
	})
	return nil
}

// RefreshGasBalance force-polls the oracle for the relayer's native balance
// and caches it in Config.CachedGasWei.
func (a *Surface) RefreshGasBalance(ctx context.Context, principal string) (*big.Int, error) {
	if err := a.requireAdmin(principal); err != nil {
		return nil, err
	}
	cfg := a.store.ConfigSnapshot()
	balance, err := a.oracle.GetBalance(ctx, cfg.RelayerAddress)
	if err != nil {
		return nil, err
	}
	a.store.MutateConfig(func(c *store.Config) {
		c.CachedGasWei = new(big.Int).Set(balance)
	})
	return balance, nil
}

// NetworkLabelForChainID resolves spec.md 9(b): chain_id is canonical, the
// human-readable network label is derived, never set directly.
func NetworkLabelForChainID(chainID uint64) string {
	switch chainID {
	case 137:
		return "polygon-mainnet"
	case 80002:
		return "polygon-amoy"
	default:
		return fmt.Sprintf("chain-%d", chainID)
	}
}

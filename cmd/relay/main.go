// Command relay is the process entrypoint (C0): it brings up structured
// logging, loads configuration, wires the store, RPC oracle, signer,
// coordinator and admin surface together, and serves the HTTP API.
package main

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/ethdenver2026/relay/internal/admin"
	"github.com/ethdenver2026/relay/internal/config"
	"github.com/ethdenver2026/relay/internal/coordinator"
	"github.com/ethdenver2026/relay/internal/httpapi"
	"github.com/ethdenver2026/relay/internal/rpcoracle"
	"github.com/ethdenver2026/relay/internal/signer"
	"github.com/ethdenver2026/relay/internal/store"
)

func main() {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}

	key, err := parsePrivateKey(cfg.RelayerPrivateKey)
	if err != nil {
		slog.Error("invalid RELAYER_PRIVATE_KEY", "err", err)
		os.Exit(1)
	}
	localOracle := signer.NewLocalOracle(key)
	sgn := signer.New(localOracle)

	oracle := rpcoracle.NewClient(cfg.RPCTargetURL, cfg.RPCRequestBudget)

	st := store.New(cfg.InitialAdmin)

	// Derive the relayer address from the configured key on bring-up
	// (spec.md 4.3) so /info and fee planning have a relayer_addr before
	// the first admin call.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	derived, err := sgn.DeriveAddress(ctx, "", nil)
	cancel()
	if err != nil {
		slog.Error("failed to derive relayer address", "err", err)
		os.Exit(1)
	}
	st.MutateConfig(func(c *store.Config) {
		c.RelayerAddress = derived
		c.RelayerAddressSet = true
	})
	slog.Info("relayer address derived", "address", derived.Hex())

	coord := coordinator.New(st, oracle, sgn, logger)
	adminSurface := admin.New(st, oracle, sgn, logger)
	tokens := admin.NewTokenIssuer(cfg.AdminTokenSecret, cfg.AdminTokenExpiry)

	srv := httpapi.NewServer(coord, st, adminSurface, tokens, oracle, logger)

	addr := fmt.Sprintf(":%d", cfg.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	slog.Info("relay starting",
		"addr", addr,
		"rpc_target", cfg.RPCTargetURL,
		"relayer", derived.Hex(),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	case <-stop:
		slog.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			slog.Error("graceful shutdown failed", "err", err)
		}
	}
}

// parsePrivateKey accepts a 0x-prefixed or bare hex-encoded secp256k1 key,
// the same shape the teacher's GatewayPrivateKey config value takes.
func parsePrivateKey(s string) (*ecdsa.PrivateKey, error) {
	s = strings.TrimPrefix(s, "0x")
	key, err := gethcrypto.HexToECDSA(s)
	if err != nil {
		return nil, fmt.Errorf("parsing relayer private key: %w", err)
	}
	return key, nil
}

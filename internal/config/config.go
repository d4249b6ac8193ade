// Package config loads process bring-up configuration from the
// environment, grounded on the teacher's config.Load() (same .env-via-
// godotenv, getEnv/getEnvInt shape), generalized to the relay's larger
// configuration surface. This is distinct from the admin-mutable
// types.Config held by the state store — this package only covers what the
// process needs before it can even start: which RPC endpoint to dial,
// which port to listen on, the admin-token signing secret, and the initial
// admin principal.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds process bring-up configuration.
type Config struct {
	// RPCTargetURL is the Polygon-compatible JSON-RPC endpoint the relay
	// dials for every oracle call (spec.md 1).
	RPCTargetURL string

	// RPCRequestBudget bounds every individual oracle call (spec.md 4.2's
	// "compute budget").
	RPCRequestBudget time.Duration

	// RelayerPrivateKey is the hex-encoded key backing the local tECDSA
	// oracle stand-in (internal/signer.LocalOracle). A production
	// deployment replaces this with a real threshold-KMS client and never
	// holds this value (spec.md 9).
	RelayerPrivateKey string

	// InitialAdmin is the principal granted sole admin rights at process
	// start (spec.md 4.8: "first-deploy default").
	InitialAdmin string

	// AdminTokenSecret signs/verifies admin bearer tokens.
	AdminTokenSecret []byte

	// AdminTokenExpiry is how long an issued admin token remains valid.
	AdminTokenExpiry time.Duration

	// Port is the HTTP listen port.
	Port int
}

// Load reads configuration from environment variables, loading a .env file
// in the working directory first if present (dev convenience), exactly as
// the teacher's config.Load does.
func Load() (*Config, error) {
	_ = godotenv.Load() // no-op if .env absent (production uses real env vars)

	cfg := &Config{
		RPCTargetURL:      getEnv("RPC_TARGET_URL", "https://rpc-amoy.polygon.technology"),
		RPCRequestBudget:  time.Duration(getEnvInt("RPC_REQUEST_BUDGET_MS", 10_000)) * time.Millisecond,
		RelayerPrivateKey: getEnv("RELAYER_PRIVATE_KEY", ""),
		InitialAdmin:      getEnv("INITIAL_ADMIN", ""),
		AdminTokenExpiry:  time.Duration(getEnvInt("ADMIN_TOKEN_EXPIRY_HOURS", 24)) * time.Hour,
		Port:              getEnvInt("PORT", 8080),
	}

	if cfg.RelayerPrivateKey == "" {
		return nil, fmt.Errorf("RELAYER_PRIVATE_KEY env var is required")
	}
	if cfg.InitialAdmin == "" {
		return nil, fmt.Errorf("INITIAL_ADMIN env var is required")
	}
	secretHex := getEnv("ADMIN_TOKEN_SECRET", "")
	if secretHex == "" {
		return nil, fmt.Errorf("ADMIN_TOKEN_SECRET env var is required (32+ bytes hex)")
	}
	secret, err := decodeHexSecret(secretHex)
	if err != nil {
		return nil, err
	}
	if len(secret) < 32 {
		return nil, fmt.Errorf("ADMIN_TOKEN_SECRET must be at least 32 bytes (64 hex chars)")
	}
	cfg.AdminTokenSecret = secret

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func decodeHexSecret(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("ADMIN_TOKEN_SECRET must be valid hex: %w", err)
	}
	return b, nil
}

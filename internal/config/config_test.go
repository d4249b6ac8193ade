package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("RELAYER_PRIVATE_KEY", "aabbcc")
	t.Setenv("INITIAL_ADMIN", "root-admin")
	t.Setenv("ADMIN_TOKEN_SECRET", "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")
}

func TestLoad_AppliesDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://rpc-amoy.polygon.technology", cfg.RPCTargetURL)
	assert.Equal(t, 8080, cfg.Port)
}

func TestLoad_MissingRelayerPrivateKeyErrors(t *testing.T) {
	t.Setenv("RELAYER_PRIVATE_KEY", "")
	t.Setenv("INITIAL_ADMIN", "root-admin")
	t.Setenv("ADMIN_TOKEN_SECRET", "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MissingInitialAdminErrors(t *testing.T) {
	t.Setenv("RELAYER_PRIVATE_KEY", "aabbcc")
	t.Setenv("INITIAL_ADMIN", "")
	t.Setenv("ADMIN_TOKEN_SECRET", "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsShortAdminTokenSecret(t *testing.T) {
	t.Setenv("RELAYER_PRIVATE_KEY", "aabbcc")
	t.Setenv("INITIAL_ADMIN", "root-admin")
	t.Setenv("ADMIN_TOKEN_SECRET", "aabbcc")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsNonHexAdminTokenSecret(t *testing.T) {
	t.Setenv("RELAYER_PRIVATE_KEY", "aabbcc")
	t.Setenv("INITIAL_ADMIN", "root-admin")
	t.Setenv("ADMIN_TOKEN_SECRET", "not-hex-at-all-zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_AcceptsHexSecretWith0xPrefix(t *testing.T) {
	t.Setenv("RELAYER_PRIVATE_KEY", "aabbcc")
	t.Setenv("INITIAL_ADMIN", "root-admin")
	t.Setenv("ADMIN_TOKEN_SECRET", "0x0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Len(t, cfg.AdminTokenSecret, 32)
}

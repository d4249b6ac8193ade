package store

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethdenver2026/relay/internal/types"
)

func TestAddAsset_RejectsSecondActiveOnSameAddress(t *testing.T) {
	s := New("admin")
	var evm types.Address
	evm[0] = 0x01

	require.NoError(t, s.AddAsset("usdc", evm, 0, "USD Coin", "2"))
	err := s.AddAsset("usdc-dup", evm, 0, "USD Coin", "2")
	assert.Error(t, err)
}

// TestTransitionAsset_LegalPath covers the asset-transition-legality
// property: Active -> Deprecated -> Disabled succeeds, and any other
// attempted transition (including skipping a step, or going backward) is a
// silent no-op rather than an error.
func TestTransitionAsset_LegalPath(t *testing.T) {
	s := New("admin")
	var evm types.Address
	evm[0] = 0x02
	require.NoError(t, s.AddAsset("usdc", evm, 0, "USD Coin", "2"))

	require.NoError(t, s.TransitionAsset("usdc", types.AssetDeprecated))
	entry, ok := s.AssetLookup("usdc")
	require.True(t, ok)
	assert.Equal(t, types.AssetDeprecated, entry.Status)

	require.NoError(t, s.TransitionAsset("usdc", types.AssetDisabled))
	entry, _ = s.AssetLookup("usdc")
	assert.Equal(t, types.AssetDisabled, entry.Status)
}

func TestTransitionAsset_SkipOrBackwardIsNoOp(t *testing.T) {
	s := New("admin")
	var evm types.Address
	evm[0] = 0x03
	require.NoError(t, s.AddAsset("usdc", evm, 0, "USD Coin", "2"))

	// Active -> Disabled directly is illegal: no-op.
	require.NoError(t, s.TransitionAsset("usdc", types.AssetDisabled))
	entry, _ := s.AssetLookup("usdc")
	assert.Equal(t, types.AssetActive, entry.Status)

	require.NoError(t, s.TransitionAsset("usdc", types.AssetDeprecated))
	// Deprecated -> Active (backward) is illegal: no-op.
	require.NoError(t, s.TransitionAsset("usdc", types.AssetActive))
	entry, _ = s.AssetLookup("usdc")
	assert.Equal(t, types.AssetDeprecated, entry.Status)
}

// TestReserveAuthorization_Idempotency covers the idempotency property: the
// same (from, nonce) pair may reserve only once until evicted.
func TestReserveAuthorization_Idempotency(t *testing.T) {
	s := New("admin")
	s.MutateConfig(func(c *Config) { c.RateLimitPerMin = 100 })
	var from types.Address
	from[0] = 0x10
	var nonce types.Nonce32
	nonce[31] = 0x01
	now := time.Now()

	outcome := s.ReserveAuthorization(from, nonce, big.NewInt(5), now)
	assert.Equal(t, ReserveOK, outcome)

	outcome = s.ReserveAuthorization(from, nonce, big.NewInt(5), now)
	assert.Equal(t, ReserveAlreadySeen, outcome)
}

func TestReserveAuthorization_RateLimit(t *testing.T) {
	s := New("admin")
	s.MutateConfig(func(c *Config) { c.RateLimitPerMin = 1 })
	var from types.Address
	from[0] = 0x11
	now := time.Now()

	var n1, n2 types.Nonce32
	n1[31] = 0x01
	n2[31] = 0x02

	assert.Equal(t, ReserveOK, s.ReserveAuthorization(from, n1, big.NewInt(1), now))
	assert.Equal(t, ReserveRateExceeded, s.ReserveAuthorization(from, n2, big.NewInt(1), now))
}

func TestReserveAuthorization_DailyCap(t *testing.T) {
	s := New("admin")
	s.MutateConfig(func(c *Config) {
		c.RateLimitPerMin = 100
		c.DailyCapToken = big.NewInt(10)
	})
	var from types.Address
	from[0] = 0x12
	now := time.Now()

	var n1, n2 types.Nonce32
	n1[31] = 0x01
	n2[31] = 0x02

	assert.Equal(t, ReserveOK, s.ReserveAuthorization(from, n1, big.NewInt(6), now))
	assert.Equal(t, ReserveDailyCapExceeded, s.ReserveAuthorization(from, n2, big.NewInt(6), now))
}

func TestReleaseAuthorization_AllowsRetry(t *testing.T) {
	s := New("admin")
	s.MutateConfig(func(c *Config) { c.RateLimitPerMin = 100 })
	var from types.Address
	from[0] = 0x13
	var nonce types.Nonce32
	nonce[31] = 0x01
	now := time.Now()

	require.Equal(t, ReserveOK, s.ReserveAuthorization(from, nonce, big.NewInt(5), now))
	s.ReleaseAuthorization(from, nonce, big.NewInt(5))
	assert.Equal(t, ReserveOK, s.ReserveAuthorization(from, nonce, big.NewInt(5), now))
}

// TestLogAppend_MonotoneIDs covers the monotone-log-id property: ids are
// strictly increasing regardless of ring wraparound.
func TestLogAppend_MonotoneIDs(t *testing.T) {
	s := New("admin")
	var lastID uint64
	for i := 0; i < 10; i++ {
		id := s.LogAppend(types.LogEntry{TS: int64(i)})
		assert.Greater(t, id, lastID)
		lastID = id
	}
}

func TestLogRead_NewestFirstAndAfterID(t *testing.T) {
	s := New("admin")
	var ids []uint64
	for i := 0; i < 5; i++ {
		ids = append(ids, s.LogAppend(types.LogEntry{TS: int64(i)}))
	}

	all := s.LogRead(nil, 100)
	require.Len(t, all, 5)
	assert.Equal(t, ids[4], all[0].ID)
	assert.Equal(t, ids[0], all[4].ID)

	after := ids[2]
	tail := s.LogRead(&after, 100)
	require.Len(t, tail, 2)
	assert.Equal(t, ids[4], tail[0].ID)
	assert.Equal(t, ids[3], tail[1].ID)
}

// TestLogRead_SurvivesRingWraparound covers the normal-not-edge-case
// behavior of LogCapacity: once appends exceed the ring's capacity, reads
// must still come back newest-first and respect afterID pagination,
// regardless of where the physical write cursor currently sits.
func TestLogRead_SurvivesRingWraparound(t *testing.T) {
	s := New("admin")
	var ids []uint64
	total := 2*LogCapacity + 30 // spans more than one full wrap of the ring
	for i := 0; i < total; i++ {
		ids = append(ids, s.LogAppend(types.LogEntry{TS: int64(i)}))
	}

	all := s.LogRead(nil, 100)
	require.Len(t, all, 100)
	for i, e := range all {
		assert.Equal(t, ids[total-1-i], e.ID)
	}

	after := ids[total-50]
	tail := s.LogRead(&after, 100)
	require.Len(t, tail, 49)
	for i, e := range tail {
		assert.Equal(t, ids[total-1-i], e.ID)
	}
}

func TestLogUpdate_UnknownIDErrors(t *testing.T) {
	s := New("admin")
	err := s.LogUpdate(999, types.LogPatch{Status: types.LogFailed})
	assert.Error(t, err)
}

func TestConfigSnapshot_IsIndependentCopy(t *testing.T) {
	s := New("admin")
	s.MutateConfig(func(c *Config) { c.ThresholdWei = big.NewInt(100) })

	snap := s.ConfigSnapshot()
	snap.ThresholdWei.SetInt64(999)

	fresh := s.ConfigSnapshot()
	assert.Equal(t, int64(100), fresh.ThresholdWei.Int64())
}

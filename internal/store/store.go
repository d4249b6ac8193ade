// Package store is the single-writer, in-memory state store (C4): config,
// asset registry, idempotency index, rate/cap buckets, and the log ring
// (spec.md 3, 4.4). It is a process-wide singleton with no multi-reader
// locking (spec.md 5) — one sync.Mutex guards the whole structure, matching
// the single-threaded cooperative scheduling model the spec describes.
package store

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ethdenver2026/relay/internal/types"
)

// ReserveOutcome is the result of reserve_authorization (spec.md 4.4).
type ReserveOutcome int

const (
	ReserveOK ReserveOutcome = iota
	ReserveRateExceeded
	ReserveDailyCapExceeded
	ReserveAlreadySeen
)

// GraceWindow is the minimum idempotency-retention grace period after
// valid_before elapses (spec.md 3: "≥ 300 s").
const GraceWindow = 300 * time.Second

// LogCapacity is the minimum log ring capacity (spec.md 3: "≥ 1024").
const LogCapacity = 1024

type idempotencyKey struct {
	from  types.Address
	nonce types.Nonce32
}

// rateBucket tracks one sender's per-minute request count and daily token
// total. Both are fixed windows: each starts at the first reservation
// attempt after the previous window has run its full length (one minute,
// 24 hours) and resets to zero then; they are not sliding windows.
type rateBucket struct {
	minuteWindowStart time.Time
	minuteCount       uint32
	dayWindowStart    time.Time
	dayTotal          *big.Int
}

// Store is the process-wide state singleton.
type Store struct {
	mu sync.Mutex

	config Config

	assets map[string]*types.AssetEntry

	idempotency map[idempotencyKey]time.Time // value = valid_before + grace
	rates       map[types.Address]*rateBucket

	logEntries  []types.LogEntry // ring buffer, capacity LogCapacity
	logHead     int              // index of the oldest entry once full
	logWriteIdx int              // index of the most recently written entry, -1 if empty
	logCount    int
	nextLogID   uint64
}

// Config mirrors types.Config plus the cached gas balance refreshed by
// admin.RefreshGasBalance (SPEC_FULL.md 4.8).
type Config struct {
	types.Config
	CachedGasWei *big.Int
}

// New creates an empty Store. admin is the sole initial admin principal
// (spec.md 4.8: "first-deploy default makes the deploying principal the
// sole admin").
func New(admin string) *Store {
	cfg := Config{
		Config: types.Config{
			ThresholdWei:       big.NewInt(0),
			MaxFeeMultiplier:   types.DefaultMaxFeeMultiplier,
			PriorityMultiplier: types.DefaultPriorityMultiplier,
			DailyCapToken:      big.NewInt(0),
			Admins:             map[string]struct{}{admin: {}},
		},
		CachedGasWei: big.NewInt(0),
	}
	return &Store{
		config:      cfg,
		assets:      make(map[string]*types.AssetEntry),
		idempotency: make(map[idempotencyKey]time.Time),
		rates:       make(map[types.Address]*rateBucket),
		logEntries:  make([]types.LogEntry, 0, LogCapacity),
		logWriteIdx: -1,
	}
}

// ConfigSnapshot returns a value copy of the current config (spec.md 4.4:
// config_snapshot()), independent of any concurrent admin mutation.
func (s *Store) ConfigSnapshot() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := s.config.Config.Clone()
	out := Config{Config: clone}
	if s.config.CachedGasWei != nil {
		out.CachedGasWei = new(big.Int).Set(s.config.CachedGasWei)
	}
	return out
}

// MutateConfig applies fn to a clone of the current config under the store
// lock, then commits it atomically (spec.md 5: "whole-struct replacement
// under the mutex").
func (s *Store) MutateConfig(fn func(*Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := s.config.Config.Clone()
	next := Config{Config: clone}
	if s.config.CachedGasWei != nil {
		next.CachedGasWei = new(big.Int).Set(s.config.CachedGasWei)
	}
	fn(&next)
	s.config = next
}

// AssetLookup returns the registry entry for id (spec.md 4.4:
// asset_lookup(id)).
func (s *Store) AssetLookup(id string) (types.AssetEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.assets[id]
	if !ok {
		return types.AssetEntry{}, false
	}
	return *e, true
}

// AddAsset registers a new asset. Fails if id already exists, or if
// evmAddress already has an Active entry (spec.md 3 invariant: "at most
// one Active entry per evm_address").
func (s *Store) AddAsset(id string, evmAddress types.Address, feeBPS uint16, domainName, domainVersion string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.assets[id]; exists {
		return fmt.Errorf("asset %q already registered", id)
	}
	for _, e := range s.assets {
		if e.EVMAddress == evmAddress && e.Status == types.AssetActive {
			return fmt.Errorf("evm address %s already has an active asset entry", evmAddress.Hex())
		}
	}
	s.assets[id] = &types.AssetEntry{
		ID:            id,
		EVMAddress:    evmAddress,
		Status:        types.AssetActive,
		FeeBPS:        feeBPS,
		Version:       1,
		DomainName:    domainName,
		DomainVersion: domainVersion,
	}
	return nil
}

// TransitionAsset moves id to next if legal (Active->Deprecated->Disabled);
// any other attempt is a no-op (spec.md 8 property 5).
func (s *Store) TransitionAsset(id string, next types.AssetStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.assets[id]
	if !ok {
		return fmt.Errorf("asset %q not found", id)
	}
	if !e.Status.CanTransitionTo(next) {
		return nil // illegal transition: no-op, not an error
	}
	e.Status = next
	e.Version++
	return nil
}

// ReserveAuthorization is the single atomic admission step of spec.md 4.4:
// checks and updates the rate bucket, daily cap, and idempotency index in
// one critical section.
func (s *Store) ReserveAuthorization(from types.Address, nonce types.Nonce32, value *big.Int, now time.Time) ReserveOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpiredLocked(now)

	key := idempotencyKey{from: from, nonce: nonce}
	if _, seen := s.idempotency[key]; seen {
		return ReserveAlreadySeen
	}

	bucket, ok := s.rates[from]
	if !ok {
		bucket = &rateBucket{
			minuteWindowStart: now,
			dayWindowStart:    now,
			dayTotal:          big.NewInt(0),
		}
		s.rates[from] = bucket
	}
	if now.Sub(bucket.minuteWindowStart) >= time.Minute {
		bucket.minuteWindowStart = now
		bucket.minuteCount = 0
	}
	if now.Sub(bucket.dayWindowStart) >= 24*time.Hour {
		bucket.dayWindowStart = now
		bucket.dayTotal = big.NewInt(0)
	}

	if bucket.minuteCount+1 > s.config.RateLimitPerMin {
		return ReserveRateExceeded
	}

	projectedDay := new(big.Int).Add(bucket.dayTotal, value)
	if s.config.DailyCapToken != nil && s.config.DailyCapToken.Sign() > 0 && projectedDay.Cmp(s.config.DailyCapToken) > 0 {
		return ReserveDailyCapExceeded
	}

	bucket.minuteCount++
	bucket.dayTotal = projectedDay
	// Idempotency entries retain past valid_before by at least GraceWindow
	// (spec.md 3). The reservation key here is keyed off "now" + grace as a
	// placeholder expiry; the admission chain replaces it with the
	// authorization's actual valid_before + grace via RefreshIdempotencyExpiry.
	s.idempotency[key] = now.Add(GraceWindow)
	return ReserveOK
}

// RefreshIdempotencyExpiry sets the precise expiry (validBefore + grace)
// for a key once the authorization's fields are known, replacing the
// placeholder ReserveAuthorization wrote.
func (s *Store) RefreshIdempotencyExpiry(from types.Address, nonce types.Nonce32, validBefore time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := idempotencyKey{from: from, nonce: nonce}
	if _, ok := s.idempotency[key]; ok {
		s.idempotency[key] = validBefore.Add(GraceWindow)
	}
}

// ReleaseAuthorization undoes a reservation on terminal pre-broadcast
// failure so the nonce can be retried (spec.md 4.4, 4.7). It must never be
// called after broadcast.
func (s *Store) ReleaseAuthorization(from types.Address, nonce types.Nonce32, value *big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := idempotencyKey{from: from, nonce: nonce}
	delete(s.idempotency, key)
	if bucket, ok := s.rates[from]; ok {
		if bucket.minuteCount > 0 {
			bucket.minuteCount--
		}
		bucket.dayTotal = new(big.Int).Sub(bucket.dayTotal, value)
		if bucket.dayTotal.Sign() < 0 {
			bucket.dayTotal = big.NewInt(0)
		}
	}
}

// evictExpiredLocked discards idempotency entries past their grace window.
// Must be called with s.mu held (spec.md 4.4: "runs lazily on each reserve").
func (s *Store) evictExpiredLocked(now time.Time) {
	for k, expiry := range s.idempotency {
		if expiry.Before(now) {
			delete(s.idempotency, k)
		}
	}
}

// LogAppend appends entry, assigning it the next monotonic id (spec.md 4.4,
// 8 property 4).
func (s *Store) LogAppend(entry types.LogEntry) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextLogID++
	entry.ID = s.nextLogID
	if len(s.logEntries) < cap(s.logEntries) {
		s.logEntries = append(s.logEntries, entry)
		s.logWriteIdx = len(s.logEntries) - 1
	} else {
		s.logEntries[s.logHead] = entry
		s.logWriteIdx = s.logHead
		s.logHead = (s.logHead + 1) % len(s.logEntries)
	}
	if s.logCount < cap(s.logEntries) {
		s.logCount++
	}
	return entry.ID
}

// LogUpdate applies patch to the entry with the given id (spec.md 4.4,
// 4.7: "exactly once" on every terminal transition).
func (s *Store) LogUpdate(id uint64, patch types.LogPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.logEntries {
		if s.logEntries[i].ID == id {
			s.logEntries[i].Status = patch.Status
			s.logEntries[i].TxHash = patch.TxHash
			s.logEntries[i].FailReason = patch.FailReason
			return nil
		}
	}
	return fmt.Errorf("log entry %d not found (evicted or unknown)", id)
}

// LogRead returns up to limit entries newest-first, optionally only those
// with id > afterID (spec.md 4.4, 6.2).
func (s *Store) LogRead(afterID *uint64, limit int) []types.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	out := make([]types.LogEntry, 0, limit)
	n := len(s.logEntries)
	idx := s.logWriteIdx
	for i := 0; i < s.logCount && len(out) < limit; i++ {
		e := s.logEntries[idx]
		if afterID != nil && e.ID <= *afterID {
			break
		}
		out = append(out, e)
		idx--
		if idx < 0 {
			idx = n - 1
		}
	}
	return out
}

// NewDebugID is a correlation id for log/debug context (e.g. request
// tracing), not part of the persistent log's own monotonic id space.
func NewDebugID() string { return uuid.NewString() }

// LogLen returns the number of entries currently retained in the ring.
func (s *Store) LogLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logCount
}

// Package lockmgr implements the capital reservation ledger: a single
// pooled native-SOL balance, reserved per intent with fairness and TTL.
// Grounded on internal/balance/manager.go's single-mutex balance-cache
// shape, generalized from a scalar available/locked float pair to a
// map[intent_id]LockEntry ledger with lazy TTL sweep.
package lockmgr

import (
	"sync"

	"solana-trading-core/internal/ipc"
)

// Holder identifies who is requesting a lock.
type Holder struct {
	IntentID string
	Origin   ipc.IntentOrigin
	Tier     ipc.IntentTier
}

// LockEntry is one reserved allotment of capital.
type LockEntry struct {
	IntentID       string
	Holder         Holder
	AmountLamports uint64
	AcquiredAtMs   uint64
	TTLMs          uint64
	Labels         map[string]string
}

// FairnessPolicy bounds how aggressively the lock manager reclaims and
// preempts capital.
type FairnessPolicy struct {
	MaxConcurrentPerOrigin int
	MaxHoldMs              uint64
	StaleReclaimMs         uint64
	AllowPreempt           bool
}

// ResultKind discriminates the outcome of TryLockCapital.
type ResultKind int

const (
	Acquired ResultKind = iota
	Conflict
	Insufficient
)

// LockResult is the outcome of a TryLockCapital call.
type LockResult struct {
	Kind      ResultKind
	Entry     LockEntry // populated on Acquired
	Available uint64    // snapshot after the call, for Insufficient/Conflict diagnostics
}

// PreemptedEntry is a lock the manager evicted to make room for a
// preempting request, surfaced so the caller can emit a Preempted release
// reason on the evicted intent's audit trail.
type PreemptedEntry struct {
	Entry LockEntry
}

// Manager is the capital reservation ledger. Safe for concurrent use.
type Manager struct {
	mu          sync.Mutex
	totalNative uint64
	holdings    map[string]LockEntry
	fairness    FairnessPolicy

	// onExpire, when set, is called for every entry the lazy TTL sweep
	// reclaims, outside the lock, so callers (e.g. the admin event bus)
	// can emit a TtlExpired audit trail without this package depending on
	// the audit schema.
	onExpire func(LockEntry)
}

// SetOnExpire installs fn as the callback invoked for each lock the lazy
// TTL sweep reclaims. Not safe to call concurrently with lock operations.
func (m *Manager) SetOnExpire(fn func(LockEntry)) {
	m.onExpire = fn
}

// New constructs a Manager with an immutable total_native capacity.
func New(totalNative uint64, fairness FairnessPolicy) *Manager {
	return &Manager{
		totalNative: totalNative,
		holdings:    make(map[string]LockEntry),
		fairness:    fairness,
	}
}

// TotalNativeSOL returns the immutable construction-time capacity.
func (m *Manager) TotalNativeSOL() uint64 {
	return m.totalNative
}

// AvailableSOL sweeps stale entries, then returns total_native minus the
// sum of all remaining locked amounts.
func (m *Manager) AvailableSOL(nowUnixMs uint64) uint64 {
	m.mu.Lock()
	expired := m.sweepLocked(nowUnixMs)
	avail := m.availableLocked()
	m.mu.Unlock()
	m.notifyExpired(expired)
	return avail
}

func (m *Manager) notifyExpired(expired []LockEntry) {
	if m.onExpire == nil {
		return
	}
	for _, e := range expired {
		m.onExpire(e)
	}
}

func (m *Manager) availableLocked() uint64 {
	var locked uint64
	for _, e := range m.holdings {
		locked += e.AmountLamports
	}
	return m.totalNative - locked
}

// sweepLocked releases every entry older than fairness.StaleReclaimMs.
// Must be called with m.mu held. Returns the released entries, so callers
// can emit a TtlExpired audit entry for each (via onExpire, outside the
// lock).
func (m *Manager) sweepLocked(nowUnixMs uint64) []LockEntry {
	if m.fairness.StaleReclaimMs == 0 {
		return nil
	}
	var expired []LockEntry
	for id, e := range m.holdings {
		if nowUnixMs >= e.AcquiredAtMs && nowUnixMs-e.AcquiredAtMs > m.fairness.StaleReclaimMs {
			delete(m.holdings, id)
			expired = append(expired, e)
		}
	}
	return expired
}

// TryLockCapital attempts to reserve amount lamports for holder. A second
// call for the same holder.IntentID returns Conflict without mutating
// state. If allow_preempt is set and amount would otherwise be
// Insufficient, the single lowest-tier-priority, cross-origin,
// half-TTL-aged entry is evicted to free room, and is returned as the
// second result so the caller can report the preemption.
func (m *Manager) TryLockCapital(holder Holder, amount uint64, labels map[string]string, nowUnixMs uint64) (LockResult, *PreemptedEntry) {
	m.mu.Lock()

	expired := m.sweepLocked(nowUnixMs)

	if _, exists := m.holdings[holder.IntentID]; exists {
		res := LockResult{Kind: Conflict, Available: m.availableLocked()}
		m.mu.Unlock()
		m.notifyExpired(expired)
		return res, nil
	}

	if m.fairness.MaxConcurrentPerOrigin > 0 && m.countByOriginLocked(holder.Origin) >= m.fairness.MaxConcurrentPerOrigin {
		res := LockResult{Kind: Conflict, Available: m.availableLocked()}
		m.mu.Unlock()
		m.notifyExpired(expired)
		return res, nil
	}

	if amount <= m.availableLocked() {
		entry := LockEntry{
			IntentID:       holder.IntentID,
			Holder:         holder,
			AmountLamports: amount,
			AcquiredAtMs:   nowUnixMs,
			TTLMs:          m.fairness.MaxHoldMs,
			Labels:         labels,
		}
		m.holdings[holder.IntentID] = entry
		res := LockResult{Kind: Acquired, Entry: entry, Available: m.availableLocked()}
		m.mu.Unlock()
		m.notifyExpired(expired)
		return res, nil
	}

	if m.fairness.AllowPreempt {
		if victim, ok := m.choosePreemptionVictimLocked(holder, nowUnixMs); ok {
			delete(m.holdings, victim.IntentID)
			if amount <= m.availableLocked() {
				entry := LockEntry{
					IntentID:       holder.IntentID,
					Holder:         holder,
					AmountLamports: amount,
					AcquiredAtMs:   nowUnixMs,
					TTLMs:          m.fairness.MaxHoldMs,
					Labels:         labels,
				}
				m.holdings[holder.IntentID] = entry
				res := LockResult{Kind: Acquired, Entry: entry, Available: m.availableLocked()}
				m.mu.Unlock()
				m.notifyExpired(expired)
				return res, &PreemptedEntry{Entry: victim}
			}
			// Freeing the victim still wasn't enough: restore it and fail.
			m.holdings[victim.IntentID] = victim
		}
	}

	res := LockResult{Kind: Insufficient, Available: m.availableLocked()}
	m.mu.Unlock()
	m.notifyExpired(expired)
	return res, nil
}

// choosePreemptionVictimLocked selects the single lowest-tier-priority
// entry whose origin differs from requester's and whose age exceeds
// max_hold_ms/2, tie-broken by oldest acquired_at_unix_ms. Must be called
// with m.mu held.
func (m *Manager) choosePreemptionVictimLocked(requester Holder, nowUnixMs uint64) (LockEntry, bool) {
	halfLife := m.fairness.MaxHoldMs / 2
	var victim LockEntry
	found := false

	for _, e := range m.holdings {
		if e.Holder.Origin == requester.Origin {
			continue
		}
		age := nowUnixMs - e.AcquiredAtMs
		if age < halfLife {
			continue
		}
		if !found {
			victim, found = e, true
			continue
		}
		if e.Holder.Tier.Priority() > victim.Holder.Tier.Priority() {
			victim = e
			continue
		}
		if e.Holder.Tier.Priority() == victim.Holder.Tier.Priority() && e.AcquiredAtMs < victim.AcquiredAtMs {
			victim = e
		}
	}
	return victim, found
}

// countByOriginLocked counts live holdings from the given origin. Must be
// called with m.mu held.
func (m *Manager) countByOriginLocked(origin ipc.IntentOrigin) int {
	n := 0
	for _, e := range m.holdings {
		if e.Holder.Origin == origin {
			n++
		}
	}
	return n
}

// ReleaseLocks removes the entry for intentID, if present. Idempotent.
func (m *Manager) ReleaseLocks(intentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.holdings, intentID)
}

// Snapshot returns the current lock count and total locked lamports, for
// the metrics surface.
func (m *Manager) Snapshot() (count int, lockedLamports uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.holdings {
		lockedLamports += e.AmountLamports
	}
	return len(m.holdings), lockedLamports
}

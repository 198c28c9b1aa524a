package pipeline

import (
	"sync"

	"solana-trading-core/internal/ipc"
)

// RiskLimits bounds the risk check (pipeline stage 4): a rolling daily
// loss ceiling and a per-origin concurrency cap. Grounded on
// internal/risk/manager.go's MaxDailyLoss/usage-ratio gate, generalized
// from a DB-persisted per-strategy config to an in-memory limit checked
// against the intent's origin.
type RiskLimits struct {
	MaxDailyLossLamports   uint64
	MaxConcurrentPerOrigin int
}

// RiskState tracks the rolling counters RiskLimits checks against. Safe
// for concurrent use.
type RiskState struct {
	mu                 sync.Mutex
	dailyLossLamports  uint64
	concurrentByOrigin map[ipc.IntentOrigin]int
}

func NewRiskState() *RiskState {
	return &RiskState{concurrentByOrigin: make(map[ipc.IntentOrigin]int)}
}

// RecordLoss adds to the rolling daily loss counter (pnl < 0 executions
// call this with the magnitude of the loss).
func (s *RiskState) RecordLoss(amount uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dailyLossLamports += amount
}

// ResetDaily zeroes the daily loss counter, for a day-boundary rollover.
func (s *RiskState) ResetDaily() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dailyLossLamports = 0
}

// tryEnter checks the daily loss and per-origin concurrency limits, and if
// both pass, increments the origin's in-flight counter. Callers must pair a
// successful tryEnter with exit once the intent's lifecycle ends.
func (s *RiskState) tryEnter(origin ipc.IntentOrigin, limits RiskLimits) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limits.MaxDailyLossLamports > 0 && s.dailyLossLamports >= limits.MaxDailyLossLamports {
		return false
	}
	if limits.MaxConcurrentPerOrigin > 0 && s.concurrentByOrigin[origin] >= limits.MaxConcurrentPerOrigin {
		return false
	}
	s.concurrentByOrigin[origin]++
	return true
}

// exit decrements the origin's in-flight counter.
func (s *RiskState) exit(origin ipc.IntentOrigin) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.concurrentByOrigin[origin] > 0 {
		s.concurrentByOrigin[origin]--
	}
}

package monitor

import (
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// SystemMetrics tracks overall pipeline performance.
type SystemMetrics struct {
	mu sync.RWMutex

	// Latency histograms
	CheckLatency      *LatencyHistogram
	SimulationLatency *LatencyHistogram
	APILatency        *LatencyHistogram

	// Counters
	intentsTotal        uint64
	decisionsAccepted   uint64
	decisionsRejected   uint64
	decisionsSimFailed  uint64
	executionsSent      uint64
	executionsConfirmed uint64
	executionsFailed    uint64
	retries6005         uint64
	apiRequests         uint64
	apiErrors           uint64

	rejectByReason map[string]uint64

	// Cache & lock utilization, updated periodically from main.
	cacheSize          int
	lockCount          int
	lockLockedLamports uint64
	auditPending       int

	// Snapshot
	lastUpdate time.Time
}

// LatencyHistogram tracks latency samples with sliding window.
// Supports lazy stats computation for better performance.
type LatencyHistogram struct {
	mu          sync.Mutex
	samples     []float64
	maxSize     int
	dirty       bool         // Whether samples have changed since last Stats()
	cachedStats LatencyStats // Cached computed stats
}

// NewSystemMetrics creates a new metrics instance.
func NewSystemMetrics() *SystemMetrics {
	return &SystemMetrics{
		CheckLatency:      NewLatencyHistogram(1000),
		SimulationLatency: NewLatencyHistogram(1000),
		APILatency:        NewLatencyHistogram(1000),
		rejectByReason:    make(map[string]uint64),
		lastUpdate:        time.Now(),
	}
}

// IncrementAPI increments the admin API request counter.
func (m *SystemMetrics) IncrementAPI() {
	atomic.AddUint64(&m.apiRequests, 1)
}

// IncrementAPIErrors increments the admin API error counter.
func (m *SystemMetrics) IncrementAPIErrors() {
	atomic.AddUint64(&m.apiErrors, 1)
}

// NewLatencyHistogram creates a sliding window histogram.
func NewLatencyHistogram(size int) *LatencyHistogram {
	if size <= 0 {
		size = 1000
	}
	return &LatencyHistogram{
		samples: make([]float64, 0, size),
		maxSize: size,
		dirty:   true,
	}
}

// Record adds a latency sample in milliseconds.
func (h *LatencyHistogram) Record(latencyMs float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.samples) >= h.maxSize {
		// Shift window: remove oldest
		h.samples = h.samples[1:]
	}
	h.samples = append(h.samples, latencyMs)
	h.dirty = true // Mark as dirty for lazy recomputation
}

// RecordDuration converts duration to ms and records.
func (h *LatencyHistogram) RecordDuration(d time.Duration) {
	h.Record(float64(d.Nanoseconds()) / 1e6)
}

// Stats returns min, max, avg, p50, p95, p99.
// Uses lazy computation - only recomputes when samples have changed.
func (h *LatencyHistogram) Stats() LatencyStats {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Return cached stats if samples haven't changed
	if !h.dirty && h.cachedStats.Count > 0 {
		return h.cachedStats
	}

	n := len(h.samples)
	if n == 0 {
		return LatencyStats{}
	}

	// Compute new stats
	sorted := make([]float64, n)
	copy(sorted, h.samples)
	sort.Float64s(sorted)

	var sum float64
	min, max := sorted[0], sorted[n-1]
	for _, v := range sorted {
		sum += v
	}

	h.cachedStats = LatencyStats{
		Min:   min,
		Max:   max,
		Avg:   sum / float64(n),
		P50:   sorted[n/2],
		P95:   sorted[int(float64(n)*0.95)],
		P99:   sorted[int(float64(n)*0.99)],
		Count: n,
	}
	h.dirty = false

	return h.cachedStats
}

// LatencyStats holds computed latency statistics.
type LatencyStats struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
	Count int     `json:"count"`
}

// IncrementIntents increments the total intents observed counter.
func (m *SystemMetrics) IncrementIntents() {
	atomic.AddUint64(&m.intentsTotal, 1)
}

// RecordOutcome tallies a decision outcome and, for rejections, the
// primary reject reason code.
func (m *SystemMetrics) RecordOutcome(outcome string, reasonCode string) {
	switch outcome {
	case "Accepted":
		atomic.AddUint64(&m.decisionsAccepted, 1)
	case "Rejected":
		atomic.AddUint64(&m.decisionsRejected, 1)
		if reasonCode != "" {
			m.mu.Lock()
			m.rejectByReason[reasonCode]++
			m.mu.Unlock()
		}
	case "SimFailed":
		atomic.AddUint64(&m.decisionsSimFailed, 1)
	}
}

// RecordExecutionStatus tallies an execution status transition.
func (m *SystemMetrics) RecordExecutionStatus(status string) {
	switch status {
	case "Sent":
		atomic.AddUint64(&m.executionsSent, 1)
	case "Confirmed":
		atomic.AddUint64(&m.executionsConfirmed, 1)
	case "Failed":
		atomic.AddUint64(&m.executionsFailed, 1)
	}
}

// IncrementRetries6005 tallies a bonding-curve-complete retry.
func (m *SystemMetrics) IncrementRetries6005() {
	atomic.AddUint64(&m.retries6005, 1)
}

// SetCacheSize records the current live pool cache size.
func (m *SystemMetrics) SetCacheSize(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheSize = n
}

// SetLockStats records current lock manager utilization.
func (m *SystemMetrics) SetLockStats(count int, lockedLamports uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lockCount = count
	m.lockLockedLamports = lockedLamports
}

// SetAuditPending records the number of audit records buffered but not
// yet flushed to the rotating JSONL writer.
func (m *SystemMetrics) SetAuditPending(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.auditPending = n
}

// MetricsSnapshot is a point-in-time view of pipeline metrics.
type MetricsSnapshot struct {
	CheckLatency        LatencyStats      `json:"check_latency"`
	SimulationLatency   LatencyStats      `json:"simulation_latency"`
	APILatency          LatencyStats      `json:"api_latency"`
	APIRequests         uint64            `json:"api_requests"`
	APIErrors           uint64            `json:"api_errors"`
	IntentsTotal        uint64            `json:"intents_total"`
	DecisionsAccepted   uint64            `json:"decisions_accepted"`
	DecisionsRejected   uint64            `json:"decisions_rejected"`
	DecisionsSimFailed  uint64            `json:"decisions_sim_failed"`
	ExecutionsSent      uint64            `json:"executions_sent"`
	ExecutionsConfirmed uint64            `json:"executions_confirmed"`
	ExecutionsFailed    uint64            `json:"executions_failed"`
	Retries6005         uint64            `json:"retries_6005"`
	RejectByReason      map[string]uint64 `json:"reject_by_reason"`
	CacheSize           int               `json:"cache_size"`
	LockCount           int               `json:"lock_count"`
	LockLockedLamports  uint64            `json:"lock_locked_lamports"`
	AuditPending        int               `json:"audit_pending"`
	GoroutineCount      int               `json:"goroutine_count"`
	HeapAlloc           uint64            `json:"heap_alloc_bytes"`
	HeapSys             uint64            `json:"heap_sys_bytes"`
	Timestamp           time.Time         `json:"timestamp"`
}

// GetSnapshot returns a point-in-time metrics snapshot.
func (m *SystemMetrics) GetSnapshot() MetricsSnapshot {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	m.mu.RLock()
	reasons := make(map[string]uint64, len(m.rejectByReason))
	for k, v := range m.rejectByReason {
		reasons[k] = v
	}
	cacheSize := m.cacheSize
	lockCount := m.lockCount
	lockLocked := m.lockLockedLamports
	auditPending := m.auditPending
	m.mu.RUnlock()

	return MetricsSnapshot{
		CheckLatency:        m.CheckLatency.Stats(),
		SimulationLatency:   m.SimulationLatency.Stats(),
		APILatency:          m.APILatency.Stats(),
		APIRequests:         atomic.LoadUint64(&m.apiRequests),
		APIErrors:           atomic.LoadUint64(&m.apiErrors),
		IntentsTotal:        atomic.LoadUint64(&m.intentsTotal),
		DecisionsAccepted:   atomic.LoadUint64(&m.decisionsAccepted),
		DecisionsRejected:   atomic.LoadUint64(&m.decisionsRejected),
		DecisionsSimFailed:  atomic.LoadUint64(&m.decisionsSimFailed),
		ExecutionsSent:      atomic.LoadUint64(&m.executionsSent),
		ExecutionsConfirmed: atomic.LoadUint64(&m.executionsConfirmed),
		ExecutionsFailed:    atomic.LoadUint64(&m.executionsFailed),
		Retries6005:         atomic.LoadUint64(&m.retries6005),
		RejectByReason:      reasons,
		CacheSize:           cacheSize,
		LockCount:           lockCount,
		LockLockedLamports:  lockLocked,
		AuditPending:        auditPending,
		GoroutineCount:      runtime.NumGoroutine(),
		HeapAlloc:           memStats.HeapAlloc,
		HeapSys:             memStats.HeapSys,
		Timestamp:           time.Now(),
	}
}

// Timer helps measure operation duration.
type Timer struct {
	start     time.Time
	histogram *LatencyHistogram
}

// NewTimer creates a timer that records to the given histogram.
func NewTimer(h *LatencyHistogram) *Timer {
	return &Timer{
		start:     time.Now(),
		histogram: h,
	}
}

// Stop records elapsed time to histogram.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	if t.histogram != nil {
		t.histogram.RecordDuration(elapsed)
	}
	return elapsed
}

package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	requestsTotal atomic.Uint64
	retriesTotal  atomic.Uint64
	errorsTotal   atomic.Uint64
	fallbacks     atomic.Uint64
	iconsCached   atomic.Uint64

	// Latency tracking
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64

	// Gauges
	circuitOpen atomic.Int32 // 1 = open, 0 = closed
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordRequest records a completed upstream request with its latency.
func (m *Metrics) RecordRequest(latency time.Duration) {
	m.requestsTotal.Add(1)
	m.latencySumNs.Add(latency.Nanoseconds())
	m.latencyCount.Add(1)
}

// RecordRetry records a retried upstream request.
func (m *Metrics) RecordRetry() {
	m.retriesTotal.Add(1)
}

// RecordError records an error occurrence.
func (m *Metrics) RecordError() {
	m.errorsTotal.Add(1)
}

// RecordFallback records a history request served by the secondary provider.
func (m *Metrics) RecordFallback() {
	m.fallbacks.Add(1)
}

// RecordIconCached records an icon written to the local cache.
func (m *Metrics) RecordIconCached() {
	m.iconsCached.Add(1)
}

// SetCircuitState sets the circuit breaker state (true = open).
func (m *Metrics) SetCircuitState(open bool) {
	if open {
		m.circuitOpen.Store(1)
	} else {
		m.circuitOpen.Store(0)
	}
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	RequestsTotal uint64
	RetriesTotal  uint64
	ErrorsTotal   uint64
	Fallbacks     uint64
	IconsCached   uint64
	AvgLatency    time.Duration
	CircuitOpen   bool
	Timestamp     time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.latencyCount.Load()
	if count > 0 {
		avgLatency = m.latencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		RequestsTotal: m.requestsTotal.Load(),
		RetriesTotal:  m.retriesTotal.Load(),
		ErrorsTotal:   m.errorsTotal.Load(),
		Fallbacks:     m.fallbacks.Load(),
		IconsCached:   m.iconsCached.Load(),
		AvgLatency:    time.Duration(avgLatency),
		CircuitOpen:   m.circuitOpen.Load() == 1,
		Timestamp:     time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.requestsTotal.Store(0)
	m.retriesTotal.Store(0)
	m.errorsTotal.Store(0)
	m.fallbacks.Store(0)
	m.iconsCached.Store(0)
	m.latencySumNs.Store(0)
	m.latencyCount.Store(0)
	m.circuitOpen.Store(0)
}

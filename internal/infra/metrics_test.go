package infra

import (
	"testing"
	"time"
)

func TestMetrics_RecordRequest(t *testing.T) {
	m := &Metrics{}

	m.RecordRequest(1000)
	m.RecordRequest(2000)
	m.RecordRequest(3000)

	snap := m.Snapshot()

	if snap.RequestsTotal != 3 {
		t.Errorf("Expected 3 requests, got %d", snap.RequestsTotal)
	}

	// Average latency: (1000 + 2000 + 3000) / 3 = 2000
	if snap.AvgLatency != 2000*time.Nanosecond {
		t.Errorf("Expected avg latency 2000ns, got %s", snap.AvgLatency)
	}
}

func TestMetrics_Counters(t *testing.T) {
	m := &Metrics{}

	m.RecordRetry()
	m.RecordRetry()
	m.RecordError()
	m.RecordFallback()
	m.RecordIconCached()
	m.RecordIconCached()
	m.RecordIconCached()

	snap := m.Snapshot()
	if snap.RetriesTotal != 2 {
		t.Errorf("Expected 2 retries, got %d", snap.RetriesTotal)
	}
	if snap.ErrorsTotal != 1 {
		t.Errorf("Expected 1 error, got %d", snap.ErrorsTotal)
	}
	if snap.Fallbacks != 1 {
		t.Errorf("Expected 1 fallback, got %d", snap.Fallbacks)
	}
	if snap.IconsCached != 3 {
		t.Errorf("Expected 3 cached icons, got %d", snap.IconsCached)
	}
}

func TestMetrics_CircuitState(t *testing.T) {
	m := &Metrics{}

	snap := m.Snapshot()
	if snap.CircuitOpen {
		t.Error("Expected circuit closed initially")
	}

	m.SetCircuitState(true)
	snap = m.Snapshot()
	if !snap.CircuitOpen {
		t.Error("Expected circuit open")
	}

	m.SetCircuitState(false)
	snap = m.Snapshot()
	if snap.CircuitOpen {
		t.Error("Expected circuit closed")
	}
}

func TestMetrics_Reset(t *testing.T) {
	m := &Metrics{}

	m.RecordRequest(1000)
	m.RecordError()
	m.SetCircuitState(true)

	m.Reset()
	snap := m.Snapshot()

	if snap.RequestsTotal != 0 {
		t.Error("Expected 0 requests after reset")
	}
	if snap.ErrorsTotal != 0 {
		t.Error("Expected 0 errors after reset")
	}
	if snap.CircuitOpen {
		t.Error("Expected circuit closed after reset")
	}
}

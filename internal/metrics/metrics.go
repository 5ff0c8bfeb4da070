package metrics

import "sync/atomic"

// MetricID identifies a single counter. IDs are dense and double as slot
// indices, so new metrics must be appended before metricIDCount.
type MetricID uint8

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricRefreshSuccess
	MetricRefreshFailure
	MetricRefreshReuseDetected
	MetricLogout
	MetricRegisterSuccess
	MetricRegisterDuplicate
	MetricPasswordChangeSuccess
	MetricPasswordChangeFailure

	metricIDCount
)

// paddedCounter keeps each slot on its own cache line to avoid false
// sharing between concurrently incremented counters.
type paddedCounter struct {
	value uint64
	_     [56]byte
}

// Metrics is a fixed-size set of lock-free counters. The zero value is not
// usable; construct with [New].
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// New returns a Metrics set. When enabled is false, Inc is a no-op and
// Snapshot returns empty maps, so callers never need a nil check.
func New(enabled bool) *Metrics {
	return &Metrics{enabled: enabled}
}

// Inc adds one to the counter. Out-of-range IDs are ignored.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Enabled reports whether counters are being recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Counters map[MetricID]uint64
}

// Snapshot copies the current counter values. The copy is not atomic across
// counters; each value is individually consistent.
func (m *Metrics) Snapshot() Snapshot {
	out := Snapshot{Counters: make(map[MetricID]uint64, metricIDCount)}
	if m == nil || !m.enabled {
		return out
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		out.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return out
}

// Package metrics defines a concurrently-accessible activity counter
// used by wire messengers.
//
// A *metrics.M tracks named integer counters and maximum values. A
// nil *M is valid and discards everything recorded in it, so callers
// need not check whether collection is enabled.
package metrics

import "sync"

// An M collects counters and maximum value trackers. The methods of
// an *M are safe for concurrent use by multiple goroutines.
type M struct {
	mu  sync.Mutex
	cnt map[string]int64
	max map[string]int64
}

// New creates a new, empty collector.
func New() *M {
	return &M{cnt: make(map[string]int64), max: make(map[string]int64)}
}

// Count adds n to the counter named, defining it if necessary.
func (m *M) Count(name string, n int64) {
	if m != nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.cnt[name] += n
	}
}

// SetMax updates the maximum value named to n if it exceeds the
// current value, defining it if necessary.
func (m *M) SetMax(name string, n int64) {
	if m != nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		if n > m.max[name] {
			m.max[name] = n
		}
	}
}

// Counter reports the current value of the counter named, or 0 if it
// has never been counted.
func (m *M) Counter(name string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cnt[name]
}

// Snapshot copies an atomic snapshot of the counters and maximum
// values into the provided maps. Either map may be nil to skip that
// group.
func (m *M) Snapshot(counters, maxValues map[string]int64) {
	if m != nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		for name, val := range m.cnt {
			if counters != nil {
				counters[name] = val
			}
		}
		for name, val := range m.max {
			if maxValues != nil {
				maxValues[name] = val
			}
		}
	}
}

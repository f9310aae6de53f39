package netsync

import "time"

type driftSample struct {
	diff float64
	at   time.Time
}

// SyncMetrics keeps a rolling window of reconciliation drift samples for
// diagnostics. It has no effect on control flow.
type SyncMetrics struct {
	window  time.Duration
	samples []driftSample

	// Rejected counts snapshots dropped at the boundary (non-finite
	// coordinates, tombstoned ids).
	Rejected int
}

// NewSyncMetrics creates a metrics collector with the given rolling window.
func NewSyncMetrics(window time.Duration) *SyncMetrics {
	return &SyncMetrics{window: window}
}

// Record adds a positionDiff sample and prunes entries older than the window.
func (m *SyncMetrics) Record(diff float64, at time.Time) {
	m.samples = append(m.samples, driftSample{diff: diff, at: at})
	cutoff := at.Add(-m.window)
	i := 0
	for i < len(m.samples) && m.samples[i].at.Before(cutoff) {
		i++
	}
	if i > 0 {
		m.samples = append(m.samples[:0], m.samples[i:]...)
	}
}

// Count returns the number of samples in the window.
func (m *SyncMetrics) Count() int {
	return len(m.samples)
}

// Mean returns the average drift over the window, or 0 with no samples.
func (m *SyncMetrics) Mean() float64 {
	if len(m.samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range m.samples {
		sum += s.diff
	}
	return sum / float64(len(m.samples))
}

// Max returns the largest drift in the window, or 0 with no samples.
func (m *SyncMetrics) Max() float64 {
	max := 0.0
	for _, s := range m.samples {
		if s.diff > max {
			max = s.diff
		}
	}
	return max
}

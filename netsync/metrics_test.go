package netsync

import (
	"math"
	"testing"
	"time"
)

func TestMetricsMeanAndMax(t *testing.T) {
	m := NewSyncMetrics(time.Minute)
	now := time.Now()

	m.Record(1, now)
	m.Record(2, now.Add(time.Second))
	m.Record(6, now.Add(2*time.Second))

	if m.Count() != 3 {
		t.Fatalf("count = %d, want 3", m.Count())
	}
	if math.Abs(m.Mean()-3) > 1e-9 {
		t.Fatalf("mean = %f, want 3", m.Mean())
	}
	if m.Max() != 6 {
		t.Fatalf("max = %f, want 6", m.Max())
	}
}

func TestMetricsEmptyWindow(t *testing.T) {
	m := NewSyncMetrics(time.Minute)
	if m.Mean() != 0 || m.Max() != 0 || m.Count() != 0 {
		t.Fatal("empty metrics must report zeros")
	}
}

func TestMetricsPrunesOldSamples(t *testing.T) {
	m := NewSyncMetrics(5 * time.Second)
	now := time.Now()

	m.Record(10, now)
	m.Record(1, now.Add(time.Second))
	m.Record(2, now.Add(7*time.Second))

	if m.Count() != 1 {
		t.Fatalf("count = %d after prune, want 1", m.Count())
	}
	if m.Max() != 2 {
		t.Fatalf("max = %f, stale sample survived the window", m.Max())
	}
}

package metrics

import (
	"slices"
	"sync"
	"time"
)

// LatencySnapshot aggregates the conversion latencies currently in the window.
type LatencySnapshot struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

type latencySample struct {
	at time.Time
	ms int64
}

// LatencyStats keeps conversion latencies for a rolling window.
type LatencyStats struct {
	mu      sync.Mutex
	window  time.Duration
	samples []latencySample
	now     func() time.Time
}

// NewLatencyStats returns a window of the given length (one hour when zero).
func NewLatencyStats(window time.Duration) *LatencyStats {
	if window <= 0 {
		window = time.Hour
	}
	return &LatencyStats{window: window, now: time.Now}
}

// Record adds one conversion duration; negative durations count as zero.
func (s *LatencyStats) Record(d time.Duration) {
	ms := max(d.Milliseconds(), 0)
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.expireLocked(now)
	s.samples = append(s.samples, latencySample{at: now, ms: ms})
}

// Snapshot returns the aggregate of samples still inside the window.
func (s *LatencyStats) Snapshot() LatencySnapshot {
	s.mu.Lock()
	s.expireLocked(s.now())
	values := make([]int64, len(s.samples))
	for i, sm := range s.samples {
		values[i] = sm.ms
	}
	s.mu.Unlock()

	if len(values) == 0 {
		return LatencySnapshot{}
	}
	slices.Sort(values)
	var sum int64
	for _, v := range values {
		sum += v
	}
	return LatencySnapshot{
		Count: len(values),
		MinMs: values[0],
		MaxMs: values[len(values)-1],
		AvgMs: float64(sum) / float64(len(values)),
		P50Ms: percentile(values, 50),
		P95Ms: percentile(values, 95),
		P99Ms: percentile(values, 99),
	}
}

func (s *LatencyStats) expireLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	kept := s.samples[:0]
	for _, sm := range s.samples {
		if !sm.at.Before(cutoff) {
			kept = append(kept, sm)
		}
	}
	s.samples = kept
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}
	rank := float64(len(sorted)-1) * pct / 100
	lo := int(rank)
	if lo+1 >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := rank - float64(lo)
	return float64(sorted[lo]) + frac*float64(sorted[lo+1]-sorted[lo])
}

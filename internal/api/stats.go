package api

import (
	"sort"
	"sync"
	"time"
)

// Stats tracks served-request statistics with thread-safe access.
type Stats struct {
	mu sync.RWMutex

	totalRequests int64
	byStatus      map[int]int64

	// Ring buffer of handler durations for percentile calculations
	durations  []time.Duration
	maxSamples int

	startTime time.Time
}

// StatsSnapshot is a point-in-time view of request statistics.
type StatsSnapshot struct {
	TotalRequests int64         `json:"total_requests"`
	ByStatus      map[int]int64 `json:"by_status"`
	P50Millis     float64       `json:"p50_ms"`
	P90Millis     float64       `json:"p90_ms"`
	UptimeSeconds float64       `json:"uptime_seconds"`
}

// NewStats creates a new request statistics tracker.
func NewStats() *Stats {
	return &Stats{
		byStatus:   make(map[int]int64),
		durations:  make([]time.Duration, 0, 100),
		maxSamples: 100,
		startTime:  time.Now(),
	}
}

// Record registers a completed request with its response status and duration.
func (s *Stats) Record(status int, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalRequests++
	s.byStatus[status]++

	// Add to ring buffer, dropping the oldest sample when full
	if len(s.durations) >= s.maxSamples {
		copy(s.durations, s.durations[1:])
		s.durations = s.durations[:len(s.durations)-1]
	}
	s.durations = append(s.durations, duration)
}

// Snapshot returns a point-in-time view of all statistics.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := StatsSnapshot{
		TotalRequests: s.totalRequests,
		ByStatus:      make(map[int]int64, len(s.byStatus)),
		UptimeSeconds: time.Since(s.startTime).Seconds(),
	}
	for status, count := range s.byStatus {
		snap.ByStatus[status] = count
	}

	n := len(s.durations)
	if n == 0 {
		return snap
	}

	// Percentiles require a sorted copy
	sorted := make([]time.Duration, n)
	copy(sorted, s.durations)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	snap.P50Millis = float64(sorted[n/2]) / float64(time.Millisecond)

	p90Index := int(float64(n) * 0.9)
	if p90Index >= n {
		p90Index = n - 1
	}
	snap.P90Millis = float64(sorted[p90Index]) / float64(time.Millisecond)

	return snap
}

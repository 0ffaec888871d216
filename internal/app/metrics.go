package app

import (
	"sync/atomic"
	"time"
)

// Metrics tracks update-loop counters and cycle timing.
type Metrics struct {
	// Cycle timing
	cycleCount   atomic.Uint64
	cycleTotalNs atomic.Int64
	cycleMinNs   atomic.Int64
	cycleMaxNs   atomic.Int64

	// Throughput
	transitions  atomic.Uint64
	clicks       atomic.Uint64
	doubleClicks atomic.Uint64
	reloads      atomic.Uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),
	}
	// Initialize min to max int64 so first cycle will be smaller
	m.cycleMinNs.Store(1<<63 - 1)
	return m
}

// RecordCycle records one update cycle.
func (m *Metrics) RecordCycle(duration time.Duration, transitions, clicks, doubleClicks int) {
	ns := duration.Nanoseconds()

	m.cycleCount.Add(1)
	m.cycleTotalNs.Add(ns)
	m.transitions.Add(uint64(transitions))
	m.clicks.Add(uint64(clicks))
	m.doubleClicks.Add(uint64(doubleClicks))

	for {
		old := m.cycleMinNs.Load()
		if ns >= old || m.cycleMinNs.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.cycleMaxNs.Load()
		if ns <= old || m.cycleMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordReload records a registry re-initialization.
func (m *Metrics) RecordReload() {
	m.reloads.Add(1)
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	count := m.cycleCount.Load()

	var avg int64
	if count > 0 {
		avg = m.cycleTotalNs.Load() / int64(count)
	}

	minNs := m.cycleMinNs.Load()
	if minNs == 1<<63-1 {
		minNs = 0
	}

	return MetricsSnapshot{
		Uptime:       time.Since(m.startTime),
		Cycles:       count,
		AvgCycle:     time.Duration(avg),
		MinCycle:     time.Duration(minNs),
		MaxCycle:     time.Duration(m.cycleMaxNs.Load()),
		Transitions:  m.transitions.Load(),
		Clicks:       m.clicks.Load(),
		DoubleClicks: m.doubleClicks.Load(),
		Reloads:      m.reloads.Load(),
	}
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime       time.Duration
	Cycles       uint64
	AvgCycle     time.Duration
	MinCycle     time.Duration
	MaxCycle     time.Duration
	Transitions  uint64
	Clicks       uint64
	DoubleClicks uint64
	Reloads      uint64
}

// Package memory provides cooperative memory-pressure monitoring. Stages
// poll the monitor between batches and run a reclamation pass when heap
// utilization crosses the configured fraction; nothing here runs in the
// background.
package memory

import (
	"runtime"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/jonesrussell/newsfuse/internal/logger"
)

const (
	// DefaultThreshold is the default utilization fraction that triggers
	// reclamation.
	DefaultThreshold = 0.85

	// DefaultLimitBytes is the default heap budget when none is configured.
	DefaultLimitBytes = 1 << 30 // 1 GiB
)

// Monitor checks heap utilization against a configured budget.
type Monitor struct {
	threshold  float64
	limitBytes uint64
	logger     logger.Interface

	reclaims atomic.Int64
}

// NewMonitor creates a monitor. A zero threshold or limit falls back to the
// defaults.
func NewMonitor(threshold float64, limitBytes uint64, log logger.Interface) *Monitor {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	if limitBytes == 0 {
		limitBytes = DefaultLimitBytes
	}
	if log == nil {
		log = logger.NewNoOp()
	}
	return &Monitor{
		threshold:  threshold,
		limitBytes: limitBytes,
		logger:     log.WithComponent("memory"),
	}
}

// Utilization returns the current heap allocation as a fraction of the
// configured budget.
func (m *Monitor) Utilization() float64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return float64(stats.HeapAlloc) / float64(m.limitBytes)
}

// Critical reports whether utilization exceeds the configured threshold.
func (m *Monitor) Critical() bool {
	return m.Utilization() > m.threshold
}

// Reclaim forces a collection pass and returns released pages to the OS.
// It blocks the caller for the duration of the pass.
func (m *Monitor) Reclaim() {
	start := time.Now()
	runtime.GC()
	debug.FreeOSMemory()
	m.reclaims.Add(1)
	m.logger.Debug("memory reclaimed",
		"duration", time.Since(start),
		"utilization", m.Utilization(),
	)
}

// ReclaimIfCritical runs a reclamation pass when utilization is above the
// threshold. Returns true when a pass ran.
func (m *Monitor) ReclaimIfCritical() bool {
	if !m.Critical() {
		return false
	}
	m.Reclaim()
	return true
}

// Reclaims returns the number of reclamation passes run so far.
func (m *Monitor) Reclaims() int64 {
	return m.reclaims.Load()
}

// Package metrics provides metrics collection and reporting for pipeline
// runs.
package metrics

import (
	"sync"
	"time"
)

// Metrics holds the fusion pipeline's counters.
type Metrics struct {
	// HeadlinesSeen is the number of headlines pulled from the feed.
	HeadlinesSeen int64
	// ArticlesPublished is the number of articles that passed the publish
	// gate and were stored.
	ArticlesPublished int64
	// ArticlesDiscarded is the number of articles rejected by the publish
	// gate.
	ArticlesDiscarded int64
	// ItemsFailed is the number of items abandoned on terminal failure.
	ItemsFailed int64
	// AcquisitionFailures is the number of skipped source fetches.
	AcquisitionFailures int64
	// LastPublishedTime is when the last article was stored.
	LastPublishedTime time.Time
	// ProcessingDuration is the total time spent in pipeline runs.
	ProcessingDuration time.Duration
	// StartTime is when the metrics collection began.
	StartTime time.Time
	// CurrentItem is the headline currently being processed.
	CurrentItem string

	mu sync.Mutex
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{StartTime: time.Now()}
}

// RecordHeadlines adds to the headlines-seen counter.
func (m *Metrics) RecordHeadlines(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HeadlinesSeen += int64(count)
}

// RecordPublished counts one stored article.
func (m *Metrics) RecordPublished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesPublished++
	m.LastPublishedTime = time.Now()
}

// RecordDiscarded counts one publish-gate rejection.
func (m *Metrics) RecordDiscarded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesDiscarded++
}

// RecordItemFailed counts one item abandoned on terminal failure.
func (m *Metrics) RecordItemFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsFailed++
}

// RecordAcquisitionFailure counts one skipped source fetch.
func (m *Metrics) RecordAcquisitionFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AcquisitionFailures++
}

// AddDuration adds one run's elapsed time to the total.
func (m *Metrics) AddDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProcessingDuration += d
}

// SetCurrentItem records the headline currently being processed.
func (m *Metrics) SetCurrentItem(title string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CurrentItem = title
}

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		HeadlinesSeen:       m.HeadlinesSeen,
		ArticlesPublished:   m.ArticlesPublished,
		ArticlesDiscarded:   m.ArticlesDiscarded,
		ItemsFailed:         m.ItemsFailed,
		AcquisitionFailures: m.AcquisitionFailures,
		LastPublishedTime:   m.LastPublishedTime,
		ProcessingDuration:  m.ProcessingDuration,
		StartTime:           m.StartTime,
		CurrentItem:         m.CurrentItem,
	}
}

// Reset clears every counter and restarts the collection clock.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HeadlinesSeen = 0
	m.ArticlesPublished = 0
	m.ArticlesDiscarded = 0
	m.ItemsFailed = 0
	m.AcquisitionFailures = 0
	m.LastPublishedTime = time.Time{}
	m.ProcessingDuration = 0
	m.StartTime = time.Now()
	m.CurrentItem = ""
}

// Snapshot is a point-in-time copy of the pipeline counters.
type Snapshot struct {
	HeadlinesSeen       int64
	ArticlesPublished   int64
	ArticlesDiscarded   int64
	ItemsFailed         int64
	AcquisitionFailures int64
	LastPublishedTime   time.Time
	ProcessingDuration  time.Duration
	StartTime           time.Time
	CurrentItem         string
}

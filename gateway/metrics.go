package gateway

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/nocodenation/appgateway/pkg/timestamp"
)

// EndpointMetrics tracks per-endpoint request statistics. Counters use atomic
// operations; the running latency average is guarded by a narrow mutex.
type EndpointMetrics struct {
	totalRequests      atomic.Uint64
	successfulRequests atomic.Uint64
	failedRequests     atomic.Uint64
	queueFullRejects   atomic.Uint64
	currentQueueSize   atomic.Int64
	lastRequestMs      atomic.Int64

	// Guards avgLatencyMs and latencySamples
	mu             sync.Mutex
	avgLatencyMs   float64
	latencySamples uint64
}

// NewEndpointMetrics creates zeroed metrics for an endpoint.
func NewEndpointMetrics() *EndpointMetrics {
	return &EndpointMetrics{}
}

// RecordRequest counts an inbound request and stamps the last-request time.
func (m *EndpointMetrics) RecordRequest() {
	m.totalRequests.Add(1)
	m.lastRequestMs.Store(timestamp.Now())
}

// RecordSuccess counts a successful dispatch and folds the latency sample
// into the running average: avg' = avg + (sample - avg) / n.
func (m *EndpointMetrics) RecordSuccess(latency time.Duration) {
	m.successfulRequests.Add(1)

	sampleMs := float64(latency.Microseconds()) / 1000.0

	m.mu.Lock()
	m.latencySamples++
	m.avgLatencyMs += (sampleMs - m.avgLatencyMs) / float64(m.latencySamples)
	m.mu.Unlock()
}

// RecordFailure counts a failed dispatch.
func (m *EndpointMetrics) RecordFailure() {
	m.failedRequests.Add(1)
}

// RecordQueueFull counts a request rejected by backpressure.
func (m *EndpointMetrics) RecordQueueFull() {
	m.queueFullRejects.Add(1)
}

// SetQueueSize records the current queue depth.
func (m *EndpointMetrics) SetQueueSize(n int) {
	m.currentQueueSize.Store(int64(n))
}

// SuccessRate returns successfulRequests / totalRequests in [0, 1].
// Returns 0 when no requests have been recorded.
func (m *EndpointMetrics) SuccessRate() float64 {
	total := m.totalRequests.Load()
	if total == 0 {
		return 0
	}
	return float64(m.successfulRequests.Load()) / float64(total)
}

// MetricsSnapshot is a consistent-enough view of endpoint metrics for
// reporting. Field names match the JSON metrics document.
type MetricsSnapshot struct {
	TotalRequests      uint64  `json:"totalRequests"`
	SuccessfulRequests uint64  `json:"successfulRequests"`
	FailedRequests     uint64  `json:"failedRequests"`
	QueueFullRejects   uint64  `json:"queueFullRejections"`
	AverageLatencyMs   float64 `json:"averageLatencyMs"`
	CurrentQueueSize   int64   `json:"currentQueueSize"`
	SuccessRate        float64 `json:"successRate"`
	LastRequestTime    *string `json:"lastRequestTime"` // RFC3339, null if never
}

// Snapshot returns the current metric values.
func (m *EndpointMetrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	avg := m.avgLatencyMs
	m.mu.Unlock()

	snap := MetricsSnapshot{
		TotalRequests:      m.totalRequests.Load(),
		SuccessfulRequests: m.successfulRequests.Load(),
		FailedRequests:     m.failedRequests.Load(),
		QueueFullRejects:   m.queueFullRejects.Load(),
		AverageLatencyMs:   avg,
		CurrentQueueSize:   m.currentQueueSize.Load(),
		SuccessRate:        m.SuccessRate(),
	}

	if last := m.lastRequestMs.Load(); last != 0 {
		formatted := timestamp.Format(last)
		snap.LastRequestTime = &formatted
	}

	return snap
}

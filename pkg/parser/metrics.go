package parser

import (
	"sync"
	"time"
)

// Metrics is an operational snapshot, not a correctness signal.
type Metrics struct {
	TotalParses    int                `json:"totalParses"`
	CacheHits      int                `json:"cacheHits"`
	CacheHitRate   float64            `json:"cacheHitRate"`
	AvgParseTime   time.Duration      `json:"avgParseTime"`
	MethodAverages map[string]float64 `json:"methodAverages"` // avg confidence per method
}

type metricsRecorder struct {
	mu            sync.Mutex
	totalParses   int
	cacheHits     int
	totalDuration time.Duration
	methodSums    map[string]float64
	methodCounts  map[string]int
}

func newMetricsRecorder() *metricsRecorder {
	return &metricsRecorder{
		methodSums:   make(map[string]float64),
		methodCounts: make(map[string]int),
	}
}

func (m *metricsRecorder) recordParse(method string, confidence float64, took time.Duration, cacheHit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalParses++
	if cacheHit {
		m.cacheHits++
		return
	}
	m.totalDuration += took
	m.methodSums[method] += confidence
	m.methodCounts[method]++
}

func (m *metricsRecorder) snapshot() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := Metrics{
		TotalParses:    m.totalParses,
		CacheHits:      m.cacheHits,
		MethodAverages: make(map[string]float64, len(m.methodSums)),
	}
	if m.totalParses > 0 {
		out.CacheHitRate = float64(m.cacheHits) / float64(m.totalParses)
	}
	if uncached := m.totalParses - m.cacheHits; uncached > 0 {
		out.AvgParseTime = m.totalDuration / time.Duration(uncached)
	}
	for method, sum := range m.methodSums {
		out.MethodAverages[method] = sum / float64(m.methodCounts[method])
	}
	return out
}

package interrogation

import (
	"sync"
	"time"
)

// MetricsCollector collects performance metrics for interrogation runs
type MetricsCollector struct {
	mu sync.RWMutex

	// Counters
	runCount       int64
	questionCount  int64
	retrievalCount int64
	refineCount    int64
	synthesisCount int64

	// Latency tracking
	questionLatency  []time.Duration
	retrievalLatency []time.Duration
	refineLatency    []time.Duration

	// Error tracking
	questionErrors  int64
	retrievalErrors int64
	refineErrors    int64
	synthesisErrors int64

	// Loop behavior
	retryCount       int64
	cacheHits        int64
	duplicateRetries int64
	runsByStatus     map[Status]int64
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		questionLatency:  make([]time.Duration, 0, 1000),
		retrievalLatency: make([]time.Duration, 0, 1000),
		refineLatency:    make([]time.Duration, 0, 1000),
		runsByStatus:     make(map[Status]int64),
	}
}

// RecordQuestion records a question generation call
func (mc *MetricsCollector) RecordQuestion(duration time.Duration, err error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.questionCount++
	mc.questionLatency = append(mc.questionLatency, duration)
	if err != nil {
		mc.questionErrors++
	}
}

// RecordRetrieval records a researcher call
func (mc *MetricsCollector) RecordRetrieval(duration time.Duration, err error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.retrievalCount++
	mc.retrievalLatency = append(mc.retrievalLatency, duration)
	if err != nil {
		mc.retrievalErrors++
	}
}

// RecordRefine records a refinement call
func (mc *MetricsCollector) RecordRefine(duration time.Duration, err error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.refineCount++
	mc.refineLatency = append(mc.refineLatency, duration)
	if err != nil {
		mc.refineErrors++
	}
}

// RecordSynthesis records a report synthesis attempt
func (mc *MetricsCollector) RecordSynthesis(err error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.synthesisCount++
	if err != nil {
		mc.synthesisErrors++
	}
}

// RecordRetry records one retrieval retry
func (mc *MetricsCollector) RecordRetry() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.retryCount++
}

// RecordCacheHit records an answer served from cache
func (mc *MetricsCollector) RecordCacheHit() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.cacheHits++
}

// RecordDuplicateRetry records a question regenerated after a duplicate
func (mc *MetricsCollector) RecordDuplicateRetry() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.duplicateRetries++
}

// RecordRun records a completed run and its terminal status
func (mc *MetricsCollector) RecordRun(status Status) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.runCount++
	mc.runsByStatus[status]++
}

// GetSummary returns a summary of collected metrics
func (mc *MetricsCollector) GetSummary() MetricsSummary {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	byStatus := make(map[Status]int64, len(mc.runsByStatus))
	for k, v := range mc.runsByStatus {
		byStatus[k] = v
	}

	return MetricsSummary{
		RunCount:         mc.runCount,
		RunsByStatus:     byStatus,
		QuestionCount:    mc.questionCount,
		RetrievalCount:   mc.retrievalCount,
		RefineCount:      mc.refineCount,
		SynthesisCount:   mc.synthesisCount,
		QuestionErrors:   mc.questionErrors,
		RetrievalErrors:  mc.retrievalErrors,
		RefineErrors:     mc.refineErrors,
		SynthesisErrors:  mc.synthesisErrors,
		RetryCount:       mc.retryCount,
		CacheHits:        mc.cacheHits,
		DuplicateRetries: mc.duplicateRetries,
		QuestionLatency:  calculatePercentiles(mc.questionLatency),
		RetrievalLatency: calculatePercentiles(mc.retrievalLatency),
		RefineLatency:    calculatePercentiles(mc.refineLatency),
	}
}

// calculatePercentiles calculates p50, p95, p99 latencies
func calculatePercentiles(latencies []time.Duration) LatencyPercentiles {
	if len(latencies) == 0 {
		return LatencyPercentiles{}
	}

	sorted := make([]time.Duration, len(latencies))
	copy(sorted, latencies)
	for i := 0; i < len(sorted)-1; i++ {
		for j := 0; j < len(sorted)-i-1; j++ {
			if sorted[j] > sorted[j+1] {
				sorted[j], sorted[j+1] = sorted[j+1], sorted[j]
			}
		}
	}

	return LatencyPercentiles{
		P50: sorted[len(sorted)*50/100],
		P95: sorted[len(sorted)*95/100],
		P99: sorted[len(sorted)*99/100],
	}
}

// MetricsSummary represents a summary of collected metrics
type MetricsSummary struct {
	RunCount         int64              `json:"run_count"`
	RunsByStatus     map[Status]int64   `json:"runs_by_status"`
	QuestionCount    int64              `json:"question_count"`
	RetrievalCount   int64              `json:"retrieval_count"`
	RefineCount      int64              `json:"refine_count"`
	SynthesisCount   int64              `json:"synthesis_count"`
	QuestionErrors   int64              `json:"question_errors"`
	RetrievalErrors  int64              `json:"retrieval_errors"`
	RefineErrors     int64              `json:"refine_errors"`
	SynthesisErrors  int64              `json:"synthesis_errors"`
	RetryCount       int64              `json:"retry_count"`
	CacheHits        int64              `json:"cache_hits"`
	DuplicateRetries int64              `json:"duplicate_retries"`
	QuestionLatency  LatencyPercentiles `json:"question_latency"`
	RetrievalLatency LatencyPercentiles `json:"retrieval_latency"`
	RefineLatency    LatencyPercentiles `json:"refine_latency"`
}

// LatencyPercentiles represents latency percentiles
type LatencyPercentiles struct {
	P50 time.Duration `json:"p50"`
	P95 time.Duration `json:"p95"`
	P99 time.Duration `json:"p99"`
}

// Reset clears all collected metrics
func (mc *MetricsCollector) Reset() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.runCount = 0
	mc.questionCount = 0
	mc.retrievalCount = 0
	mc.refineCount = 0
	mc.synthesisCount = 0
	mc.questionErrors = 0
	mc.retrievalErrors = 0
	mc.refineErrors = 0
	mc.synthesisErrors = 0
	mc.retryCount = 0
	mc.cacheHits = 0
	mc.duplicateRetries = 0
	mc.questionLatency = mc.questionLatency[:0]
	mc.retrievalLatency = mc.retrievalLatency[:0]
	mc.refineLatency = mc.refineLatency[:0]
	mc.runsByStatus = make(map[Status]int64)
}

package monitoring

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds application metrics
type Metrics struct {
	RequestCount        int64
	ErrorCount          int64
	UploadCount         int64
	ClassifiedColumns   int64
	ChartBuilds         int64
	TypeChanges         int64
	ScoreMapSaves       int64
	RateLimitBlocks     int64
	AverageResponseTime int64 // in nanoseconds
	StartTime           time.Time

	// Response time samples for percentiles
	ResponseTimes      []time.Duration
	ResponseTimesMutex sync.RWMutex

	// Status code tracking
	RequestCountByStatus map[int]int64
	StatusMutex          sync.RWMutex

	// Classification outcomes by question kind
	KindCounts map[string]int64
	KindMutex  sync.RWMutex
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:            time.Now(),
		ResponseTimes:        make([]time.Duration, 0, 1000),
		RequestCountByStatus: make(map[int]int64),
		KindCounts:           make(map[string]int64),
	}
}

// IncrementRequest increments the request count
func (m *Metrics) IncrementRequest() {
	atomic.AddInt64(&m.RequestCount, 1)
}

// IncrementError increments the error count
func (m *Metrics) IncrementError() {
	atomic.AddInt64(&m.ErrorCount, 1)
}

// IncrementUpload increments the processed upload count
func (m *Metrics) IncrementUpload() {
	atomic.AddInt64(&m.UploadCount, 1)
}

// IncrementTypeChange increments the manual type change count
func (m *Metrics) IncrementTypeChange() {
	atomic.AddInt64(&m.TypeChanges, 1)
}

// IncrementScoreMapSave increments the score map override count
func (m *Metrics) IncrementScoreMapSave() {
	atomic.AddInt64(&m.ScoreMapSaves, 1)
}

// IncrementChartBuild increments the chart aggregation count
func (m *Metrics) IncrementChartBuild() {
	atomic.AddInt64(&m.ChartBuilds, 1)
}

// IncrementRateLimitBlock increments the rejected request count
func (m *Metrics) IncrementRateLimitBlock() {
	atomic.AddInt64(&m.RateLimitBlocks, 1)
}

// RecordClassification records the outcome of classifying one survey,
// keyed by question kind.
func (m *Metrics) RecordClassification(kindCounts map[string]int) {
	total := int64(0)
	m.KindMutex.Lock()
	for kind, count := range kindCounts {
		m.KindCounts[kind] += int64(count)
		total += int64(count)
	}
	m.KindMutex.Unlock()
	atomic.AddInt64(&m.ClassifiedColumns, total)
}

// RecordResponseTime records response time for averaging and percentiles
func (m *Metrics) RecordResponseTime(duration time.Duration) {
	current := atomic.LoadInt64(&m.AverageResponseTime)
	newAverage := (current + duration.Nanoseconds()) / 2
	atomic.StoreInt64(&m.AverageResponseTime, newAverage)

	// Keep the last 1000 samples
	m.ResponseTimesMutex.Lock()
	m.ResponseTimes = append(m.ResponseTimes, duration)
	if len(m.ResponseTimes) > 1000 {
		m.ResponseTimes = m.ResponseTimes[1:]
	}
	m.ResponseTimesMutex.Unlock()
}

// RecordRequestByStatus records request count by HTTP status code
func (m *Metrics) RecordRequestByStatus(statusCode int) {
	m.StatusMutex.Lock()
	defer m.StatusMutex.Unlock()
	m.RequestCountByStatus[statusCode]++
}

// GetPercentileResponseTime calculates percentile response time
func (m *Metrics) GetPercentileResponseTime(percentile float64) time.Duration {
	m.ResponseTimesMutex.RLock()
	defer m.ResponseTimesMutex.RUnlock()

	if len(m.ResponseTimes) == 0 {
		return 0
	}

	times := make([]time.Duration, len(m.ResponseTimes))
	copy(times, m.ResponseTimes)

	sort.Slice(times, func(i, j int) bool {
		return times[i] < times[j]
	})

	index := int(float64(len(times)-1) * percentile / 100.0)
	if index >= len(times) {
		index = len(times) - 1
	}

	return times[index]
}

// GetStatusCodeDistribution returns request count by status code
func (m *Metrics) GetStatusCodeDistribution() map[int]int64 {
	m.StatusMutex.RLock()
	defer m.StatusMutex.RUnlock()

	distribution := make(map[int]int64)
	for code, count := range m.RequestCountByStatus {
		distribution[code] = count
	}
	return distribution
}

// GetKindCounts returns classified column counts by question kind
func (m *Metrics) GetKindCounts() map[string]int64 {
	m.KindMutex.RLock()
	defer m.KindMutex.RUnlock()

	counts := make(map[string]int64, len(m.KindCounts))
	for kind, count := range m.KindCounts {
		counts[kind] = count
	}
	return counts
}

// GetStats returns current metrics statistics
func (m *Metrics) GetStats() map[string]interface{} {
	requests := atomic.LoadInt64(&m.RequestCount)
	errors := atomic.LoadInt64(&m.ErrorCount)
	avgResponseTime := atomic.LoadInt64(&m.AverageResponseTime)

	errorRate := float64(0)
	if requests > 0 {
		errorRate = float64(errors) / float64(requests) * 100
	}

	uptime := time.Since(m.StartTime)

	return map[string]interface{}{
		"uptime_seconds":           uptime.Seconds(),
		"total_requests":           requests,
		"error_count":              errors,
		"error_rate_percent":       errorRate,
		"upload_count":             atomic.LoadInt64(&m.UploadCount),
		"classified_columns":       atomic.LoadInt64(&m.ClassifiedColumns),
		"chart_builds":             atomic.LoadInt64(&m.ChartBuilds),
		"type_changes":             atomic.LoadInt64(&m.TypeChanges),
		"score_map_saves":          atomic.LoadInt64(&m.ScoreMapSaves),
		"rate_limit_blocks":        atomic.LoadInt64(&m.RateLimitBlocks),
		"avg_response_time_ms":     float64(avgResponseTime) / 1000000,
		"p50_response_time_ms":     float64(m.GetPercentileResponseTime(50)) / 1000000,
		"p95_response_time_ms":     float64(m.GetPercentileResponseTime(95)) / 1000000,
		"p99_response_time_ms":     float64(m.GetPercentileResponseTime(99)) / 1000000,
		"status_code_distribution": m.GetStatusCodeDistribution(),
		"question_kind_counts":     m.GetKindCounts(),
		"start_time":               m.StartTime.Format(time.RFC3339),
	}
}

// Reset resets all metrics (useful for testing)
func (m *Metrics) Reset() {
	atomic.StoreInt64(&m.RequestCount, 0)
	atomic.StoreInt64(&m.ErrorCount, 0)
	atomic.StoreInt64(&m.UploadCount, 0)
	atomic.StoreInt64(&m.ClassifiedColumns, 0)
	atomic.StoreInt64(&m.ChartBuilds, 0)
	atomic.StoreInt64(&m.TypeChanges, 0)
	atomic.StoreInt64(&m.ScoreMapSaves, 0)
	atomic.StoreInt64(&m.RateLimitBlocks, 0)
	atomic.StoreInt64(&m.AverageResponseTime, 0)

	m.ResponseTimesMutex.Lock()
	m.ResponseTimes = m.ResponseTimes[:0]
	m.ResponseTimesMutex.Unlock()

	m.StatusMutex.Lock()
	m.RequestCountByStatus = make(map[int]int64)
	m.StatusMutex.Unlock()

	m.KindMutex.Lock()
	m.KindCounts = make(map[string]int64)
	m.KindMutex.Unlock()

	m.StartTime = time.Now()
}

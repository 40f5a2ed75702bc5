package interrogation

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsCollectorCountsAndErrors(t *testing.T) {
	mc := NewMetricsCollector()

	mc.RecordQuestion(10*time.Millisecond, nil)
	mc.RecordQuestion(20*time.Millisecond, errors.New("boom"))
	mc.RecordRetrieval(30*time.Millisecond, nil)
	mc.RecordRefine(5*time.Millisecond, errors.New("fallback"))
	mc.RecordSynthesis(nil)
	mc.RecordSynthesis(errors.New("boom"))
	mc.RecordRetry()
	mc.RecordCacheHit()
	mc.RecordDuplicateRetry()
	mc.RecordRun(StatusSuccess)
	mc.RecordRun(StatusSuccess)
	mc.RecordRun(StatusPartial)

	s := mc.GetSummary()
	assert.Equal(t, int64(2), s.QuestionCount)
	assert.Equal(t, int64(1), s.QuestionErrors)
	assert.Equal(t, int64(1), s.RetrievalCount)
	assert.Equal(t, int64(0), s.RetrievalErrors)
	assert.Equal(t, int64(1), s.RefineCount)
	assert.Equal(t, int64(1), s.RefineErrors)
	assert.Equal(t, int64(2), s.SynthesisCount)
	assert.Equal(t, int64(1), s.SynthesisErrors)
	assert.Equal(t, int64(1), s.RetryCount)
	assert.Equal(t, int64(1), s.CacheHits)
	assert.Equal(t, int64(1), s.DuplicateRetries)
	assert.Equal(t, int64(3), s.RunCount)
	assert.Equal(t, int64(2), s.RunsByStatus[StatusSuccess])
	assert.Equal(t, int64(1), s.RunsByStatus[StatusPartial])
}

func TestMetricsCollectorLatencyPercentiles(t *testing.T) {
	mc := NewMetricsCollector()
	for i := 1; i <= 100; i++ {
		mc.RecordQuestion(time.Duration(i)*time.Millisecond, nil)
	}

	s := mc.GetSummary()
	assert.Equal(t, 51*time.Millisecond, s.QuestionLatency.P50)
	assert.Equal(t, 96*time.Millisecond, s.QuestionLatency.P95)
	assert.Equal(t, 100*time.Millisecond, s.QuestionLatency.P99)
}

func TestMetricsCollectorEmptyPercentiles(t *testing.T) {
	mc := NewMetricsCollector()
	s := mc.GetSummary()
	assert.Zero(t, s.QuestionLatency.P50)
	assert.Zero(t, s.RetrievalLatency.P95)
	assert.Zero(t, s.RefineLatency.P99)
}

func TestMetricsCollectorConcurrentAccess(t *testing.T) {
	mc := NewMetricsCollector()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				mc.RecordQuestion(time.Millisecond, nil)
				mc.RecordRetry()
				mc.RecordRun(StatusSuccess)
				_ = mc.GetSummary()
			}
		}()
	}
	wg.Wait()

	s := mc.GetSummary()
	assert.Equal(t, int64(800), s.QuestionCount)
	assert.Equal(t, int64(800), s.RetryCount)
	assert.Equal(t, int64(800), s.RunCount)
}

package interrogation

import (
	"context"

	"github.com/sourcegraph/conc/pool"
)

// BatchResult pairs a request with its outcome. Err is non-nil only for
// invalid requests; every valid request yields a report.
type BatchResult struct {
	Request Request
	Report  FinalReport
	Err     error
}

// Batch runs requests concurrently, at most concurrency at a time.
// Results are returned in request order. Individual failures never
// abort the batch.
func (e *Engine) Batch(ctx context.Context, requests []Request, concurrency int) []BatchResult {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]BatchResult, len(requests))
	p := pool.New().WithMaxGoroutines(concurrency)
	for i, req := range requests {
		p.Go(func() {
			report, err := e.Interrogate(ctx, req)
			results[i] = BatchResult{Request: req, Report: report, Err: err}
		})
	}
	p.Wait()
	return results
}

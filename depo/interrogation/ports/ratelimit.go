package depoports

import "context"

// RateLimiter coordinates throughput across the researcher and model
// backends.
type RateLimiter interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

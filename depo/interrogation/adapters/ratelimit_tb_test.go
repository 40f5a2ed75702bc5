package adapters

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucketAcquireAndRelease(t *testing.T) {
	tb := NewTokenBucket(2, time.Hour)
	ctx := context.Background()

	release1, err := tb.Acquire(ctx, "retrieve")
	require.NoError(t, err)
	release2, err := tb.Acquire(ctx, "retrieve")
	require.NoError(t, err)

	// Bucket exhausted while both permits are held.
	_, err = tb.Acquire(ctx, "retrieve")
	require.Error(t, err)

	var rle *RateLimitError
	assert.True(t, errors.As(err, &rle))

	// Releasing a permit makes room again.
	release1()
	release3, err := tb.Acquire(ctx, "retrieve")
	require.NoError(t, err)

	release2()
	release3()
}

func TestTokenBucketKeysAreIndependent(t *testing.T) {
	tb := NewTokenBucket(1, time.Hour)
	ctx := context.Background()

	_, err := tb.Acquire(ctx, "retrieve")
	require.NoError(t, err)

	// Exhausting one key leaves others untouched.
	_, err = tb.Acquire(ctx, "retrieve")
	require.Error(t, err)

	release, err := tb.Acquire(ctx, "generate")
	require.NoError(t, err)
	release()
}

func TestTokenBucketRefillsOverTime(t *testing.T) {
	tb := NewTokenBucket(1, 10*time.Millisecond)
	ctx := context.Background()

	_, err := tb.Acquire(ctx, "retrieve")
	require.NoError(t, err)

	_, err = tb.Acquire(ctx, "retrieve")
	require.Error(t, err, "no token immediately after exhaustion")

	time.Sleep(30 * time.Millisecond)

	release, err := tb.Acquire(ctx, "retrieve")
	require.NoError(t, err, "tokens refill with elapsed time")
	release()
}

func TestTokenBucketReleaseNeverExceedsCapacity(t *testing.T) {
	tb := NewTokenBucket(1, time.Hour)
	ctx := context.Background()

	release, err := tb.Acquire(ctx, "retrieve")
	require.NoError(t, err)

	// Double release must not mint extra tokens.
	release()
	release()

	_, err = tb.Acquire(ctx, "retrieve")
	require.NoError(t, err)
	_, err = tb.Acquire(ctx, "retrieve")
	assert.Error(t, err)
}

func TestTokenBucketClampsConstruction(t *testing.T) {
	tb := NewTokenBucket(0, 0)
	ctx := context.Background()

	// Capacity clamps to 1 and the refill rate to one second.
	release, err := tb.Acquire(ctx, "k")
	require.NoError(t, err)
	release()
}

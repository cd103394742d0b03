package processor

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/myola/storefront/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	connName := t.Name() + "-" + mr.Addr()
	adapter, err := redis.NewRedisAdapter(connName, "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	return mr, adapter
}

func TestIdempotencyService_AcquireProcessingLock(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	defer mr.Close()

	svc := NewIdempotencyService(adapter, DefaultIdempotencyConfig())
	ctx := context.Background()

	t.Run("first acquisition succeeds", func(t *testing.T) {
		pc, err := svc.AcquireProcessingLock(ctx, "PAY-1")
		require.NoError(t, err)
		assert.Equal(t, "PAY-1", pc.EventID)
		assert.Zero(t, pc.RetryCount)
		assert.False(t, pc.IsRetry)
	})

	t.Run("concurrent acquisition is blocked", func(t *testing.T) {
		_, err := svc.AcquireProcessingLock(ctx, "PAY-1")
		assert.ErrorIs(t, err, ErrLockAcquireFailed)
	})

	t.Run("processed event short-circuits", func(t *testing.T) {
		pc, err := svc.AcquireProcessingLock(ctx, "PAY-2")
		require.NoError(t, err)
		require.NoError(t, svc.MarkSuccess(ctx, pc))

		_, err = svc.AcquireProcessingLock(ctx, "PAY-2")
		assert.ErrorIs(t, err, ErrAlreadyProcessed)
	})
}

func TestIdempotencyService_RetryLifecycle(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	defer mr.Close()

	cfg := DefaultIdempotencyConfig()
	cfg.MaxRetries = 2
	svc := NewIdempotencyService(adapter, cfg)
	ctx := context.Background()

	t.Run("failure releases the lock and bumps the counter", func(t *testing.T) {
		pc, err := svc.AcquireProcessingLock(ctx, "PAY-3")
		require.NoError(t, err)

		require.NoError(t, svc.MarkFailure(ctx, pc, assert.AnError))

		count, err := svc.GetRetryCount(ctx, "PAY-3")
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		// Lock is gone, so the retry can acquire again.
		pc2, err := svc.AcquireProcessingLock(ctx, "PAY-3")
		require.NoError(t, err)
		assert.Equal(t, 1, pc2.RetryCount)
		assert.True(t, pc2.IsRetry)
		require.NoError(t, svc.MarkFailure(ctx, pc2, assert.AnError))
	})

	t.Run("exceeding max retries is terminal", func(t *testing.T) {
		_, err := svc.AcquireProcessingLock(ctx, "PAY-3")
		assert.ErrorIs(t, err, ErrMaxRetriesExceeded)
	})

	t.Run("success clears the retry counter", func(t *testing.T) {
		pc, err := svc.AcquireProcessingLock(ctx, "PAY-4")
		require.NoError(t, err)
		require.NoError(t, svc.MarkFailure(ctx, pc, assert.AnError))

		pc, err = svc.AcquireProcessingLock(ctx, "PAY-4")
		require.NoError(t, err)
		require.NoError(t, svc.MarkSuccess(ctx, pc))

		count, err := svc.GetRetryCount(ctx, "PAY-4")
		require.NoError(t, err)
		assert.Zero(t, count)

		processed, err := svc.IsProcessed(ctx, "PAY-4")
		require.NoError(t, err)
		assert.True(t, processed)
	})
}

func TestIdempotencyService_LockExpiry(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	defer mr.Close()

	cfg := DefaultIdempotencyConfig()
	cfg.LockTTL = 50 * time.Millisecond
	svc := NewIdempotencyService(adapter, cfg)
	ctx := context.Background()

	_, err := svc.AcquireProcessingLock(ctx, "PAY-5")
	require.NoError(t, err)

	_, err = svc.AcquireProcessingLock(ctx, "PAY-5")
	assert.ErrorIs(t, err, ErrLockAcquireFailed)

	// A crashed consumer's lock expires and the event becomes
	// claimable again.
	mr.FastForward(100 * time.Millisecond)

	_, err = svc.AcquireProcessingLock(ctx, "PAY-5")
	assert.NoError(t, err)
}

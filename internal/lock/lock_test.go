// internal/lock/lock_test.go
package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/QuadKenya/growth-engine/internal/common/errors"
)

func createRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisLocker(client), mr
}

func TestRedisLocker_AcquireAndRelease(t *testing.T) {
	locker, mr := createRedisLocker(t)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, mr.Exists("lock:candidate:a@example.com"))

	release()
	assert.False(t, mr.Exists("lock:candidate:a@example.com"))
}

func TestRedisLocker_DistinctIDsDoNotBlock(t *testing.T) {
	locker, _ := createRedisLocker(t)
	ctx := context.Background()

	releaseA, err := locker.Acquire(ctx, "a@example.com")
	require.NoError(t, err)
	defer releaseA()

	releaseB, err := locker.Acquire(ctx, "b@example.com")
	require.NoError(t, err)
	releaseB()
}

func TestRedisLocker_HeldLockTimesOut(t *testing.T) {
	locker, _ := createRedisLocker(t)
	locker.retries = 2
	locker.backoff = 5 * time.Millisecond
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "a@example.com")
	require.NoError(t, err)
	defer release()

	_, err = locker.Acquire(ctx, "a@example.com")
	require.Error(t, err)
	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeLockNotAcquired, stdErr.Code)
}

func TestRedisLocker_ReleaseDoesNotClobberNewHolder(t *testing.T) {
	locker, mr := createRedisLocker(t)
	ctx := context.Background()

	releaseOld, err := locker.Acquire(ctx, "a@example.com")
	require.NoError(t, err)

	// Simulate the lease expiring and another instance taking it over.
	mr.Del("lock:candidate:a@example.com")
	releaseNew, err := locker.Acquire(ctx, "a@example.com")
	require.NoError(t, err)

	releaseOld()
	assert.True(t, mr.Exists("lock:candidate:a@example.com"))

	releaseNew()
	assert.False(t, mr.Exists("lock:candidate:a@example.com"))
}

func TestMemoryLocker_SerializesPerID(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(ctx, "a@example.com")
			require.NoError(t, err)
			counter++
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

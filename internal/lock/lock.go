// internal/lock/lock.go
package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apperrors "github.com/QuadKenya/growth-engine/internal/common/errors"
)

// Locker serializes the orchestrator's load-mutate-persist cycle per
// record id. Without it, two operators acting on the same candidate can
// lose updates.
type Locker interface {
	Acquire(ctx context.Context, id string) (release func(), err error)
}

// --- Redis lease ---

// RedisLocker takes a short lease in Redis per record id, so the lock
// holds across multiple service instances.
type RedisLocker struct {
	client  *redis.Client
	ttl     time.Duration
	retries int
	backoff time.Duration
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{
		client:  client,
		ttl:     10 * time.Second,
		retries: 20,
		backoff: 50 * time.Millisecond,
	}
}

// releaseScript deletes the lease only if we still hold it, so an
// expired lease taken over by another instance is never clobbered.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

func (l *RedisLocker) Acquire(ctx context.Context, id string) (func(), error) {
	key := "lock:candidate:" + id
	token := uuid.New().String()

	for attempt := 0; attempt <= l.retries; attempt++ {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.backoff):
		}
	}

	return nil, apperrors.NewLockNotAcquiredError(id)
}

// --- In-process fallback ---

// MemoryLocker serializes by record id within a single process. Used
// when no Redis is configured (local development, tests).
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *MemoryLocker) Acquire(_ context.Context, id string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned when another process holds the run lock.
var ErrLockHeld = errors.New("scheduler: run lock held by another process")

// releaseScript deletes the lock only when the caller still owns it, so a
// slow run whose lock expired cannot release a lock acquired by another
// process in the meantime.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RunLock is a cross-process mutual exclusion lock backed by Redis. Each sync
// sweep acquires the lock for its job name before touching remote platforms,
// so two deployments of the service cannot run the same sweep concurrently.
type RunLock struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRunLock creates a run lock with the given key prefix and lifetime.
func NewRunLock(client *redis.Client, keyPrefix string, ttl time.Duration) *RunLock {
	if keyPrefix == "" {
		keyPrefix = "sync:runlock:"
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RunLock{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

// Acquire attempts to take the lock for the named job. It returns a release
// function on success and ErrLockHeld when another holder exists. The lock
// expires after the configured TTL even if never released.
func (l *RunLock) Acquire(ctx context.Context, job string) (func(context.Context) error, error) {
	key := l.keyPrefix + job
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock %s: %w", job, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}

	release := func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.client, []string{key}, token).Err()
	}
	return release, nil
}

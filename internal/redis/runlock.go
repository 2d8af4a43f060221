package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RunLock is a best-effort guard against overlapping scheduler invocations.
type RunLock struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRunLock(rdb *redis.Client, ttl time.Duration) *RunLock {
	return &RunLock{rdb: rdb, ttl: ttl}
}

// Acquire returns true if this invocation owns the named lock.
// When redis is unavailable the run is allowed rather than blocked; the
// database dedup records remain the durable guard.
func (l *RunLock) Acquire(ctx context.Context, name string) bool {
	key := fmt.Sprintf("runlock:%s", name)

	ok, err := l.rdb.SetNX(ctx, key, 1, l.ttl).Result()
	if err != nil {
		return true
	}
	return ok
}

// Release drops the lock early so the next tick does not wait out the TTL.
func (l *RunLock) Release(ctx context.Context, name string) {
	key := fmt.Sprintf("runlock:%s", name)
	_ = l.rdb.Del(ctx, key).Err()
}

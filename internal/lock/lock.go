// Package lock provides a Redis-backed run lock so only one billing
// evaluator instance scans due rows at a time. The ledger's idempotency
// keys already prevent double-charging; the lock just keeps overlapping
// runs from burning work on rows the other instance is processing.
package lock

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrNotAcquired = errors.New("run lock held by another instance")

type RunLock struct {
	client     *redis.Client
	key        string
	value      string // holder token, checked on release
	expiration time.Duration
}

func NewRunLock(client *redis.Client, key, value string, expiration time.Duration) *RunLock {
	return &RunLock{
		client:     client,
		key:        key,
		value:      value,
		expiration: expiration,
	}
}

// TryAcquire takes the lock if free. SET NX guarantees mutual exclusion;
// the expiration frees the lock if the holder crashes mid-run.
func (l *RunLock) TryAcquire(ctx context.Context) (bool, error) {
	return l.client.SetNX(ctx, l.key, l.value, l.expiration).Result()
}

// Release frees the lock. The Lua script checks the holder token before
// deleting so an instance whose lock already expired cannot release a
// lock now held by someone else.
func (l *RunLock) Release(ctx context.Context) error {
	script := `
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		else
			return 0
		end
	`
	_, err := l.client.Eval(ctx, script, []string{l.key}, l.value).Result()
	return err
}

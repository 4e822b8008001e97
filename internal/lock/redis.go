package lock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v8"
)

const defaultRetryDelay = 50 * time.Millisecond

// RedisProvider implements Provider on top of redsync with a single Redis
// node. Keys are namespaced with prefix.
type RedisProvider struct {
	rs         *redsync.Redsync
	prefix     string
	retryDelay time.Duration
}

func NewRedisProvider(client *redis.Client, prefix string, retryDelay time.Duration) *RedisProvider {
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}
	return &RedisProvider{
		rs:         redsync.New(goredis.NewPool(client)),
		prefix:     prefix,
		retryDelay: retryDelay,
	}
}

func (p *RedisProvider) Acquire(ctx context.Context, key string, wait, lease time.Duration) (Handle, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("Acquire: empty key")
	}

	tries := int(wait/p.retryDelay) + 1
	mutex := p.rs.NewMutex(
		p.prefix+key,
		redsync.WithExpiry(lease),
		redsync.WithTries(tries),
		redsync.WithRetryDelay(p.retryDelay),
	)

	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	if err := mutex.LockContext(waitCtx); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("Acquire: %w", ctx.Err())
		}
		if waitCtx.Err() != nil || isContention(err) {
			return nil, fmt.Errorf("Acquire %s: %w", key, ErrNotAcquired)
		}
		return nil, fmt.Errorf("Acquire %s: %w", key, err)
	}

	return &redisHandle{mutex: mutex}, nil
}

// redsync reports contention through several error shapes depending on the
// version and on whether the final try saw a taken key.
func isContention(err error) bool {
	msg := err.Error()
	return errors.Is(err, redsync.ErrFailed) ||
		strings.Contains(msg, "lock already taken") ||
		strings.Contains(msg, "failed to acquire lock")
}

type redisHandle struct {
	mutex    *redsync.Mutex
	released atomic.Bool
}

func (h *redisHandle) Release(ctx context.Context) error {
	if !h.released.CompareAndSwap(false, true) {
		return nil
	}

	// A false result without an error means the lease ran out before release.
	if _, err := h.mutex.UnlockContext(ctx); err != nil {
		if msg := err.Error(); strings.Contains(msg, "already expired") || strings.Contains(msg, "taken") {
			return nil
		}
		return fmt.Errorf("Release %s: %w", h.mutex.Name(), err)
	}
	return nil
}

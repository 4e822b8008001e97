package lock

import (
	"context"
	"errors"
	"time"
)

// ErrNotAcquired is returned by a Provider when the key stayed held by someone
// else for the whole wait window.
var ErrNotAcquired = errors.New("lock not acquired")

type Options struct {
	Wait  time.Duration
	Lease time.Duration
}

// Provider hands out exclusive ownership of a string key. Acquire blocks for at
// most wait and never retries past it. Ownership is forfeited after lease even
// if the handle is never released.
type Provider interface {
	Acquire(ctx context.Context, key string, wait, lease time.Duration) (Handle, error)
}

// Handle releases a held key. Release is idempotent and returns nil for a
// handle whose lease already ran out.
type Handle interface {
	Release(ctx context.Context) error
}

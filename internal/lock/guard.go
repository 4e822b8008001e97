package lock

import (
	"context"
	"errors"
	"fmt"

	"github.com/josh-kwaku/account-ledger/internal/domain"
	"github.com/josh-kwaku/account-ledger/internal/logging"
)

type Op[Req, Res any] func(ctx context.Context, req Req) (Res, error)

// Guard wraps op so that it only runs while the key returned by keyFn is held.
// The lock is released exactly once on every exit path of op, panics included.
// When the key cannot be acquired op is not invoked and the returned error
// wraps domain.ErrLockUnavailable.
func Guard[Req, Res any](p Provider, opts Options, keyFn func(Req) string, op Op[Req, Res]) Op[Req, Res] {
	return func(ctx context.Context, req Req) (Res, error) {
		var zero Res
		key := keyFn(req)
		log := logging.FromContext(ctx).With("lock_key", key)

		h, err := p.Acquire(ctx, key, opts.Wait, opts.Lease)
		if err != nil {
			if errors.Is(err, ErrNotAcquired) {
				log.Warn("lock busy", "wait", opts.Wait)
				return zero, fmt.Errorf("Guard: %w", domain.ErrLockUnavailable)
			}
			return zero, fmt.Errorf("Guard: acquire: %w", err)
		}

		defer func() {
			if err := h.Release(context.WithoutCancel(ctx)); err != nil {
				log.Error("failed to release lock", "error", err)
			}
		}()

		return op(ctx, req)
	}
}

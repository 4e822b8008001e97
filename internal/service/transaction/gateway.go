package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/josh-kwaku/account-ledger/internal/domain"
	"github.com/josh-kwaku/account-ledger/internal/lock"
	"github.com/josh-kwaku/account-ledger/internal/logging"
)

type coordinator interface {
	Use(ctx context.Context, req UseRequest) (*domain.Transaction, error)
	Cancel(ctx context.Context, req CancelRequest) (*domain.Transaction, error)
	RecordFailure(ctx context.Context, kind domain.TransactionKind, number string, amount int64) (*domain.Transaction, error)
}

// Gateway is the entry point for balance mutations. Each call runs under the
// account lock, and a business failure is followed by a FAILED ledger entry
// written after the lock has been released.
type Gateway struct {
	svc    coordinator
	use    lock.Op[UseRequest, *domain.Transaction]
	cancel lock.Op[CancelRequest, *domain.Transaction]
}

// NewGateway wires svc behind the lock. delay is spent inside the lock before
// the mutation and stands in for a slow downstream call.
func NewGateway(svc coordinator, locks lock.Provider, opts lock.Options, delay time.Duration) *Gateway {
	return &Gateway{
		svc:    svc,
		use:    lock.Guard(locks, opts, UseRequest.LockKey, withDelay[UseRequest, *domain.Transaction](delay, svc.Use)),
		cancel: lock.Guard(locks, opts, CancelRequest.LockKey, withDelay[CancelRequest, *domain.Transaction](delay, svc.Cancel)),
	}
}

func (g *Gateway) Use(ctx context.Context, req UseRequest) (*domain.Transaction, error) {
	t, err := g.use(ctx, req)
	if err != nil {
		g.compensate(ctx, domain.TransactionKindUse, req.AccountNumber, req.Amount, err)
		return nil, fmt.Errorf("Gateway.Use: %w", err)
	}
	return t, nil
}

func (g *Gateway) Cancel(ctx context.Context, req CancelRequest) (*domain.Transaction, error) {
	t, err := g.cancel(ctx, req)
	if err != nil {
		g.compensate(ctx, domain.TransactionKindCancel, req.AccountNumber, req.Amount, err)
		return nil, fmt.Errorf("Gateway.Cancel: %w", err)
	}
	return t, nil
}

// compensate records a FAILED entry for business rejections. Lock contention
// and infrastructure faults are not recorded because no mutation was
// attempted or its outcome is unknown. A failure here is logged and never
// replaces cause.
func (g *Gateway) compensate(ctx context.Context, kind domain.TransactionKind, number string, amount int64, cause error) {
	if !domain.IsBusiness(cause) || errors.Is(cause, domain.ErrLockUnavailable) {
		return
	}

	log := logging.FromContext(ctx)
	if _, err := g.svc.RecordFailure(context.WithoutCancel(ctx), kind, number, amount); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			log.Warn("failed transaction not recorded: unknown account",
				"kind", kind, "account_number", number, "cause", cause)
			return
		}
		log.Error("failed to record failed transaction",
			"kind", kind, "account_number", number, "cause", cause, "error", err)
	}
}

func withDelay[Req, Res any](d time.Duration, op lock.Op[Req, Res]) lock.Op[Req, Res] {
	if d <= 0 {
		return op
	}
	return func(ctx context.Context, req Req) (Res, error) {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			var zero Res
			return zero, ctx.Err()
		case <-t.C:
		}
		return op(ctx, req)
	}
}

package tx

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"
	"time"

	dErrors "municipal/pkg/domain-errors"
)

type ctxKey struct{}

type guardKey struct{}

var txKey = ctxKey{}

// DefaultTimeout bounds a transaction when the caller supplied no deadline.
const DefaultTimeout = 5 * time.Second

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// WithCommitGuard returns a context on which MarkIrreversible can record a
// point of no return, plus a func reporting whether it was reached. An
// existing guard in ctx is reused so nested units share it.
func WithCommitGuard(ctx context.Context) (context.Context, func() bool) {
	if flag, ok := ctx.Value(guardKey{}).(*atomic.Bool); ok {
		return ctx, flag.Load
	}
	flag := new(atomic.Bool)
	return context.WithValue(ctx, guardKey{}, flag), flag.Load
}

// MarkIrreversible records that the enclosing unit of work performed an
// external side effect that cannot be undone, such as a charge or a refund.
// From then on the unit commits even if ctx ends. Outside a guarded unit it
// does nothing.
func MarkIrreversible(ctx context.Context) {
	if flag, ok := ctx.Value(guardKey{}).(*atomic.Bool); ok {
		flag.Store(true)
	}
}

// Irreversible reports whether MarkIrreversible was called within ctx's unit.
func Irreversible(ctx context.Context) bool {
	flag, ok := ctx.Value(guardKey{}).(*atomic.Bool)
	return ok && flag.Load()
}

// CommitContext returns ctx detached from cancellation once the unit is past
// its point of no return, so the writes recording the side effect still run.
func CommitContext(ctx context.Context) context.Context {
	if Irreversible(ctx) {
		return context.WithoutCancel(ctx)
	}
	return ctx
}

// Run executes fn inside a transaction that is committed when fn returns nil
// and ctx is still live, or when fn marked the unit irreversible. The
// transaction travels in the context passed to fn so nested store calls join
// it. A transaction already present in ctx is reused and left for its owner
// to commit.
//
// The transaction itself is bound to a detached context with its own
// deadline: caller cancellation aborts the statements fn issues with ctx, but
// cannot roll back work that already passed the point of no return.
func Run(ctx context.Context, db *sql.DB, timeout time.Duration, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, ok := From(ctx); ok {
		return fn(ctx)
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	ctx, irreversible := WithCommitGuard(ctx)

	txCtx, cancelTx := context.WithTimeout(context.WithoutCancel(ctx), lifetime(ctx, timeout))
	defer cancelTx()

	sqlTx, err := db.BeginTx(txCtx, nil)
	if err != nil {
		return abortErr(ctx, err)
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(WithTx(ctx, sqlTx)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil && !irreversible() {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if err := sqlTx.Commit(); err != nil {
		return abortErr(ctx, err)
	}
	return nil
}

// lifetime is the caller's remaining time plus timeout, leaving room to
// commit after the caller's deadline.
func lifetime(ctx context.Context, timeout time.Duration) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 {
			return remaining + timeout
		}
	}
	return timeout
}

func abortErr(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return err
}

// Package remote holds the primitives every outbound call is built on: a
// bounded retry wrapper, transient-error classifiers for RPC and SQL
// failures, the status-to-taxonomy mapping table, and a generic bounded
// handle pool.
package remote

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/paylane/gateway/services"
)

// Policy bounds one logical remote operation: how many attempts it gets, the
// fixed pause between them, and the soft per-attempt timeout. A timeout is
// itself retryable within the attempt budget.
type Policy struct {
	MaxAttempts int
	Backoff     time.Duration
	Timeout     time.Duration
}

// DefaultPolicy covers most RPC and relational calls.
var DefaultPolicy = Policy{MaxAttempts: 3, Backoff: 100 * time.Millisecond, Timeout: 300 * time.Millisecond}

// BalancePolicy gives the higher-value balance and margin operations a larger
// attempt budget.
var BalancePolicy = Policy{MaxAttempts: 5, Backoff: 100 * time.Millisecond, Timeout: 300 * time.Millisecond}

// Classifier reports whether an error is transient, i.e. worth another attempt
type Classifier func(error) bool

// Do executes op under the policy. Non-transient errors return immediately
// and untouched so the caller can map them; exhausting the attempt budget
// returns ErrInternal with a logged "retry count exceeded" event. Cancellation
// of ctx aborts remaining attempts.
func Do[T any](ctx context.Context, logger *zap.Logger, policy Policy, retryable Classifier, op func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, policy.Timeout)
		result, err := op(attemptCtx)
		cancel()

		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			// the request itself is gone; stop burning attempts
			return zero, services.ErrInternal.WithCause(ctx.Err())
		}
		if !retryable(err) && !errors.Is(err, context.DeadlineExceeded) {
			return zero, err
		}
		if attempt < policy.MaxAttempts {
			logger.Warn("transient remote error, retrying",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", policy.MaxAttempts),
				zap.Error(err))
			select {
			case <-time.After(policy.Backoff):
			case <-ctx.Done():
				return zero, services.ErrInternal.WithCause(ctx.Err())
			}
		}
	}

	logger.Error("retry count exceeded", zap.Int("attempts", policy.MaxAttempts), zap.Error(lastErr))
	return zero, services.ErrInternal.WithCause(lastErr)
}

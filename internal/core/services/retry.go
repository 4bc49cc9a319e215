// internal/core/services/retry.go
package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ammerola/stock-ledger/internal/core/domain"
	"github.com/ammerola/stock-ledger/internal/pkg/metrics"
)

// retrier re-runs an atomic ledger step while it fails with contention.
// Every other error ends the loop immediately.
type retrier struct {
	attempts int
	initial  time.Duration
	max      time.Duration
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func newRetrier(opts LedgerOptions, m *metrics.Metrics, logger *slog.Logger) retrier {
	return retrier{
		attempts: opts.RetryAttempts,
		initial:  opts.RetryInitialInterval,
		max:      opts.RetryMaxInterval,
		metrics:  m,
		logger:   logger,
	}
}

func (r retrier) do(ctx context.Context, op string, fn func() error) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.initial
	exp.MaxInterval = r.max
	exp.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(r.attempts-1)), ctx)

	attempts := 0
	err := backoff.RetryNotify(func() error {
		attempts++
		err := fn()
		if err != nil && !errors.Is(err, domain.ErrConcurrency) {
			return backoff.Permanent(err)
		}
		return err
	}, policy, func(err error, wait time.Duration) {
		r.metrics.IncRetry(op)
		r.logger.DebugContext(ctx, "contention on stock line, retrying",
			slog.String("operation", op),
			slog.Int("attempt", attempts),
			slog.Duration("retry_in", wait))
	})

	if err != nil && errors.Is(err, domain.ErrConcurrency) {
		var cerr *domain.ConcurrencyError
		if errors.As(err, &cerr) {
			return &domain.ConcurrencyError{Op: op, Attempts: attempts, Err: cerr.Err}
		}
		return &domain.ConcurrencyError{Op: op, Attempts: attempts, Err: err}
	}
	return err
}

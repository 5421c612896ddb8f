package errclass

import (
	"context"
	"time"
)

// Sleeper delays for d, aborting early when ctx ends. Tests inject a recording
// implementation so retry schedules can be asserted without real sleeps.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepWithContext is the production Sleeper.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryFunc is invoked before each retry attempt with the classified kind,
// the upcoming attempt number (1-based) and the delay that was applied.
type RetryFunc func(kind Kind, attempt int, delay time.Duration)

// FailureFunc is invoked once per classified failure, before any retry
// decision is made.
type FailureFunc func(kind Kind, providerID string)

// Retrier runs operations under the taxonomy's recovery strategies. Retries
// happen transparently; only after the retry budget of the classified kind is
// exhausted does the error surface.
type Retrier struct {
	sleep     Sleeper
	audit     *AuditLog
	onRetry   RetryFunc
	onFailure FailureFunc
}

// RetrierOption customizes a Retrier.
type RetrierOption func(*Retrier)

// WithSleeper overrides the delay implementation.
func WithSleeper(s Sleeper) RetrierOption {
	return func(r *Retrier) { r.sleep = s }
}

// WithAuditLog records every classified failure into the given log.
func WithAuditLog(a *AuditLog) RetrierOption {
	return func(r *Retrier) { r.audit = a }
}

// WithOnRetry installs a hook invoked before each retry (metrics, logging).
func WithOnRetry(fn RetryFunc) RetrierOption {
	return func(r *Retrier) { r.onRetry = fn }
}

// WithOnFailure installs a hook invoked for every classified failure,
// retried or not (metrics, logging).
func WithOnFailure(fn FailureFunc) RetrierOption {
	return func(r *Retrier) { r.onFailure = fn }
}

// NewRetrier creates a Retrier with the production sleeper.
func NewRetrier(opts ...RetrierOption) *Retrier {
	r := &Retrier{sleep: SleepWithContext}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Do runs op, classifying every failure and retrying per the kind's strategy
// with exponential backoff. It returns the number of retries that were
// attempted and, on exhaustion, the last classified error.
func (r *Retrier) Do(ctx context.Context, providerID string, op func(ctx context.Context) error) (int, error) {
	retries := 0

	for {
		err := op(ctx)
		if err == nil {
			return retries, nil
		}

		classified := Classify(err)
		if r.audit != nil {
			r.audit.Record(providerID, classified)
		}
		if r.onFailure != nil {
			r.onFailure(classified.Kind(), providerID)
		}

		strategy := classified.Strategy()
		if !strategy.ShouldRetry || retries >= strategy.MaxRetries {
			return retries, classified
		}

		delay := BackoffDelay(strategy, retries)
		if delay > 0 {
			if sleepErr := r.sleep(ctx, delay); sleepErr != nil {
				return retries, Classify(sleepErr)
			}
		}

		retries++
		if r.onRetry != nil {
			r.onRetry(classified.Kind(), retries, delay)
		}
	}
}

// BackoffDelay computes the delay before retry number n (0-based):
// InitialDelay * BackoffMultiplier^n.
func BackoffDelay(strategy RecoveryStrategy, n int) time.Duration {
	delay := float64(strategy.InitialDelay)
	for i := 0; i < n; i++ {
		delay *= strategy.BackoffMultiplier
	}
	return time.Duration(delay)
}

// Package retry re-issues banking API calls while the provider reports a
// transient lock.
package retry

import (
	"context"
	"time"

	"fjacquet/budgea-salary/internal/logging"

	goretry "github.com/sethvargo/go-retry"
)

// DefaultDelay is the wait between two attempts on a locked resource.
const DefaultDelay = 5 * time.Second

// Classifier reports whether an error is a transient condition worth retrying.
type Classifier func(error) bool

// Policy is a fixed-interval retry policy. MaxAttempts bounds the total number
// of calls; zero means retry until the call stops failing with a retryable
// error or the context is cancelled.
type Policy struct {
	Delay       time.Duration
	MaxAttempts uint64
	Retryable   Classifier
	Logger      logging.Logger
}

// NewPolicy creates a policy retrying the errors matched by retryable.
func NewPolicy(delay time.Duration, maxAttempts uint64, retryable Classifier, logger logging.Logger) Policy {
	return Policy{
		Delay:       delay,
		MaxAttempts: maxAttempts,
		Retryable:   retryable,
		Logger:      logger,
	}
}

func (p Policy) backoff() goretry.Backoff {
	delay := p.Delay
	if delay < 0 {
		delay = 0
	}
	var b goretry.Backoff = goretry.BackoffFunc(func() (time.Duration, bool) {
		return delay, false
	})
	if p.MaxAttempts > 0 {
		b = goretry.WithMaxRetries(p.MaxAttempts-1, b)
	}
	return b
}

// Do calls fn until it succeeds, fails with a non-retryable error, runs out of
// attempts or ctx is done. fn must issue the same request on every call.
func (p Policy) Do(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	var attempt int
	return goretry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if p.Retryable == nil || !p.Retryable(err) {
			return err
		}
		if p.Logger != nil {
			p.Logger.WithError(err).Info("Resource locked, retrying",
				logging.F(logging.FieldOperation, operation),
				logging.F(logging.FieldAttempt, attempt),
				logging.F(logging.FieldDuration, p.Delay.String()))
		}
		return goretry.RetryableError(err)
	})
}

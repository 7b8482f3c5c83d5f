// Package retrier wraps network-bound operations with bounded
// fixed-interval retry.
package retrier

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	defaultMaxAttempts = 5
	defaultDelay       = 1 * time.Second
)

// ErrExhausted marks an operation that failed on every attempt. Callers
// match it with errors.Is and reach the last underlying error through
// errors.Unwrap.
var ErrExhausted = fmt.Errorf("retry attempts exhausted")

type exhaustedError struct {
	op   string
	last error
}

func (e *exhaustedError) Error() string {
	return fmt.Sprintf("%s: retry attempts exhausted: %v", e.op, e.last)
}

func (e *exhaustedError) Unwrap() error { return e.last }

func (e *exhaustedError) Is(target error) bool { return target == ErrExhausted }

// Retrier executes operations with a fixed delay between attempts.
// No jitter and no exponential backoff: a deliberately simple policy
// sized for idempotent read calls against rate-limited exchange APIs.
type Retrier struct {
	maxAttempts int
	delay       time.Duration
	logger      *zap.Logger
}

// Option configures a Retrier.
type Option func(*Retrier)

// WithMaxAttempts sets the total number of attempts, first call included.
func WithMaxAttempts(n int) Option {
	return func(r *Retrier) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithDelay sets the fixed pause between attempts.
func WithDelay(d time.Duration) Option {
	return func(r *Retrier) {
		if d >= 0 {
			r.delay = d
		}
	}
}

// WithLogger sets the logger used for per-attempt lines.
func WithLogger(l *zap.Logger) Option {
	return func(r *Retrier) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Retrier with default values and optional overrides.
func New(opts ...Option) *Retrier {
	r := &Retrier{
		maxAttempts: defaultMaxAttempts,
		delay:       defaultDelay,
		logger:      zap.NewNop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Do executes fn until it succeeds or attempts run out. After the final
// failed attempt the returned error matches ErrExhausted and wraps the
// last error fn produced. Context cancellation interrupts the pause
// between attempts, never an attempt in flight.
func (r *Retrier) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var last error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.delay):
			}
		}

		last = fn(ctx)
		if last == nil {
			r.logger.Debug("call succeeded",
				zap.String("op", op),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", r.maxAttempts))
			return nil
		}

		r.logger.Warn("call failed",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.maxAttempts),
			zap.Error(last))
	}

	return &exhaustedError{op: op, last: last}
}

// DoWithData executes fn with retries and returns its value.
func DoWithData[T any](r *Retrier, ctx context.Context, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := r.Do(ctx, op, func(ctx context.Context) error {
		var e error
		result, e = fn(ctx)
		return e
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

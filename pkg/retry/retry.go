// Package retry provides retry functionality with exponential backoff and
// jitter. Used for best-effort external calls, primarily file-storage
// deletions. No external dependencies - uses only standard library.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// PermanentError indicates that an error should not be retried.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent wraps an error to indicate it should not be retried.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent checks if an error is permanent (should not be retried).
func IsPermanent(err error) bool {
	var permanentErr *PermanentError
	return errors.As(err, &permanentErr)
}

// Config holds retry configuration.
type Config struct {
	// MaxAttempts is the maximum number of attempts, including the first.
	MaxAttempts int

	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration

	// MaxDelay caps the delay between retries.
	MaxDelay time.Duration

	// Multiplier is the backoff factor applied after each attempt.
	Multiplier float64

	// JitterFactor randomizes delays (0.0 = none, 1.0 = full jitter).
	JitterFactor float64

	// OnRetry is called before each retry attempt, for logging.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}
}

// Retrier manages retry operations.
type Retrier struct {
	config Config
}

// New creates a new Retrier.
func New(config Config) *Retrier {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 100 * time.Millisecond
	}
	if config.Multiplier < 1.0 {
		config.Multiplier = 2.0
	}
	return &Retrier{config: config}
}

// Do executes the operation, retrying failures with exponential backoff
// until it succeeds, the attempt budget runs out, the error is marked
// Permanent, or the context is cancelled. Returns the last error.
func (r *Retrier) Do(ctx context.Context, operation func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		err := operation(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if IsPermanent(err) {
			return errors.Unwrap(err)
		}
		if attempt == r.config.MaxAttempts {
			break
		}

		delay := r.delayFor(attempt)
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, delay)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return lastErr
		}
	}

	return lastErr
}

// delayFor computes the backoff delay for a given attempt, with jitter.
func (r *Retrier) delayFor(attempt int) time.Duration {
	base := float64(r.config.InitialDelay) * math.Pow(r.config.Multiplier, float64(attempt-1))
	if max := float64(r.config.MaxDelay); r.config.MaxDelay > 0 && base > max {
		base = max
	}

	if j := r.config.JitterFactor; j > 0 {
		// delay * [1-j, 1+j]
		base = base * (1 - j + 2*j*rand.Float64())
	}

	return time.Duration(base)
}

// Do runs an operation with the default configuration.
func Do(ctx context.Context, operation func(ctx context.Context) error) error {
	return New(DefaultConfig()).Do(ctx, operation)
}

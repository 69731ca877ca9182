package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultMaxAttempts is the number of attempts used when none is configured.
const DefaultMaxAttempts = 5

// DefaultDelay is the fixed wait between attempts used when no backoff is configured.
const DefaultDelay = 1 * time.Second

// Backoff returns the delay to wait after the given failed attempt (1-based).
type Backoff func(attempt int) time.Duration

// Fixed waits the same duration after every failed attempt.
func Fixed(d time.Duration) Backoff {
	return func(int) time.Duration {
		return d
	}
}

// Exponential starts at initial and multiplies the delay after every
// failed attempt, capped at max.
func Exponential(initial, max time.Duration, multiplier float64) Backoff {
	return func(attempt int) time.Duration {
		delay := float64(initial)
		for i := 1; i < attempt; i++ {
			delay *= multiplier
			if time.Duration(delay) >= max {
				return max
			}
		}
		return time.Duration(delay)
	}
}

// Config holds retry configuration.
type Config struct {
	MaxAttempts int
	Backoff     Backoff
	// OnRetry is called after a failed attempt, before waiting.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// Option is a functional option for retry configuration.
type Option func(*Config)

// WithMaxAttempts sets the total number of attempts, including the first.
// Values below 1 fall back to DefaultMaxAttempts.
func WithMaxAttempts(n int) Option {
	return func(c *Config) {
		if n < 1 {
			n = DefaultMaxAttempts
		}
		c.MaxAttempts = n
	}
}

// WithBackoff sets the backoff strategy.
func WithBackoff(b Backoff) Option {
	return func(c *Config) {
		if b != nil {
			c.Backoff = b
		}
	}
}

// WithOnRetry registers a hook invoked after every failed, non-final attempt.
func WithOnRetry(fn func(attempt int, err error, wait time.Duration)) Option {
	return func(c *Config) {
		c.OnRetry = fn
	}
}

// ExhaustedError is returned when every attempt failed.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("operation failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// Do runs operation until it succeeds, returns a fatal error, the attempt
// budget is spent, or ctx is cancelled. The operation receives the 1-based
// attempt number. The number of attempts made is always returned.
//
// Errors wrapped with Fatal() are not retried.
func Do(ctx context.Context, operation func(attempt int) error, opts ...Option) (int, error) {
	cfg := &Config{
		MaxAttempts: DefaultMaxAttempts,
		Backoff:     Fixed(DefaultDelay),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := operation(attempt)
		if err == nil {
			return attempt, nil
		}
		lastErr = err

		if IsFatal(err) {
			return attempt, fmt.Errorf("fatal error (not retrying): %w", err)
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		wait := cfg.Backoff(attempt)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, fmt.Errorf("context cancelled after %d attempts: %w", attempt, ctx.Err())
		case <-timer.C:
		}
	}

	return cfg.MaxAttempts, &ExhaustedError{Attempts: cfg.MaxAttempts, Last: lastErr}
}

// FatalError wraps an error to mark it as fatal (non-retryable).
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Fatal marks an error as fatal (non-retryable).
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// IsFatal checks if an error is fatal (non-retryable).
func IsFatal(err error) bool {
	var fatalErr *FatalError
	return errors.As(err, &fatalErr)
}

// Package resilience provides retry with exponential backoff and a
// circuit breaker for upstream provider calls.
package resilience

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/switchyard-io/switchyard/core"
)

// RetryConfig configures retry behavior.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	JitterEnabled bool
	// RetryableFunc decides whether an error is worth retrying. A nil
	// func retries everything.
	RetryableFunc func(error) bool
}

// DefaultRetryConfig provides sensible defaults. Only retryable
// upstream errors are retried; no-match and configuration errors fail
// immediately.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		JitterEnabled: true,
		RetryableFunc: core.IsRetryable,
	}
}

// Retry executes a function with retry logic.
func Retry(ctx context.Context, config *RetryConfig, fn func() error) error {
	if config == nil {
		config = DefaultRetryConfig()
	}

	var lastErr error
	delay := config.InitialDelay

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			if config.RetryableFunc != nil && !config.RetryableFunc(err) {
				return err
			}
		}

		// Don't sleep after the last attempt
		if attempt == config.MaxAttempts {
			break
		}

		// Exponential backoff, capped
		if attempt > 1 {
			delay = time.Duration(float64(delay) * config.BackoffFactor)
			if delay > config.MaxDelay {
				delay = config.MaxDelay
			}
		}

		// Jitter prevents synchronized retries across clients. It only
		// ever lengthens the delay, up to 10%.
		if config.JitterEnabled {
			delay += time.Duration(rand.Float64() * 0.1 * float64(delay))
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	// Keep the last error in the chain so callers can still classify
	// the underlying failure.
	return fmt.Errorf("max retry attempts (%d) exceeded: %w: %w", config.MaxAttempts, core.ErrMaxRetriesExceeded, lastErr)
}

// RetryWithCircuitBreaker combines retry logic with a circuit breaker.
// A nil breaker degrades to plain retry.
func RetryWithCircuitBreaker(ctx context.Context, config *RetryConfig, cb *CircuitBreaker, fn func() error) error {
	if cb == nil {
		return Retry(ctx, config, fn)
	}
	return Retry(ctx, config, func() error {
		if !cb.CanExecute() {
			return core.ErrCircuitBreakerOpen
		}

		err := fn()
		if err != nil {
			cb.RecordFailure()
			return err
		}

		cb.RecordSuccess()
		return nil
	})
}

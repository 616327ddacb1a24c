package retry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// Policy bounds a retried operation.
type Policy struct {
	Name           string
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// AttemptTimeout bounds each single attempt; zero means no per-attempt deadline.
	AttemptTimeout time.Duration
	// Retryable decides whether an error is worth another attempt. Nil retries everything.
	Retryable func(error) bool
}

// DefaultPolicy retries three times starting at one second.
func DefaultPolicy(name string) Policy {
	return Policy{
		Name:           name,
		MaxAttempts:    3,
		InitialBackoff: time.Second,
		MaxBackoff:     8 * time.Second,
		AttemptTimeout: 10 * time.Second,
	}
}

// ErrExhausted wraps the last cause once every attempt has failed.
var ErrExhausted = errors.New("retries exhausted")

// Permanent marks err as not retryable regardless of the policy predicate.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err}
}

type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Backoff is the delay before the attempt following attempt i (0-based).
func (p Policy) Backoff(i int) time.Duration {
	d := p.InitialBackoff * time.Duration(1<<uint(i))
	if p.MaxBackoff > 0 && (d > p.MaxBackoff || d <= 0) {
		return p.MaxBackoff
	}
	return d
}

func (p Policy) retryable(err error) bool {
	var perm *permanentError
	if errors.As(err, &perm) {
		return false
	}
	if p.Retryable == nil {
		return true
	}
	return p.Retryable(err)
}

// Do runs fn until it succeeds, the policy is exhausted, a non-retryable error is
// returned, or ctx is done.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		lastErr = attempt(ctx, p.AttemptTimeout, fn)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !p.retryable(lastErr) {
			return lastErr
		}
		if i == attempts-1 {
			break
		}
		backoff := p.Backoff(i)
		log.Printf("[WARN] %s failed (attempt %d/%d): %v, retrying in %v", p.Name, i+1, attempts, lastErr, backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("%s: %w after %d attempts: %w", p.Name, ErrExhausted, attempts, lastErr)
}

func attempt(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(actx)
}

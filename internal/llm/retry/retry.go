package retry

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"adpilot/internal/infra/metrics"
)

// Policy configures one retry-wrapped invocation.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// BackoffFactor is the exponential base: the wait before attempt n
	// (n >= 2) is Base * BackoffFactor^(n-2).
	BackoffFactor float64
	// Base is the backoff time unit. Zero means one second.
	Base time.Duration
	// Context is a diagnostic label, it carries no behavior.
	Context string
}

// DefaultPolicy provides sensible defaults.
var DefaultPolicy = Policy{
	MaxAttempts:   3,
	BackoffFactor: 2,
	Base:          time.Second,
}

// AttemptsError is the terminal failure of a retry-wrapped invocation.
// It keeps the most recent error, how many attempts ran, and whether
// exhaustion or a non-retryable classification ended the loop.
type AttemptsError struct {
	Attempts       int
	Exhausted      bool
	Classification Classification
	Err            error
}

func (e *AttemptsError) Error() string {
	if e.Exhausted {
		return fmt.Sprintf("failed after %d attempts: %v", e.Attempts, e.Err)
	}
	return fmt.Sprintf("not retryable (%s) after %d attempt(s): %v",
		e.Classification.Kind, e.Attempts, e.Err)
}

func (e *AttemptsError) Unwrap() error {
	return e.Err
}

// Do executes op, classifying each failure exactly once and retrying
// retryable ones with exponential backoff until success, a non-retryable
// classification, attempt exhaustion, or ctx cancellation. The backoff
// wait is local to this invocation; no lock is held across it.
func Do(ctx context.Context, policy Policy, op func(context.Context) (string, error)) (string, error) {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if policy.BackoffFactor <= 0 {
		policy.BackoffFactor = DefaultPolicy.BackoffFactor
	}
	if policy.Base <= 0 {
		policy.Base = DefaultPolicy.Base
	}

	var lastErr error
	var lastClass Classification

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		// Caller-initiated cancellation is a distinct outcome, not a
		// classified failure.
		if ctx.Err() != nil {
			return "", fmt.Errorf("%s: %w", policy.Context, ctx.Err())
		}

		lastClass = Classify(err)

		if !lastClass.Retryable {
			return "", &AttemptsError{
				Attempts:       attempt,
				Exhausted:      false,
				Classification: lastClass,
				Err:            err,
			}
		}
		if attempt == policy.MaxAttempts {
			break
		}

		wait := backoff(policy, attempt)
		metrics.RetryAttemptsTotal.WithLabelValues(lastClass.Kind.String()).Inc()
		slog.Debug("Retrying after failure",
			"context", policy.Context,
			"kind", lastClass.Kind.String(),
			"attempt", attempt,
			"max_attempts", policy.MaxAttempts,
			"wait", wait)

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%s: %w", policy.Context, ctx.Err())
		case <-time.After(wait):
		}
	}

	return "", &AttemptsError{
		Attempts:       policy.MaxAttempts,
		Exhausted:      true,
		Classification: lastClass,
		Err:            lastErr,
	}
}

// backoff computes the wait after a failed attempt n (so before attempt
// n+1): Base * BackoffFactor^(n-1).
func backoff(policy Policy, attempt int) time.Duration {
	return time.Duration(float64(policy.Base) * math.Pow(policy.BackoffFactor, float64(attempt-1)))
}

package infra

import (
	"context"
	"errors"
	"fmt"
	"time"

	apierrors "github.com/olgasafonova/wikidot-mcp-server/internal/errors"
)

// Retry defaults. With these values a permanently failing operation runs 61
// times and sleeps 1+2+...+60 = 1830 seconds (about 30.5 minutes) in total.
const (
	DefaultMaxRetries = 60
	DefaultRetryStep  = time.Second
)

// SleepFunc pauses for d. It returns early with an error when ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// ContextSleep is the production SleepFunc.
func ContextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Retrier re-runs failing operations with linear backoff: the delay before
// retry n (1-based) is n*Step. Errors for which errors.IsRetryable reports
// false are returned immediately.
type Retrier struct {
	MaxRetries int
	Step       time.Duration
	Sleep      SleepFunc

	// OnRetry is called before each backoff sleep with the 1-based retry
	// number, the delay about to be slept and the error that caused it.
	OnRetry func(retry int, delay time.Duration, err error)
}

// NewRetrier returns a Retrier with the default policy.
func NewRetrier() *Retrier {
	return &Retrier{
		MaxRetries: DefaultMaxRetries,
		Step:       DefaultRetryStep,
		Sleep:      ContextSleep,
	}
}

// Delay returns the backoff slept after the given zero-based failed attempt.
func (r *Retrier) Delay(attempt int) time.Duration {
	return time.Duration(attempt+1) * r.Step
}

// MaxWait returns the cumulative backoff of a run that exhausts every retry.
func (r *Retrier) MaxWait() time.Duration {
	n := r.MaxRetries
	if n < 0 {
		n = 0
	}
	return time.Duration(n*(n+1)/2) * r.Step
}

// Retry runs op until it succeeds, fails with a non-retryable error, or the
// retry budget is spent. The last error is returned unchanged.
func Retry[T any](ctx context.Context, r *Retrier, op func(ctx context.Context) (T, error)) (T, error) {
	if r == nil {
		r = NewRetrier()
	}
	sleep := r.Sleep
	if sleep == nil {
		sleep = ContextSleep
	}

	for attempt := 0; ; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		if !apierrors.IsRetryable(err) || attempt >= r.MaxRetries {
			var zero T
			return zero, err
		}

		delay := r.Delay(attempt)
		if r.OnRetry != nil {
			r.OnRetry(attempt+1, delay, err)
		}
		if serr := sleep(ctx, delay); serr != nil {
			var zero T
			return zero, fmt.Errorf("retry aborted after %d attempts: %w", attempt+1, errors.Join(serr, err))
		}
	}
}

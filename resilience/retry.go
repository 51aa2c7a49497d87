package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// Policy describes how often and how patiently an operation is retried.
// Attempt n waits Backoff * Factor^(n-1), capped at MaxBackoff.
type Policy struct {
	// Attempts is the total number of calls, the first included.
	Attempts int
	// Backoff is the wait after the first failure.
	Backoff time.Duration
	// MaxBackoff caps every wait.
	MaxBackoff time.Duration
	// Factor multiplies the wait after every failure.
	Factor float64
	// Jitter spreads each wait by up to this fraction in either direction.
	Jitter float64
	// RetryIf reports whether err is worth another attempt.
	RetryIf func(err error) bool
	// OnRetry runs before every wait.
	OnRetry func(attempt int, err error, wait time.Duration)
}

func (p Policy) withDefaults() Policy {
	if p.Attempts <= 0 {
		p.Attempts = 3
	}
	if p.Backoff <= 0 {
		p.Backoff = 100 * time.Millisecond
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = 30 * time.Second
	}
	if p.Factor < 1 {
		p.Factor = 2
	}
	if p.RetryIf == nil {
		p.RetryIf = Transient
	}
	return p
}

// Transient retries everything except context cancellation and expiry.
func Transient(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Retry calls fn until it succeeds, RetryIf rejects its error or the
// attempts run out. It returns the last error of fn, or ctx.Err() when ctx
// ends first.
func Retry[T any](ctx context.Context, p Policy, fn func(context.Context) (T, error)) (T, error) {
	p = p.withDefaults()
	var zero T
	var err error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
		var v T
		if v, err = fn(ctx); err == nil {
			return v, nil
		}
		if attempt == p.Attempts || !p.RetryIf(err) {
			break
		}
		wait := p.wait(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, wait)
		}
		if sleepErr := sleep(ctx, wait); sleepErr != nil {
			return zero, sleepErr
		}
	}
	return zero, err
}

// Do is Retry for operations without a result.
func Do(ctx context.Context, p Policy, fn func(context.Context) error) error {
	_, err := Retry(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

func (p Policy) wait(attempt int) time.Duration {
	d := float64(p.Backoff) * math.Pow(p.Factor, float64(attempt-1))
	if p.Jitter > 0 {
		d += d * p.Jitter * (rand.Float64()*2 - 1)
	}
	if d > float64(p.MaxBackoff) {
		d = float64(p.MaxBackoff)
	}
	if d <= 0 {
		d = float64(p.Backoff)
	}
	return time.Duration(d)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

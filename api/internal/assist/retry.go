package assist

import (
	"context"
	"math/rand/v2"
	"time"
)

// RetryPolicy configures exponential backoff for one call site.
// Delays: InitialDelay, InitialDelay*2, InitialDelay*4, ... each plus rand[0, Jitter].
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Jitter       time.Duration

	OnRetry func(attempt int, wait time.Duration, err error)
	// Sleep replaces the timer-based wait; tests use it to record delays.
	Sleep func(ctx context.Context, d time.Duration) error
}

var (
	DefaultRetry    = RetryPolicy{MaxAttempts: 3, InitialDelay: time.Second}
	PersistentRetry = RetryPolicy{MaxAttempts: 5, InitialDelay: time.Second, Jitter: 500 * time.Millisecond}
	QuickRetry      = RetryPolicy{MaxAttempts: 3, InitialDelay: 500 * time.Millisecond}
)

// Policies holds the retry policy used by each operation.
type Policies struct {
	Report    RetryPolicy
	Symptoms  RetryPolicy
	Chat      RetryPolicy
	Speech    RetryPolicy
	Hospitals RetryPolicy
	Tips      RetryPolicy
}

// DefaultPolicies returns the presets wired to each operation.
func DefaultPolicies() Policies {
	return Policies{
		Report:    PersistentRetry,
		Symptoms:  DefaultRetry,
		Chat:      DefaultRetry,
		Speech:    QuickRetry,
		Hospitals: DefaultRetry,
		Tips:      DefaultRetry,
	}
}

func (p Policies) For(op Operation) RetryPolicy {
	switch op {
	case OpReport:
		return p.Report
	case OpSymptoms:
		return p.Symptoms
	case OpChat:
		return p.Chat
	case OpSpeech:
		return p.Speech
	case OpHospitals:
		return p.Hospitals
	case OpTips:
		return p.Tips
	}
	return DefaultRetry
}

// Retry runs fn until it succeeds, fails with a status outside 5xx, or the
// attempt budget is spent. The last error is returned on exhaustion.
func Retry[T any](ctx context.Context, p RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.InitialDelay

	var (
		zero    T
		lastErr error
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		status, ok := StatusOf(err)
		if !ok || !IsServerError(status) {
			return zero, err
		}
		if attempt == attempts {
			break
		}

		wait := delay + p.jitter()
		if p.OnRetry != nil {
			p.OnRetry(attempt, wait, err)
		}
		if err := p.sleep(ctx, wait); err != nil {
			return zero, err
		}
		delay *= 2
	}
	return zero, lastErr
}

func (p RetryPolicy) jitter() time.Duration {
	if p.Jitter <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(p.Jitter) + 1))
}

func (p RetryPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package assist

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordSleeps(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func TestRetry_RecoversAfterServerErrors(t *testing.T) {
	var delays []time.Duration
	pol := RetryPolicy{MaxAttempts: 4, InitialDelay: 100 * time.Millisecond, Sleep: recordSleeps(&delays)}

	calls := 0
	got, err := Retry(context.Background(), pol, func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", &StatusError{Code: http.StatusServiceUnavailable}
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, delays)
}

func TestRetry_JitterOnlyAdds(t *testing.T) {
	base := 50 * time.Millisecond
	jitter := 20 * time.Millisecond

	for run := 0; run < 20; run++ {
		var delays []time.Duration
		pol := RetryPolicy{MaxAttempts: 5, InitialDelay: base, Jitter: jitter, Sleep: recordSleeps(&delays)}

		_, err := Retry(context.Background(), pol, func(context.Context) (int, error) {
			return 0, &StatusError{Code: http.StatusBadGateway}
		})
		require.Error(t, err)
		require.Len(t, delays, 4)

		for i, d := range delays {
			floor := base << i
			assert.GreaterOrEqual(t, d, floor, "attempt %d", i+1)
			assert.LessOrEqual(t, d, floor+jitter, "attempt %d", i+1)
		}
	}
}

func TestRetry_ClientErrorIsNotRetried(t *testing.T) {
	var delays []time.Duration
	pol := RetryPolicy{MaxAttempts: 5, InitialDelay: time.Millisecond, Sleep: recordSleeps(&delays)}

	calls := 0
	_, err := Retry(context.Background(), pol, func(context.Context) (int, error) {
		calls++
		return 0, &StatusError{Code: http.StatusTooManyRequests, Message: "quota"}
	})

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
	assert.Equal(t, 1, calls)
	assert.Empty(t, delays)
}

func TestRetry_ErrorWithoutStatusIsNotRetried(t *testing.T) {
	calls := 0
	boom := errors.New("dial tcp: connection refused")
	_, err := Retry(context.Background(), DefaultRetry, func(context.Context) (int, error) {
		calls++
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestRetry_ExhaustionReturnsLastError(t *testing.T) {
	var delays []time.Duration
	pol := RetryPolicy{MaxAttempts: 3, InitialDelay: time.Millisecond, Sleep: recordSleeps(&delays)}

	calls := 0
	_, err := Retry(context.Background(), pol, func(context.Context) (int, error) {
		calls++
		return 0, &StatusError{Code: 500 + calls}
	})

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 503, se.Code)
	assert.Equal(t, 3, calls)
	assert.Len(t, delays, 2)
}

func TestRetry_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), RetryPolicy{}, func(context.Context) (int, error) {
		calls++
		return 0, &StatusError{Code: http.StatusInternalServerError}
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_CancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pol := RetryPolicy{MaxAttempts: 3, InitialDelay: time.Hour}

	calls := 0
	_, err := Retry(ctx, pol, func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, &StatusError{Code: http.StatusServiceUnavailable}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPolicies_For(t *testing.T) {
	p := DefaultPolicies()
	assert.Equal(t, PersistentRetry.MaxAttempts, p.For(OpReport).MaxAttempts)
	assert.Equal(t, QuickRetry.InitialDelay, p.For(OpSpeech).InitialDelay)
	assert.Equal(t, DefaultRetry.MaxAttempts, p.For(Operation("unknown")).MaxAttempts)
}

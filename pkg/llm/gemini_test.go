package llm

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestRetryNoWaitAfterLastAttempt(t *testing.T) {
	var waits []int
	wait := func(attempt int) time.Duration {
		waits = append(waits, attempt)
		return 0
	}
	calls := 0
	errBoom := errors.New("boom")

	_, err := retry(context.Background(), rate.NewLimiter(rate.Inf, 0), wait, func() (string, error) {
		calls++
		return "", errBoom
	}, slog.New(slog.DiscardHandler))

	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, maxAttempts, calls)
	assert.Equal(t, []int{0, 1}, waits)
}

func TestRetryStopsOnSuccess(t *testing.T) {
	var waits []int
	wait := func(attempt int) time.Duration {
		waits = append(waits, attempt)
		return 0
	}
	calls := 0

	text, err := retry(context.Background(), rate.NewLimiter(rate.Inf, 0), wait, func() (string, error) {
		calls++
		if calls == 1 {
			return "", ErrEmptyResponse
		}
		return "ok", nil
	}, slog.New(slog.DiscardHandler))

	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []int{0}, waits)
}

func TestRetryCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	wait := func(int) time.Duration {
		cancel()
		return time.Hour
	}

	_, err := retry(ctx, rate.NewLimiter(rate.Inf, 0), wait, func() (string, error) {
		return "", errors.New("boom")
	}, slog.New(slog.DiscardHandler))

	assert.ErrorIs(t, err, context.Canceled)
}

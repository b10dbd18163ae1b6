package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalLimiterSpacing(t *testing.T) {
	l := NewIntervalLimiter(50*time.Millisecond, 50*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx))
	start := time.Now()
	require.NoError(t, l.Wait(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 45*time.Millisecond)
}

func TestIntervalLimiterFirstCallImmediate(t *testing.T) {
	l := NewIntervalLimiter(time.Second, time.Second)

	start := time.Now()
	require.NoError(t, l.Wait(context.Background()))
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestIntervalLimiterCancellation(t *testing.T) {
	l := NewIntervalLimiter(10*time.Second, 10*time.Second)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, l.Wait(ctx))

	done := make(chan error, 1)
	go func() { done <- l.Wait(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("wait did not honor cancellation")
	}
}

func TestIntervalLimiterClampsInvertedWindow(t *testing.T) {
	l := NewIntervalLimiter(20*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, 20*time.Millisecond, l.nextDelay())
}

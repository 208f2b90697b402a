package gateway_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groovebot/groove-service/internal/services/gateway"
)

func TestLimiter_WaitReturnsImmediatelyWhenUnarmed(t *testing.T) {
	l := gateway.NewLimiter()

	done := make(chan struct{})
	go func() {
		assert.NoError(t, l.Wait(context.Background()))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait blocked on an unarmed limiter")
	}
}

func TestLimiter_BackoffArmsOnce(t *testing.T) {
	l := gateway.NewLimiter()

	first := l.Backoff(200 * time.Millisecond)
	second := l.Backoff(10 * time.Second)

	// The second observer joins the pending wait instead of arming a longer
	// timer of its own.
	assert.Equal(t, first, second)
	assert.True(t, l.Limited())

	select {
	case <-first:
	case <-time.After(2 * time.Second):
		t.Fatal("backoff never released")
	}
	assert.False(t, l.Limited())
}

func TestLimiter_WaitBlocksUntilRelease(t *testing.T) {
	l := gateway.NewLimiter()

	const backoff = 150 * time.Millisecond
	start := time.Now()
	l.Backoff(backoff)

	require.NoError(t, l.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), backoff)
}

func TestLimiter_WaitHonorsContext(t *testing.T) {
	l := gateway.NewLimiter()
	l.Backoff(10 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLimiter_RearmsAfterRelease(t *testing.T) {
	l := gateway.NewLimiter()

	first := l.Backoff(20 * time.Millisecond)
	<-first

	second := l.Backoff(20 * time.Millisecond)
	assert.NotEqual(t, first, second)
	<-second
	assert.False(t, l.Limited())
}

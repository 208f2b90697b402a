package gateway

import (
	"context"
	"sync"
	"time"
)

// Limiter coordinates the shared rate-limit backoff. While the upstream is
// limited, every caller awaits the same release channel instead of starting
// independent wait timers; whoever observes the 429 first owns the timer.
type Limiter struct {
	mu      sync.Mutex
	release chan struct{}
}

// NewLimiter creates an unarmed limiter.
func NewLimiter() *Limiter {
	return &Limiter{}
}

// Limited reports whether a backoff is currently pending.
func (l *Limiter) Limited() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.release != nil
}

// Wait blocks until any pending backoff releases. It returns immediately
// when the upstream is not limited.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	ch := l.release
	l.mu.Unlock()

	if ch == nil {
		return nil
	}

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Backoff arms the shared wait for the given duration and returns the channel
// every concurrent caller must await. If a backoff is already pending, the
// existing channel is returned and no second timer is created.
func (l *Limiter) Backoff(d time.Duration) <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.release != nil {
		return l.release
	}

	ch := make(chan struct{})
	l.release = ch

	time.AfterFunc(d, func() {
		l.mu.Lock()
		l.release = nil
		l.mu.Unlock()
		close(ch)
	})

	return ch
}

package gateway

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/groovebot/groove-service/internal/core/cache"
	"github.com/groovebot/groove-service/internal/core/userdb"
	domainerrors "github.com/groovebot/groove-service/internal/domain/errors"
)

// TokenRefresher exchanges a refresh token for a new token pair. The returned
// refresh token may be identical to the input; upstream does not always
// rotate it.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (accessToken, refreshToken2 string, err error)
}

// statusCoder is the upstream failure signaling convention: an error carrying
// a numeric HTTP status.
type statusCoder interface {
	Status() int
}

// retryAfterer is implemented by rate-limit failures carrying the upstream's
// advertised wait.
type retryAfterer interface {
	RetryAfter() time.Duration
}

// Config holds the gateway dependencies.
type Config struct {
	Store     userdb.Store
	Refresher TokenRefresher
	Cache     cache.Cache
	Limiter   *Limiter
	CacheTTL  time.Duration
	Logger    zerolog.Logger
}

// Gateway is the chokepoint for upstream calls.
type Gateway struct {
	store     userdb.Store
	refresher TokenRefresher
	cache     cache.Cache
	limiter   *Limiter
	cacheTTL  time.Duration
	logger    zerolog.Logger

	calls atomic.Int64

	// now is swappable for tests.
	now func() time.Time
}

// New creates a gateway.
func New(cfg Config) *Gateway {
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = NewLimiter()
	}

	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = time.Hour
	}

	return &Gateway{
		store:     cfg.Store,
		refresher: cfg.Refresher,
		cache:     cfg.Cache,
		limiter:   limiter,
		cacheTTL:  ttl,
		logger:    cfg.Logger,
		now:       time.Now,
	}
}

// CallCount returns the number of successful upstream calls made so far.
// Advisory only; it carries no cross-process guarantee.
func (g *Gateway) CallCount() int64 {
	return g.calls.Load()
}

// Limiter exposes the shared rate-limit state.
func (g *Gateway) Limiter() *Limiter {
	return g.limiter
}

// Invoke resolves the user's credentials, refreshes them when stale, and
// executes the operation. Rate-limit failures are retried until the upstream
// recovers, with all concurrent callers sharing one backoff wait. Any other
// failure triggers exactly one refresh-and-retry before the error is
// propagated as an upstream-call failure.
func (g *Gateway) Invoke(ctx context.Context, userID string, op Operation) ([]byte, error) {
	for {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		cred, err := g.store.GetByExternalID(ctx, userID)
		if err != nil {
			if errors.Is(err, userdb.ErrNotFound) {
				return nil, domainerrors.NewUserNotAuthenticatedError(userID)
			}
			return nil, domainerrors.NewPersistenceError("credential lookup", err)
		}

		accessToken := cred.AccessToken
		refreshToken := cred.RefreshToken
		if cred.TokenExpired(g.now()) {
			accessToken, refreshToken, err = g.refreshAndPersist(ctx, userID, refreshToken)
			if err != nil {
				return nil, err
			}
		}

		result, err := op.Do(ctx, accessToken)
		if err == nil {
			g.calls.Add(1)
			return result, nil
		}

		if wait, limited := rateLimitWait(err); limited {
			release := g.limiter.Backoff(wait)
			g.logger.Warn().
				Str("operation", op.Name).
				Dur("retryAfter", wait).
				Msg("upstream rate limited, backing off")

			select {
			case <-release:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			continue
		}

		// Any other failure is treated as a stale credential: refresh once
		// and retry exactly once.
		accessToken, _, rerr := g.refreshAndPersist(ctx, userID, refreshToken)
		if rerr != nil {
			return nil, rerr
		}

		result, retryErr := op.Do(ctx, accessToken)
		if retryErr != nil {
			g.logger.Error().
				Str("operation", op.Name).
				Err(retryErr).
				Msg("upstream call failed after auth retry")
			return nil, domainerrors.NewUpstreamCallError(op.Name, retryErr)
		}

		g.calls.Add(1)
		return result, nil
	}
}

// InvokeCached serves idempotent reads from the result cache when possible.
// On a hit the credentials and the upstream are never touched. Mutating
// operations bypass the cache entirely.
func (g *Gateway) InvokeCached(ctx context.Context, userID string, op Operation) ([]byte, error) {
	if op.Mutating || g.cache == nil {
		return g.Invoke(ctx, userID, op)
	}

	key := op.CacheKey(userID)
	if data, err := g.cache.Get(ctx, key); err != nil {
		g.logger.Warn().Str("key", key).Err(err).Msg("cache read failed, falling through")
	} else if data != nil {
		return data, nil
	}

	result, err := g.Invoke(ctx, userID, op)
	if err != nil {
		return nil, err
	}

	if err := g.cache.Set(ctx, key, result, g.cacheTTL); err != nil {
		g.logger.Warn().Str("key", key).Err(err).Msg("cache write failed")
	}

	return result, nil
}

// PurgeUser drops every cached entry for the user. Called on disconnect.
func (g *Gateway) PurgeUser(ctx context.Context, userID string) error {
	if g.cache == nil {
		return nil
	}
	if _, err := g.cache.DeletePattern(ctx, "gw:"+userID+":*"); err != nil {
		return err
	}
	return nil
}

// refreshAndPersist exchanges the refresh token and stores whichever pair
// comes back. Concurrent refreshes for the same user may race; the last
// successful write wins and the loser's token is used once and discarded.
func (g *Gateway) refreshAndPersist(ctx context.Context, userID, refreshToken string) (string, string, error) {
	access, refreshed, err := g.refresher.Refresh(ctx, refreshToken)
	if err != nil {
		return "", "", err
	}

	if refreshed == "" {
		refreshed = refreshToken
	}

	if err := g.store.UpdateTokens(ctx, userID, access, refreshed); err != nil {
		return "", "", domainerrors.NewPersistenceError("token update", err)
	}

	return access, refreshed, nil
}

// rateLimitWait extracts the upstream's advertised wait when the failure is a
// 429. Failures without a retry-after duration default to one minute.
func rateLimitWait(err error) (time.Duration, bool) {
	var sc statusCoder
	if !errors.As(err, &sc) || sc.Status() != http.StatusTooManyRequests {
		return 0, false
	}

	var ra retryAfterer
	if errors.As(err, &ra) && ra.RetryAfter() > 0 {
		return ra.RetryAfter(), true
	}
	return time.Minute, true
}

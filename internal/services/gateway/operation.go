// Package gateway provides the single chokepoint through which every
// upstream platform call travels. It resolves credentials, refreshes stale
// tokens, backs off on rate limits, counts calls and optionally caches
// idempotent reads. No other component may call the upstream API directly.
package gateway

import (
	"context"
	"fmt"
)

// Operation describes one bound upstream call. The Do closure captures all
// request parameters; the gateway only supplies the resolved access token.
type Operation struct {
	// Name identifies the operation for logging and cache keys.
	Name string

	// Params is the parameter fingerprint included in the cache key, so two
	// calls to the same operation with different arguments never collide.
	Params string

	// Mutating marks operations with side effects. Mutating operations are
	// never served from or written to the cache.
	Mutating bool

	// Do executes the upstream call with the given access token.
	Do func(ctx context.Context, accessToken string) ([]byte, error)
}

// CacheKey derives the deterministic cache key for this operation on behalf
// of the given user.
func (op Operation) CacheKey(userID string) string {
	return fmt.Sprintf("gw:%s:%s:%s", userID, op.Name, op.Params)
}

package gateway_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/groovebot/groove-service/internal/services/gateway"
)

func TestOperation_CacheKey(t *testing.T) {
	op := gateway.Operation{Name: "top-tracks", Params: "50:0"}
	assert.Equal(t, "gw:user-1:top-tracks:50:0", op.CacheKey("user-1"))

	// Different windows never collide.
	other := gateway.Operation{Name: "top-tracks", Params: "50:50"}
	assert.NotEqual(t, op.CacheKey("user-1"), other.CacheKey("user-1"))

	// Different users never collide.
	assert.NotEqual(t, op.CacheKey("user-1"), op.CacheKey("user-2"))
}

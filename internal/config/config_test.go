// Package config_test provides unit tests for configuration loading.
package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groovebot/groove-service/internal/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SPOTIFY_CLIENT_ID", "client-id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "client-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, float64(10), cfg.Spotify.RequestRate)
	assert.Equal(t, 5, cfg.Spotify.RequestBurst)
	assert.Equal(t, time.Hour, cfg.Spotify.TokenLifetime)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_RequiresSpotifyCredentials(t *testing.T) {
	t.Setenv("SPOTIFY_CLIENT_ID", "")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("CACHE_TTL_SECONDS", "120")
	t.Setenv("SPOTIFY_REQUEST_RATE", "2.5")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 2.5, cfg.Spotify.RequestRate)
}

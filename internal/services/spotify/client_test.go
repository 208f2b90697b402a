// Package spotify_test provides unit tests for the Spotify client.
package spotify_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groovebot/groove-service/internal/services/spotify"
)

func newTestClient(t *testing.T, handler http.Handler) *spotify.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return spotify.NewClient(spotify.Config{
		BaseURL:           srv.URL,
		RequestsPerSecond: 10_000,
		Burst:             10_000,
	})
}

func TestClient_SendsBearerToken(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"id":"u"}`))
	}))

	data, err := client.ProfileOp().Do(context.Background(), "the-token")
	require.NoError(t, err)

	assert.Equal(t, "Bearer the-token", gotAuth)
	assert.Equal(t, []byte(`{"id":"u"}`), data)
}

func TestClient_RateLimitParsesRetryAfter(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "17")
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := client.ProfileOp().Do(context.Background(), "token")
	require.Error(t, err)

	var apiErr *spotify.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status())
	assert.Equal(t, 17*time.Second, apiErr.RetryAfter())
}

func TestClient_RateLimitDefaultsToOneMinute(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := client.ProfileOp().Do(context.Background(), "token")
	require.Error(t, err)

	var apiErr *spotify.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, time.Minute, apiErr.RetryAfter())
}

func TestClient_ErrorCarriesStatusAndBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"message":"insufficient scope"}}`))
	}))

	_, err := client.ProfileOp().Do(context.Background(), "token")
	require.Error(t, err)

	var apiErr *spotify.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.Status())
	assert.Contains(t, apiErr.Body, "insufficient scope")
	assert.Zero(t, apiErr.RetryAfter())
}

func TestDecode_EmptyBodyYieldsZeroValue(t *testing.T) {
	// Currently-playing answers 204 with no body when nothing plays.
	playing, err := spotify.Decode[spotify.CurrentlyPlaying](nil)
	require.NoError(t, err)
	assert.Nil(t, playing.Item)
	assert.False(t, playing.IsPlaying)
}

func TestDecode_MalformedBodyFails(t *testing.T) {
	_, err := spotify.Decode[spotify.TrackPage]([]byte(`{"items":`))
	assert.Error(t, err)
}

func TestRecommendationsOp_EncodesSeedsAndBounds(t *testing.T) {
	var gotQuery map[string][]string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/recommendations", r.URL.Path)
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"tracks":[]}`))
	}))

	op := client.RecommendationsOp(spotify.RecommendationParams{
		SeedTracks: []string{"t1", "t2"},
		SeedGenres: []string{"rock"},
		Targets:    map[string]float64{"danceability": 0.7},
	})

	_, err := op.Do(context.Background(), "token")
	require.NoError(t, err)

	assert.Equal(t, "t1,t2", gotQuery["seed_tracks"][0])
	assert.Equal(t, "rock", gotQuery["seed_genres"][0])
	assert.Equal(t, "50", gotQuery["limit"][0], "limit defaults to a full page")
	assert.Equal(t, "0.7", gotQuery["target_danceability"][0])
}

func TestCreatePlaylistOp_CreatesPrivatePlaylist(t *testing.T) {
	var gotBody map[string]any
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/users/spotify-user/playlists", r.URL.Path)
		require.NoError(t, jsonDecode(r, &gotBody))
		w.Write([]byte(`{"id":"pl1"}`))
	}))

	op := client.CreatePlaylistOp("spotify-user", "My Mix", "desc")
	require.True(t, op.Mutating)

	_, err := op.Do(context.Background(), "token")
	require.NoError(t, err)

	assert.Equal(t, "My Mix", gotBody["name"])
	assert.Equal(t, false, gotBody["public"])
	assert.Equal(t, false, gotBody["collaborative"])
}

func jsonDecode(r *http.Request, out any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/groovebot/groove-service/internal/domain/models"
	"github.com/groovebot/groove-service/internal/services/gateway"
)

// Decode unmarshals an operation result into the given wire type.
func Decode[T any](data []byte) (T, error) {
	var out T
	if len(data) == 0 {
		// Some endpoints (currently-playing) answer 204 with no body.
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("failed to decode response: %w", err)
	}
	return out, nil
}

// ProfileOp fetches the user's profile.
func (c *Client) ProfileOp() gateway.Operation {
	return gateway.Operation{
		Name: "profile",
		Do: func(ctx context.Context, token string) ([]byte, error) {
			return c.get(ctx, token, "/me", nil)
		},
	}
}

// TopTracksOp fetches a page of the user's most-played tracks.
func (c *Client) TopTracksOp(limit, offset int) gateway.Operation {
	return gateway.Operation{
		Name:   "top-tracks",
		Params: pageParams(limit, offset),
		Do: func(ctx context.Context, token string) ([]byte, error) {
			return c.get(ctx, token, "/me/top/tracks", pageQuery(limit, offset))
		},
	}
}

// TopArtistsOp fetches a page of the user's most-played artists.
func (c *Client) TopArtistsOp(limit, offset int) gateway.Operation {
	return gateway.Operation{
		Name:   "top-artists",
		Params: pageParams(limit, offset),
		Do: func(ctx context.Context, token string) ([]byte, error) {
			return c.get(ctx, token, "/me/top/artists", pageQuery(limit, offset))
		},
	}
}

// SavedTracksOp fetches a page of the user's saved tracks, most recently
// added first.
func (c *Client) SavedTracksOp(limit, offset int) gateway.Operation {
	return gateway.Operation{
		Name:   "saved-tracks",
		Params: pageParams(limit, offset),
		Do: func(ctx context.Context, token string) ([]byte, error) {
			return c.get(ctx, token, "/me/tracks", pageQuery(limit, offset))
		},
	}
}

// RecentlyPlayedOp fetches the user's recently played tracks.
func (c *Client) RecentlyPlayedOp(limit int) gateway.Operation {
	return gateway.Operation{
		Name:   "recently-played",
		Params: strconv.Itoa(limit),
		Do: func(ctx context.Context, token string) ([]byte, error) {
			q := url.Values{}
			q.Set("limit", strconv.Itoa(limit))
			return c.get(ctx, token, "/me/player/recently-played", q)
		},
	}
}

// CurrentlyPlayingOp fetches the user's currently playing track, if any.
func (c *Client) CurrentlyPlayingOp() gateway.Operation {
	return gateway.Operation{
		Name: "currently-playing",
		Do: func(ctx context.Context, token string) ([]byte, error) {
			return c.get(ctx, token, "/me/player/currently-playing", nil)
		},
	}
}

// PlaylistsOp fetches a page of the user's playlists.
func (c *Client) PlaylistsOp(limit, offset int) gateway.Operation {
	return gateway.Operation{
		Name:   "playlists",
		Params: pageParams(limit, offset),
		Do: func(ctx context.Context, token string) ([]byte, error) {
			return c.get(ctx, token, "/me/playlists", pageQuery(limit, offset))
		},
	}
}

// PlaylistOp fetches one playlist with its track listing.
func (c *Client) PlaylistOp(playlistID string) gateway.Operation {
	return gateway.Operation{
		Name:   "playlist",
		Params: playlistID,
		Do: func(ctx context.Context, token string) ([]byte, error) {
			return c.get(ctx, token, "/playlists/"+playlistID, nil)
		},
	}
}

// ArtistsOp fetches up to 50 artists by id.
func (c *Client) ArtistsOp(ids []string) gateway.Operation {
	joined := strings.Join(ids, ",")
	return gateway.Operation{
		Name:   "artists",
		Params: joined,
		Do: func(ctx context.Context, token string) ([]byte, error) {
			q := url.Values{}
			q.Set("ids", joined)
			return c.get(ctx, token, "/artists", q)
		},
	}
}

// AudioFeaturesOp fetches audio features for up to 100 tracks by id.
func (c *Client) AudioFeaturesOp(ids []string) gateway.Operation {
	joined := strings.Join(ids, ",")
	return gateway.Operation{
		Name:   "audio-features",
		Params: joined,
		Do: func(ctx context.Context, token string) ([]byte, error) {
			q := url.Values{}
			q.Set("ids", joined)
			return c.get(ctx, token, "/audio-features", q)
		},
	}
}

// RecommendationParams bounds a recommendations request.
type RecommendationParams struct {
	SeedTracks  []string
	SeedGenres  []string
	Limit       int
	MinFeatures *models.AudioFeatures
	MaxFeatures *models.AudioFeatures
	Targets     map[string]float64
}

// RecommendationsOp requests recommended tracks from the given seeds and
// feature bounds.
func (c *Client) RecommendationsOp(params RecommendationParams) gateway.Operation {
	q := url.Values{}
	if len(params.SeedTracks) > 0 {
		q.Set("seed_tracks", strings.Join(params.SeedTracks, ","))
	}
	if len(params.SeedGenres) > 0 {
		q.Set("seed_genres", strings.Join(params.SeedGenres, ","))
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	q.Set("limit", strconv.Itoa(limit))

	setFeatureBounds(q, "min_", params.MinFeatures)
	setFeatureBounds(q, "max_", params.MaxFeatures)
	for name, value := range params.Targets {
		q.Set("target_"+name, formatFloat(value))
	}

	return gateway.Operation{
		Name:   "recommendations",
		Params: q.Encode(),
		Do: func(ctx context.Context, token string) ([]byte, error) {
			return c.get(ctx, token, "/recommendations", q)
		},
	}
}

// CreatePlaylistOp creates a private, non-collaborative playlist for the
// given platform user.
func (c *Client) CreatePlaylistOp(platformUserID, name, description string) gateway.Operation {
	return gateway.Operation{
		Name:     "create-playlist",
		Params:   platformUserID + ":" + name,
		Mutating: true,
		Do: func(ctx context.Context, token string) ([]byte, error) {
			body := map[string]any{
				"name":          name,
				"description":   description,
				"public":        false,
				"collaborative": false,
			}
			return c.post(ctx, token, "/users/"+platformUserID+"/playlists", body)
		},
	}
}

// AddTracksOp appends track URIs to a playlist. Upstream accepts at most 100
// URIs per call; batching is the materializer's concern.
func (c *Client) AddTracksOp(playlistID string, uris []string) gateway.Operation {
	return gateway.Operation{
		Name:     "add-tracks",
		Params:   playlistID,
		Mutating: true,
		Do: func(ctx context.Context, token string) ([]byte, error) {
			body := map[string]any{"uris": uris}
			return c.post(ctx, token, "/playlists/"+playlistID+"/tracks", body)
		},
	}
}

func pageParams(limit, offset int) string {
	return fmt.Sprintf("%d:%d", limit, offset)
}

func pageQuery(limit, offset int) url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	return q
}

func setFeatureBounds(q url.Values, prefix string, features *models.AudioFeatures) {
	if features == nil {
		return
	}
	q.Set(prefix+"danceability", formatFloat(features.Danceability))
	q.Set(prefix+"energy", formatFloat(features.Energy))
	q.Set(prefix+"loudness", formatFloat(features.Loudness))
	q.Set(prefix+"speechiness", formatFloat(features.Speechiness))
	q.Set(prefix+"acousticness", formatFloat(features.Acousticness))
	q.Set(prefix+"instrumentalness", formatFloat(features.Instrumentalness))
	q.Set(prefix+"liveness", formatFloat(features.Liveness))
	q.Set(prefix+"valence", formatFloat(features.Valence))
	q.Set(prefix+"tempo", formatFloat(features.Tempo))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

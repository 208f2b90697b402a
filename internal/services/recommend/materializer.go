// Package recommend builds derived playlists: recommendation playlists seeded
// from the user's listening data, monthly liked-track playlists and
// genre-filtered playlists.
package recommend

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/groovebot/groove-service/internal/services/gateway"
	"github.com/groovebot/groove-service/internal/services/spotify"
)

// addBatchSize is the upstream limit for one add-tracks call.
const addBatchSize = 100

// Materializer fills a freshly created playlist with tracks and returns the
// hydrated result.
type Materializer struct {
	gw     *gateway.Gateway
	client *spotify.Client
	logger zerolog.Logger
}

// NewMaterializer creates a playlist materializer.
func NewMaterializer(gw *gateway.Gateway, client *spotify.Client, logger zerolog.Logger) *Materializer {
	return &Materializer{gw: gw, client: client, logger: logger}
}

// AttachAndFetch adds the given track URIs to the playlist in fixed-size
// batches, then fetches and returns the playlist with its track listing. A
// batch failure aborts the materialization; tracks added by earlier batches
// are not rolled back.
func (m *Materializer) AttachAndFetch(ctx context.Context, userID, playlistID string, uris []string) (*spotify.Playlist, error) {
	for start := 0; start < len(uris); start += addBatchSize {
		end := start + addBatchSize
		if end > len(uris) {
			end = len(uris)
		}
		if _, err := m.gw.Invoke(ctx, userID, m.client.AddTracksOp(playlistID, uris[start:end])); err != nil {
			return nil, err
		}
	}

	data, err := m.gw.Invoke(ctx, userID, m.client.PlaylistOp(playlistID))
	if err != nil {
		return nil, err
	}
	playlist, err := spotify.Decode[spotify.Playlist](data)
	if err != nil {
		return nil, err
	}
	return &playlist, nil
}

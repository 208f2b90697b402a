package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/groovebot/groove-service/internal/domain/errors"
	"github.com/groovebot/groove-service/internal/services/library"
	"github.com/groovebot/groove-service/internal/services/spotify"
)

// BuildMonthly creates a playlist from the tracks the user liked in the given
// month.
func (e *Engine) BuildMonthly(ctx context.Context, userID string, month, year int) (*spotify.Playlist, error) {
	ids, err := e.lib.LikedTrackIDs(ctx, userID, month, year)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, errors.NewNoSongsFoundError()
	}

	uris := make([]string, 0, len(ids))
	for _, id := range ids {
		uris = append(uris, "spotify:track:"+id)
	}

	name := fmt.Sprintf("Liked in %s %d", time.Month(month).String(), year)
	description := fmt.Sprintf("Tracks you liked during %s %d.", time.Month(month).String(), year)
	return e.createAndFill(ctx, userID, name, description, uris)
}

// BuildFiltered creates a playlist from tracks in the selected source whose
// primary artist matches the given genre.
func (e *Engine) BuildFiltered(ctx context.Context, userID, genre string, source library.Source, randomize bool) (*spotify.Playlist, error) {
	tracks, err := e.lib.TracksByGenre(ctx, userID, genre, source, randomize)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, errors.NewNoSongsFoundError()
	}

	uris := make([]string, 0, len(tracks))
	for _, track := range tracks {
		uris = append(uris, trackURI(track))
	}

	name := fmt.Sprintf("Groovebot: %s", genre)
	description := fmt.Sprintf("Your %s tracks from the %s source.", genre, source)
	return e.createAndFill(ctx, userID, name, description, uris)
}

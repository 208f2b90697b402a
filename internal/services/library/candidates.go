package library

import (
	"context"

	"github.com/groovebot/groove-service/internal/services/spotify"
)

// TopTrackIDs returns one bounded window of the user's most-played tracks.
func (s *Service) TopTrackIDs(ctx context.Context, userID string, limit int) ([]string, error) {
	data, err := s.gw.Invoke(ctx, userID, s.client.TopTracksOp(limit, 0))
	if err != nil {
		return nil, err
	}
	page, err := spotify.Decode[spotify.TrackPage](data)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(page.Items))
	for _, track := range page.Items {
		ids = append(ids, track.ID)
	}
	return ids, nil
}

// RecentTrackIDs returns the user's recently played track ids, deduplicated.
func (s *Service) RecentTrackIDs(ctx context.Context, userID string, limit int) ([]string, error) {
	data, err := s.gw.Invoke(ctx, userID, s.client.RecentlyPlayedOp(limit))
	if err != nil {
		return nil, err
	}
	page, err := spotify.Decode[spotify.RecentlyPlayedPage](data)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(page.Items))
	ids := make([]string, 0, len(page.Items))
	for _, item := range page.Items {
		if _, dup := seen[item.Track.ID]; dup {
			continue
		}
		seen[item.Track.ID] = struct{}{}
		ids = append(ids, item.Track.ID)
	}
	return ids, nil
}

// SavedTrackIDs returns one bounded window of the user's saved tracks.
func (s *Service) SavedTrackIDs(ctx context.Context, userID string, limit int) ([]string, error) {
	data, err := s.gw.Invoke(ctx, userID, s.client.SavedTracksOp(limit, 0))
	if err != nil {
		return nil, err
	}
	page, err := spotify.Decode[spotify.SavedTrackPage](data)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(page.Items))
	for _, item := range page.Items {
		ids = append(ids, item.Track.ID)
	}
	return ids, nil
}

// CurrentlyPlayingID returns the id of the track currently playing, or empty
// when nothing is.
func (s *Service) CurrentlyPlayingID(ctx context.Context, userID string) (string, error) {
	data, err := s.gw.Invoke(ctx, userID, s.client.CurrentlyPlayingOp())
	if err != nil {
		return "", err
	}
	playing, err := spotify.Decode[spotify.CurrentlyPlaying](data)
	if err != nil {
		return "", err
	}
	if playing.Item == nil {
		return "", nil
	}
	return playing.Item.ID, nil
}

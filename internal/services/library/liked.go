package library

import (
	"context"
	"time"

	"github.com/groovebot/groove-service/internal/domain/models"
	"github.com/groovebot/groove-service/internal/services/spotify"
)

// LikedFromMonth scans the user's saved tracks for the ones added in the
// given month. Saved tracks arrive most-recent-first, so the scan stops as
// soon as a page starts before the month began instead of walking the whole
// history. Results are recorded in the metadata store for repeat queries.
func (s *Service) LikedFromMonth(ctx context.Context, userID string, month, year int) ([]spotify.SavedTrack, error) {
	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	keep := func(item spotify.SavedTrack) bool {
		addedAt, err := time.Parse(time.RFC3339, item.AddedAt)
		if err != nil {
			return false
		}
		return !addedAt.Before(monthStart) && addedAt.Before(monthEnd)
	}

	stop := func(page Page[spotify.SavedTrack], collected []spotify.SavedTrack) bool {
		if len(page.Items) == 0 {
			return true
		}
		first, err := time.Parse(time.RFC3339, page.Items[0].AddedAt)
		if err != nil {
			return false
		}
		// Descending order: when the newest item of a page predates the
		// month, every remaining item does too.
		if first.Before(monthStart) {
			return true
		}
		// Safeguard for out-of-order data: once in-range items exist, a page
		// lying wholly past the month end means the window is behind us. A
		// page that merely starts past the end may still straddle into the
		// month, so the check uses its oldest item.
		last, err := time.Parse(time.RFC3339, page.Items[len(page.Items)-1].AddedAt)
		if err != nil {
			return false
		}
		return len(collected) > 0 && !last.Before(monthEnd)
	}

	liked, err := CollectPages(ctx, s.fetchSavedPage(userID), CollectOptions{PageSize: savedPageSize}, keep, stop)
	if err != nil {
		return nil, err
	}

	s.recordLiked(ctx, userID, liked)

	return liked, nil
}

// LikedTrackIDs returns the ids of tracks liked in the given month. Past
// months are served from the metadata store when previously scanned; the
// current month is always rescanned because it is still accruing.
func (s *Service) LikedTrackIDs(ctx context.Context, userID string, month, year int) ([]string, error) {
	now := time.Now().UTC()
	monthIsPast := year < now.Year() || (year == now.Year() && month < int(now.Month()))

	if monthIsPast && s.store != nil {
		stored, err := s.store.GetLikedTracks(ctx, userID, year, month)
		if err != nil {
			s.logger.Warn().Err(err).Str("userId", userID).Msg("liked-track store read failed, falling back to upstream")
		} else if len(stored) > 0 {
			ids := make([]string, 0, len(stored))
			for _, entry := range stored {
				ids = append(ids, entry.TrackID)
			}
			return ids, nil
		}
	}

	liked, err := s.LikedFromMonth(ctx, userID, month, year)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(liked))
	for _, item := range liked {
		ids = append(ids, item.Track.ID)
	}
	return ids, nil
}

// recordLiked writes liked-track and track records back to the metadata
// store. Failures are logged, never fatal; the store is only a cache.
func (s *Service) recordLiked(ctx context.Context, userID string, liked []spotify.SavedTrack) {
	if s.store == nil || len(liked) == 0 {
		return
	}

	entries := make([]*models.LikedTrack, 0, len(liked))
	tracks := make([]*models.Track, 0, len(liked))
	for _, item := range liked {
		addedAt, err := time.Parse(time.RFC3339, item.AddedAt)
		if err != nil {
			continue
		}
		entries = append(entries, &models.LikedTrack{
			UserID:  userID,
			TrackID: item.Track.ID,
			AddedAt: addedAt,
			Year:    addedAt.Year(),
			Month:   int(addedAt.Month()),
		})
		tracks = append(tracks, &models.Track{
			ID:       item.Track.ID,
			Name:     item.Track.Name,
			ArtistID: item.Track.PrimaryArtistID(),
		})
	}

	if err := s.store.SaveTracks(ctx, tracks); err != nil {
		s.logger.Warn().Err(err).Msg("track write-back failed")
	}
	if err := s.store.SaveLikedTracks(ctx, entries); err != nil {
		s.logger.Warn().Err(err).Msg("liked-track write-back failed")
	}
}

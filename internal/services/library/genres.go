package library

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/groovebot/groove-service/internal/domain/models"
	"github.com/groovebot/groove-service/internal/services/spotify"
)

// artistGenreTTL bounds the per-artist genre cache entries.
const artistGenreTTL = 24 * time.Hour

// TracksByGenre pages through the selected source and keeps tracks whose
// primary artist carries the requested genre tag, until enough matches are
// accumulated or the source is exhausted. A random initial offset can be
// requested to diversify results across repeated calls.
func (s *Service) TracksByGenre(ctx context.Context, userID, genre string, source Source, randomize bool) ([]spotify.Track, error) {
	opts := CollectOptions{PageSize: discoveryPageSize}
	if randomize && s.randInt != nil {
		opts.StartOffset = s.randInt(4) * discoveryPageSize
	}

	fetch := s.fetchSourcePage(userID, source)

	// The genre filter runs inside the fetch so every page contributes its
	// matches before the stop predicate is consulted.
	filtered := func(ctx context.Context, limit, offset int) (Page[spotify.Track], error) {
		page, err := fetch(ctx, limit, offset)
		if err != nil {
			return page, err
		}

		artistIDs := make([]string, 0, len(page.Items))
		for _, track := range page.Items {
			if id := track.PrimaryArtistID(); id != "" {
				artistIDs = append(artistIDs, id)
			}
		}

		genres, err := s.ResolveArtistGenres(ctx, userID, artistIDs)
		if err != nil {
			return Page[spotify.Track]{}, err
		}

		kept := page.Items[:0:0]
		for _, track := range page.Items {
			if containsGenre(genres[track.PrimaryArtistID()], genre) {
				kept = append(kept, track)
			}
		}
		return Page[spotify.Track]{Items: kept, Total: page.Total, Fetched: len(page.Items)}, nil
	}

	stop := func(_ Page[spotify.Track], collected []spotify.Track) bool {
		return len(collected) >= minGenreMatches
	}

	matches, err := CollectPages(ctx, filtered, opts, nil, stop)
	if err != nil {
		return matches, err
	}
	return matches, nil
}

// ResolveArtistGenres resolves genre tags for the given artist ids,
// preferring the shared cache, then the metadata store, then the upstream
// API. Newly resolved genres are written back to both layers.
func (s *Service) ResolveArtistGenres(ctx context.Context, userID string, ids []string) (map[string][]string, error) {
	resolved := make(map[string][]string, len(ids))

	remaining := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}

		if genres, ok := s.cachedGenres(ctx, id); ok {
			resolved[id] = genres
			continue
		}
		remaining = append(remaining, id)
	}

	if len(remaining) > 0 && s.store != nil {
		stored, err := s.store.GetArtists(ctx, remaining)
		if err != nil {
			s.logger.Warn().Err(err).Msg("artist store read failed, falling back to upstream")
		} else {
			unresolved := remaining[:0]
			for _, id := range remaining {
				if artist, ok := stored[id]; ok {
					resolved[id] = artist.Genres
					s.cacheGenres(ctx, id, artist.Genres)
					continue
				}
				unresolved = append(unresolved, id)
			}
			remaining = unresolved
		}
	}

	for start := 0; start < len(remaining); start += artistBatchSize {
		end := start + artistBatchSize
		if end > len(remaining) {
			end = len(remaining)
		}
		batch := remaining[start:end]

		data, err := s.gw.Invoke(ctx, userID, s.client.ArtistsOp(batch))
		if err != nil {
			return resolved, err
		}
		response, err := spotify.Decode[spotify.ArtistsResponse](data)
		if err != nil {
			return resolved, err
		}

		records := make([]*models.Artist, 0, len(response.Artists))
		for _, artist := range response.Artists {
			if artist.ID == "" {
				continue
			}
			resolved[artist.ID] = artist.Genres
			s.cacheGenres(ctx, artist.ID, artist.Genres)
			records = append(records, &models.Artist{
				ID:     artist.ID,
				Name:   artist.Name,
				Genres: artist.Genres,
			})
		}

		if s.store != nil {
			if err := s.store.SaveArtists(ctx, records); err != nil {
				s.logger.Warn().Err(err).Msg("artist write-back failed")
			}
		}
	}

	return resolved, nil
}

// TopGenres ranks the user's top-artist genre tags by frequency and returns
// the most common n. Used as the fallback recommendation seed when the
// caller supplied no genre.
func (s *Service) TopGenres(ctx context.Context, userID string, n int) ([]string, error) {
	data, err := s.gw.InvokeCached(ctx, userID, s.client.TopArtistsOp(discoveryPageSize, 0))
	if err != nil {
		return nil, err
	}
	page, err := spotify.Decode[spotify.ArtistPage](data)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, artist := range page.Items {
		for _, genre := range artist.Genres {
			counts[genre]++
		}
	}

	ranked := make([]string, 0, len(counts))
	for genre := range counts {
		ranked = append(ranked, genre)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if counts[ranked[i]] != counts[ranked[j]] {
			return counts[ranked[i]] > counts[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

func (s *Service) cachedGenres(ctx context.Context, artistID string) ([]string, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, genreCacheKey(artistID))
	if err != nil || data == nil {
		return nil, false
	}
	var genres []string
	if err := json.Unmarshal(data, &genres); err != nil {
		return nil, false
	}
	return genres, true
}

func (s *Service) cacheGenres(ctx context.Context, artistID string, genres []string) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(genres)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, genreCacheKey(artistID), data, artistGenreTTL); err != nil {
		s.logger.Warn().Err(err).Str("artistId", artistID).Msg("genre cache write failed")
	}
}

func genreCacheKey(artistID string) string {
	return "artist-genres:" + artistID
}

func containsGenre(genres []string, genre string) bool {
	for _, g := range genres {
		if g == genre {
			return true
		}
	}
	return false
}

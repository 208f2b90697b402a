package library

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/groovebot/groove-service/internal/core/cache"
	"github.com/groovebot/groove-service/internal/core/musicdb"
	"github.com/groovebot/groove-service/internal/services/gateway"
	"github.com/groovebot/groove-service/internal/services/spotify"
)

const (
	// savedPageSize is the fixed window for saved-track scans.
	savedPageSize = 50
	// discoveryPageSize is the fixed window for genre-filtered discovery.
	discoveryPageSize = 50
	// featureBatchSize is the upstream limit for one audio-features call.
	featureBatchSize = 100
	// artistBatchSize is the upstream limit for one several-artists call.
	artistBatchSize = 50
	// minGenreMatches is the discovery threshold before paging stops.
	minGenreMatches = 5
)

// Source selects which listening data feeds a discovery scan.
type Source string

// Discovery sources.
const (
	SourceTop    Source = "top"
	SourceRecent Source = "recent"
	SourceSaved  Source = "saved"
)

// Service aggregates upstream pages through the call gateway.
type Service struct {
	gw      *gateway.Gateway
	client  *spotify.Client
	cache   cache.Cache
	store   musicdb.Store
	logger  zerolog.Logger
	randInt func(n int) int
}

// Config holds the service dependencies. Store and Cache are optional; when
// absent the corresponding fallback layers are skipped.
type Config struct {
	Gateway *gateway.Gateway
	Client  *spotify.Client
	Cache   cache.Cache
	Store   musicdb.Store
	Logger  zerolog.Logger
	RandInt func(n int) int
}

// NewService creates a library service.
func NewService(cfg Config) *Service {
	return &Service{
		gw:      cfg.Gateway,
		client:  cfg.Client,
		cache:   cfg.Cache,
		store:   cfg.Store,
		logger:  cfg.Logger,
		randInt: cfg.RandInt,
	}
}

// fetchSavedPage fetches one window of the user's saved tracks.
func (s *Service) fetchSavedPage(userID string) FetchPage[spotify.SavedTrack] {
	return func(ctx context.Context, limit, offset int) (Page[spotify.SavedTrack], error) {
		data, err := s.gw.Invoke(ctx, userID, s.client.SavedTracksOp(limit, offset))
		if err != nil {
			return Page[spotify.SavedTrack]{}, err
		}
		page, err := spotify.Decode[spotify.SavedTrackPage](data)
		if err != nil {
			return Page[spotify.SavedTrack]{}, err
		}
		return Page[spotify.SavedTrack]{Items: page.Items, Total: page.Total}, nil
	}
}

// fetchSourcePage fetches one window of tracks from the selected discovery
// source.
func (s *Service) fetchSourcePage(userID string, source Source) FetchPage[spotify.Track] {
	return func(ctx context.Context, limit, offset int) (Page[spotify.Track], error) {
		switch source {
		case SourceRecent:
			data, err := s.gw.Invoke(ctx, userID, s.client.RecentlyPlayedOp(limit))
			if err != nil {
				return Page[spotify.Track]{}, err
			}
			page, err := spotify.Decode[spotify.RecentlyPlayedPage](data)
			if err != nil {
				return Page[spotify.Track]{}, err
			}
			tracks := make([]spotify.Track, 0, len(page.Items))
			for _, item := range page.Items {
				tracks = append(tracks, item.Track)
			}
			// Recently-played has no offset pagination; one window only.
			return Page[spotify.Track]{Items: tracks, Total: len(tracks)}, nil
		case SourceSaved:
			data, err := s.gw.Invoke(ctx, userID, s.client.SavedTracksOp(limit, offset))
			if err != nil {
				return Page[spotify.Track]{}, err
			}
			page, err := spotify.Decode[spotify.SavedTrackPage](data)
			if err != nil {
				return Page[spotify.Track]{}, err
			}
			tracks := make([]spotify.Track, 0, len(page.Items))
			for _, item := range page.Items {
				tracks = append(tracks, item.Track)
			}
			return Page[spotify.Track]{Items: tracks, Total: page.Total}, nil
		default:
			data, err := s.gw.Invoke(ctx, userID, s.client.TopTracksOp(limit, offset))
			if err != nil {
				return Page[spotify.Track]{}, err
			}
			page, err := spotify.Decode[spotify.TrackPage](data)
			if err != nil {
				return Page[spotify.Track]{}, err
			}
			return Page[spotify.Track]{Items: page.Items, Total: page.Total}, nil
		}
	}
}

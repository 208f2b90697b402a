package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/groovebot/groove-service/internal/domain/errors"
	"github.com/groovebot/groove-service/internal/domain/models"
	"github.com/groovebot/groove-service/internal/services/gateway"
	"github.com/groovebot/groove-service/internal/services/library"
	"github.com/groovebot/groove-service/internal/services/spotify"
)

const (
	// candidateLimit bounds each condition's contribution to the seed pool.
	candidateLimit = 50
	// seedCount is how many track seeds one recommendations call carries.
	seedCount = 3
	// recommendationLimit bounds the recommendations response.
	recommendationLimit = 50
	// fallbackGenreCount bounds the derived genre seeds so the combined seed
	// count stays within the upstream limit of five.
	fallbackGenreCount = 2
)

// Options selects which of the user's listening data seeds a recommendation
// build.
type Options struct {
	RecentlyPlayed   bool               `json:"recentlyPlayed"`
	MostPlayed       bool               `json:"mostPlayed"`
	LikedTracks      bool               `json:"likedTracks"`
	CurrentlyPlaying bool               `json:"currentlyPlaying"`
	Genre            string             `json:"genre"`
	UseFeatureBounds bool               `json:"useFeatureBounds"`
	Targets          map[string]float64 `json:"targets"`
}

// none reports whether no condition and no genre was selected.
func (o Options) none() bool {
	return !o.RecentlyPlayed && !o.MostPlayed && !o.LikedTracks && !o.CurrentlyPlaying && o.Genre == ""
}

// Engine builds recommendation playlists from the user's listening data.
type Engine struct {
	gw           *gateway.Gateway
	client       *spotify.Client
	lib          *library.Service
	materializer *Materializer
	logger       zerolog.Logger
	shuffle      func(n int, swap func(i, j int))
}

// EngineConfig holds the engine dependencies. Shuffle is swappable for
// deterministic tests; when nil, seed selection takes candidates in order.
type EngineConfig struct {
	Gateway      *gateway.Gateway
	Client       *spotify.Client
	Library      *library.Service
	Materializer *Materializer
	Logger       zerolog.Logger
	Shuffle      func(n int, swap func(i, j int))
}

// NewEngine creates a recommendation engine.
func NewEngine(cfg EngineConfig) *Engine {
	return &Engine{
		gw:           cfg.Gateway,
		client:       cfg.Client,
		lib:          cfg.Library,
		materializer: cfg.Materializer,
		logger:       cfg.Logger,
		shuffle:      cfg.Shuffle,
	}
}

// Build collects candidate tracks for every selected condition, samples seeds,
// requests recommendations and materializes them into a new private playlist.
// Individual condition fetch failures are logged and skipped; only an empty
// overall candidate pool is terminal.
func (e *Engine) Build(ctx context.Context, userID string, opts Options) (*spotify.Playlist, error) {
	if opts.none() {
		return nil, errors.NewNoOptionsSelectedError()
	}

	candidates, playingID := e.collectCandidates(ctx, userID, opts)
	if len(candidates) == 0 && opts.Genre == "" {
		return nil, errors.NewNoSongsFoundError()
	}

	params := spotify.RecommendationParams{
		SeedTracks: e.sampleSeeds(candidates, playingID),
		Limit:      recommendationLimit,
		Targets:    opts.Targets,
	}

	if opts.UseFeatureBounds && len(candidates) > 0 {
		features, err := e.lib.AudioFeaturesForAll(ctx, userID, candidates)
		if err != nil {
			return nil, err
		}
		params.MinFeatures, params.MaxFeatures = featureEnvelope(features)
	}

	if opts.Genre != "" {
		params.SeedGenres = []string{opts.Genre}
	} else {
		// Upstream caps combined seeds at five, so the track seeds leave room
		// for the derived genres. Seeding with tracks alone still works when
		// the top-genre lookup fails.
		genres, err := e.lib.TopGenres(ctx, userID, fallbackGenreCount)
		if err != nil {
			e.logger.Warn().Err(err).Str("userId", userID).Msg("top-genre fallback failed, seeding with tracks only")
		} else {
			params.SeedGenres = genres
		}
	}

	data, err := e.gw.Invoke(ctx, userID, e.client.RecommendationsOp(params))
	if err != nil {
		return nil, err
	}
	recommended, err := spotify.Decode[spotify.RecommendationsResponse](data)
	if err != nil {
		return nil, err
	}
	if len(recommended.Tracks) == 0 {
		return nil, errors.NewNoSongsFoundError()
	}

	uris := make([]string, 0, len(recommended.Tracks))
	for _, track := range recommended.Tracks {
		uris = append(uris, trackURI(track))
	}

	return e.createAndFill(ctx, userID, "Groovebot Recommendations", describeOptions(opts), uris)
}

// collectCandidates gathers track ids per selected condition, best effort.
// The second return value is the currently-playing id when that condition is
// selected and something is playing; it is always part of the candidate pool.
func (e *Engine) collectCandidates(ctx context.Context, userID string, opts Options) ([]string, string) {
	var candidates []string
	var playingID string

	add := func(condition string, ids []string, err error) {
		if err != nil {
			e.logger.Warn().Err(err).Str("userId", userID).Str("condition", condition).Msg("candidate fetch failed, skipping condition")
			return
		}
		candidates = append(candidates, ids...)
	}

	if opts.RecentlyPlayed {
		ids, err := e.lib.RecentTrackIDs(ctx, userID, candidateLimit)
		add("recently-played", ids, err)
	}
	if opts.MostPlayed {
		ids, err := e.lib.TopTrackIDs(ctx, userID, candidateLimit)
		add("most-played", ids, err)
	}
	if opts.LikedTracks {
		ids, err := e.lib.SavedTrackIDs(ctx, userID, candidateLimit)
		add("liked-tracks", ids, err)
	}
	if opts.CurrentlyPlaying {
		id, err := e.lib.CurrentlyPlayingID(ctx, userID)
		if err != nil {
			e.logger.Warn().Err(err).Str("userId", userID).Msg("currently-playing fetch failed, skipping condition")
		} else if id != "" {
			playingID = id
			candidates = append(candidates, id)
		}
	}

	return dedupe(candidates), playingID
}

// sampleSeeds picks seedCount track ids uniformly without replacement. The
// currently-playing id, when present, is always one of the seeds.
func (e *Engine) sampleSeeds(candidates []string, playingID string) []string {
	pool := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if id != playingID {
			pool = append(pool, id)
		}
	}

	if e.shuffle != nil {
		e.shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	}

	want := seedCount
	if playingID != "" {
		want--
	}
	if want > len(pool) {
		want = len(pool)
	}

	seeds := make([]string, 0, seedCount)
	if playingID != "" {
		seeds = append(seeds, playingID)
	}
	return append(seeds, pool[:want]...)
}

// createAndFill creates a private playlist under the user's platform account
// and materializes the given URIs into it.
func (e *Engine) createAndFill(ctx context.Context, userID, name, description string, uris []string) (*spotify.Playlist, error) {
	data, err := e.gw.InvokeCached(ctx, userID, e.client.ProfileOp())
	if err != nil {
		return nil, err
	}
	profile, err := spotify.Decode[spotify.User](data)
	if err != nil {
		return nil, err
	}

	data, err = e.gw.Invoke(ctx, userID, e.client.CreatePlaylistOp(profile.ID, name, description))
	if err != nil {
		return nil, err
	}
	created, err := spotify.Decode[spotify.Playlist](data)
	if err != nil {
		return nil, err
	}

	e.logger.Info().Str("userId", userID).Str("playlistId", created.ID).Int("tracks", len(uris)).Msg("materializing playlist")
	return e.materializer.AttachAndFetch(ctx, userID, created.ID, uris)
}

// featureEnvelope computes the per-feature [min, max] bounds over the
// candidate set.
func featureEnvelope(features []spotify.AudioFeature) (*models.AudioFeatures, *models.AudioFeatures) {
	if len(features) == 0 {
		return nil, nil
	}

	min := features[0].AudioFeatures
	max := features[0].AudioFeatures
	for _, f := range features[1:] {
		bound(&min.Danceability, &max.Danceability, f.Danceability)
		bound(&min.Energy, &max.Energy, f.Energy)
		bound(&min.Loudness, &max.Loudness, f.Loudness)
		bound(&min.Speechiness, &max.Speechiness, f.Speechiness)
		bound(&min.Acousticness, &max.Acousticness, f.Acousticness)
		bound(&min.Instrumentalness, &max.Instrumentalness, f.Instrumentalness)
		bound(&min.Liveness, &max.Liveness, f.Liveness)
		bound(&min.Valence, &max.Valence, f.Valence)
		bound(&min.Tempo, &max.Tempo, f.Tempo)
	}
	return &min, &max
}

func bound(min, max *float64, v float64) {
	if v < *min {
		*min = v
	}
	if v > *max {
		*max = v
	}
}

// describeOptions builds the playlist description enumerating which
// conditions contributed.
func describeOptions(opts Options) string {
	var parts []string
	if opts.RecentlyPlayed {
		parts = append(parts, "recently played")
	}
	if opts.MostPlayed {
		parts = append(parts, "most played")
	}
	if opts.LikedTracks {
		parts = append(parts, "liked tracks")
	}
	if opts.CurrentlyPlaying {
		parts = append(parts, "currently playing")
	}
	if opts.Genre != "" {
		parts = append(parts, "genre "+opts.Genre)
	}
	return fmt.Sprintf("Recommended based on: %s.", strings.Join(parts, ", "))
}

func trackURI(track spotify.Track) string {
	if track.URI != "" {
		return track.URI
	}
	return "spotify:track:" + track.ID
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

package library_test

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groovebot/groove-service/internal/core/userdb"
	"github.com/groovebot/groove-service/internal/domain/models"
	"github.com/groovebot/groove-service/internal/services/gateway"
	"github.com/groovebot/groove-service/internal/services/library"
	"github.com/groovebot/groove-service/internal/services/spotify"
)

const testUser = "user-1"

// memStore is a minimal in-memory credential store holding one valid user.
type memStore struct {
	mu    sync.Mutex
	creds map[string]*models.UserCredential
}

func newMemStore() *memStore {
	now := time.Now().UTC()
	return &memStore{creds: map[string]*models.UserCredential{
		testUser: {
			ExternalID:   testUser,
			AccessToken:  "access",
			RefreshToken: "refresh",
			ExpiresIn:    3600,
			UpdatedAt:    now,
			CreatedAt:    now,
		},
	}}
}

func (s *memStore) GetByExternalID(_ context.Context, externalID string) (*models.UserCredential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.creds[externalID]
	if !ok {
		return nil, userdb.ErrNotFound
	}
	copied := *cred
	return &copied, nil
}

func (s *memStore) Upsert(_ context.Context, cred *models.UserCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *cred
	s.creds[cred.ExternalID] = &copied
	return nil
}

func (s *memStore) UpdateTokens(_ context.Context, externalID, accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.creds[externalID]
	if !ok {
		return userdb.ErrNotFound
	}
	cred.AccessToken = accessToken
	cred.RefreshToken = refreshToken
	cred.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *memStore) Delete(_ context.Context, externalID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.creds[externalID]
	delete(s.creds, externalID)
	return ok, nil
}

func (s *memStore) Ping(context.Context) error { return nil }
func (s *memStore) Close() error               { return nil }

type staticRefresher struct{}

func (staticRefresher) Refresh(context.Context, string) (string, string, error) {
	return "access", "refresh", nil
}

// memMusicStore is an in-memory metadata store.
type memMusicStore struct {
	mu      sync.Mutex
	artists map[string]*models.Artist
	liked   []*models.LikedTrack
}

func newMemMusicStore() *memMusicStore {
	return &memMusicStore{artists: make(map[string]*models.Artist)}
}

func (s *memMusicStore) GetArtists(_ context.Context, ids []string) (map[string]*models.Artist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*models.Artist)
	for _, id := range ids {
		if artist, ok := s.artists[id]; ok {
			copied := *artist
			out[id] = &copied
		}
	}
	return out, nil
}

func (s *memMusicStore) SaveArtists(_ context.Context, artists []*models.Artist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, artist := range artists {
		copied := *artist
		s.artists[artist.ID] = &copied
	}
	return nil
}

func (s *memMusicStore) SaveTracks(context.Context, []*models.Track) error { return nil }

func (s *memMusicStore) GetLikedTracks(_ context.Context, userID string, year, month int) ([]*models.LikedTrack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.LikedTrack
	for _, entry := range s.liked {
		if entry.UserID == userID && entry.Year == year && entry.Month == month {
			copied := *entry
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *memMusicStore) SaveLikedTracks(_ context.Context, liked []*models.LikedTrack) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liked = append(s.liked, liked...)
	return nil
}

func (s *memMusicStore) DeleteUserData(context.Context, string) error { return nil }
func (s *memMusicStore) EnsureIndexes(context.Context) error          { return nil }
func (s *memMusicStore) Ping(context.Context) error                   { return nil }
func (s *memMusicStore) Close(context.Context) error                  { return nil }

// newTestService wires a library service against an httptest upstream.
func newTestService(t *testing.T, handler http.Handler, store *memMusicStore) *library.Service {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := spotify.NewClient(spotify.Config{
		BaseURL:           srv.URL,
		RequestsPerSecond: 10_000,
		Burst:             10_000,
	})

	gw := gateway.New(gateway.Config{
		Store:     newMemStore(),
		Refresher: staticRefresher{},
	})

	cfg := library.Config{
		Gateway: gw,
		Client:  client,
	}
	if store != nil {
		cfg.Store = store
	}
	return library.NewService(cfg)
}

// savedTracksHandler serves /me/tracks pages sliced from a fixture list.
func savedTracksHandler(t *testing.T, items []spotify.SavedTrack, hits *int) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/me/tracks", r.URL.Path)
		*hits++

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

		end := offset + limit
		if end > len(items) {
			end = len(items)
		}
		page := spotify.SavedTrackPage{Total: len(items)}
		if offset < len(items) {
			page.Items = items[offset:end]
		}

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(page))
	})
}

func savedAt(id, addedAt string) spotify.SavedTrack {
	return spotify.SavedTrack{
		AddedAt: addedAt,
		Track:   spotify.Track{ID: id, Name: "track " + id},
	}
}

func TestLikedFromMonth_KeepsOnlyTargetMonth(t *testing.T) {
	items := []spotify.SavedTrack{
		savedAt("t1", "2024-04-02T10:00:00Z"),
		savedAt("t2", "2024-03-15T08:30:00Z"),
		savedAt("t3", "2024-03-01T00:00:00Z"),
		savedAt("t4", "2024-02-20T23:59:59Z"),
	}
	hits := 0
	svc := newTestService(t, savedTracksHandler(t, items, &hits), nil)

	liked, err := svc.LikedFromMonth(context.Background(), testUser, 3, 2024)
	require.NoError(t, err)

	require.Len(t, liked, 2)
	assert.Equal(t, "t2", liked[0].Track.ID)
	assert.Equal(t, "t3", liked[1].Track.ID)
}

func TestLikedFromMonth_StopsBeforeScanningFullHistory(t *testing.T) {
	// Descending history: 50 April items, 30 March items, then hundreds of
	// older items the scan must never touch.
	var items []spotify.SavedTrack
	for i := 0; i < 50; i++ {
		items = append(items, savedAt(fmt.Sprintf("apr-%d", i), "2024-04-10T12:00:00Z"))
	}
	for i := 0; i < 30; i++ {
		items = append(items, savedAt(fmt.Sprintf("mar-%d", i), "2024-03-10T12:00:00Z"))
	}
	for i := 0; i < 420; i++ {
		items = append(items, savedAt(fmt.Sprintf("feb-%d", i), "2024-02-10T12:00:00Z"))
	}

	hits := 0
	svc := newTestService(t, savedTracksHandler(t, items, &hits), nil)

	liked, err := svc.LikedFromMonth(context.Background(), testUser, 3, 2024)
	require.NoError(t, err)

	assert.Len(t, liked, 30)
	assert.Equal(t, 3, hits, "stops on the first page that predates the month")
}

func TestLikedFromMonth_MonthStraddlesPageBoundary(t *testing.T) {
	// The April-to-March boundary falls inside page one; the scan must keep
	// walking until March itself is exhausted.
	var items []spotify.SavedTrack
	for i := 0; i < 40; i++ {
		items = append(items, savedAt(fmt.Sprintf("apr-%d", i), "2024-04-10T12:00:00Z"))
	}
	for i := 0; i < 60; i++ {
		items = append(items, savedAt(fmt.Sprintf("mar-%d", i), "2024-03-10T12:00:00Z"))
	}
	for i := 0; i < 100; i++ {
		items = append(items, savedAt(fmt.Sprintf("feb-%d", i), "2024-02-10T12:00:00Z"))
	}

	hits := 0
	svc := newTestService(t, savedTracksHandler(t, items, &hits), nil)

	liked, err := svc.LikedFromMonth(context.Background(), testUser, 3, 2024)
	require.NoError(t, err)

	assert.Len(t, liked, 60)
	assert.Equal(t, 3, hits)
}

func TestLikedTrackIDs_PastMonthServedFromStore(t *testing.T) {
	store := newMemMusicStore()
	require.NoError(t, store.SaveLikedTracks(context.Background(), []*models.LikedTrack{
		{UserID: testUser, TrackID: "t1", Year: 2023, Month: 5},
		{UserID: testUser, TrackID: "t2", Year: 2023, Month: 5},
	}))

	hits := 0
	svc := newTestService(t, savedTracksHandler(t, nil, &hits), store)

	ids, err := svc.LikedTrackIDs(context.Background(), testUser, 5, 2023)
	require.NoError(t, err)

	assert.Equal(t, []string{"t1", "t2"}, ids)
	assert.Zero(t, hits, "stored past month never reaches upstream")
}

func TestAudioFeaturesForAll_BatchesOfOneHundred(t *testing.T) {
	ids := make([]string, 230)
	for i := range ids {
		ids[i] = fmt.Sprintf("t%d", i)
	}

	var batchSizes []int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/audio-features", r.URL.Path)
		batch := r.URL.Query().Get("ids")

		var features []*spotify.AudioFeature
		for _, id := range splitIDs(batch) {
			features = append(features, &spotify.AudioFeature{ID: id})
		}
		batchSizes = append(batchSizes, len(features))

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(spotify.AudioFeaturesResponse{AudioFeatures: features}))
	})

	svc := newTestService(t, handler, nil)

	features, err := svc.AudioFeaturesForAll(context.Background(), testUser, ids)
	require.NoError(t, err)

	assert.Len(t, features, 230)
	assert.Equal(t, []int{100, 100, 30}, batchSizes)
}

func TestTracksByGenre_StopsAtMatchThreshold(t *testing.T) {
	// 200 top tracks; rock matches are sparse enough that the scan needs a
	// second page to clear the threshold.
	topHits := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/me/top/tracks":
			topHits++
			offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
			limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

			page := spotify.TrackPage{Total: 200}
			for i := 0; i < limit && offset+i < 200; i++ {
				n := offset + i
				artist := "a-pop"
				if n%15 == 0 {
					artist = "a-rock"
				}
				page.Items = append(page.Items, spotify.Track{
					ID:      fmt.Sprintf("t%d", n),
					Artists: []spotify.Artist{{ID: artist}},
				})
			}
			require.NoError(t, json.NewEncoder(w).Encode(page))
		case "/artists":
			resp := spotify.ArtistsResponse{}
			for _, id := range splitIDs(r.URL.Query().Get("ids")) {
				genres := []string{"pop"}
				if id == "a-rock" {
					genres = []string{"rock", "classic rock"}
				}
				resp.Artists = append(resp.Artists, spotify.Artist{ID: id, Name: id, Genres: genres})
			}
			require.NoError(t, json.NewEncoder(w).Encode(resp))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	svc := newTestService(t, handler, nil)

	tracks, err := svc.TracksByGenre(context.Background(), testUser, "rock", library.SourceTop, false)
	require.NoError(t, err)

	// Matches at offsets 0,15,30,45 on page one, 60,75,90 on page two; the
	// threshold clears within page two, so page three is never fetched.
	assert.Len(t, tracks, 7)
	for _, track := range tracks {
		assert.Equal(t, "a-rock", track.PrimaryArtistID())
	}
	assert.Equal(t, 2, topHits)
}

func TestTracksByGenre_ConcurrentRandomizedScans(t *testing.T) {
	// Randomized scans share the process-wide locked source the way the
	// server wires them, so parallel requests must stay race-free.
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/me/top/tracks":
			offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
			limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

			page := spotify.TrackPage{Total: 400}
			for i := 0; i < limit && offset+i < 400; i++ {
				page.Items = append(page.Items, spotify.Track{
					ID:      fmt.Sprintf("t%d", offset+i),
					Artists: []spotify.Artist{{ID: "a-rock"}},
				})
			}
			_ = json.NewEncoder(w).Encode(page)
		case "/artists":
			resp := spotify.ArtistsResponse{}
			for _, id := range splitIDs(r.URL.Query().Get("ids")) {
				resp.Artists = append(resp.Artists, spotify.Artist{ID: id, Genres: []string{"rock"}})
			}
			_ = json.NewEncoder(w).Encode(resp)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc := library.NewService(library.Config{
		Gateway: gateway.New(gateway.Config{
			Store:     newMemStore(),
			Refresher: staticRefresher{},
		}),
		Client: spotify.NewClient(spotify.Config{
			BaseURL:           srv.URL,
			RequestsPerSecond: 10_000,
			Burst:             10_000,
		}),
		RandInt: rand.Intn,
	})

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracks, err := svc.TracksByGenre(context.Background(), testUser, "rock", library.SourceTop, true)
			if err == nil && len(tracks) < 5 {
				err = fmt.Errorf("expected a full page of matches, got %d", len(tracks))
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestResolveArtistGenres_PrefersStoreOverUpstream(t *testing.T) {
	store := newMemMusicStore()
	require.NoError(t, store.SaveArtists(context.Background(), []*models.Artist{
		{ID: "a1", Name: "Stored", Genres: []string{"jazz"}},
	}))

	upstreamHits := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/artists", r.URL.Path)
		upstreamHits++
		resp := spotify.ArtistsResponse{}
		for _, id := range splitIDs(r.URL.Query().Get("ids")) {
			resp.Artists = append(resp.Artists, spotify.Artist{ID: id, Genres: []string{"metal"}})
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	svc := newTestService(t, handler, store)

	genres, err := svc.ResolveArtistGenres(context.Background(), testUser, []string{"a1", "a2"})
	require.NoError(t, err)

	assert.Equal(t, []string{"jazz"}, genres["a1"])
	assert.Equal(t, []string{"metal"}, genres["a2"])
	assert.Equal(t, 1, upstreamHits, "only the unresolved id reaches upstream")

	// The upstream answer was written back to the store.
	stored, err := store.GetArtists(context.Background(), []string{"a2"})
	require.NoError(t, err)
	require.Contains(t, stored, "a2")
	assert.Equal(t, []string{"metal"}, stored["a2"].Genres)
}

func TestTopGenres_RanksByFrequency(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/me/top/artists", r.URL.Path)
		page := spotify.ArtistPage{
			Total: 4,
			Items: []spotify.Artist{
				{ID: "a1", Genres: []string{"rock", "indie"}},
				{ID: "a2", Genres: []string{"rock"}},
				{ID: "a3", Genres: []string{"rock", "indie"}},
				{ID: "a4", Genres: []string{"jazz"}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(page))
	})

	svc := newTestService(t, handler, nil)

	genres, err := svc.TopGenres(context.Background(), testUser, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"rock", "indie"}, genres)
}

func splitIDs(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, ",")
}

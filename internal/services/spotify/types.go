// Spotify Web API wire types.
//
// Response shapes based on https://developer.spotify.com/documentation/web-api/reference/
package spotify

import "github.com/groovebot/groove-service/internal/domain/models"

type followers struct {
	Total int `json:"total"`
}

// User represents a Spotify user profile.
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Country     string    `json:"country"`
	Product     string    `json:"product"`
	Followers   followers `json:"followers"`
	Images      []Image   `json:"images"`
}

// Image represents an image resource.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// Track represents a Spotify track.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []Artist `json:"artists"`
	Album      Album    `json:"album"`
	DurationMS int      `json:"duration_ms"`
	Explicit   bool     `json:"explicit"`
	Popularity int      `json:"popularity"`
	URI        string   `json:"uri"`
}

// PrimaryArtistID returns the id of the track's first listed artist.
func (t Track) PrimaryArtistID() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0].ID
}

// Artist represents a Spotify artist.
type Artist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
	Images []Image  `json:"images"`
	URI    string   `json:"uri"`
}

// Album represents a Spotify album.
type Album struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Artists     []Artist `json:"artists"`
	ReleaseDate string   `json:"release_date"`
	TotalTracks int      `json:"total_tracks"`
	Images      []Image  `json:"images"`
	URI         string   `json:"uri"`
}

// SavedTrack represents a track saved in the user's library.
type SavedTrack struct {
	AddedAt string `json:"added_at"`
	Track   Track  `json:"track"`
}

// SavedTrackPage represents a paginated response of saved tracks, ordered
// most-recently-added first.
type SavedTrackPage struct {
	Items  []SavedTrack `json:"items"`
	Total  int          `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
	Next   *string      `json:"next"`
}

// TrackPage represents a paginated response of tracks.
type TrackPage struct {
	Items  []Track `json:"items"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
	Next   *string `json:"next"`
}

// ArtistPage represents a paginated response of artists.
type ArtistPage struct {
	Items  []Artist `json:"items"`
	Total  int      `json:"total"`
	Limit  int      `json:"limit"`
	Offset int      `json:"offset"`
	Next   *string  `json:"next"`
}

// PlayHistoryItem represents one entry of the recently-played listing.
type PlayHistoryItem struct {
	Track    Track  `json:"track"`
	PlayedAt string `json:"played_at"`
}

// RecentlyPlayedPage represents the recently-played listing.
type RecentlyPlayedPage struct {
	Items []PlayHistoryItem `json:"items"`
}

// CurrentlyPlaying represents the currently-playing state. Item is nil when
// nothing is playing.
type CurrentlyPlaying struct {
	Item      *Track `json:"item"`
	IsPlaying bool   `json:"is_playing"`
}

// ArtistsResponse wraps a several-artists lookup.
type ArtistsResponse struct {
	Artists []Artist `json:"artists"`
}

// AudioFeature is the per-track audio feature object.
type AudioFeature struct {
	ID                   string `json:"id"`
	models.AudioFeatures        // danceability..tempo
}

// AudioFeaturesResponse wraps a batched audio-features lookup. Entries can be
// null for unknown ids.
type AudioFeaturesResponse struct {
	AudioFeatures []*AudioFeature `json:"audio_features"`
}

// RecommendationsResponse wraps a recommendations call.
type RecommendationsResponse struct {
	Tracks []Track `json:"tracks"`
}

// PlaylistTrack represents a track within a playlist context.
type PlaylistTrack struct {
	AddedAt string `json:"added_at"`
	Track   Track  `json:"track"`
}

type playlistTracks struct {
	Total int             `json:"total"`
	Items []PlaylistTrack `json:"items"`
}

// PlaylistOwner identifies a playlist's owning user.
type PlaylistOwner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Playlist represents a Spotify playlist.
type Playlist struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Owner         PlaylistOwner  `json:"owner"`
	Public        bool           `json:"public"`
	Collaborative bool           `json:"collaborative"`
	Tracks        playlistTracks `json:"tracks"`
	Images        []Image        `json:"images"`
	URI           string         `json:"uri"`
}

// PlaylistPage represents a paginated response of the user's playlists.
type PlaylistPage struct {
	Items  []Playlist `json:"items"`
	Total  int        `json:"total"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
	Next   *string    `json:"next"`
}

// SnapshotResponse is returned by playlist mutation calls.
type SnapshotResponse struct {
	SnapshotID string `json:"snapshot_id"`
}

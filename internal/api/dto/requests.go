// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// AudioFeaturesRequest represents the request body for a batched
// audio-features lookup.
type AudioFeaturesRequest struct {
	TrackIDs []string `json:"trackIds" binding:"required,min=1"`
}

// MonthlyPlaylistRequest represents the request body for building a playlist
// from the tracks liked in one month.
type MonthlyPlaylistRequest struct {
	Month int `json:"month" binding:"required,min=1,max=12"`
	Year  int `json:"year" binding:"required,min=2006"`
}

// FilteredPlaylistRequest represents the request body for building a
// genre-filtered playlist.
type FilteredPlaylistRequest struct {
	Genre     string `json:"genre" binding:"required"`
	Source    string `json:"source" binding:"omitempty,oneof=top recent saved"`
	Randomize bool   `json:"randomize"`
}

// RecommendationRequest represents the request body for building a
// recommendation playlist.
type RecommendationRequest struct {
	RecentlyPlayed   bool               `json:"recentlyPlayed"`
	MostPlayed       bool               `json:"mostPlayed"`
	LikedTracks      bool               `json:"likedTracks"`
	CurrentlyPlaying bool               `json:"currentlyPlaying"`
	Genre            string             `json:"genre"`
	UseFeatureBounds bool               `json:"useFeatureBounds"`
	Targets          map[string]float64 `json:"targets"`
}

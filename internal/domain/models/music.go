package models

import "time"

// AudioFeatures holds the nine numeric track attributes used for
// recommendation bounding.
type AudioFeatures struct {
	Danceability     float64 `json:"danceability" bson:"danceability"`
	Energy           float64 `json:"energy" bson:"energy"`
	Loudness         float64 `json:"loudness" bson:"loudness"`
	Speechiness      float64 `json:"speechiness" bson:"speechiness"`
	Acousticness     float64 `json:"acousticness" bson:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness" bson:"instrumentalness"`
	Liveness         float64 `json:"liveness" bson:"liveness"`
	Valence          float64 `json:"valence" bson:"valence"`
	Tempo            float64 `json:"tempo" bson:"tempo"`
}

// Artist is the persisted artist record used by the genre-resolution cache.
type Artist struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Genres    []string  `json:"genres" bson:"genres"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Track is the persisted track record for the liked-track cache path.
type Track struct {
	ID        string        `json:"id" bson:"_id"`
	Name      string        `json:"name" bson:"name"`
	ArtistID  string        `json:"artistId" bson:"artistId"`
	Genre     string        `json:"genre,omitempty" bson:"genre,omitempty"`
	Features  AudioFeatures `json:"features" bson:"features"`
	UpdatedAt time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// LikedTrack records that a user saved a track at a point in time. Year and
// month are denormalized so month scans can be answered from the store.
type LikedTrack struct {
	UserID  string    `json:"userId" bson:"userId"`
	TrackID string    `json:"trackId" bson:"trackId"`
	AddedAt time.Time `json:"addedAt" bson:"addedAt"`
	Year    int       `json:"year" bson:"year"`
	Month   int       `json:"month" bson:"month"`
}

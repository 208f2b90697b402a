// Package musicdb defines the persistent music-metadata store interface.
//
// The store is a local cache in front of the upstream platform: artist genre
// tags for the filtered-discovery path and liked-track month scans for repeat
// queries. It is never authoritative; a miss always falls through to upstream.
package musicdb

import (
	"context"

	"github.com/groovebot/groove-service/internal/domain/models"
)

// Store provides persistence for cached music metadata.
type Store interface {
	// GetArtists returns the stored artists among the given ids, keyed by id.
	// Ids with no stored record are simply absent from the result.
	GetArtists(ctx context.Context, ids []string) (map[string]*models.Artist, error)

	// SaveArtists upserts artist records.
	SaveArtists(ctx context.Context, artists []*models.Artist) error

	// SaveTracks upserts track records.
	SaveTracks(ctx context.Context, tracks []*models.Track) error

	// GetLikedTracks returns the liked tracks recorded for a user in the
	// given month.
	GetLikedTracks(ctx context.Context, userID string, year, month int) ([]*models.LikedTrack, error)

	// SaveLikedTracks upserts liked-track records for a user.
	SaveLikedTracks(ctx context.Context, liked []*models.LikedTrack) error

	// DeleteUserData removes all records tied to a user.
	DeleteUserData(ctx context.Context, userID string) error

	// EnsureIndexes creates the indexes the store depends on.
	EnsureIndexes(ctx context.Context) error

	// Ping checks the backing store connection.
	Ping(ctx context.Context) error

	// Close closes the backing store connection.
	Close(ctx context.Context) error
}

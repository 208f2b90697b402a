// Package mongodb provides the collection operations for the metadata store.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/groovebot/groove-service/internal/domain/models"
)

// GetArtists returns the stored artists among the given ids, keyed by id.
func (s *Store) GetArtists(ctx context.Context, ids []string) (map[string]*models.Artist, error) {
	if len(ids) == 0 {
		return map[string]*models.Artist{}, nil
	}

	cursor, err := s.artists.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find artists: %w", err)
	}
	defer cursor.Close(ctx)

	found := make(map[string]*models.Artist)
	for cursor.Next(ctx) {
		var artist models.Artist
		if err := cursor.Decode(&artist); err != nil {
			return nil, fmt.Errorf("failed to decode artist: %w", err)
		}
		found[artist.ID] = &artist
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("artist cursor failed: %w", err)
	}

	return found, nil
}

// SaveArtists upserts artist records.
func (s *Store) SaveArtists(ctx context.Context, artists []*models.Artist) error {
	if len(artists) == 0 {
		return nil
	}

	writes := make([]mongo.WriteModel, 0, len(artists))
	now := time.Now().UTC()
	for _, artist := range artists {
		artist.UpdatedAt = now
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": artist.ID}).
			SetReplacement(artist).
			SetUpsert(true))
	}

	if _, err := s.artists.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("failed to upsert artists: %w", err)
	}
	return nil
}

// SaveTracks upserts track records.
func (s *Store) SaveTracks(ctx context.Context, tracks []*models.Track) error {
	if len(tracks) == 0 {
		return nil
	}

	writes := make([]mongo.WriteModel, 0, len(tracks))
	now := time.Now().UTC()
	for _, track := range tracks {
		track.UpdatedAt = now
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": track.ID}).
			SetReplacement(track).
			SetUpsert(true))
	}

	if _, err := s.tracks.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("failed to upsert tracks: %w", err)
	}
	return nil
}

// GetLikedTracks returns the liked tracks recorded for a user in the given month.
func (s *Store) GetLikedTracks(ctx context.Context, userID string, year, month int) ([]*models.LikedTrack, error) {
	filter := bson.M{"userId": userID, "year": year, "month": month}

	cursor, err := s.likedTracks.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "addedAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find liked tracks: %w", err)
	}
	defer cursor.Close(ctx)

	var liked []*models.LikedTrack
	for cursor.Next(ctx) {
		var entry models.LikedTrack
		if err := cursor.Decode(&entry); err != nil {
			return nil, fmt.Errorf("failed to decode liked track: %w", err)
		}
		liked = append(liked, &entry)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("liked track cursor failed: %w", err)
	}

	return liked, nil
}

// SaveLikedTracks upserts liked-track records for a user.
func (s *Store) SaveLikedTracks(ctx context.Context, liked []*models.LikedTrack) error {
	if len(liked) == 0 {
		return nil
	}

	writes := make([]mongo.WriteModel, 0, len(liked))
	for _, entry := range liked {
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"userId": entry.UserID, "trackId": entry.TrackID}).
			SetReplacement(entry).
			SetUpsert(true))
	}

	if _, err := s.likedTracks.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("failed to upsert liked tracks: %w", err)
	}
	return nil
}

// DeleteUserData removes all liked-track records tied to a user.
func (s *Store) DeleteUserData(ctx context.Context, userID string) error {
	if _, err := s.likedTracks.DeleteMany(ctx, bson.M{"userId": userID}); err != nil {
		return fmt.Errorf("failed to delete liked tracks for user: %w", err)
	}
	return nil
}

// EnsureIndexes creates the indexes the store depends on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	likedIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "trackId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "year", Value: 1}, {Key: "month", Value: 1}},
		},
	}

	if _, err := s.likedTracks.Indexes().CreateMany(ctx, likedIndexes); err != nil {
		return fmt.Errorf("failed to create liked track indexes: %w", err)
	}
	return nil
}

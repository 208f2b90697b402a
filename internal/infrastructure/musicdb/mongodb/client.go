// Package mongodb provides the MongoDB music-metadata store implementation.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// ArtistsCollection is the name of the artists collection.
	ArtistsCollection = "artists"
	// TracksCollection is the name of the tracks collection.
	TracksCollection = "tracks"
	// LikedTracksCollection is the name of the liked tracks collection.
	LikedTracksCollection = "liked_tracks"
)

// Store implements the musicdb.Store interface for MongoDB.
type Store struct {
	client      *mongo.Client
	artists     *mongo.Collection
	tracks      *mongo.Collection
	likedTracks *mongo.Collection
}

// ClientConfig holds MongoDB connection configuration.
type ClientConfig struct {
	URI          string
	DatabaseName string
}

// NewStore creates a new MongoDB metadata store.
func NewStore(ctx context.Context, config *ClientConfig) (*Store, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.URI == "" {
		return nil, fmt.Errorf("mongodb URI is required")
	}
	if config.DatabaseName == "" {
		return nil, fmt.Errorf("database name is required")
	}

	clientOpts := options.Client().ApplyURI(config.URI)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(config.DatabaseName)

	return &Store{
		client:      client,
		artists:     db.Collection(ArtistsCollection),
		tracks:      db.Collection(TracksCollection),
		likedTracks: db.Collection(LikedTracksCollection),
	}, nil
}

// Ping verifies the connection to MongoDB.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongodb ping failed: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from mongodb: %w", err)
	}
	return nil
}

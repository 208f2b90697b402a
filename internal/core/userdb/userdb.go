// Package userdb defines the credential-store interface.
//
// The store owns UserCredential rows exclusively; the call gateway borrows a
// credential per call and never persists it itself.
package userdb

import (
	"context"
	"errors"

	"github.com/groovebot/groove-service/internal/domain/models"
)

// ErrNotFound signals that no credential row exists for the external id.
var ErrNotFound = errors.New("credential not found")

// Store provides keyed persistence for per-user OAuth credentials.
type Store interface {
	// GetByExternalID returns the credential for the external id, or
	// ErrNotFound if the user never authorized.
	GetByExternalID(ctx context.Context, externalID string) (*models.UserCredential, error)

	// Upsert creates or fully replaces the credential row for the external id.
	Upsert(ctx context.Context, cred *models.UserCredential) error

	// UpdateTokens atomically replaces the access/refresh token pair after a
	// successful refresh. The api token is left untouched.
	UpdateTokens(ctx context.Context, externalID, accessToken, refreshToken string) error

	// Delete removes the credential row. Returns false if it did not exist.
	Delete(ctx context.Context, externalID string) (bool, error)

	// Ping checks the backing store connection.
	Ping(ctx context.Context) error

	// Close closes the backing store connection.
	Close() error
}

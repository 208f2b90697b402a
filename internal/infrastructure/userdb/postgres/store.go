// Package postgres provides the Postgres-backed credential store.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/groovebot/groove-service/internal/core/userdb"
	"github.com/groovebot/groove-service/internal/domain/models"
	"github.com/groovebot/groove-service/internal/pkg/encryption"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	external_id   TEXT NOT NULL UNIQUE,
	access_token  TEXT NOT NULL,
	refresh_token TEXT NOT NULL,
	expires_in    INTEGER NOT NULL DEFAULT 3600,
	api_token     TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Store implements userdb.Store backed by Postgres. Access and refresh
// tokens are encrypted at rest; the api token is stored as-is because the
// auth middleware compares against it on every request.
type Store struct {
	db        *sql.DB
	encryptor encryption.Encryptor
}

// Open connects to Postgres using the pgx stdlib driver and ensures the
// users table exists.
func Open(ctx context.Context, dsn string, encryptor encryption.Encryptor) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure users table: %w", err)
	}

	return New(db, encryptor), nil
}

// New wraps an existing database handle.
func New(db *sql.DB, encryptor encryption.Encryptor) *Store {
	if encryptor == nil {
		encryptor = encryption.NewNoOpEncryptor()
	}
	return &Store{db: db, encryptor: encryptor}
}

// GetByExternalID returns the credential row for the external id.
func (s *Store) GetByExternalID(ctx context.Context, externalID string) (*models.UserCredential, error) {
	var (
		cred      models.UserCredential
		accessEnc string
		refresh   string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT external_id, access_token, refresh_token, expires_in, api_token, created_at, updated_at
		FROM users
		WHERE external_id = $1
	`, externalID).Scan(&cred.ExternalID, &accessEnc, &refresh, &cred.ExpiresIn, &cred.APIToken, &cred.CreatedAt, &cred.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, userdb.ErrNotFound
		}
		return nil, fmt.Errorf("lookup credential: %w", err)
	}

	if cred.AccessToken, err = s.encryptor.DecryptString(accessEnc); err != nil {
		return nil, fmt.Errorf("decrypt access token: %w", err)
	}
	if cred.RefreshToken, err = s.encryptor.DecryptString(refresh); err != nil {
		return nil, fmt.Errorf("decrypt refresh token: %w", err)
	}

	return &cred, nil
}

// Upsert creates or replaces the credential row for the external id.
func (s *Store) Upsert(ctx context.Context, cred *models.UserCredential) error {
	accessEnc, err := s.encryptor.EncryptString(cred.AccessToken)
	if err != nil {
		return fmt.Errorf("encrypt access token: %w", err)
	}
	refreshEnc, err := s.encryptor.EncryptString(cred.RefreshToken)
	if err != nil {
		return fmt.Errorf("encrypt refresh token: %w", err)
	}

	expiresIn := cred.ExpiresIn
	if expiresIn == 0 {
		expiresIn = int(time.Hour.Seconds())
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (external_id, access_token, refresh_token, expires_in, api_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		ON CONFLICT (external_id) DO UPDATE SET
			access_token  = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_in    = EXCLUDED.expires_in,
			api_token     = EXCLUDED.api_token,
			updated_at    = now()
	`, cred.ExternalID, accessEnc, refreshEnc, expiresIn, cred.APIToken)
	if err != nil {
		return fmt.Errorf("upsert credential: %w", err)
	}

	return nil
}

// UpdateTokens replaces the token pair in a single statement so concurrent
// refreshes can never interleave fields from two responses.
func (s *Store) UpdateTokens(ctx context.Context, externalID, accessToken, refreshToken string) error {
	accessEnc, err := s.encryptor.EncryptString(accessToken)
	if err != nil {
		return fmt.Errorf("encrypt access token: %w", err)
	}
	refreshEnc, err := s.encryptor.EncryptString(refreshToken)
	if err != nil {
		return fmt.Errorf("encrypt refresh token: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET access_token = $2, refresh_token = $3, updated_at = now()
		WHERE external_id = $1
	`, externalID, accessEnc, refreshEnc)
	if err != nil {
		return fmt.Errorf("update tokens: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return userdb.ErrNotFound
	}

	return nil
}

// Delete removes the credential row for the external id.
func (s *Store) Delete(ctx context.Context, externalID string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE external_id = $1`, externalID)
	if err != nil {
		return false, fmt.Errorf("delete credential: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete credential: %w", err)
	}
	return rows > 0, nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

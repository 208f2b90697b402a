// Package postgres_test provides unit tests for the Postgres credential store.
package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groovebot/groove-service/internal/core/userdb"
	"github.com/groovebot/groove-service/internal/domain/models"
	"github.com/groovebot/groove-service/internal/infrastructure/userdb/postgres"
)

func newStore(t *testing.T) (*postgres.Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return postgres.New(db, nil), mock
}

func credColumns() []string {
	return []string{"external_id", "access_token", "refresh_token", "expires_in", "api_token", "created_at", "updated_at"}
}

func TestGetByExternalID_Found(t *testing.T) {
	store, mock := newStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT external_id, access_token").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(credColumns()).
			AddRow("user-1", "access", "refresh", 3600, "api-token", now, now))

	cred, err := store.GetByExternalID(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, "user-1", cred.ExternalID)
	assert.Equal(t, "access", cred.AccessToken)
	assert.Equal(t, "refresh", cred.RefreshToken)
	assert.Equal(t, 3600, cred.ExpiresIn)
	assert.Equal(t, "api-token", cred.APIToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByExternalID_NotFound(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectQuery("SELECT external_id, access_token").
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows(credColumns()))

	_, err := store.GetByExternalID(context.Background(), "nobody")
	assert.ErrorIs(t, err, userdb.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("user-1", "access", "refresh", 3600, "api-token").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.Upsert(context.Background(), &models.UserCredential{
		ExternalID:   "user-1",
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresIn:    3600,
		APIToken:     "api-token",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTokens_SingleStatement(t *testing.T) {
	store, mock := newStore(t)

	// One UPDATE replaces both tokens so concurrent refreshes can never
	// interleave fields from two responses.
	mock.ExpectExec("UPDATE users").
		WithArgs("user-1", "new-access", "new-refresh").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.UpdateTokens(context.Background(), "user-1", "new-access", "new-refresh")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTokens_MissingRow(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectExec("UPDATE users").
		WithArgs("nobody", "a", "r").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.UpdateTokens(context.Background(), "nobody", "a", "r")
	assert.ErrorIs(t, err, userdb.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectExec("DELETE FROM users").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	deleted, err := store.Delete(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, deleted)

	mock.ExpectExec("DELETE FROM users").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err = store.Delete(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

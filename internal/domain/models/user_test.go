// Package models_test provides unit tests for the domain models.
package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/groovebot/groove-service/internal/domain/models"
)

func TestTokenExpired(t *testing.T) {
	updated := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	cred := &models.UserCredential{ExpiresIn: 3600, UpdatedAt: updated}

	assert.False(t, cred.TokenExpired(updated.Add(59*time.Minute)))
	assert.True(t, cred.TokenExpired(updated.Add(time.Hour)))
	assert.True(t, cred.TokenExpired(updated.Add(2*time.Hour)))
}

func TestTokenExpired_ZeroWindowDefaultsToAnHour(t *testing.T) {
	updated := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	cred := &models.UserCredential{UpdatedAt: updated}

	assert.False(t, cred.TokenExpired(updated.Add(30*time.Minute)))
	assert.True(t, cred.TokenExpired(updated.Add(61*time.Minute)))
}

// Package errors_test provides unit tests for the domain error types.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groovebot/groove-service/internal/domain/errors"
)

func TestUpstreamCallError_WrapsCause(t *testing.T) {
	cause := stderrors.New("status 500")
	err := errors.NewUpstreamCallError("top-tracks", cause)

	assert.Equal(t, errors.ErrCodeUpstreamCallFailed, err.Code)
	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus)
	assert.ErrorIs(t, err, cause)
}

func TestHasCode_ThroughWrapping(t *testing.T) {
	inner := errors.NewUserNotAuthenticatedError("user-1")
	wrapped := fmt.Errorf("handling request: %w", inner)

	assert.True(t, errors.HasCode(wrapped, errors.ErrCodeUserNotAuthenticated))
	assert.False(t, errors.HasCode(wrapped, errors.ErrCodeNoSongsFound))
}

func TestGetDomainError(t *testing.T) {
	domainErr, ok := errors.GetDomainError(errors.NewNoSongsFoundError())
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeNoSongsFound, domainErr.Code)

	_, ok = errors.GetDomainError(stderrors.New("plain"))
	assert.False(t, ok)
}

func TestIsExpectedResult(t *testing.T) {
	assert.True(t, errors.IsExpectedResult(errors.NewNoOptionsSelectedError()))
	assert.True(t, errors.IsExpectedResult(errors.NewNoSongsFoundError()))
	assert.False(t, errors.IsExpectedResult(errors.NewInternalError("boom", nil)))
}

func TestNoOptionsSelected_UserFacingMessage(t *testing.T) {
	err := errors.NewNoOptionsSelectedError()

	assert.Equal(t, "No options selected.", err.Message)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
}

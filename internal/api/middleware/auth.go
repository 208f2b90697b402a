// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/groovebot/groove-service/internal/core/userdb"
)

// apiTokenHeader carries the stable per-user secret issued at grant time.
const apiTokenHeader = "X-API-Token"

// AuthMiddleware authenticates inbound requests against the stored api token
// for the addressed user.
type AuthMiddleware struct {
	store userdb.Store
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(store userdb.Store) *AuthMiddleware {
	return &AuthMiddleware{store: store}
}

// Authenticate returns a gin middleware that compares the X-API-Token header
// against the credential stored for the :userId path parameter.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(apiTokenHeader)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": "missing api token",
			})
			return
		}

		userID := c.Param("userId")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":    "BAD_REQUEST",
				"message": "missing user id",
			})
			return
		}

		cred, err := m.store.GetByExternalID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, userdb.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"code":    "USER_NOT_AUTHENTICATED",
					"message": "user is not connected to the music platform",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "credential lookup failed",
			})
			return
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(cred.APIToken)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": "invalid api token",
			})
			return
		}

		c.Next()
	}
}

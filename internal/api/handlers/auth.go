package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/groovebot/groove-service/internal/api/dto"
	"github.com/groovebot/groove-service/internal/api/middleware"
	"github.com/groovebot/groove-service/internal/services/auth"
)

// AuthHandler handles the OAuth2 authorization flow endpoints.
type AuthHandler struct {
	auth *auth.Service
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *auth.Service) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login redirects the user to the platform's consent page. The externalId
// query parameter identifies the user and travels through the OAuth state.
func (h *AuthHandler) Login(c *gin.Context) {
	externalID := c.Query("externalId")
	if externalID == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    "BAD_REQUEST",
			Message: "externalId query parameter is required",
		})
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, h.auth.AuthURL(externalID))
}

// Callback completes the authorization-code exchange and returns the derived
// api token the caller must present on subsequent requests.
func (h *AuthHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	externalID := c.Query("state")
	if code == "" || externalID == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    "BAD_REQUEST",
			Message: "code and state query parameters are required",
		})
		return
	}

	grant, err := h.auth.HandleCallback(c.Request.Context(), externalID, code)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.GrantResponse{
		ExternalUserID: grant.ExternalID,
		APIToken:       grant.APIToken,
	})
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/groovebot/groove-service/internal/api/dto"
	"github.com/groovebot/groove-service/internal/api/middleware"
	"github.com/groovebot/groove-service/internal/core/musicdb"
	"github.com/groovebot/groove-service/internal/core/userdb"
	"github.com/groovebot/groove-service/internal/services/gateway"
	"github.com/groovebot/groove-service/internal/services/library"
	"github.com/groovebot/groove-service/internal/services/spotify"
)

const jsonContentType = "application/json; charset=utf-8"

// UsersHandler proxies per-user read operations through the call gateway and
// handles user disconnect.
type UsersHandler struct {
	gw         *gateway.Gateway
	client     *spotify.Client
	lib        *library.Service
	userStore  userdb.Store
	musicStore musicdb.Store
}

// NewUsersHandler creates a new UsersHandler.
func NewUsersHandler(gw *gateway.Gateway, client *spotify.Client, lib *library.Service, userStore userdb.Store, musicStore musicdb.Store) *UsersHandler {
	return &UsersHandler{
		gw:         gw,
		client:     client,
		lib:        lib,
		userStore:  userStore,
		musicStore: musicStore,
	}
}

// Profile returns the user's platform profile.
func (h *UsersHandler) Profile(c *gin.Context) {
	h.proxyCached(c, h.client.ProfileOp())
}

// TopTracks returns a page of the user's most-played tracks.
func (h *UsersHandler) TopTracks(c *gin.Context) {
	limit, offset := pageWindow(c)
	h.proxyCached(c, h.client.TopTracksOp(limit, offset))
}

// RecentlyPlayed returns the user's recently played tracks.
func (h *UsersHandler) RecentlyPlayed(c *gin.Context) {
	limit, _ := pageWindow(c)
	h.proxyCached(c, h.client.RecentlyPlayedOp(limit))
}

// CurrentlyPlaying returns the user's currently playing track. Responds 204
// when nothing is playing. Never cached; the answer changes by the second.
func (h *UsersHandler) CurrentlyPlaying(c *gin.Context) {
	data, err := h.gw.Invoke(c.Request.Context(), c.Param("userId"), h.client.CurrentlyPlayingOp())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	if len(data) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	c.Data(http.StatusOK, jsonContentType, data)
}

// Playlists returns a page of the user's playlists.
func (h *UsersHandler) Playlists(c *gin.Context) {
	limit, offset := pageWindow(c)
	h.proxyCached(c, h.client.PlaylistsOp(limit, offset))
}

// AudioFeatures returns audio features for the requested track ids, fetched
// exhaustively in upstream-sized batches.
func (h *UsersHandler) AudioFeatures(c *gin.Context) {
	var req dto.AudioFeaturesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    "BAD_REQUEST",
			Message: "invalid request body",
			Details: err.Error(),
		})
		return
	}

	features, err := h.lib.AudioFeaturesForAll(c.Request.Context(), c.Param("userId"), req.TrackIDs)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"audioFeatures": features})
}

// Delete disconnects the user: the credential row, cached gateway results and
// stored listening metadata are all removed.
func (h *UsersHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.Param("userId")

	deleted, err := h.userStore.Delete(ctx, userID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Code:    "NOT_FOUND",
			Message: "user not found",
			Details: userID,
		})
		return
	}

	if err := h.gw.PurgeUser(ctx, userID); err != nil {
		logger := middleware.GetRequestLogger(c)
		logger.Warn().Err(err).Str("userId", userID).Msg("cache purge failed on disconnect")
	}
	if err := h.musicStore.DeleteUserData(ctx, userID); err != nil {
		logger := middleware.GetRequestLogger(c)
		logger.Warn().Err(err).Str("userId", userID).Msg("metadata purge failed on disconnect")
	}

	c.JSON(http.StatusOK, dto.DeleteUserResponse{Deleted: true})
}

// Stats reports gateway call accounting.
func (h *UsersHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, dto.StatsResponse{
		UpstreamCalls: h.gw.CallCount(),
		RateLimited:   h.gw.Limiter().Limited(),
	})
}

// proxyCached serves an idempotent read through the gateway's caching path and
// relays the upstream JSON unchanged.
func (h *UsersHandler) proxyCached(c *gin.Context, op gateway.Operation) {
	data, err := h.gw.InvokeCached(c.Request.Context(), c.Param("userId"), op)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.Data(http.StatusOK, jsonContentType, data)
}

// pageWindow reads the limit/offset query parameters, defaulting to one full
// page.
func pageWindow(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 50 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

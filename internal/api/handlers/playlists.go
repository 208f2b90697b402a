package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/groovebot/groove-service/internal/api/dto"
	"github.com/groovebot/groove-service/internal/api/middleware"
	"github.com/groovebot/groove-service/internal/services/library"
	"github.com/groovebot/groove-service/internal/services/recommend"
)

// PlaylistsHandler builds derived playlists.
type PlaylistsHandler struct {
	engine *recommend.Engine
}

// NewPlaylistsHandler creates a new PlaylistsHandler.
func NewPlaylistsHandler(engine *recommend.Engine) *PlaylistsHandler {
	return &PlaylistsHandler{engine: engine}
}

// CreateMonthly builds a playlist from the tracks liked in the given month.
func (h *PlaylistsHandler) CreateMonthly(c *gin.Context) {
	var req dto.MonthlyPlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    "BAD_REQUEST",
			Message: "invalid request body",
			Details: err.Error(),
		})
		return
	}

	playlist, err := h.engine.BuildMonthly(c.Request.Context(), c.Param("userId"), req.Month, req.Year)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, playlist)
}

// CreateFiltered builds a playlist of tracks matching a genre from the
// selected listening source.
func (h *PlaylistsHandler) CreateFiltered(c *gin.Context) {
	var req dto.FilteredPlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    "BAD_REQUEST",
			Message: "invalid request body",
			Details: err.Error(),
		})
		return
	}

	source := library.Source(req.Source)
	if source == "" {
		source = library.SourceTop
	}

	playlist, err := h.engine.BuildFiltered(c.Request.Context(), c.Param("userId"), req.Genre, source, req.Randomize)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, playlist)
}

// CreateRecommended builds a recommendation playlist seeded from the selected
// conditions.
func (h *PlaylistsHandler) CreateRecommended(c *gin.Context) {
	var req dto.RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    "BAD_REQUEST",
			Message: "invalid request body",
			Details: err.Error(),
		})
		return
	}

	opts := recommend.Options{
		RecentlyPlayed:   req.RecentlyPlayed,
		MostPlayed:       req.MostPlayed,
		LikedTracks:      req.LikedTracks,
		CurrentlyPlaying: req.CurrentlyPlaying,
		Genre:            req.Genre,
		UseFeatureBounds: req.UseFeatureBounds,
		Targets:          req.Targets,
	}

	playlist, err := h.engine.Build(c.Request.Context(), c.Param("userId"), opts)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, playlist)
}

// Package routes defines the HTTP routes for the Groove service.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/groovebot/groove-service/internal/api/handlers"
	"github.com/groovebot/groove-service/internal/api/middleware"
)

// Config holds the dependencies for setting up routes.
type Config struct {
	HealthHandler    *handlers.HealthHandler
	AuthHandler      *handlers.AuthHandler
	UsersHandler     *handlers.UsersHandler
	PlaylistsHandler *handlers.PlaylistsHandler
	AuthMiddleware   *middleware.AuthMiddleware
}

// Setup configures all routes on the Gin engine.
func Setup(r *gin.Engine, cfg *Config) {
	v1 := r.Group("/api/v1")
	{
		// Health check routes (no auth required)
		v1.GET("/health", cfg.HealthHandler.Health)
		v1.GET("/ready", cfg.HealthHandler.Ready)
		v1.GET("/live", cfg.HealthHandler.Live)

		// Gateway call accounting (no auth required)
		v1.GET("/stats", cfg.UsersHandler.Stats)

		// OAuth flow (no auth required; the callback issues the api token)
		v1.GET("/auth/login", cfg.AuthHandler.Login)
		v1.GET("/auth/callback", cfg.AuthHandler.Callback)

		// User-scoped routes authenticated by the derived api token
		users := v1.Group("/users/:userId")
		users.Use(cfg.AuthMiddleware.Authenticate())
		{
			users.GET("/profile", cfg.UsersHandler.Profile)
			users.GET("/top-tracks", cfg.UsersHandler.TopTracks)
			users.GET("/recently-played", cfg.UsersHandler.RecentlyPlayed)
			users.GET("/currently-playing", cfg.UsersHandler.CurrentlyPlaying)
			users.GET("/playlists", cfg.UsersHandler.Playlists)
			users.POST("/audio-features", cfg.UsersHandler.AudioFeatures)
			users.DELETE("", cfg.UsersHandler.Delete)

			playlists := users.Group("/playlists")
			{
				playlists.POST("/monthly", cfg.PlaylistsHandler.CreateMonthly)
				playlists.POST("/filtered", cfg.PlaylistsHandler.CreateFiltered)
				playlists.POST("/recommended", cfg.PlaylistsHandler.CreateRecommended)
			}
		}
	}

	r.NoRoute(middleware.NotFound())
}

// SetupWithMiddleware sets up routes with common middleware.
func SetupWithMiddleware(r *gin.Engine, cfg *Config, loggingMw *middleware.LoggingMiddleware, errorMw *middleware.ErrorMiddleware, corsCfg middleware.CORSConfig) {
	r.Use(middleware.NewCORSMiddleware(corsCfg))
	r.Use(loggingMw.RequestID())
	r.Use(loggingMw.Logger())
	r.Use(errorMw.Recovery())
	r.Use(gin.Recovery())

	Setup(r, cfg)
}

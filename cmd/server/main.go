// Package main is the entry point for the Groove service, an API gateway that
// mediates Spotify access for externally-identified users and builds derived
// playlists from their listening data.
package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/groovebot/groove-service/internal/api/handlers"
	"github.com/groovebot/groove-service/internal/api/middleware"
	"github.com/groovebot/groove-service/internal/api/routes"
	"github.com/groovebot/groove-service/internal/config"
	"github.com/groovebot/groove-service/internal/core/cache"
	"github.com/groovebot/groove-service/internal/core/musicdb"
	"github.com/groovebot/groove-service/internal/core/userdb"
	rediscache "github.com/groovebot/groove-service/internal/infrastructure/cache/redis"
	"github.com/groovebot/groove-service/internal/infrastructure/musicdb/mongodb"
	"github.com/groovebot/groove-service/internal/infrastructure/userdb/postgres"
	"github.com/groovebot/groove-service/internal/pkg/encryption"
	"github.com/groovebot/groove-service/internal/services/auth"
	"github.com/groovebot/groove-service/internal/services/gateway"
	"github.com/groovebot/groove-service/internal/services/library"
	"github.com/groovebot/groove-service/internal/services/recommend"
	"github.com/groovebot/groove-service/internal/services/spotify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	setupLogging(cfg.Log)

	ctx := context.Background()

	cacheClient, err := createCache(cfg.Cache)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize cache")
	}
	defer cacheClient.Close()

	userStore, err := createUserStore(ctx, cfg.UserDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize credential store")
	}
	defer userStore.Close()

	musicStore, err := createMusicStore(ctx, cfg.MusicDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metadata store")
	}
	defer musicStore.Close(ctx)

	if err := musicStore.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to ensure metadata indexes")
	}

	gin.SetMode(cfg.Server.GinMode)
	router := setupRouter(cfg, cacheClient, userStore, musicStore)

	srv := &http.Server{
		Addr:    cfg.Server.Address(),
		Handler: router,
	}

	go func() {
		log.Info().Str("address", cfg.Server.Address()).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

// setupLogging configures the global zerolog logger.
func setupLogging(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// createCache creates the Redis result cache.
func createCache(cfg config.CacheConfig) (cache.Cache, error) {
	return rediscache.NewCache(rediscache.Config{
		Host:       cfg.Host,
		Port:       cfg.Port,
		Password:   cfg.Password,
		DB:         cfg.DB,
		DefaultTTL: cfg.TTL,
	})
}

// createUserStore creates the Postgres credential store, encrypting tokens at
// rest when a key is configured.
func createUserStore(ctx context.Context, cfg config.UserDBConfig) (userdb.Store, error) {
	var encryptor encryption.Encryptor
	if cfg.EncryptionKey == "" {
		log.Warn().Msg("TOKEN_ENCRYPTION_KEY not set, storing tokens unencrypted")
		encryptor = encryption.NewNoOpEncryptor()
	} else {
		var err error
		encryptor, err = encryption.NewAESEncryptor(cfg.EncryptionKey)
		if err != nil {
			return nil, err
		}
	}

	return postgres.Open(ctx, cfg.DSN, encryptor)
}

// createMusicStore creates the MongoDB listening-metadata store.
func createMusicStore(ctx context.Context, cfg config.MusicDBConfig) (musicdb.Store, error) {
	return mongodb.NewStore(ctx, &mongodb.ClientConfig{
		URI:          cfg.URI,
		DatabaseName: cfg.Database,
	})
}

// setupRouter wires the service graph and configures the Gin router.
func setupRouter(cfg *config.Config, cacheClient cache.Cache, userStore userdb.Store, musicStore musicdb.Store) *gin.Engine {
	router := gin.New()

	authService := auth.NewService(auth.Config{
		ClientID:      cfg.Spotify.ClientID,
		ClientSecret:  cfg.Spotify.ClientSecret,
		RedirectURL:   cfg.Spotify.RedirectURL,
		TokenLifetime: cfg.Spotify.TokenLifetime,
		Store:         userStore,
		Logger:        log.Logger,
	})

	client := spotify.NewClient(spotify.Config{
		RequestsPerSecond: cfg.Spotify.RequestRate,
		Burst:             cfg.Spotify.RequestBurst,
	})

	gw := gateway.New(gateway.Config{
		Store:     userStore,
		Refresher: authService,
		Cache:     cacheClient,
		CacheTTL:  cfg.Cache.TTL,
		Logger:    log.Logger,
	})

	// Requests run concurrently, so randomness comes from the lock-protected
	// process-wide source rather than a shared rand.Rand.
	lib := library.NewService(library.Config{
		Gateway: gw,
		Client:  client,
		Cache:   cacheClient,
		Store:   musicStore,
		Logger:  log.Logger,
		RandInt: rand.Intn,
	})

	engine := recommend.NewEngine(recommend.EngineConfig{
		Gateway:      gw,
		Client:       client,
		Library:      lib,
		Materializer: recommend.NewMaterializer(gw, client, log.Logger),
		Logger:       log.Logger,
		Shuffle:      rand.Shuffle,
	})

	loggingMw := middleware.NewLoggingMiddleware(log.Logger)
	errorMw := middleware.NewErrorMiddleware()
	authMw := middleware.NewAuthMiddleware(userStore)

	routesCfg := &routes.Config{
		HealthHandler:    handlers.NewHealthHandler(cacheClient, userStore, musicStore),
		AuthHandler:      handlers.NewAuthHandler(authService),
		UsersHandler:     handlers.NewUsersHandler(gw, client, lib, userStore, musicStore),
		PlaylistsHandler: handlers.NewPlaylistsHandler(engine),
		AuthMiddleware:   authMw,
	}

	routes.SetupWithMiddleware(router, routesCfg, loggingMw, errorMw, middleware.DefaultCORSConfig())

	return router
}

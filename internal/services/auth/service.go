// Package auth implements the OAuth2 authorization-code flow against the
// music platform and the token refresh exchange used by the call gateway.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	spotifyauth "golang.org/x/oauth2/spotify"

	"github.com/groovebot/groove-service/internal/core/userdb"
	"github.com/groovebot/groove-service/internal/domain/errors"
	"github.com/groovebot/groove-service/internal/domain/models"
)

// scopes covers every upstream operation the service performs on the user's
// behalf.
var scopes = []string{
	"user-read-private",
	"user-read-email",
	"user-library-read",
	"user-top-read",
	"user-read-recently-played",
	"user-read-currently-playing",
	"playlist-read-private",
	"playlist-modify-private",
}

// Grant is the result of a successful authorization-code exchange.
type Grant struct {
	ExternalID string `json:"externalUserId"`
	APIToken   string `json:"apiToken"`
}

// Service drives the authorization-code flow and refresh exchanges.
type Service struct {
	oauth         *oauth2.Config
	store         userdb.Store
	tokenLifetime time.Duration
	logger        zerolog.Logger
}

// Config holds the auth service settings.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// TokenLifetime is the assumed access-token validity when upstream does
	// not report an expiry.
	TokenLifetime time.Duration
	Store         userdb.Store
	Logger        zerolog.Logger
}

// NewService creates an auth service.
func NewService(cfg Config) *Service {
	lifetime := cfg.TokenLifetime
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	return &Service{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     spotifyauth.Endpoint,
		},
		store:         cfg.Store,
		tokenLifetime: lifetime,
		logger:        cfg.Logger,
	}
}

// AuthURL returns the upstream consent URL. The state parameter carries the
// external user id so the callback can associate the grant.
func (s *Service) AuthURL(externalID string) string {
	return s.oauth.AuthCodeURL(externalID, oauth2.AccessTypeOffline)
}

// HandleCallback exchanges the authorization code and persists the credential
// row for the external id. The derived api token is computed once here and
// never recomputed on later refreshes.
func (s *Service) HandleCallback(ctx context.Context, externalID, code string) (*Grant, error) {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, errors.NewAuthExchangeError(err)
	}

	now := time.Now().UTC()
	cred := &models.UserCredential{
		ExternalID:   externalID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresIn:    int(time.Until(token.Expiry).Seconds()),
		APIToken:     DeriveAPIToken(externalID, token.AccessToken),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if cred.ExpiresIn <= 0 {
		cred.ExpiresIn = int(s.tokenLifetime.Seconds())
	}

	if err := s.store.Upsert(ctx, cred); err != nil {
		return nil, errors.NewPersistenceError("credential upsert", err)
	}

	s.logger.Info().Str("userId", externalID).Msg("user authorized")
	return &Grant{ExternalID: externalID, APIToken: cred.APIToken}, nil
}

// Refresh exchanges a refresh token for a new token pair. Implements the
// gateway's TokenRefresher contract; the returned refresh token may equal the
// input when upstream does not rotate it.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	source := s.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return "", "", errors.NewAuthExchangeError(err)
	}
	return token.AccessToken, token.RefreshToken, nil
}

// DeriveAPIToken derives the stable inbound-authentication secret from the
// external id and the access token issued at grant time. The derivation is
// intentionally never repeated when the access token rotates, so the token
// stays valid across refreshes.
func DeriveAPIToken(externalID, accessToken string) string {
	sum := sha256.Sum256([]byte(externalID + accessToken))
	return hex.EncodeToString(sum[:])
}

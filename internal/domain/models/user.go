// Package models defines the domain models for the service.
package models

import "time"

// UserCredential represents one end-user's linkage to the music platform.
// The external id is the chat-platform identifier the caller supplies, not
// the platform's own account id. At most one credential exists per external id.
type UserCredential struct {
	ExternalID   string    `json:"externalId"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresIn    int       `json:"expiresIn"`
	APIToken     string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TokenExpired reports whether the access token has outlived the expiry
// window relative to the last persisted update.
func (c *UserCredential) TokenExpired(now time.Time) bool {
	window := time.Duration(c.ExpiresIn) * time.Second
	if window == 0 {
		window = time.Hour
	}
	return now.Sub(c.UpdatedAt) >= window
}

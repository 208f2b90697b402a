// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

// GrantResponse represents a successful authorization-code exchange.
type GrantResponse struct {
	ExternalUserID string `json:"externalUserId"`
	APIToken       string `json:"apiToken"`
}

// DeleteUserResponse represents the result of a user disconnect.
type DeleteUserResponse struct {
	Deleted bool `json:"deleted"`
}

// StatsResponse reports gateway call accounting.
type StatsResponse struct {
	UpstreamCalls int64 `json:"upstreamCalls"`
	RateLimited   bool  `json:"rateLimited"`
}

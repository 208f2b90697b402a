package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.spotify.com/v1"

// APIError carries the upstream failure signaling convention: a numeric
// status code and, for 429 responses, the advertised retry-after wait.
type APIError struct {
	StatusCode        int
	RetryAfterSeconds int
	Body              string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode == http.StatusTooManyRequests {
		return fmt.Sprintf("spotify: rate limited, retry after %ds", e.RetryAfterSeconds)
	}
	return fmt.Sprintf("spotify: status %d: %s", e.StatusCode, e.Body)
}

// Status returns the HTTP status code of the failed call.
func (e *APIError) Status() int {
	return e.StatusCode
}

// RetryAfter returns the advertised wait for rate-limited calls, zero
// otherwise.
func (e *APIError) RetryAfter() time.Duration {
	return time.Duration(e.RetryAfterSeconds) * time.Second
}

// Config holds the client tuning knobs.
type Config struct {
	// BaseURL overrides the API root, used by tests.
	BaseURL string
	// RequestsPerSecond paces outbound calls client-side so a single busy
	// instance does not trip the upstream limiter unnecessarily.
	RequestsPerSecond float64
	// Burst is the pacing burst size.
	Burst int
	// Timeout bounds each outbound request.
	Timeout time.Duration
}

// Client is the low-level Spotify Web API client. It holds no credentials;
// every call receives the user's access token from the gateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Spotify client.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// get issues a GET request against the API root.
func (c *Client) get(ctx context.Context, token, path string, query url.Values) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return c.do(ctx, token, http.MethodGet, endpoint, nil)
}

// post issues a POST request with a JSON body against the API root.
func (c *Client) post(ctx context.Context, token, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return c.do(ctx, token, http.MethodPost, c.baseURL+path, payload)
}

func (c *Client) do(ctx context.Context, token, method, endpoint string, body []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(data)}
		if resp.StatusCode == http.StatusTooManyRequests {
			apiErr.RetryAfterSeconds = 60
			if header := resp.Header.Get("Retry-After"); header != "" {
				if seconds, err := strconv.Atoi(header); err == nil {
					apiErr.RetryAfterSeconds = seconds
				}
			}
		}
		return nil, apiErr
	}

	return data, nil
}

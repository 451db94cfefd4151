package riot

import (
	"net/http"

	"golang.org/x/time/rate"
)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithRegionBase overrides the regional routing host (match-v5, account-v1).
func WithRegionBase(base string) Option {
	return func(c *Client) { c.regionBase = base }
}

// WithRateLimit replaces the default token bucket.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		limit := rate.Limit(rps)
		if rps <= 0 {
			limit = rate.Inf
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

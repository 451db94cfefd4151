// Package riot implements the subset of the Riot match-v5 and account-v1
// APIs that the crawler depends on.
package riot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/JakeFAU/aram-match-crawler/internal/metrics"
)

const (
	defaultRegionBase = "https://europe.api.riotgames.com"

	// Conservative defaults for a development key (actual: 20/s, 100/2min).
	defaultRPS   = 15
	defaultBurst = 5
)

// Client is a rate-limited Riot API client.
type Client struct {
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	regionBase string
}

// NewClient creates a Client authenticated with the given API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("riot api key is required")
	}
	c := &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(defaultRPS), defaultBurst),
		regionBase: defaultRegionBase,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// AccountByRiotID resolves a "GameName#TagLine" handle to an account. Used
// only when seeding the frontier.
func (c *Client) AccountByRiotID(ctx context.Context, gameName, tagLine string) (Account, error) {
	path := fmt.Sprintf("/riot/account/v1/accounts/by-riot-id/%s/%s",
		url.PathEscape(gameName), url.PathEscape(tagLine))

	var account Account
	if err := c.getJSON(ctx, "account", path, nil, &account); err != nil {
		if apiErr, ok := asAPIError(err); ok && apiErr.Status == http.StatusNotFound {
			return Account{}, fmt.Errorf("%w: %s#%s", ErrAccountNotFound, gameName, tagLine)
		}
		return Account{}, err
	}
	return account, nil
}

// MatchIDsByPUUID lists up to count most recent ARAM match ids for the
// player, restricted to games started within the trailing window.
func (c *Client) MatchIDsByPUUID(ctx context.Context, puuid string, window time.Duration, count int) ([]string, error) {
	now := time.Now()
	q := url.Values{}
	q.Set("queue", strconv.Itoa(ARAM))
	q.Set("count", strconv.Itoa(count))
	q.Set("startTime", strconv.FormatInt(now.Add(-window).Unix(), 10))
	q.Set("endTime", strconv.FormatInt(now.Unix(), 10))

	path := fmt.Sprintf("/lol/match/v5/matches/by-puuid/%s/ids", url.PathEscape(puuid))

	var ids []string
	if err := c.getJSON(ctx, "match-ids", path, q, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// MatchByID fetches the full match record. A 404 maps to ErrMatchNotFound:
// the upstream has pruned a match it listed moments ago.
func (c *Client) MatchByID(ctx context.Context, matchID string) (*Match, error) {
	path := fmt.Sprintf("/lol/match/v5/matches/%s", url.PathEscape(matchID))

	var match Match
	if err := c.getJSON(ctx, "match", path, nil, &match); err != nil {
		if apiErr, ok := asAPIError(err); ok && apiErr.Status == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
		}
		return nil, err
	}
	return &match, nil
}

// getJSON performs a rate-limited GET and decodes the response body.
// A 429 is retried once after honoring Retry-After.
func (c *Client) getJSON(ctx context.Context, endpoint, path string, q url.Values, out any) error {
	return c.doJSON(ctx, endpoint, path, q, out, true)
}

func (c *Client) doJSON(ctx context.Context, endpoint, path string, q url.Values, out any, retryOn429 bool) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	u := c.regionBase + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Riot-Token", c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveRiotRequest(endpoint, 0, time.Since(start))
		return fmt.Errorf("riot http: %w", err)
	}
	defer res.Body.Close()
	metrics.ObserveRiotRequest(endpoint, res.StatusCode, time.Since(start))

	if res.StatusCode == http.StatusTooManyRequests && retryOn429 {
		wait := 10 * time.Second
		if ra := res.Header.Get("Retry-After"); ra != "" {
			if sec, _ := strconv.Atoi(ra); sec > 0 {
				wait = time.Duration(sec) * time.Second
			}
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
		return c.doJSON(ctx, endpoint, path, q, out, false)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return &APIError{Status: res.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func asAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

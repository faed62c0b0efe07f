// Package openlibrary is a rate-limited client for the OpenLibrary
// catalog API, used for book search and work detail lookups.
package openlibrary

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/shelfmarkapp/shelfmark-server/internal/ratelimit"

	"time"
)

const (
	// Rate limit: 2 requests per second per endpoint group, burst of 5
	defaultRPS   = 2.0
	defaultBurst = 5

	// HTTP client settings
	defaultTimeout = 30 * time.Second

	// searchLimit is how many docs we request per search page.
	searchLimit = 30
)

// Config holds the catalog endpoints. Zero values fall back to the
// public OpenLibrary hosts.
type Config struct {
	BaseURL       string
	CoversBaseURL string
}

// Client is a rate-limited OpenLibrary API client.
type Client struct {
	http       *http.Client
	limiter    *ratelimit.KeyedRateLimiter
	logger     *slog.Logger
	baseURL    string
	coversBase string
}

// New creates a new OpenLibrary client.
func New(cfg Config, logger *slog.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://openlibrary.org"
	}
	coversBase := cfg.CoversBaseURL
	if coversBase == "" {
		coversBase = "https://covers.openlibrary.org"
	}

	return &Client{
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter:    ratelimit.New(defaultRPS, defaultBurst),
		logger:     logger,
		baseURL:    strings.TrimRight(baseURL, "/"),
		coversBase: strings.TrimRight(coversBase, "/"),
	}
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// CoverURL returns the large cover image URL for a cover ID.
func (c *Client) CoverURL(coverID int64) string {
	return fmt.Sprintf("%s/b/id/%d-L.jpg", c.coversBase, coverID)
}

// doRequest executes a GET against the API with rate limiting. The key
// groups requests into separate rate-limit buckets per endpoint family.
func (c *Client) doRequest(ctx context.Context, key, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx, key); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Shelfmark/1.0")

	c.logger.Debug("openlibrary request",
		"path", path,
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusBadRequest:
		return nil, ErrBadRequest
	default:
		if resp.StatusCode >= 500 {
			return nil, ErrServer
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
}

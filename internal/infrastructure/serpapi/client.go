// Package serpapi queries the SerpAPI google_shopping engine.
package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/savetide/backend/internal/domain"
	"github.com/savetide/backend/internal/infrastructure/logger"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL    = "https://serpapi.com"
	defaultEngine     = "google_shopping"
	defaultNumResults = 20
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3

	// maxBodySize bounds how much of a response body is read into memory
	maxBodySize = 10 << 20
	// maxErrorBodySize bounds how much of an error body ends up in logs
	maxErrorBodySize = 512

	// emptyResultsMessage is SerpAPI's error text for a search with zero results
	emptyResultsMessage = "hasn't returned any results"
)

// Config holds SerpAPI client settings
type Config struct {
	APIKey            string
	BaseURL           string
	Engine            string
	Country           string
	Language          string
	Location          string
	NumResults        int
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerSecond float64
}

// Client handles communication with the SerpAPI search endpoint
type Client struct {
	httpClient  *http.Client
	config      Config
	rateLimiter *rate.Limiter
	log         logger.Logger
}

// searchResponse is the subset of the SerpAPI payload the relay reads
type searchResponse struct {
	ShoppingResults []domain.RawOffer `json:"shopping_results"`
	Error           string            `json:"error"`
}

// NewClient creates a new SerpAPI client
func NewClient(config Config, log logger.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Engine == "" {
		config.Engine = defaultEngine
	}
	if config.NumResults <= 0 {
		config.NumResults = defaultNumResults
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = defaultMaxRetries
	}
	if log == nil {
		log = logger.NewNop()
	}

	// unlimited unless a pace is configured; burst absorbs short spikes
	limit := rate.Inf
	if config.RequestsPerSecond > 0 {
		limit = rate.Limit(config.RequestsPerSecond)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config:      config,
		rateLimiter: rate.NewLimiter(limit, 5),
		log:         log.With(logger.String("component", "serpapi")),
	}
}

// Configured reports whether an API key is present
func (c *Client) Configured() bool {
	return c.config.APIKey != ""
}

// Search runs a google_shopping query and returns the raw shopping results.
// A search with no results is an empty success, not an error.
func (c *Client) Search(ctx context.Context, query string) ([]domain.RawOffer, error) {
	if !c.Configured() {
		return nil, domain.ErrProviderNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	reqURL := c.searchURL(query)
	log := c.log.With(logger.String("query", query))

	var lastErr error
	for attempt := 1; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 1 {
			if err := sleepContext(ctx, exponentialBackoff(attempt-1)); err != nil {
				return nil, fmt.Errorf("%w: %w (last error: %v)", domain.ErrProviderFailure, err, lastErr)
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %w", domain.ErrProviderFailure, err)
		}

		offers, retry, err := c.doSearch(ctx, reqURL)
		if err == nil {
			log.Debug("search completed", logger.Int("results", len(offers)), logger.Int("attempt", attempt))
			return offers, nil
		}

		lastErr = err
		if !retry || ctx.Err() != nil {
			return nil, err
		}
		log.Warn("search attempt failed", logger.Int("attempt", attempt), logger.Error(err))
	}

	log.Error("all search attempts failed", logger.Int("attempts", c.config.MaxRetries), logger.Error(lastErr))
	return nil, lastErr
}

// doSearch performs one request. retry reports whether the failure is transient.
func (c *Client) doSearch(ctx context.Context, reqURL string) (offers []domain.RawOffer, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: failed to create request: %v", domain.ErrProviderFailure, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "SaveTide/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// context errors keep their identity so callers can tell timeouts apart
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, fmt.Errorf("%w: %w", domain.ErrProviderFailure, ctxErr)
		}
		return nil, true, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	body, err := readLimitedBody(resp.Body, maxBodySize)
	if err != nil {
		return nil, true, fmt.Errorf("%w: failed to read response: %v", domain.ErrProviderFailure, err)
	}

	if resp.StatusCode != http.StatusOK {
		failure := fmt.Errorf("%w: status %d: %s", domain.ErrProviderFailure, resp.StatusCode, truncate(body, maxErrorBodySize))
		transient := resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests
		return nil, transient, failure
	}

	var payload searchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, false, fmt.Errorf("%w: failed to decode response: %v", domain.ErrProviderFailure, err)
	}

	if payload.Error != "" {
		if strings.Contains(payload.Error, emptyResultsMessage) {
			return []domain.RawOffer{}, false, nil
		}
		return nil, false, fmt.Errorf("%w: %s", domain.ErrProviderFailure, payload.Error)
	}

	if payload.ShoppingResults == nil {
		payload.ShoppingResults = []domain.RawOffer{}
	}
	return payload.ShoppingResults, false, nil
}

func (c *Client) searchURL(query string) string {
	params := url.Values{}
	params.Set("engine", c.config.Engine)
	params.Set("q", query)
	params.Set("api_key", c.config.APIKey)
	params.Set("num", strconv.Itoa(c.config.NumResults))
	if c.config.Country != "" {
		params.Set("gl", c.config.Country)
	}
	if c.config.Language != "" {
		params.Set("hl", c.config.Language)
	}
	if c.config.Location != "" {
		params.Set("location", c.config.Location)
	}
	return c.config.BaseURL + "/search.json?" + params.Encode()
}

// exponentialBackoff returns the wait before retry n: 500ms, 1s, 2s, ...
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(float64(500*time.Millisecond) * math.Pow(2, float64(attempt-1)))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

func truncate(body []byte, n int) string {
	if len(body) > n {
		return string(body[:n]) + "..."
	}
	return string(body)
}

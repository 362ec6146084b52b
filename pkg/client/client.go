// Package client provides the HTTP client for the Digimon API with request
// pacing, optional response caching and error classification.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/digi-client/pkg/cache"
	"github.com/Sternrassler/digi-client/pkg/logging"
	"github.com/Sternrassler/digi-client/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// DefaultBaseURL is the public Digimon API.
const DefaultBaseURL = "https://digi-api.com/api/v1"

// Prometheus metrics for client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "digi_requests_total",
		Help: "Total Digimon API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "digi_request_duration_seconds",
		Help:    "Digimon API request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "digi_errors_total",
		Help: "Total Digimon API errors by class",
	}, []string{"class"})
)

// Client is the Digimon API client. It is safe for concurrent use.
type Client struct {
	httpClient  *http.Client
	baseURL     *url.URL
	rateLimiter *ratelimit.Tracker
	cache       *cache.Manager
	inflight    *semaphore.Weighted
	config      Config
	logger      zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the API, without trailing slash.
	BaseURL string

	// UserAgent header sent with every request.
	UserAgent string

	// Timeout bounds a single HTTP exchange.
	Timeout time.Duration

	// Pacing: sustained requests per second (0 = unpaced) and burst size.
	RateLimit float64
	Burst     int

	// MaxConcurrency caps requests in flight (0 = unbounded).
	MaxConcurrency int

	// Redis enables the response cache when non-nil.
	Redis *redis.Client

	// CacheTTL applies to responses without caching headers.
	CacheTTL time.Duration
}

// DefaultConfig returns a configuration for the public API.
func DefaultConfig() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		UserAgent:      "digi-client/1.0",
		Timeout:        15 * time.Second,
		RateLimit:      0,
		Burst:          20,
		MaxConcurrency: 32,
		CacheTTL:       cache.DefaultTTL,
	}
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0 (got %s)", cfg.Timeout)
	}

	if cfg.MaxConcurrency < 0 {
		return nil, fmt.Errorf("max_concurrency must be >= 0 (got %d)", cfg.MaxConcurrency)
	}

	logger := logging.NewLogger(logging.ComponentClient)

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: base,
		rateLimiter: ratelimit.NewTracker(ratelimit.Config{
			RequestsPerSecond: cfg.RateLimit,
			Burst:             cfg.Burst,
		}, logger),
		config: cfg,
		logger: logger,
	}

	if cfg.MaxConcurrency > 0 {
		c.inflight = semaphore.NewWeighted(int64(cfg.MaxConcurrency))
	}
	if cfg.Redis != nil {
		c.cache = cache.NewManager(cfg.Redis, cfg.CacheTTL)
	}

	return c, nil
}

// Do performs a request through the pipeline: concurrency slot, pacing,
// cache lookup, HTTP exchange, classification, cache update.
//
// Non-2xx responses are returned as *APIError with the body closed.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	endpoint := endpointLabel(req.URL.Path)

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	if c.inflight != nil {
		if err := c.inflight.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer c.inflight.Release(1)
	}

	allowed, err := c.rateLimiter.ShouldAllowRequest(ctx)
	if err != nil {
		return nil, fmt.Errorf("rate limit check: %w", err)
	}
	if !allowed {
		requestsTotal.WithLabelValues(endpoint, "rate_limited").Inc()
		errorsTotal.WithLabelValues(string(ErrorClassRateLimit)).Inc()
		return nil, &APIError{
			StatusCode: http.StatusTooManyRequests,
			ErrorClass: ErrorClassRateLimit,
			Message:    "cool-down active",
			Err:        ErrRateLimited,
		}
	}

	var (
		cacheKey    cache.Key
		cachedEntry *cache.Entry
	)
	if c.cache != nil {
		cacheKey = cache.KeyFor(strings.TrimPrefix(req.URL.Path, c.baseURL.Path), req.URL.Query())
		cachedEntry, err = c.cache.Get(ctx, cacheKey)
		if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache get error")
		}
		if cachedEntry != nil && !cachedEntry.IsExpired() {
			c.logger.Debug().Str("key", cacheKey.String()).Msg("Cache hit")
			requestsTotal.WithLabelValues(endpoint, "cached").Inc()
			return cache.EntryToResponse(cachedEntry), nil
		}
		if cachedEntry != nil {
			cache.AddConditionalHeaders(req, cachedEntry)
		}
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		c.logger.Debug().Err(err).Str("url", req.URL.String()).Msg("HTTP request failed")
		return nil, &APIError{
			ErrorClass: ErrorClassNetwork,
			Message:    "request failed",
			Err:        err,
		}
	}

	c.rateLimiter.UpdateFromResponse(resp.StatusCode, resp.Header)
	requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode == http.StatusNotModified && cachedEntry != nil {
		resp.Body.Close()
		cache.ConditionalRequests.Inc()
		newExpires := cache.ExpiresFrom(resp.Header, time.Now(), c.cache.DefaultTTL())
		if err := c.cache.UpdateTTL(ctx, cacheKey, newExpires); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to update cache TTL")
		}
		return cache.EntryToResponse(cachedEntry), nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		apiErr := statusError(resp)
		errorsTotal.WithLabelValues(string(apiErr.ErrorClass)).Inc()
		c.logger.Debug().
			Str("url", req.URL.String()).
			Int("status", resp.StatusCode).
			Str("error_class", string(apiErr.ErrorClass)).
			Msg("Digimon API request error")
		return nil, apiErr
	}

	if c.cache != nil && cache.Cacheable(resp) {
		entry, err := cache.ResponseToEntry(resp, c.cache.DefaultTTL())
		if err != nil {
			c.logger.Warn().Err(err).Msg("Failed to create cache entry")
		} else if err := c.cache.Set(ctx, cacheKey, entry); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to cache response")
		}
	}

	return resp, nil
}

// Get performs a GET request to path (relative to the base URL).
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.Do(req)
}

// RateLimitState returns the current cool-down state.
func (c *Client) RateLimitState() ratelimit.State {
	return c.rateLimiter.GetState()
}

// Close releases resources held by the client.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// endpointLabel collapses numeric path segments so metric cardinality stays
// bounded: /api/v1/digimon/42 -> /api/v1/digimon/{id}.
func endpointLabel(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if _, err := strconv.Atoi(s); err == nil && s != "" {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}

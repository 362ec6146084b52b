package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Prometheus metrics for rate limit tracking.
var (
	rateLimitBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "digi_rate_limit_blocks_total",
		Help: "Total number of requests blocked during a 429 cool-down",
	})

	rateLimitThrottlesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "digi_rate_limit_throttles_total",
		Help: "Total number of requests delayed by client-side pacing",
	})

	rateLimitCooldownsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "digi_rate_limit_cooldowns_total",
		Help: "Total number of cool-downs started by 429 responses",
	})
)

// Config holds pacing configuration.
type Config struct {
	// RequestsPerSecond is the sustained request rate. Zero or less disables pacing.
	RequestsPerSecond float64

	// Burst is the number of requests allowed at once.
	Burst int
}

// Tracker paces outgoing requests and gates them during cool-downs.
type Tracker struct {
	limiter *rate.Limiter
	logger  zerolog.Logger

	mu    sync.Mutex
	state State
}

// NewTracker creates a new rate limit tracker.
func NewTracker(cfg Config, logger zerolog.Logger) *Tracker {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Tracker{
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
	}
}

// GetState returns a copy of the current state.
func (t *Tracker) GetState() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// UpdateFromResponse starts a cool-down when the server answered 429.
func (t *Tracker) UpdateFromResponse(statusCode int, headers http.Header) {
	if statusCode != http.StatusTooManyRequests {
		return
	}

	cooldown := parseRetryAfter(headers.Get("Retry-After"), time.Now())

	t.mu.Lock()
	now := time.Now()
	until := now.Add(cooldown)
	if until.After(t.state.BlockedUntil) {
		t.state.BlockedUntil = until
	}
	t.state.LastUpdate = now
	t.state.RateLimited++
	t.mu.Unlock()

	rateLimitCooldownsTotal.Inc()
	t.logger.Warn().
		Dur("cooldown", cooldown).
		Time("blocked_until", until).
		Msg("Rate limited by server - pausing requests")
}

// ShouldAllowRequest returns false during a cool-down. Otherwise it waits
// for a pacing token and returns true, or the context error.
func (t *Tracker) ShouldAllowRequest(ctx context.Context) (bool, error) {
	state := t.GetState()
	if state.IsBlocked() {
		t.logger.Debug().
			Dur("wait_duration", state.TimeUntilReset()).
			Msg("Cool-down active - blocking request")
		rateLimitBlocksTotal.Inc()
		return false, nil
	}

	r := t.limiter.Reserve()
	if !r.OK() {
		return false, fmt.Errorf("rate limiter: burst exceeded")
	}
	delay := r.Delay()
	if delay == 0 {
		return true, nil
	}

	rateLimitThrottlesTotal.Inc()
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		r.Cancel()
		return false, ctx.Err()
	case <-timer.C:
		return true, nil
	}
}

// parseRetryAfter reads delay-seconds or an HTTP date, falling back to
// DefaultCooldown and capping at MaxCooldown.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultCooldown
	}

	var d time.Duration
	if secs, err := strconv.Atoi(value); err == nil {
		d = time.Duration(secs) * time.Second
	} else if at, err := http.ParseTime(value); err == nil {
		d = at.Sub(now)
	} else {
		return DefaultCooldown
	}

	if d <= 0 {
		return DefaultCooldown
	}
	if d > MaxCooldown {
		return MaxCooldown
	}
	return d
}

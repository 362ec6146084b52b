// Package ratelimit paces requests to the Digimon API and gates them while
// the server has asked the client to back off (429 Too Many Requests with an
// optional Retry-After header).
package ratelimit

import (
	"time"
)

// Cool-down bounds applied after a 429 response.
const (
	// DefaultCooldown is used when the 429 response carries no usable Retry-After.
	DefaultCooldown = 30 * time.Second

	// MaxCooldown caps a server-provided Retry-After.
	MaxCooldown = 5 * time.Minute
)

// State is the current gate state of a Tracker.
type State struct {
	// BlockedUntil is the end of the current cool-down (zero when none).
	BlockedUntil time.Time `json:"blocked_until"`

	// LastUpdate is when a response last changed the state.
	LastUpdate time.Time `json:"last_update"`

	// RateLimited counts 429 responses seen by the tracker.
	RateLimited int `json:"rate_limited"`
}

// IsStale returns true if the state is older than maxAge.
func (s *State) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// IsBlocked returns true while a cool-down is active.
func (s *State) IsBlocked() bool {
	return time.Now().Before(s.BlockedUntil)
}

// TimeUntilReset returns the remaining cool-down, or 0.
func (s *State) TimeUntilReset() time.Duration {
	duration := time.Until(s.BlockedUntil)
	if duration < 0 {
		return 0
	}
	return duration
}

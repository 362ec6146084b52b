package server

import (
	"context"
	"sync"
	"time"

	"github.com/Sternrassler/digi-client/pkg/browse"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// session is one mounted feed screen.
type session struct {
	id      string
	kind    string
	key     string
	feed    browse.Session
	created time.Time

	mu      sync.Mutex
	touched time.Time
}

func (s *session) touch(now time.Time) {
	s.mu.Lock()
	s.touched = now
	s.mu.Unlock()
}

func (s *session) lastTouched() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

// registry holds mounted sessions by ID. Removing a session does not cancel
// its in-flight fetches; their results are dropped with the session.
type registry struct {
	mu       sync.RWMutex
	sessions map[string]*session
	ttl      time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

func newRegistry(ttl time.Duration, logger zerolog.Logger) *registry {
	return &registry{
		sessions: make(map[string]*session),
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

func (r *registry) create(kind, key string, feed browse.Session) *session {
	now := r.now()
	s := &session{
		id:      uuid.NewString(),
		kind:    kind,
		key:     key,
		feed:    feed,
		created: now,
		touched: now,
	}

	r.mu.Lock()
	r.sessions[s.id] = s
	n := len(r.sessions)
	r.mu.Unlock()

	r.logger.Info().Str("session", s.id).Str("kind", kind).Str("key", key).Int("sessions", n).Msg("Session mounted")
	return s
}

func (r *registry) get(id string) (*session, bool) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		s.touch(r.now())
	}
	return s, ok
}

func (r *registry) remove(id string) bool {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		r.logger.Info().Str("session", id).Msg("Session removed")
	}
	return ok
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// sweep removes sessions idle for longer than the TTL and returns how many.
func (r *registry) sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	removed := 0
	for id, s := range r.sessions {
		if s.lastTouched().Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	r.mu.Unlock()

	if removed > 0 {
		r.logger.Info().Int("removed", removed).Msg("Idle sessions evicted")
	}
	return removed
}

// runSweeper sweeps every interval until ctx is done.
func (r *registry) runSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

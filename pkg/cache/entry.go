package cache

import (
	"time"
)

// Entry is a cached API response body plus its validators.
type Entry struct {
	// Data is the response body.
	Data []byte `json:"data"`

	// ETag is sent back as If-None-Match.
	ETag string `json:"etag,omitempty"`

	// LastModified is sent back as If-Modified-Since when there is no ETag.
	LastModified time.Time `json:"last_modified,omitempty"`

	// Expires ends the entry's freshness lifetime.
	Expires time.Time `json:"expires"`

	// StatusCode of the cached response.
	StatusCode int `json:"status_code"`

	// ContentType of the cached response.
	ContentType string `json:"content_type,omitempty"`

	CachedAt time.Time `json:"cached_at"`
}

// IsExpired returns true once the freshness lifetime has ended.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the remaining freshness lifetime, or 0.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}

// Revalidatable reports whether the entry carries a validator the server can
// answer with 304 Not Modified.
func (e *Entry) Revalidatable() bool {
	return e != nil && (e.ETag != "" || !e.LastModified.IsZero())
}

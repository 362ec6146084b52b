package cache

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Cacheable reports whether resp may be stored: a 200 without
// Cache-Control no-store.
func Cacheable(resp *http.Response) bool {
	if resp == nil || resp.StatusCode != http.StatusOK {
		return false
	}
	for _, directive := range cacheControl(resp.Header) {
		if directive == "no-store" {
			return false
		}
	}
	return true
}

// ResponseToEntry reads resp into an Entry. The body is restored so the
// caller can still decode it.
func ResponseToEntry(resp *http.Response, defaultTTL time.Duration) (*Entry, error) {
	if resp == nil {
		return nil, fmt.Errorf("response cannot be nil")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))

	entry := &Entry{
		Data:        body,
		ETag:        resp.Header.Get("ETag"),
		Expires:     ExpiresFrom(resp.Header, time.Now(), defaultTTL),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		CachedAt:    time.Now(),
	}

	if lastMod := resp.Header.Get("Last-Modified"); lastMod != "" {
		if t, err := http.ParseTime(lastMod); err == nil {
			entry.LastModified = t
		}
	}

	return entry, nil
}

// ExpiresFrom computes the end of the freshness lifetime from Cache-Control
// max-age, then Expires, then defaultTTL. no-cache yields now.
func ExpiresFrom(headers http.Header, now time.Time, defaultTTL time.Duration) time.Time {
	for _, directive := range cacheControl(headers) {
		if directive == "no-cache" {
			return now
		}
		if v, ok := strings.CutPrefix(directive, "max-age="); ok {
			if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
				return now.Add(time.Duration(secs) * time.Second)
			}
		}
	}

	if v := headers.Get("Expires"); v != "" {
		expires, err := http.ParseTime(v)
		if err != nil {
			return now.Add(defaultTTL)
		}
		if expires.Before(now) {
			return now
		}
		return expires
	}

	return now.Add(defaultTTL)
}

// AddConditionalHeaders sets If-None-Match, or If-Modified-Since when the
// entry has no ETag.
func AddConditionalHeaders(req *http.Request, entry *Entry) {
	if req == nil || !entry.Revalidatable() {
		return
	}
	if entry.ETag != "" {
		req.Header.Set("If-None-Match", entry.ETag)
	} else {
		req.Header.Set("If-Modified-Since", entry.LastModified.UTC().Format(http.TimeFormat))
	}
}

func cacheControl(headers http.Header) []string {
	var out []string
	for _, line := range headers.Values("Cache-Control") {
		for _, part := range strings.Split(line, ",") {
			if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// EntryToResponse rebuilds a 200 response from a cached entry.
func EntryToResponse(entry *Entry) *http.Response {
	header := http.Header{}
	if entry.ContentType != "" {
		header.Set("Content-Type", entry.ContentType)
	}
	if entry.ETag != "" {
		header.Set("ETag", entry.ETag)
	}
	header.Set("X-Cache", "HIT")

	return &http.Response{
		Status:        "200 OK",
		StatusCode:    http.StatusOK,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(entry.Data)),
		ContentLength: int64(len(entry.Data)),
	}
}

package cache

import (
	"bytes"
	"io"
	"net/http"
	"testing"
	"time"
)

func newResponse(status int, headers http.Header, body string) *http.Response {
	if headers == nil {
		headers = http.Header{}
	}
	return &http.Response{
		StatusCode: status,
		Header:     headers,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

func TestResponseToEntry(t *testing.T) {
	lastMod := time.Now().Add(-time.Hour).UTC().Truncate(time.Second)
	resp := newResponse(http.StatusOK, http.Header{
		"Etag":          {`"abc123"`},
		"Last-Modified": {lastMod.Format(http.TimeFormat)},
		"Content-Type":  {"application/json"},
		"Cache-Control": {"public, max-age=120"},
	}, `{"id":1}`)

	entry, err := ResponseToEntry(resp, DefaultTTL)
	if err != nil {
		t.Fatalf("ResponseToEntry() error = %v", err)
	}

	if string(entry.Data) != `{"id":1}` {
		t.Errorf("Data = %s", entry.Data)
	}
	if entry.ETag != `"abc123"` {
		t.Errorf("ETag = %q", entry.ETag)
	}
	if !entry.LastModified.Equal(lastMod) {
		t.Errorf("LastModified = %v, want %v", entry.LastModified, lastMod)
	}
	if entry.ContentType != "application/json" {
		t.Errorf("ContentType = %q", entry.ContentType)
	}
	if ttl := entry.TTL(); ttl < 115*time.Second || ttl > 120*time.Second {
		t.Errorf("TTL() = %v, want ~120s from max-age", ttl)
	}

	body, _ := io.ReadAll(resp.Body)
	if string(body) != `{"id":1}` {
		t.Errorf("response body not restored: %q", body)
	}
}

func TestResponseToEntry_NilResponse(t *testing.T) {
	if _, err := ResponseToEntry(nil, DefaultTTL); err == nil {
		t.Error("expected error for nil response")
	}
}

func TestExpiresFrom(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		headers http.Header
		want    time.Time
	}{
		{
			name:    "no headers uses default",
			headers: http.Header{},
			want:    now.Add(DefaultTTL),
		},
		{
			name:    "max-age wins over expires",
			headers: http.Header{"Cache-Control": {"max-age=60"}, "Expires": {now.Add(time.Hour).Format(http.TimeFormat)}},
			want:    now.Add(time.Minute),
		},
		{
			name:    "expires header",
			headers: http.Header{"Expires": {now.Add(10 * time.Minute).Format(http.TimeFormat)}},
			want:    now.Add(10 * time.Minute),
		},
		{
			name:    "expires in the past",
			headers: http.Header{"Expires": {now.Add(-time.Minute).Format(http.TimeFormat)}},
			want:    now,
		},
		{
			name:    "invalid expires uses default",
			headers: http.Header{"Expires": {"0"}},
			want:    now.Add(DefaultTTL),
		},
		{
			name:    "no-cache",
			headers: http.Header{"Cache-Control": {"No-Cache"}},
			want:    now,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpiresFrom(tt.headers, now, DefaultTTL); !got.Equal(tt.want) {
				t.Errorf("ExpiresFrom() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCacheable(t *testing.T) {
	tests := []struct {
		name string
		resp *http.Response
		want bool
	}{
		{name: "nil", resp: nil, want: false},
		{name: "ok", resp: newResponse(http.StatusOK, nil, ""), want: true},
		{name: "not found", resp: newResponse(http.StatusNotFound, nil, ""), want: false},
		{name: "no-store", resp: newResponse(http.StatusOK, http.Header{"Cache-Control": {"private, no-store"}}, ""), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cacheable(tt.resp); got != tt.want {
				t.Errorf("Cacheable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAddConditionalHeaders(t *testing.T) {
	lastMod := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name          string
		entry         *Entry
		wantNoneMatch string
		wantModSince  string
	}{
		{name: "nil entry", entry: nil},
		{name: "etag preferred", entry: &Entry{ETag: `"v2"`, LastModified: lastMod}, wantNoneMatch: `"v2"`},
		{name: "last modified", entry: &Entry{LastModified: lastMod}, wantModSince: lastMod.Format(http.TimeFormat)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "http://example.test/digimon/1", nil)
			AddConditionalHeaders(req, tt.entry)

			if got := req.Header.Get("If-None-Match"); got != tt.wantNoneMatch {
				t.Errorf("If-None-Match = %q, want %q", got, tt.wantNoneMatch)
			}
			if got := req.Header.Get("If-Modified-Since"); got != tt.wantModSince {
				t.Errorf("If-Modified-Since = %q, want %q", got, tt.wantModSince)
			}
		})
	}
}

func TestEntryToResponse(t *testing.T) {
	entry := &Entry{Data: []byte(`{"id":7}`), ETag: `"e"`, ContentType: "application/json"}
	resp := EntryToResponse(entry)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Cache") != "HIT" {
		t.Error("X-Cache header missing")
	}
	if resp.Header.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", resp.Header.Get("Content-Type"))
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != `{"id":7}` {
		t.Errorf("body = %s", body)
	}
}

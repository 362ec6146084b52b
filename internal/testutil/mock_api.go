// Package testutil provides a mock Digimon API for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Sternrassler/digi-client/pkg/digimon"
	"github.com/go-chi/chi/v5"
)

// APIPrefix is the path prefix the mock serves under, matching the real API.
const APIPrefix = "/api/v1"

// MockResponse is a canned response for one path.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockAPI is an in-memory Digimon API. Listing pages are 1-based, as
// requested by the feeds.
type MockAPI struct {
	server *httptest.Server

	mu        sync.RWMutex
	digimon   map[int]digimon.Digimon
	levels    map[int]digimon.Level
	types     map[int]digimon.Type
	overrides map[string]MockResponse
	delay     time.Duration

	requests    map[string]int
	conditional int
	inFlight    int
	peak        int
	lastHeader  http.Header
}

// NewMockAPI starts an empty mock server.
func NewMockAPI() *MockAPI {
	m := &MockAPI{
		digimon:   make(map[int]digimon.Digimon),
		levels:    make(map[int]digimon.Level),
		types:     make(map[int]digimon.Type),
		overrides: make(map[string]MockResponse),
		requests:  make(map[string]int),
	}

	r := chi.NewRouter()
	r.Use(m.track)
	r.Route(APIPrefix, func(r chi.Router) {
		r.Get("/digimon", m.handleList)
		r.Get("/digimon/{id}", m.handleDigimon)
		r.Get("/level/{id}", m.handleLevel)
		r.Get("/type/{id}", m.handleType)
	})

	m.server = httptest.NewServer(r)
	return m
}

// URL returns the server root.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// BaseURL returns the value to use as client.Config.BaseURL.
func (m *MockAPI) BaseURL() string {
	return m.server.URL + APIPrefix
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// AddDigimon registers detail payloads.
func (m *MockAPI) AddDigimon(ds ...digimon.Digimon) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range ds {
		m.digimon[d.ID] = d
	}
}

// AddLevel registers level payloads.
func (m *MockAPI) AddLevel(ls ...digimon.Level) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range ls {
		m.levels[l.ID] = l
	}
}

// AddType registers type payloads.
func (m *MockAPI) AddType(ts ...digimon.Type) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range ts {
		m.types[t.ID] = t
	}
}

// SetResponse overrides a path (without prefix, e.g. "/digimon/7").
func (m *MockAPI) SetResponse(path string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[path] = resp
}

// ClearResponse removes an override.
func (m *MockAPI) ClearResponse(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.overrides, path)
}

// Fail makes path answer with status.
func (m *MockAPI) Fail(path string, status int) {
	m.SetResponse(path, MockResponse{
		StatusCode: status,
		Body:       fmt.Sprintf(`{"error":%q}`, http.StatusText(status)),
		Headers:    map[string]string{"Content-Type": "application/json"},
	})
}

// SetDelay delays every response.
func (m *MockAPI) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// Requests returns how many requests hit path (without prefix).
func (m *MockAPI) Requests(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requests[path]
}

// TotalRequests returns the number of requests served.
func (m *MockAPI) TotalRequests() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, c := range m.requests {
		n += c
	}
	return n
}

// ConditionalCount returns the number of requests carrying a validator.
func (m *MockAPI) ConditionalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conditional
}

// PeakConcurrency returns the highest number of requests served at once.
func (m *MockAPI) PeakConcurrency() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.peak
}

// LastRequestHeader returns the headers of the most recent request.
func (m *MockAPI) LastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastHeader
}

// Reset clears counters.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = make(map[string]int)
	m.conditional = 0
	m.peak = 0
	m.lastHeader = nil
}

func (m *MockAPI) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, APIPrefix)

		m.mu.Lock()
		m.requests[path]++
		m.lastHeader = r.Header.Clone()
		if r.Header.Get("If-None-Match") != "" || r.Header.Get("If-Modified-Since") != "" {
			m.conditional++
		}
		m.inFlight++
		if m.inFlight > m.peak {
			m.peak = m.inFlight
		}
		delay := m.delay
		override, overridden := m.overrides[path]
		m.mu.Unlock()

		defer func() {
			m.mu.Lock()
			m.inFlight--
			m.mu.Unlock()
		}()

		if delay > 0 {
			time.Sleep(delay)
		}

		if overridden {
			if override.Delay > 0 {
				time.Sleep(override.Delay)
			}
			for k, v := range override.Headers {
				w.Header().Set(k, v)
			}
			w.WriteHeader(override.StatusCode)
			if override.Body != "" {
				w.Write([]byte(override.Body))
			}
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *MockAPI) handleDigimon(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	m.mu.RLock()
	d, ok := m.digimon[id]
	m.mu.RUnlock()
	if !ok {
		writeNotFound(w)
		return
	}
	writeJSON(w, r, d)
}

func (m *MockAPI) handleLevel(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	m.mu.RLock()
	l, ok := m.levels[id]
	m.mu.RUnlock()
	if !ok {
		writeNotFound(w)
		return
	}
	writeJSON(w, r, l)
}

func (m *MockAPI) handleType(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	m.mu.RLock()
	t, ok := m.types[id]
	m.mu.RUnlock()
	if !ok {
		writeNotFound(w)
		return
	}
	writeJSON(w, r, t)
}

func (m *MockAPI) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(q.Get("pageSize"))
	if err != nil || size < 1 {
		size = 5
	}
	level := q.Get("level")

	m.mu.RLock()
	all := make([]digimon.Digimon, 0, len(m.digimon))
	for _, d := range m.digimon {
		if level == "" || hasLevel(d, level) {
			all = append(all, d)
		}
	}
	m.mu.RUnlock()
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	start := (page - 1) * size
	end := start + size
	if start > len(all) {
		start = len(all)
	}
	if end > len(all) {
		end = len(all)
	}

	content := make([]digimon.Summary, 0, end-start)
	for _, d := range all[start:end] {
		content = append(content, digimon.Summary{
			ID:    d.ID,
			Name:  d.Name,
			Href:  fmt.Sprintf("%s%s/digimon/%d", m.server.URL, APIPrefix, d.ID),
			Image: d.PrimaryImage(),
		})
	}

	totalPages := (len(all) + size - 1) / size
	p := digimon.Page{
		Content: content,
		Pageable: digimon.Pageable{
			CurrentPage:    page,
			ElementsOnPage: len(content),
			TotalElements:  len(all),
			TotalPages:     totalPages,
			HasNextPage:    page < totalPages,
		},
	}
	if page > 1 {
		p.Pageable.PreviousPage = m.pageURL(page-1, size, level)
	}
	if p.Pageable.HasNextPage {
		p.Pageable.NextPage = m.pageURL(page+1, size, level)
	}
	writeJSON(w, r, p)
}

func (m *MockAPI) pageURL(page, size int, level string) string {
	u := fmt.Sprintf("%s%s/digimon?page=%d&pageSize=%d", m.server.URL, APIPrefix, page, size)
	if level != "" {
		u += "&level=" + level
	}
	return u
}

func hasLevel(d digimon.Digimon, level string) bool {
	for _, l := range d.Levels {
		if strings.EqualFold(l.Level, level) {
			return true
		}
	}
	return false
}

// writeJSON answers with an ETag derived from the body and honors
// If-None-Match.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h := fnv.New32a()
	h.Write(body)
	etag := fmt.Sprintf(`"%08x"`, h.Sum32())

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=60")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func writeNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"Not Found"}`))
}

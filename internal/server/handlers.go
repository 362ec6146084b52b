package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Sternrassler/digi-client/pkg/browse"
	"github.com/Sternrassler/digi-client/pkg/client"
	"github.com/Sternrassler/digi-client/pkg/digimon"
	"github.com/Sternrassler/digi-client/pkg/pagination"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type listResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

type sessionResponse struct {
	ID       string                               `json:"id"`
	Kind     string                               `json:"kind"`
	Key      string                               `json:"key"`
	Issued   *bool                                `json:"issued,omitempty"`
	Snapshot pagination.Snapshot[digimon.Summary] `json:"snapshot"`
}

type errorResponse struct {
	Error string `json:"error"`
	Retry bool   `json:"retry"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	v, err, _ := s.catalog.Do("catalog", func() (any, error) {
		return s.browser.Catalog(context.WithoutCancel(r.Context()))
	})
	if err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	items := browse.SearchCatalog(v.([]digimon.Summary), r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, listResponse[digimon.Summary]{Items: items, Count: len(items)})
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	view, err := s.browser.Detail(r.Context(), id)
	if err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := s.browser.Levels(r.Context())
	if err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[digimon.Level]{Items: levels, Count: len(levels)})
}

func (s *Server) handleTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.browser.Types(r.Context())
	if err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[digimon.Type]{Items: types, Count: len(types)})
}

func (s *Server) handleMountLevel(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "level name is required"})
		return
	}
	s.mount(w, r, "level", name, s.browser.LevelFeed(name))
}

func (s *Server) handleMountType(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mount(w, r, "type", strconv.Itoa(id), s.browser.TypeFeed(id))
}

// mount registers the session and loads page 1. A first-page failure still
// creates the session; its snapshot carries the error for a later refresh.
func (s *Server) mount(w http.ResponseWriter, r *http.Request, kind, key string, feed browse.Session) {
	sess := s.sessions.create(kind, key, feed)
	if _, err := feed.LoadMore(context.WithoutCancel(r.Context())); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("session", sess.id).Msg("Session mounted with error")
	}
	writeJSON(w, http.StatusCreated, s.sessionResponse(sess, nil))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.sessionResponse(sess, nil))
}

func (s *Server) handleMore(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	issued, _ := sess.feed.LoadMore(context.WithoutCancel(r.Context()))
	writeJSON(w, http.StatusOK, s.sessionResponse(sess, &issued))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	_ = sess.feed.Refresh(context.WithoutCancel(r.Context()))
	writeJSON(w, http.StatusOK, s.sessionResponse(sess, nil))
}

func (s *Server) handleUnmount(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.remove(chi.URLParam(r, "id")) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "session not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session, bool) {
	sess, ok := s.sessions.get(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "session not found"})
	}
	return sess, ok
}

func (s *Server) sessionResponse(sess *session, issued *bool) sessionResponse {
	return sessionResponse{
		ID:       sess.id,
		Kind:     sess.kind,
		Key:      sess.key,
		Issued:   issued,
		Snapshot: sess.feed.Snapshot(),
	}
}

// writeUpstreamError maps a failed screen load to a status code. Unknown IDs
// are 404; everything else is 502, with a hint whether a retry can help.
func (s *Server) writeUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, client.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("Screen load failed")
	writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error(), Retry: client.IsRetryable(err)})
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "id must be a positive integer"})
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

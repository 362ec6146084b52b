package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/digi-client/internal/testutil"
	"github.com/Sternrassler/digi-client/pkg/browse"
	"github.com/Sternrassler/digi-client/pkg/client"
	"github.com/Sternrassler/digi-client/pkg/digimon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, mock *testutil.MockAPI, mutate func(*browse.Options)) *Server {
	t.Helper()

	cfg := client.DefaultConfig()
	cfg.BaseURL = mock.BaseURL()
	cfg.RateLimit = 0
	c, err := client.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	opts := browse.DefaultOptions()
	opts.CatalogSize = 12
	if mutate != nil {
		mutate(&opts)
	}
	return New(browse.New(c, opts), Config{SessionTTL: time.Minute})
}

func do(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type sessionBody struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Key      string `json:"key"`
	Issued   *bool  `json:"issued"`
	Snapshot struct {
		Items   []digimon.Summary `json:"items"`
		Page    int               `json:"page"`
		Phase   string            `json:"phase"`
		HasMore bool              `json:"hasMore"`
		Total   int               `json:"total"`
		Error   string            `json:"error"`
	} `json:"snapshot"`
}

func TestHealthAndMetrics(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	s := newTestServer(t, mock, nil)

	rec := do(t, s, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = do(t, s, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestCatalog_Search(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.Catalog(10, "Child")
	mock.AddDigimon(testutil.Mon(11, "Agumon", "Child"), testutil.Mon(12, "BlackAgumon", "Child"))
	s := newTestServer(t, mock, nil)

	rec := do(t, s, http.MethodGet, "/api/digimon")
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[listResponse[digimon.Summary]](t, rec)
	assert.Equal(t, 12, all.Count)

	rec = do(t, s, http.MethodGet, "/api/digimon?q=agu")
	require.Equal(t, http.StatusOK, rec.Code)
	found := decode[listResponse[digimon.Summary]](t, rec)
	require.Equal(t, 2, found.Count)
	assert.Equal(t, "Agumon", found.Items[0].Name)
	assert.Equal(t, "BlackAgumon", found.Items[1].Name)
}

func TestCatalog_AllFailed(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	s := newTestServer(t, mock, func(o *browse.Options) { o.CatalogSize = 3 })

	rec := do(t, s, http.MethodGet, "/api/digimon")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := decode[errorResponse](t, rec)
	assert.True(t, body.Retry)
	assert.NotEmpty(t, body.Error)
}

func TestDetail(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.AddDigimon(testutil.Mon(1, "Agumon", "Child", digimon.TypeRef{ID: 5, Type: "Reptile"}))
	s := newTestServer(t, mock, nil)

	rec := do(t, s, http.MethodGet, "/api/digimon/1")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[digimon.DetailView](t, rec)
	assert.Equal(t, "Agumon", view.Name)
	assert.Equal(t, "Reptile", view.Type)
	assert.Equal(t, digimon.Fallback, view.ReleaseDate)

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/digimon/77").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/digimon/abc").Code)
}

func TestLevelsAndTypes(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.Levels()
	mock.Types(30)
	s := newTestServer(t, mock, nil)

	rec := do(t, s, http.MethodGet, "/api/levels")
	require.Equal(t, http.StatusOK, rec.Code)
	levels := decode[listResponse[digimon.Level]](t, rec)
	require.Equal(t, 9, levels.Count)
	assert.Equal(t, "Baby I", levels.Items[0].Name)

	rec = do(t, s, http.MethodGet, "/api/types")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 30, decode[listResponse[digimon.Type]](t, rec).Count)
}

func TestLevelSession_Lifecycle(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.Catalog(30, "Child")
	s := newTestServer(t, mock, nil)

	rec := do(t, s, http.MethodPost, "/api/levels/Child/sessions")
	require.Equal(t, http.StatusCreated, rec.Code)
	mounted := decode[sessionBody](t, rec)
	assert.Equal(t, "level", mounted.Kind)
	assert.Equal(t, "Child", mounted.Key)
	assert.Len(t, mounted.Snapshot.Items, 20)
	assert.True(t, mounted.Snapshot.HasMore)

	base := "/api/sessions/" + mounted.ID

	more := decode[sessionBody](t, do(t, s, http.MethodPost, base+"/more"))
	require.NotNil(t, more.Issued)
	assert.True(t, *more.Issued)
	assert.Len(t, more.Snapshot.Items, 30)
	assert.False(t, more.Snapshot.HasMore)

	more = decode[sessionBody](t, do(t, s, http.MethodPost, base+"/more"))
	assert.False(t, *more.Issued)
	assert.Equal(t, 2, mock.Requests("/digimon"))

	snap := decode[sessionBody](t, do(t, s, http.MethodGet, base))
	assert.Equal(t, "done", snap.Snapshot.Phase)

	assert.Equal(t, http.StatusNoContent, do(t, s, http.MethodDelete, base).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, base).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodDelete, base).Code)
}

func TestTypeSession_ErrorThenRefresh(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.AddDigimon(
		testutil.Mon(1, "Agumon", "Child", digimon.TypeRef{ID: 5, Type: "Reptile"}),
		testutil.Mon(2, "Gabumon", "Child", digimon.TypeRef{ID: 6, Type: "Beast"}),
	)
	mock.Fail("/digimon", http.StatusServiceUnavailable)
	s := newTestServer(t, mock, nil)

	rec := do(t, s, http.MethodPost, "/api/types/5/sessions")
	require.Equal(t, http.StatusCreated, rec.Code)
	mounted := decode[sessionBody](t, rec)
	assert.Equal(t, "type", mounted.Kind)
	assert.True(t, strings.Contains(mounted.Snapshot.Error, "first page failed"), mounted.Snapshot.Error)
	assert.Empty(t, mounted.Snapshot.Items)

	mock.ClearResponse("/digimon")
	refreshed := decode[sessionBody](t, do(t, s, http.MethodPost, "/api/sessions/"+mounted.ID+"/refresh"))
	assert.Empty(t, refreshed.Snapshot.Error)
	require.Len(t, refreshed.Snapshot.Items, 1)
	assert.Equal(t, []string{"Reptile"}, refreshed.Snapshot.Items[0].Types)
	assert.Equal(t, 2, refreshed.Snapshot.Total)
}

func TestMountType_BadID(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	s := newTestServer(t, mock, nil)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/types/zero/sessions").Code)
	assert.Equal(t, 0, s.sessions.len())
}

func TestCORSPreflight(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	s := newTestServer(t, mock, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/sessions/abc/more", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Less(t, rec.Code, 300)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

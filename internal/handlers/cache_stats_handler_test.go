package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"horoscope/internal/audit"
	"horoscope/internal/cacheadmin"
	"horoscope/internal/db"
	"horoscope/internal/middleware"
	"horoscope/internal/models"
	"horoscope/internal/readingcache"
)

type stubUsers map[string]*models.User

func (s stubUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, db.ErrNotFound
}

type recordingSink struct{ entries []audit.Entry }

func (s *recordingSink) Record(_ context.Context, e audit.Entry) error {
	s.entries = append(s.entries, e)
	return nil
}

type cacheFixture struct {
	router  http.Handler
	cache   *readingcache.Cache
	backend *readingcache.Memory
	sink    *recordingSink
}

func newCacheFixture(t *testing.T) *cacheFixture {
	t.Helper()
	birth := time.Date(1992, time.August, 30, 0, 0, 0, 0, time.UTC)
	backend := readingcache.NewMemory(time.Hour)
	cache := readingcache.New(readingcache.Options{
		Backend: backend,
		Users:   stubUsers{"u1": {ID: "u1", BirthDate: &birth}},
		TTL:     time.Hour,
		Now:     func() time.Time { return authNow },
	})
	sink := &recordingSink{}
	h := NewCacheStatsHandler(cacheadmin.NewDispatcher(cache, sink, nil, cacheadmin.WithClock(func() time.Time { return authNow })))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := r.Header.Get("X-Test-User"); id != "" {
				r = r.WithContext(middleware.WithPrincipal(r.Context(), middleware.Principal{UserID: id, Email: r.Header.Get("X-Test-Email")}))
			}
			next.ServeHTTP(w, r)
		})
	})
	r.Route("/cache/stats", func(r chi.Router) {
		r.Use(middleware.RequireCapability(middleware.EmailSuffixAuthorizer{"@horoscope.app"}))
		r.Get("/", h.GetStats)
		r.Post("/", h.PostAction)
		r.Delete("/", h.ResetStats)
		r.Patch("/", h.EmergencyFlush)
	})
	return &cacheFixture{router: r, cache: cache, backend: backend, sink: sink}
}

func (f *cacheFixture) do(t *testing.T, method, target string, body any, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, rd)
	if admin {
		req.Header.Set("X-Test-User", "admin-1")
		req.Header.Set("X-Test-Email", "ops@horoscope.app")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *cacheFixture) seed(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		require.NoError(t, f.backend.Set(context.Background(), k, []byte("{}"), 0))
	}
}

func (f *cacheFixture) keys(t *testing.T) []string {
	t.Helper()
	keys, err := f.backend.Keys(context.Background(), "*")
	require.NoError(t, err)
	return keys
}

func TestCacheStatsRejectsNonAdminsBeforeAnyAction(t *testing.T) {
	f := newCacheFixture(t)
	f.seed(t, readingcache.Key("u1", "2026-10-19"))

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodPatch} {
		w := f.do(t, method, "/cache/stats?confirm=true", map[string]any{"action": "invalidate_user", "userId": "u1", "operation": "emergency_flush", "confirm": true}, false)
		assert.Equal(t, http.StatusUnauthorized, w.Code, method)

		req := httptest.NewRequest(method, "/cache/stats?confirm=true", bytes.NewBufferString(`{"operation":"emergency_flush","confirm":true}`))
		req.Header.Set("X-Test-User", "u2")
		req.Header.Set("X-Test-Email", "u2@gmail.com")
		rr := httptest.NewRecorder()
		f.router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusForbidden, rr.Code, method)
	}
	assert.Len(t, f.keys(t), 1)
	assert.Empty(t, f.sink.entries)
}

func TestCacheStatsGet(t *testing.T) {
	f := newCacheFixture(t)
	_, err := f.cache.Get(context.Background(), "u1", "2026-10-19")
	require.NoError(t, err)

	w := f.do(t, http.MethodGet, "/cache/stats?user_id=u1&debug=true", nil, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp, "stats")
	assert.Contains(t, resp, "health")
	assert.Contains(t, resp, "performance")
	assert.Contains(t, resp, "userDebug")

	w = f.do(t, http.MethodGet, "/cache/stats?user_id=u1", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	resp = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotContains(t, resp, "userDebug")
}

func TestCacheStatsPostInvalidateUser(t *testing.T) {
	f := newCacheFixture(t)
	f.seed(t, readingcache.Key("u1", "2026-10-18"), readingcache.Key("u1", "2026-10-19"), readingcache.Key("u9", "2026-10-19"))

	w := f.do(t, http.MethodPost, "/cache/stats", map[string]any{"action": "invalidate_user"}, true)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "missing_param", decodeError(t, w).Error.Code)
	assert.Len(t, f.keys(t), 3)

	w = f.do(t, http.MethodPost, "/cache/stats", map[string]any{"action": "invalidate_user", "userId": "u1", "dryRun": true}, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, f.keys(t), 3)

	w = f.do(t, http.MethodPost, "/cache/stats", map[string]any{"action": "invalidate_user", "userId": "u1"}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{readingcache.Key("u9", "2026-10-19")}, f.keys(t))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalidate_user", resp["action"])
	assert.Equal(t, "admin-1", resp["executedBy"])
	assert.Equal(t, false, resp["dryRun"])
	assert.Equal(t, "2026-10-19T12:00:00Z", resp["timestamp"])
	assert.Len(t, f.sink.entries, 2)
}

func TestCacheStatsPostUnknownAction(t *testing.T) {
	f := newCacheFixture(t)
	w := f.do(t, http.MethodPost, "/cache/stats", map[string]any{"action": "explode"}, true)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_action", decodeError(t, w).Error.Code)
	assert.Empty(t, f.sink.entries)
}

func TestCacheStatsPostWarm(t *testing.T) {
	f := newCacheFixture(t)
	w := f.do(t, http.MethodPost, "/cache/stats", map[string]any{"action": "warm_cache", "userId": "u1", "days": 3}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, f.keys(t), 3)

	w = f.do(t, http.MethodPost, "/cache/stats", map[string]any{"action": "warm_cache", "userId": "ghost"}, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCacheStatsDeleteRequiresConfirm(t *testing.T) {
	f := newCacheFixture(t)
	_, err := f.cache.Get(context.Background(), "u1", "2026-10-19")
	require.NoError(t, err)

	w := f.do(t, http.MethodDelete, "/cache/stats", nil, true)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "confirmation_required", decodeError(t, w).Error.Code)
	assert.EqualValues(t, 1, f.cache.Stats().Misses)

	w = f.do(t, http.MethodDelete, "/cache/stats?confirm=true", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	s := f.cache.Stats()
	assert.Zero(t, s.Misses)
	assert.Zero(t, s.Sets)
	assert.Len(t, f.keys(t), 1, "reset clears counters only")
}

func TestCacheStatsPatchEmergencyFlush(t *testing.T) {
	f := newCacheFixture(t)
	f.seed(t, readingcache.Key("u1", "2026-10-19"), readingcache.Key("u2", "2026-10-19"), "session:x")

	w := f.do(t, http.MethodPatch, "/cache/stats", map[string]any{"operation": "emergency_flush"}, true)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, f.keys(t), 3)

	w = f.do(t, http.MethodPatch, "/cache/stats", map[string]any{"operation": "emergency_flush", "confirm": true}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"session:x"}, f.keys(t))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "emergency_flush", resp["operation"])
	assert.NotEmpty(t, resp["warning"])
}

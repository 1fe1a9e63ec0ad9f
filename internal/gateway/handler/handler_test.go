package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thedesk/internal/gateway/middleware"
	entryrepo "thedesk/internal/gateway/repository/entry"
	mediarepo "thedesk/internal/gateway/repository/media"
	settingsrepo "thedesk/internal/gateway/repository/settings"
	entrysvc "thedesk/internal/gateway/service/entry"
	insightsvc "thedesk/internal/gateway/service/insight"
	settingssvc "thedesk/internal/gateway/service/settings"
	"thedesk/internal/insight"
	"thedesk/internal/journal"
)

func newTestMux(t *testing.T) http.Handler {
	t.Helper()
	entries := entryrepo.NewMemoryStore()
	prefs := settingsrepo.NewMemoryStore()
	entrySvc := entrysvc.New(entrysvc.Options{
		Entries:  entries,
		Media:    mediarepo.NewMemoryStore(),
		Settings: prefs,
		Rand:     insight.SeededRand(1),
	})
	insights, err := insightsvc.New(insightsvc.Options{
		Entries: entries,
		Engine:  insight.New(insight.Options{Rand: insight.SeededRand(1)}),
	})
	require.NoError(t, err)

	mux := http.NewServeMux()
	NewEntryHandler(entrySvc, nil).Register(mux)
	NewInsightHandler(insights, nil).Register(mux)
	NewSettingsHandler(settingssvc.New(prefs, nil), nil).Register(mux)
	NewDebugHandler(map[string]CacheSource{
		"entries": func() any { return map[string]int{"hits": 3} },
	}).Register(mux)
	return middleware.User("")(mux)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch v := body.(type) {
	case nil:
	case []byte:
		buf.Write(v)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(v))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(middleware.UserHeader, "writer-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestEntryCRUD(t *testing.T) {
	h := newTestMux(t)

	rec := do(t, h, http.MethodPost, "/api/v1/entries", map[string]any{
		"kind": "writing",
		"body": "<p>first light</p>",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[journal.Entry](t, rec)
	assert.Equal(t, journal.UntitledEntry, created.Title)
	assert.Equal(t, 2, created.WordCount)

	rec = do(t, h, http.MethodGet, "/api/v1/entries/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"body":"<p>first light</p>"`)

	rec = do(t, h, http.MethodPut, "/api/v1/entries/"+created.ID, map[string]any{"title": "Dawn", "body": "first light again"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Dawn", decode[journal.Entry](t, rec).Title)

	rec = do(t, h, http.MethodGet, "/api/v1/entries?limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Entries []journal.Entry `json:"entries"`
	}](t, rec)
	assert.Len(t, list.Entries, 1)

	rec = do(t, h, http.MethodDelete, "/api/v1/entries/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/entries/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[errorBody](t, rec).Code)
}

func TestEntryValidationErrors(t *testing.T) {
	h := newTestMux(t)

	rec := do(t, h, http.MethodPost, "/api/v1/entries", map[string]any{"kind": "reading"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/entries", []byte("{not json"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/entries?limit=-3", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImageUploadAndDownload(t *testing.T) {
	h := newTestMux(t)

	rec := do(t, h, http.MethodPost, "/api/v1/entries", map[string]any{"kind": "writing", "title": "Sketch"})
	require.Equal(t, http.StatusCreated, rec.Code)
	e := decode[journal.Entry](t, rec)

	png := []byte("\x89PNG\r\n\x1a\n0000")
	rec = do(t, h, http.MethodPut, "/api/v1/entries/"+e.ID+"/image", png)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "name is required")

	rec = do(t, h, http.MethodPut, "/api/v1/entries/"+e.ID+"/image?name=moodboard.png", png)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, e.ID+"/moodboard.png", decode[journal.Entry](t, rec).ImageKey)

	rec = do(t, h, http.MethodGet, "/api/v1/entries/"+e.ID+"/image", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, png, rec.Body.Bytes())
}

func TestInsightEndpoints(t *testing.T) {
	h := newTestMux(t)

	rec := do(t, h, http.MethodPost, "/api/v1/insights", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "insufficient_history", decode[errorBody](t, rec).Code)

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		rec = do(t, h, http.MethodPost, "/api/v1/entries", map[string]any{
			"kind":       "reading",
			"title":      fmt.Sprintf("Volume %d", i),
			"pages":      10,
			"body":       "notes on the chapter",
			"occurredAt": base.Add(time.Duration(i) * time.Hour),
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/api/v1/insights", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	in := decode[journal.Insight](t, rec)
	assert.True(t, in.Complete())

	rec = do(t, h, http.MethodGet, "/api/v1/insights", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	hist := decode[struct {
		Insights []journal.Insight `json:"insights"`
		InFlight bool              `json:"inFlight"`
	}](t, rec)
	assert.Len(t, hist.Insights, 1)
	assert.False(t, hist.InFlight)

	rec = do(t, h, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/ambient", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/v1/entries", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 4, decode[map[string]any](t, rec)["deleted"])

	rec = do(t, h, http.MethodGet, "/api/v1/ambient", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSettingsEndpoints(t *testing.T) {
	h := newTestMux(t)

	rec := do(t, h, http.MethodGet, "/api/v1/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, journal.DefaultPreferences(), decode[journal.Preferences](t, rec))

	rec = do(t, h, http.MethodPut, "/api/v1/settings", map[string]any{"theme": "dark", "autoZen": true, "name": "Mina"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPut, "/api/v1/settings", map[string]any{"fontSize": "large"})
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[journal.Preferences](t, rec)
	assert.Equal(t, journal.ThemeDark, got.Theme, "omitted fields keep saved values")
	assert.Equal(t, journal.FontLarge, got.FontSize)
	assert.True(t, got.AutoZen)
	assert.Equal(t, "Mina", got.Name)

	rec = do(t, h, http.MethodPut, "/api/v1/settings", map[string]any{"theme": "sepia"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_argument", decode[errorBody](t, rec).Code)

	rec = do(t, h, http.MethodDelete, "/api/v1/entries", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, journal.DefaultPreferences(), decode[journal.Preferences](t, rec), "delete all data drops settings")
}

func TestDebugCache(t *testing.T) {
	h := newTestMux(t)

	rec := do(t, h, http.MethodGet, "/api/v1/debug/cache", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Caches map[string]map[string]int `json:"caches"`
	}](t, rec)
	assert.Equal(t, 3, body.Caches["entries"]["hits"])
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("wrap: %w", insight.ErrInsufficientHistory), http.StatusUnprocessableEntity},
		{insightsvc.ErrInFlight, http.StatusConflict},
		{entryrepo.ErrNotFound, http.StatusNotFound},
		{mediarepo.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: bad", entrysvc.ErrInvalid), http.StatusBadRequest},
		{fmt.Errorf("%w: theme", settingssvc.ErrInvalid), http.StatusBadRequest},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		status, _ := StatusFor(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
	}
}

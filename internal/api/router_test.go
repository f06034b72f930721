package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iammorganparry/clive/apps/todo/internal/models"
	"github.com/iammorganparry/clive/apps/todo/internal/store"
)

func setupServer(t *testing.T, apiKey string) (*httptest.Server, *store.TaskStore) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := store.Open(filepath.Join(t.TempDir(), "todo.db"), store.Options{
		RecreateOnMismatch: true,
		Logger:             logger,
	})
	require.NoError(t, err)
	ts := store.NewTaskStore(db, logger)
	srv := httptest.NewServer(NewRouter(ts, apiKey, logger))
	t.Cleanup(func() {
		srv.Close()
		_ = ts.Close()
	})
	return srv, ts
}

func do(t *testing.T, method, url string, body any, headers ...string) *http.Response {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestTasksAPI_CreateListGetDelete(t *testing.T) {
	srv, _ := setupServer(t, "")

	resp := do(t, http.MethodPost, srv.URL+"/tasks", models.CreateTaskRequest{
		Date: "2024-01-01", Title: "A",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.CreateTaskResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, int64(1), created.ID)

	resp = do(t, http.MethodPost, srv.URL+"/tasks", models.CreateTaskRequest{
		Date: "2024-01-02", Title: "B", Description: "desc",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/tasks", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rows []models.DisplayRow
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "A", rows[0].Title)
	assert.True(t, rows[1].Date.Equal(models.NewDate(2024, 1, 2)))

	resp = do(t, http.MethodGet, srv.URL+"/tasks/2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var task models.Task
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&task))
	assert.Equal(t, "B", task.Title)
	assert.Equal(t, "desc", task.Description)

	resp = do(t, http.MethodDelete, srv.URL+"/tasks/1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/tasks/1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodDelete, srv.URL+"/tasks/1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode, "deleting twice is a no-op")
}

func TestTasksAPI_EmptyListIsArray(t *testing.T) {
	srv, _ := setupServer(t, "")

	resp := do(t, http.MethodGet, srv.URL+"/tasks", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(body))
}

func TestTasksAPI_BadRequests(t *testing.T) {
	srv, ts := setupServer(t, "")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"empty title", http.MethodPost, "/tasks", models.CreateTaskRequest{Date: "2024-01-01"}},
		{"bad date", http.MethodPost, "/tasks", models.CreateTaskRequest{Date: "tomorrow", Title: "x"}},
		{"unknown field", http.MethodPost, "/tasks", map[string]string{"title": "x", "priority": "high"}},
		{"non-numeric id", http.MethodGet, "/tasks/abc", nil},
		{"zero id", http.MethodDelete, "/tasks/0", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, srv.URL+tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	n, err := ts.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestTasksAPI_DefaultDateIsToday(t *testing.T) {
	srv, ts := setupServer(t, "")

	resp := do(t, http.MethodPost, srv.URL+"/tasks", models.CreateTaskRequest{Title: "undated"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	task, err := ts.GetDetail(1)
	require.NoError(t, err)
	assert.False(t, task.Date.IsZero())
}

func TestTasksAPI_BearerAuth(t *testing.T) {
	srv, _ := setupServer(t, "secret")

	resp := do(t, http.MethodGet, srv.URL+"/tasks", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/tasks", nil, "Authorization", "Bearer secret")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "health is unauthenticated")
}

func TestHealth(t *testing.T) {
	srv, ts := setupServer(t, "")
	_, err := ts.Create(models.NewDate(2024, 1, 1), "A", "")
	require.NoError(t, err)

	resp := do(t, http.MethodGet, srv.URL+"/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, resp.Header.Get("X-Request-ID"), 8)

	var health models.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 1, health.TaskCount)

	require.NoError(t, ts.Close())

	resp = do(t, http.MethodGet, srv.URL+"/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/tasks", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	historymemory "github.com/webnav/navigator/internal/history/memory"
	"github.com/webnav/navigator/internal/navigator"
)

type fakeJobRunner struct {
	lastQuery string
	lastSteps []navigator.Step
	result    navigator.JobResult
}

func (r *fakeJobRunner) RunJob(_ context.Context, query string, steps []navigator.Step) navigator.JobResult {
	r.lastQuery = query
	r.lastSteps = steps
	return r.result
}

func newTestServer(t *testing.T) (*Server, *fakeJobRunner, *historymemory.Store) {
	t.Helper()
	runner := &fakeJobRunner{
		result: navigator.JobResult{JobID: "job-1", Query: "go channels"},
	}
	history := historymemory.NewStore()
	return NewServer(runner, history, nil), runner, history
}

func TestServer_RunJob(t *testing.T) {
	t.Parallel()

	srv, runner, _ := newTestServer(t)

	body := bytes.NewBufferString(`{
		"query": "go channels",
		"steps": [{"action": "open", "url": "https://duckduckgo.com"}]
	}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/jobs/", body)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var result navigator.JobResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	require.Equal(t, "job-1", result.JobID)

	require.Equal(t, "go channels", runner.lastQuery)
	require.Len(t, runner.lastSteps, 1)
	require.Equal(t, navigator.ActionOpen, runner.lastSteps[0].Action)
}

func TestServer_RunJob_RejectsBadJSON(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/jobs/", bytes.NewBufferString("{broken"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_RunJob_RejectsEmptyQuery(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/jobs/", bytes.NewBufferString(`{"query": ""}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_GetJob(t *testing.T) {
	t.Parallel()

	srv, _, history := newTestServer(t)
	require.NoError(t, history.RecordJob(context.Background(), navigator.JobResult{
		JobID: "job-9",
		Query: "stored",
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/jobs/job-9", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result navigator.JobResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	require.Equal(t, "stored", result.Query)
}

func TestServer_GetJob_NotFound(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/jobs/missing", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Healthz(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestServer_Metrics(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

// Copyright 2026 Arcentra Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arcentrix/caseforge/internal/engine/config"
	"github.com/arcentrix/caseforge/internal/engine/model"
	"github.com/arcentrix/caseforge/internal/engine/repo"
	"github.com/arcentrix/caseforge/internal/engine/service"
	"github.com/arcentrix/caseforge/internal/pkg/extractor"
	"github.com/arcentrix/caseforge/internal/pkg/llm"
	"github.com/arcentrix/caseforge/internal/pkg/pipeline"
	"github.com/arcentrix/caseforge/internal/pkg/storage"
	"github.com/arcentrix/caseforge/pkg/database"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLLM struct{}

func (stubLLM) Complete(_ context.Context, messages []llm.Message) (string, error) {
	user := messages[len(messages)-1].Content
	switch {
	case strings.Contains(user, "Extract the discrete requirements"):
		return `[{"requirement_id":"REQ-1","description":"User can log in"}]`, nil
	case strings.Contains(user, "Create at most"), strings.Contains(user, "Coverage gap"):
		return `[{"id":"TC-1","title":"Login succeeds","requirement_ids":["REQ-1"],"steps":["open login"],"expected_result":"logged in","priority":"High","type":"Functional"}]`, nil
	}
	return "", fmt.Errorf("unexpected prompt")
}

func (s stubLLM) Client(string) (llm.IClient, error) { return s, nil }

type testEnv struct {
	app     *fiber.App
	runRepo repo.IRunRepository
	store   storage.IStorage
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mgr, err := database.NewManager(database.Database{
		Driver: "sqlite",
		SQLite: database.SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db")},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })

	runRepo, err := repo.NewRunRepo(database.NewDatabaseAdapter(mgr))
	require.NoError(t, err)
	store, err := storage.NewStorage(&storage.Config{Provider: storage.Local, LocalPath: t.TempDir()})
	require.NoError(t, err)

	cfg := pipeline.Config{LLMAttempts: 1}
	engine := pipeline.NewEngine(cfg, runRepo, store, stubLLM{}, pipeline.NewMetrics(prometheus.NewRegistry()))
	svc := service.NewRunService(cfg, runRepo, engine, store, extractor.ProvideExtractor(extractor.Config{}))
	t.Cleanup(svc.Stop)

	conf := &config.AppConfig{}
	conf.Http.SetDefaults()
	conf.Http.AccessLog = false

	rt := NewRouter(conf, svc)
	return &testEnv{app: rt.Router(), runRepo: runRepo, store: store}
}

func (e *testEnv) do(t *testing.T, req *nethttp.Request) (*nethttp.Response, map[string]any) {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	var decoded map[string]any
	if len(body) > 0 && strings.Contains(resp.Header.Get("Content-Type"), "json") {
		_ = json.Unmarshal(body, &decoded)
	}
	if decoded == nil {
		decoded = map[string]any{"_raw": string(body)}
	}
	return resp, decoded
}

func multipartUpload(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	for key, value := range fields {
		require.NoError(t, w.WriteField(key, value))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.do(t, httptest.NewRequest(nethttp.MethodGet, "/api/health", nil))
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
}

func TestStatusEndpoint_NotFound(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.do(t, httptest.NewRequest(nethttp.MethodGet, "/api/status/nope", nil))
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	assert.Equal(t, float64(10404), body["code"])
}

func TestIngestEndpoint_CreatesRun(t *testing.T) {
	env := newTestEnv(t)
	buf, contentType := multipartUpload(t,
		map[string]string{"max_cases": "20", "model": "gpt-4o-mini"},
		map[string]string{"requirements.txt": "REQ-1: The system shall allow login."})

	req := httptest.NewRequest(nethttp.MethodPost, "/api/ingest", buf)
	req.Header.Set("Content-Type", contentType)
	resp, body := env.do(t, req)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode, "body: %v", body)

	runId, _ := body["run_id"].(string)
	require.NotEmpty(t, runId)

	resp, status := env.do(t, httptest.NewRequest(nethttp.MethodGet, "/api/status/"+runId, nil))
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, model.RunStatusPending, status["status"])
	assert.Equal(t, float64(0), status["progress_percentage"])
	assert.Equal(t, "requirements.txt", status["filename"])
}

func TestIngestEndpoint_NoFiles(t *testing.T) {
	env := newTestEnv(t)
	buf, contentType := multipartUpload(t, map[string]string{"max_cases": "20"}, nil)

	req := httptest.NewRequest(nethttp.MethodPost, "/api/ingest", buf)
	req.Header.Set("Content-Type", contentType)
	resp, body := env.do(t, req)
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, float64(10400), body["code"])
}

func TestIngestEndpoint_UnsupportedMedia(t *testing.T) {
	env := newTestEnv(t)
	buf, contentType := multipartUpload(t, nil, map[string]string{"diagram.png": "not a requirement"})

	req := httptest.NewRequest(nethttp.MethodPost, "/api/ingest", buf)
	req.Header.Set("Content-Type", contentType)
	resp, body := env.do(t, req)
	assert.Equal(t, nethttp.StatusUnsupportedMediaType, resp.StatusCode)
	assert.Equal(t, float64(10415), body["code"])
}

func TestIngestEndpoint_BadOptions(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name   string
		fields map[string]string
	}{
		{"non-numeric max_cases", map[string]string{"max_cases": "lots"}},
		{"out of range max_cases", map[string]string{"max_cases": "101"}},
		{"non-boolean auditor flag", map[string]string{"enable_coverage_auditor": "maybe"}},
		{"out of range repair_attempts", map[string]string{"repair_attempts": "9"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, contentType := multipartUpload(t, tt.fields,
				map[string]string{"requirements.txt": "REQ-1: login"})
			req := httptest.NewRequest(nethttp.MethodPost, "/api/ingest", buf)
			req.Header.Set("Content-Type", contentType)
			resp, _ := env.do(t, req)
			assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestGenerateEndpoint_NotFound(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.do(t, httptest.NewRequest(nethttp.MethodPost, "/api/generate/nope", nil))
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	assert.Equal(t, float64(10404), body["code"])
}

func TestGenerateEndpoint_CompletedWithoutForce(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.runRepo.Create(context.Background(),
		&model.Run{RunId: "done", Status: model.RunStatusCompleted}))

	resp, body := env.do(t, httptest.NewRequest(nethttp.MethodPost, "/api/generate/done", nil))
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "run already completed", body["message"])
}

func TestArtifactEndpoint(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Unknown artifact kind.
	resp, body := env.do(t, httptest.NewRequest(nethttp.MethodGet, "/api/artifacts/any/secrets.txt", nil))
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	assert.Equal(t, float64(10404), body["code"])

	// Run exists but has not completed.
	require.NoError(t, env.runRepo.Create(ctx, &model.Run{RunId: "pending-run", Status: model.RunStatusPending}))
	resp, body = env.do(t, httptest.NewRequest(nethttp.MethodGet, "/api/artifacts/pending-run/testcases.json", nil))
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, float64(10412), body["code"])

	// Completed run streams the stored bytes with download headers.
	require.NoError(t, env.runRepo.Create(ctx, &model.Run{RunId: "done-run", Status: model.RunStatusCompleted}))
	require.NoError(t, env.store.Put(ctx, "done-run", pipeline.ArtifactTestCasesCSV, []byte("id,title\n")))
	resp, raw := env.do(t, httptest.NewRequest(nethttp.MethodGet, "/api/artifacts/done-run/testcases.csv", nil))
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="testcases.csv"`)
	assert.Equal(t, "id,title\n", raw["_raw"])
}

func TestHistoryEndpoint(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.runRepo.Create(ctx, &model.Run{RunId: "run-1", Status: model.RunStatusCompleted}))
	require.NoError(t, env.runRepo.Create(ctx, &model.Run{RunId: "run-2", Status: model.RunStatusPending}))

	resp, err := env.app.Test(httptest.NewRequest(nethttp.MethodGet, "/api/history?limit=10", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)

	var runs []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&runs))
	assert.Len(t, runs, 2)
}

func TestDeleteEndpoint(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.runRepo.Create(ctx, &model.Run{RunId: "run-1", Status: model.RunStatusCompleted}))

	resp, body := env.do(t, httptest.NewRequest(nethttp.MethodDelete, "/api/runs/run-1", nil))
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "run deleted", body["message"])

	resp, _ = env.do(t, httptest.NewRequest(nethttp.MethodDelete, "/api/runs/run-1", nil))
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
}

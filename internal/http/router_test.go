package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/stoplight-backend/internal/blob/memory"
	"github.com/yungbote/stoplight-backend/internal/embedding"
	"github.com/yungbote/stoplight-backend/internal/embedding/local"
	httpH "github.com/yungbote/stoplight-backend/internal/http/handlers"
	"github.com/yungbote/stoplight-backend/internal/observability"
	"github.com/yungbote/stoplight-backend/internal/runlog"
	"github.com/yungbote/stoplight-backend/internal/sheets"
	"github.com/yungbote/stoplight-backend/internal/sheets/sheetstest"
	"github.com/yungbote/stoplight-backend/internal/survey"
)

func newTestRouter(t *testing.T) (*gin.Engine, *observability.Metrics) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.New()
	_, err := store.Put("east.xlsx", sheetstest.XLSX(t,
		sheetstest.Sheet{Name: survey.SheetIndicators, Rows: [][]any{
			{"familyCode", "surveyNumber", "water", "income", "housing"},
			{"F1", "1", 1, 1, 1},
			{"F2", "1", 1, 2, 1},
			{"F3", "1", 3, 3, 3},
			{"F4", "1", 3, 3, 2},
			{"F5", "1", 2, 1, 3},
		}},
		sheetstest.Sheet{Name: survey.SheetPriorities, Rows: [][]any{
			{"familyCode", "surveyNumber", "level", "indicator"},
		}},
		sheetstest.Sheet{Name: survey.SheetFamilies, Rows: [][]any{
			{"familyCode", "surveyNumber"},
		}},
	))
	require.NoError(t, err)

	metrics := observability.New()
	ledger, err := runlog.Open("sqlite", ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ledger.Close() })

	exec := embedding.NewExecutor(local.New(), embedding.Options{Metrics: metrics})
	t.Cleanup(exec.Close)

	loader := survey.NewLoader(sheets.NewReader(store, ""), metrics, nil)
	svc := survey.NewService(loader, exec, ledger, nil)

	return NewRouter(RouterConfig{
		Metrics:          metrics,
		CORSOrigins:      []string{"http://localhost:5173"},
		MaxRequestBytes:  1 << 16,
		EmbeddingHandler: httpH.NewEmbeddingHandler(svc, embedding.DefaultSeed),
		DatasetHandler:   httpH.NewDatasetHandler(svc),
		RunHandler:       httpH.NewRunHandler(ledger),
		HealthHandler:    httpH.NewHealthHandler(),
	}), metrics
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestLegacyAndAPIRoutesAgree(t *testing.T) {
	r, _ := newTestRouter(t)
	body := `{"filename":"east.xlsx","n_neighbors":2,"min_dist":0.1}`

	legacy := do(r, http.MethodPost, "/umap", body)
	require.Equal(t, http.StatusOK, legacy.Code, legacy.Body.String())
	api := do(r, http.MethodPost, "/api/embeddings", body)
	require.Equal(t, http.StatusOK, api.Code, api.Body.String())
	assert.JSONEq(t, legacy.Body.String(), api.Body.String())

	var full struct {
		Data []struct {
			Embedding [2]float64 `json:"embedding"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(api.Body.Bytes(), &full))
	require.Len(t, full.Data, 5)

	re := do(r, http.MethodPost, "/api/embeddings/recompute", body)
	require.Equal(t, http.StatusOK, re.Code, re.Body.String())
	var only struct {
		Embedding [][2]float64 `json:"embedding"`
	}
	require.NoError(t, json.Unmarshal(re.Body.Bytes(), &only))
	require.Len(t, only.Embedding, 5)
	for i := range only.Embedding {
		assert.InDelta(t, full.Data[i].Embedding[0], only.Embedding[i][0], 1e-9)
		assert.InDelta(t, full.Data[i].Embedding[1], only.Embedding[i][1], 1e-9)
	}
}

func TestZeroNeighborsIsRejected(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := do(r, http.MethodPost, "/umap", `{"filename":"east.xlsx","n_neighbors":0}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"embedding_error"`)
}

func TestRunsAndMetricsReflectRequests(t *testing.T) {
	r, _ := newTestRouter(t)

	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/umap", `{"filename":"east.xlsx","n_neighbors":2}`).Code)
	bad := do(r, http.MethodPost, "/umap", `{"filename":"east.xlsx","n_neighbors":9}`)
	require.Equal(t, http.StatusUnprocessableEntity, bad.Code, bad.Body.String())

	runs := do(r, http.MethodGet, "/api/runs?limit=10", "")
	require.Equal(t, http.StatusOK, runs.Code)
	var out struct {
		Runs []runlog.Run `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(runs.Body.Bytes(), &out))
	require.Len(t, out.Runs, 2)
	successes := 0
	for _, run := range out.Runs {
		assert.Equal(t, "local", run.Engine)
		if run.Success {
			successes++
		}
	}
	assert.Equal(t, 1, successes)

	metrics := do(r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), `stoplight_embedding_runs_total{engine="local",outcome="ok"} 1`)
	assert.Contains(t, metrics.Body.String(), `stoplight_api_requests_total{method="POST",route="/umap",status="422"} 1`)
}

func TestDatasetsAndHealth(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := do(r, http.MethodGet, "/api/datasets", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"east.xlsx"`)

	rec = do(r, http.MethodGet, "/healthcheck", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestOversizedBodyRejected(t *testing.T) {
	r, _ := newTestRouter(t)
	big := `{"filename":"east.xlsx","metric":"` + string(bytes.Repeat([]byte("a"), 1<<17)) + `"}`
	rec := do(r, http.MethodPost, "/umap", big)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
}

func TestPreflightOnLegacyRoute(t *testing.T) {
	r, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/umap", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

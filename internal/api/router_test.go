package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Rrens/nl2sql/internal/api"
	"github.com/Rrens/nl2sql/internal/config"
	"github.com/Rrens/nl2sql/internal/llm"
	"github.com/Rrens/nl2sql/internal/service"
	"github.com/Rrens/nl2sql/internal/worker"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedGenerator struct {
	reply func(model *llm.Model, prompt string) (string, error)
}

func (g scriptedGenerator) Generate(ctx context.Context, model *llm.Model, prompt string, temperature float32) (string, error) {
	return g.reply(model, prompt)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func newTestServer(t *testing.T, maxAttempts int) *httptest.Server {
	t.Helper()

	models := &llm.Models{
		FastSQL:    &llm.Model{ID: "gemini-1.5-flash", Family: llm.FamilyContent},
		FineSQL:    &llm.Model{ID: "text-unicorn", Family: llm.FamilyCompletion},
		Validation: &llm.Model{ID: "gemini-pro", Family: llm.FamilyContent},
		Correction: &llm.Model{ID: "codechat-bison-32k", Family: llm.FamilyCodeChat},
	}

	gen := scriptedGenerator{reply: func(model *llm.Model, prompt string) (string, error) {
		switch model {
		case models.Validation:
			return `{"question": "What is the total amount?", "is_matching": "True", "mismatch_details": ""}`, nil
		case models.Correction:
			return "SELECT SUM(amount)\nFROM sales", nil
		case models.FastSQL:
			return "SELECT 'fast'", nil
		}
		return "SELECT\n  SUM(amount)\nFROM sales", nil
	}}

	cfg := &config.Config{
		Models: config.ModelsConfig{
			FastSQLGeneration: "gemini-1.5-flash",
			FineSQLGeneration: "text-unicorn",
			Validation:        "gemini-pro",
			SQLCorrection:     "codechat-bison-32k",
		},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}

	sqlService := service.NewSQLService(gen, models, "", worker.NewPool(2, zerolog.Nop()), zerolog.Nop())
	correctionService := service.NewCorrectionService(sqlService, service.NewCorrectionStore(time.Hour), nil, maxAttempts)

	srv := httptest.NewServer(api.NewRouter(api.Dependencies{
		Config:            cfg,
		Registry:          llm.NewRegistry(llm.Backends{}, 0, zerolog.Nop()),
		SQLService:        sqlService,
		CorrectionService: correctionService,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url string, body any) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp.StatusCode, env
}

func TestRouter_Generate(t *testing.T) {
	srv := newTestServer(t, 0)

	status, env := do(t, http.MethodPost, srv.URL+"/api/v1/sql/generate", map[string]any{
		"question":     "total sales",
		"table_schema": "CREATE TABLE sales (amount NUMERIC)",
	})
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	var result struct {
		SQL   string `json:"sql"`
		Tier  string `json:"tier"`
		Model string `json:"model"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "SELECT SUM(amount) FROM sales", result.SQL)
	assert.Equal(t, "fine", result.Tier)
	assert.Equal(t, "text-unicorn", result.Model)
}

func TestRouter_GenerateValidation(t *testing.T) {
	srv := newTestServer(t, 0)

	status, env := do(t, http.MethodPost, srv.URL+"/api/v1/sql/generate", map[string]any{
		"question": "total sales",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
	assert.Contains(t, string(env.Error), "TableSchema")

	status, _ = do(t, http.MethodPost, srv.URL+"/api/v1/sql/generate", map[string]any{
		"question":          "q",
		"table_schema":      "s",
		"similar_questions": []map[string]string{{"question": "only question"}},
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRouter_GenerateBatch(t *testing.T) {
	srv := newTestServer(t, 0)

	status, env := do(t, http.MethodPost, srv.URL+"/api/v1/sql/generate/batch", map[string]any{
		"requests": []map[string]any{
			{"question": "q1", "table_schema": "s"},
			{"question": "q2", "table_schema": "s", "similar_questions": []map[string]string{{"question": "q", "sql_query": "SELECT 1"}}},
		},
	})
	require.Equal(t, http.StatusOK, status)

	var data struct {
		Results []struct {
			Index  int `json:"index"`
			Result struct {
				SQL  string `json:"sql"`
				Tier string `json:"tier"`
			} `json:"result"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Results, 2)
	assert.Equal(t, "fine", data.Results[0].Result.Tier)
	assert.Equal(t, "fast", data.Results[1].Result.Tier)
	assert.Equal(t, "SELECT 'fast'", data.Results[1].Result.SQL)
}

func TestRouter_Explain(t *testing.T) {
	srv := newTestServer(t, 0)

	status, env := do(t, http.MethodPost, srv.URL+"/api/v1/sql/explain", map[string]any{
		"question":     "total sales",
		"sql":          "SELECT SUM(amount) FROM sales",
		"table_schema": "s",
	})
	require.Equal(t, http.StatusOK, status)

	var explanation struct {
		ReversedQuestion string `json:"reversed_question"`
		IsMatching       bool   `json:"is_matching"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &explanation))
	assert.True(t, explanation.IsMatching)
	assert.Equal(t, "What is the total amount?", explanation.ReversedQuestion)
}

func TestRouter_CorrectionLifecycle(t *testing.T) {
	srv := newTestServer(t, 1)
	base := srv.URL + "/api/v1/corrections"

	status, env := do(t, http.MethodPost, base, map[string]any{
		"question":     "total sales",
		"table_schema": "s",
	})
	require.Equal(t, http.StatusCreated, status)

	var info struct {
		ID          string `json:"id"`
		MaxAttempts int    `json:"max_attempts"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.Equal(t, 1, info.MaxAttempts)

	status, env = do(t, http.MethodPost, base+"/"+info.ID+"/attempts", map[string]any{
		"sql":            "SELECT SUM(amt) FROM sales",
		"bigquery_error": "Unrecognized name: amt",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "SELECT SUM(amount) FROM sales")

	status, _ = do(t, http.MethodPost, base+"/"+info.ID+"/attempts", map[string]any{"sql": "S2"})
	assert.Equal(t, http.StatusConflict, status)

	status, env = do(t, http.MethodGet, base+"/"+info.ID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "Unrecognized name: amt")

	status, _ = do(t, http.MethodGet, base+"/"+info.ID+"/attempts", nil)
	assert.Equal(t, http.StatusNotImplemented, status)

	status, _ = do(t, http.MethodDelete, base+"/"+info.ID, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = do(t, http.MethodGet, base+"/"+info.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, http.MethodGet, base+"/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, 0)

	status, env := do(t, http.MethodGet, srv.URL+"/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	status, _ = do(t, http.MethodGet, srv.URL+"/api/v1/ready", nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = do(t, http.MethodGet, srv.URL+"/api/v1/models", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "codechat-bison-32k")

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), "nl2sql_generations_total") || strings.Contains(string(raw), "go_goroutines"))
}

package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Rrens/nl2sql/internal/llm"
	"github.com/Rrens/nl2sql/internal/service"
	"github.com/Rrens/nl2sql/internal/worker"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	prompts []string
}

func (g *fakeGenerator) Generate(ctx context.Context, model *llm.Model, prompt string, temperature float32) (string, error) {
	g.prompts = append(g.prompts, prompt)
	switch model.Family {
	case llm.FamilyCodeChat:
		return "SELECT fixed\nFROM t", nil
	case llm.FamilyCompletion:
		return "SELECT fine FROM t", nil
	}
	if strings.Contains(prompt, "[Evaluation]:") {
		return `{"question": "q", "is_matching": "False", "mismatch_details": "missing filter"}`, nil
	}
	return "SELECT fast FROM t", nil
}

func testFactory(gen *fakeGenerator) serviceFactory {
	return func(ctx context.Context) (*service.SQLService, func(), error) {
		models := &llm.Models{
			FastSQL:    &llm.Model{ID: "gemini-1.5-flash", Family: llm.FamilyContent},
			FineSQL:    &llm.Model{ID: "text-unicorn", Family: llm.FamilyCompletion},
			Validation: &llm.Model{ID: "gemini-pro", Family: llm.FamilyContent},
			Correction: &llm.Model{ID: "codechat-bison-32k", Family: llm.FamilyCodeChat},
		}
		svc := service.NewSQLService(gen, models, "", worker.NewPool(1, zerolog.Nop()), zerolog.Nop())
		return svc, func() {}, nil
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, gen *fakeGenerator, args ...string) (string, error) {
	t.Helper()
	level := ""
	root := newRootCmd(testFactory(gen), &level)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestGenerateCmd(t *testing.T) {
	schema := writeFile(t, "schema.sql", "CREATE TABLE t (a INT64)")
	examples := writeFile(t, "examples.json", `[{"question": "count rows", "sql_query": "SELECT COUNT(*) FROM t"}]`)

	t.Run("fine model without examples", func(t *testing.T) {
		out, err := run(t, &fakeGenerator{}, "generate", "-q", "all rows", "--schema-file", schema)
		require.NoError(t, err)
		assert.Equal(t, "SELECT fine FROM t\n", out)
	})

	t.Run("fast model with examples", func(t *testing.T) {
		gen := &fakeGenerator{}
		out, err := run(t, gen, "generate", "-q", "all rows", "--schema-file", schema, "--examples-file", examples, "--json")
		require.NoError(t, err)
		assert.Contains(t, out, `"tier": "fast"`)
		require.Len(t, gen.prompts, 1)
		assert.Contains(t, gen.prompts[0], "SELECT COUNT(*) FROM t")
	})

	t.Run("missing question", func(t *testing.T) {
		_, err := run(t, &fakeGenerator{}, "generate", "--schema-file", schema)
		assert.EqualError(t, err, "--question is required")
	})
}

func TestExplainCmd(t *testing.T) {
	schema := writeFile(t, "schema.sql", "CREATE TABLE t (a INT64)")

	out, err := run(t, &fakeGenerator{}, "explain", "-q", "rows with a > 1", "--schema-file", schema, "--sql", "SELECT * FROM t")
	require.NoError(t, err)
	assert.Contains(t, out, `"is_matching": false`)
	assert.Contains(t, out, `"mismatch_details": "missing filter"`)

	_, err = run(t, &fakeGenerator{}, "explain", "-q", "q", "--schema-file", schema)
	assert.EqualError(t, err, "--sql is required")
}

func TestCorrectCmd(t *testing.T) {
	schema := writeFile(t, "schema.sql", "CREATE TABLE t (a INT64)")

	t.Run("single attempt", func(t *testing.T) {
		out, err := run(t, &fakeGenerator{}, "correct", "-q", "q", "--schema-file", schema, "--sql", "SELECT b FROM t", "--bigquery-error", "Unrecognized name: b")
		require.NoError(t, err)
		assert.Equal(t, "SELECT fixed FROM t\n", out)
	})

	t.Run("attempts file", func(t *testing.T) {
		attempts := writeFile(t, "attempts.json", `[{"sql": "S1", "bigquery_error": "E1"}, {"sql": "S2", "validation_error": "E2"}]`)
		gen := &fakeGenerator{}

		out, err := run(t, gen, "correct", "-q", "q", "--schema-file", schema, "--attempts-file", attempts)
		require.NoError(t, err)
		assert.Equal(t, "SELECT fixed FROM t\nSELECT fixed FROM t\n", out)
		require.Len(t, gen.prompts, 2)
		assert.Contains(t, gen.prompts[1], "S1\n\nS2\n\n")
	})

	t.Run("max attempts", func(t *testing.T) {
		attempts := writeFile(t, "attempts.json", `[{"sql": "S1"}, {"sql": "S2"}]`)
		_, err := run(t, &fakeGenerator{}, "correct", "-q", "q", "--schema-file", schema, "--attempts-file", attempts, "--max-attempts", "1")
		assert.ErrorIs(t, err, service.ErrAttemptsExhausted)
	})

	t.Run("nothing to correct", func(t *testing.T) {
		_, err := run(t, &fakeGenerator{}, "correct", "-q", "q", "--schema-file", schema)
		assert.Error(t, err)
	})
}

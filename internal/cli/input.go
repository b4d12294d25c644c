package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Rrens/nl2sql/internal/domain"
)

type request struct {
	question    string
	tableSchema string
	similar     []domain.SimilarQuestion
}

func (o *options) load() (request, error) {
	if o.question == "" {
		return request{}, errors.New("--question is required")
	}
	if o.schemaFile == "" {
		return request{}, errors.New("--schema-file is required")
	}

	schema, err := os.ReadFile(o.schemaFile)
	if err != nil {
		return request{}, fmt.Errorf("failed to read schema file: %w", err)
	}

	req := request{question: o.question, tableSchema: string(schema)}

	if o.examplesFile != "" {
		data, err := os.ReadFile(o.examplesFile)
		if err != nil {
			return request{}, fmt.Errorf("failed to read examples file: %w", err)
		}
		if err := json.Unmarshal(data, &req.similar); err != nil {
			return request{}, fmt.Errorf("failed to parse examples file: %w", err)
		}
	}

	return req, nil
}

func readAttempts(path string) ([]domain.CorrectionAttemptRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read attempts file: %w", err)
	}
	var attempts []domain.CorrectionAttemptRequest
	if err := json.Unmarshal(data, &attempts); err != nil {
		return nil, fmt.Errorf("failed to parse attempts file: %w", err)
	}
	if len(attempts) == 0 {
		return nil, errors.New("attempts file holds no attempts")
	}
	return attempts, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

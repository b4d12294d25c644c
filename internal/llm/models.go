package llm

import "fmt"

// ModelIDs holds the configured identifier for each role
type ModelIDs struct {
	FastSQL    string
	FineSQL    string
	Validation string
	Correction string
}

// Models holds one handle per role, created once at start-up
type Models struct {
	FastSQL    *Model
	FineSQL    *Model
	Validation *Model
	Correction *Model
}

// NewModels creates the handles for every role, failing on the first unusable identifier
func NewModels(r *Registry, ids ModelIDs) (*Models, error) {
	models := &Models{}
	roles := []struct {
		role string
		id   string
		dst  **Model
	}{
		{"fast_sql_generation_model", ids.FastSQL, &models.FastSQL},
		{"fine_sql_generation_model", ids.FineSQL, &models.FineSQL},
		{"validation_model_id", ids.Validation, &models.Validation},
		{"sql_correction_model_id", ids.Correction, &models.Correction},
	}

	for _, role := range roles {
		m, err := r.CreateModel(role.id)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", role.role, err)
		}
		*role.dst = m
	}

	return models, nil
}

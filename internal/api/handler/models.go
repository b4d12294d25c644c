package handler

import (
	"net/http"
	"sort"

	"github.com/Rrens/nl2sql/internal/api/response"
	"github.com/Rrens/nl2sql/internal/config"
	"github.com/Rrens/nl2sql/internal/llm"
)

// ListModels returns the configured model for each role and every created model handle
func ListModels(cfg config.ModelsConfig, registry *llm.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		models := registry.ListModels()
		sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })

		response.OK(w, map[string]any{
			"roles": map[string]string{
				"fast_sql_generation_model": cfg.FastSQLGeneration,
				"fine_sql_generation_model": cfg.FineSQLGeneration,
				"validation_model_id":       cfg.Validation,
				"sql_correction_model_id":   cfg.SQLCorrection,
			},
			"models": models,
		})
	}
}

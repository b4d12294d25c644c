package handler

import (
	"net/http"

	"github.com/Rrens/nl2sql/internal/api/response"
	"github.com/Rrens/nl2sql/internal/domain"
	"github.com/Rrens/nl2sql/internal/service"
	"github.com/rs/zerolog/log"
)

// SQLHandler handles generation and explanation endpoints
type SQLHandler struct {
	sqlService *service.SQLService
}

// NewSQLHandler creates a new SQL handler
func NewSQLHandler(sqlService *service.SQLService) *SQLHandler {
	return &SQLHandler{sqlService: sqlService}
}

// Generate handles single SQL generation
func (h *SQLHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.sqlService.GenerateSQL(r.Context(), req.Question, req.TableSchema, req.SimilarQuestions)
	if err != nil {
		log.Error().Err(err).Msg("SQL generation failed")
		writeServiceError(w, err)
		return
	}

	response.OK(w, result)
}

// GenerateBatch handles several independent generations in one request
func (h *SQLHandler) GenerateBatch(w http.ResponseWriter, r *http.Request) {
	var req domain.BatchGenerateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	response.OK(w, map[string]any{
		"results": h.sqlService.GenerateBatch(r.Context(), req.Requests),
	})
}

// Explain handles SQL reflection
func (h *SQLHandler) Explain(w http.ResponseWriter, r *http.Request) {
	var req domain.ExplainRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	explanation, err := h.sqlService.ExplainSQL(r.Context(), req.Question, req.SQL, req.TableSchema, req.SimilarQuestions)
	if err != nil {
		log.Error().Err(err).Msg("SQL explanation failed")
		writeServiceError(w, err)
		return
	}

	response.OK(w, explanation)
}

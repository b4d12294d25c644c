package handler

import (
	"errors"
	"net/http"

	"github.com/Rrens/nl2sql/internal/api/response"
	"github.com/Rrens/nl2sql/internal/llm"
	"github.com/Rrens/nl2sql/internal/service"
)

// writeServiceError maps service and model errors to HTTP statuses
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, service.ErrAttemptsExhausted):
		response.Conflict(w, err.Error())
	case errors.Is(err, service.ErrAttemptLogDisabled):
		response.Error(w, http.StatusNotImplemented, err.Error())
	case errors.Is(err, llm.ErrEmptyResponse),
		errors.Is(err, llm.ErrBackendNotConfigured),
		errors.Is(err, llm.ErrUnsupportedModel):
		response.BadGateway(w, err.Error())
	default:
		response.InternalError(w, err.Error())
	}
}

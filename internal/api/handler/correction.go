package handler

import (
	"net/http"

	"github.com/Rrens/nl2sql/internal/api/response"
	"github.com/Rrens/nl2sql/internal/domain"
	"github.com/Rrens/nl2sql/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CorrectionHandler handles correction session endpoints
type CorrectionHandler struct {
	correctionService *service.CorrectionService
}

// NewCorrectionHandler creates a new correction handler
func NewCorrectionHandler(correctionService *service.CorrectionService) *CorrectionHandler {
	return &CorrectionHandler{correctionService: correctionService}
}

// Create opens a correction session
func (h *CorrectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCorrectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	response.Created(w, h.correctionService.Open(req))
}

// Attempt submits a failed query to a session and returns the corrected candidate
func (h *CorrectionHandler) Attempt(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req domain.CorrectionAttemptRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.correctionService.Attempt(r.Context(), id, req)
	if err != nil {
		log.Error().Err(err).Str("correction_session", id.String()).Msg("SQL correction failed")
		writeServiceError(w, err)
		return
	}

	response.OK(w, resp)
}

// Get returns a session with its history
func (h *CorrectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	info, err := h.correctionService.Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, info)
}

// ListAttempts returns the persisted attempts of a session
func (h *CorrectionHandler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	attempts, err := h.correctionService.ListAttempts(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, attempts)
}

// Delete closes a session
func (h *CorrectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	if err := h.correctionService.Close(id); err != nil {
		writeServiceError(w, err)
		return
	}

	response.NoContent(w)
}

func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		response.BadRequest(w, "invalid correction session ID")
		return uuid.Nil, false
	}
	return id, true
}

package handler

import (
	"context"
	"net/http"

	"github.com/Rrens/nl2sql/internal/api/response"
)

// CacheFlusher drops cached generations
type CacheFlusher interface {
	FlushAll(ctx context.Context) (int64, error)
}

// FlushCache removes every cached generation
func FlushCache(cache CacheFlusher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deleted, err := cache.FlushAll(r.Context())
		if err != nil {
			response.InternalError(w, "failed to flush cache")
			return
		}

		response.OK(w, map[string]any{
			"deleted": deleted,
		})
	}
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/ott-platform/internal/platform/api"
	"github.com/example/ott-platform/internal/platform/httpserver"
	"github.com/example/ott-platform/services/activity/internal/store"
)

const defaultHistoryLimit = 50

// GetHistory handles GET /v1/history/{user_id}?limit=.
func GetHistory(hs store.HistoryStore, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		userID := chi.URLParam(r, "user_id")
		if userID == "" {
			api.BadRequest(w, "MISSING_USER_ID", "user_id is required", rid, nil)
			return
		}

		limit := defaultHistoryLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				api.BadRequest(w, "INVALID_LIMIT", "limit must be a positive integer", rid, nil)
				return
			}
			if n < limit {
				limit = n
			}
		}

		recs, err := hs.List(r.Context(), userID, limit)
		if err != nil {
			log.Error("history list", zap.Error(err))
			api.Internal(w, rid)
			return
		}
		if recs == nil {
			recs = []store.HistoryRecord{}
		}
		api.WriteJSON(w, http.StatusOK, map[string]any{"items": recs})
	}
}

package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/ott-platform/internal/platform/api"
	"github.com/example/ott-platform/internal/platform/httpserver"
	"github.com/example/ott-platform/services/catalog/internal/store"
)

var contentTypes = map[string]bool{"movie": true, "tv_show": true}

// CreateContent handles POST /v1/content, operator-only.
func CreateContent(cs store.ContentStore, log *zap.Logger) http.HandlerFunc {
	type request struct {
		Type            string   `json:"type"`
		Title           string   `json:"title"`
		Description     string   `json:"description"`
		ReleaseDate     string   `json:"release_date"`
		DurationMinutes *int     `json:"duration_minutes"`
		MaturityRating  string   `json:"maturity_rating"`
		PosterURL       string   `json:"poster_url"`
		ThumbnailURL    string   `json:"thumbnail_url"`
		TierRequirement string   `json:"tier_requirement"`
		GenreIDs        []string `json:"genre_ids"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		var req request
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "Invalid request body", rid, nil)
			return
		}
		if strings.TrimSpace(req.Title) == "" {
			api.BadRequest(w, "VALIDATION_TITLE", "title is required", rid, map[string]any{"title": "required"})
			return
		}
		if !contentTypes[req.Type] {
			api.BadRequest(w, "VALIDATION_TYPE", "type must be movie or tv_show", rid, map[string]any{"type": "invalid"})
			return
		}

		var releaseDate *time.Time
		if req.ReleaseDate != "" {
			t, err := time.Parse("2006-01-02", req.ReleaseDate)
			if err != nil {
				api.BadRequest(w, "VALIDATION_RELEASE_DATE", "release_date must be YYYY-MM-DD", rid, nil)
				return
			}
			releaseDate = &t
		}

		tier := req.TierRequirement
		if tier == "" {
			tier = "free"
		}

		c, err := cs.Create(r.Context(), store.CreateContentParams{
			Type:            req.Type,
			Title:           strings.TrimSpace(req.Title),
			Description:     req.Description,
			ReleaseDate:     releaseDate,
			DurationMinutes: req.DurationMinutes,
			MaturityRating:  req.MaturityRating,
			PosterURL:       req.PosterURL,
			ThumbnailURL:    req.ThumbnailURL,
			TierRequirement: tier,
			GenreIDs:        req.GenreIDs,
		})
		if err != nil {
			log.Error("create content", zap.Error(err))
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusCreated, c)
	}
}

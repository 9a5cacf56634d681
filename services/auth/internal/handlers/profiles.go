package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/ott-platform/internal/platform/api"
	platformauth "github.com/example/ott-platform/internal/platform/auth"
	"github.com/example/ott-platform/internal/platform/httpserver"
	"github.com/example/ott-platform/services/auth/internal/domain"
	"github.com/example/ott-platform/services/auth/internal/store"
)

// ListProfiles handles GET /v1/profiles.
func ListProfiles(d AuthDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		userID, ok := platformauth.UserIDFromContext(r.Context())
		if !ok {
			api.Unauthorized(w, "AUTH_MISSING", "Missing bearer token", rid)
			return
		}
		profiles, err := d.Store.ListProfiles(r.Context(), userID)
		if err != nil {
			api.Internal(w, rid)
			return
		}
		if profiles == nil {
			profiles = []domain.Profile{}
		}
		api.WriteJSON(w, http.StatusOK, map[string]any{"profiles": profiles})
	}
}

// CreateProfile handles POST /v1/profiles.
func CreateProfile(d AuthDeps) http.HandlerFunc {
	type request struct {
		Name               string `json:"name"`
		LanguagePreference string `json:"language_preference"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		userID, ok := platformauth.UserIDFromContext(r.Context())
		if !ok {
			api.Unauthorized(w, "AUTH_MISSING", "Missing bearer token", rid)
			return
		}
		var req request
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "Invalid request body", rid, nil)
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			api.BadRequest(w, "VALIDATION_NAME", "name is required", rid, map[string]any{"name": "required"})
			return
		}

		p, err := d.Store.CreateProfile(r.Context(), store.CreateProfileParams{
			UserID:             userID,
			Name:               name,
			LanguagePreference: strings.TrimSpace(req.LanguagePreference),
		})
		if err != nil {
			if errors.Is(err, store.ErrProfileLimit) {
				api.Conflict(w, "PROFILE_LIMIT_REACHED", "Maximum number of profiles reached", rid, map[string]any{"max": store.MaxProfilesPerAccount})
				return
			}
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusCreated, p)
	}
}

// UpdateProfile handles PATCH /v1/profiles/{profile_id}. Absent fields are
// left untouched.
func UpdateProfile(d AuthDeps) http.HandlerFunc {
	type request struct {
		Name               *string `json:"name"`
		AvatarURL          *string `json:"avatar_url"`
		MaturityRating     *string `json:"maturity_rating"`
		LanguagePreference *string `json:"language_preference"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		userID, ok := platformauth.UserIDFromContext(r.Context())
		if !ok {
			api.Unauthorized(w, "AUTH_MISSING", "Missing bearer token", rid)
			return
		}
		profileID := chi.URLParam(r, "profile_id")

		var req request
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "Invalid request body", rid, nil)
			return
		}
		if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
			api.BadRequest(w, "VALIDATION_NAME", "name must not be empty", rid, map[string]any{"name": "empty"})
			return
		}

		p, err := d.Store.UpdateProfile(r.Context(), userID, profileID, store.UpdateProfileParams{
			Name:               req.Name,
			AvatarURL:          req.AvatarURL,
			MaturityRating:     req.MaturityRating,
			LanguagePreference: req.LanguagePreference,
		})
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "PROFILE_NOT_FOUND", "Profile not found", rid)
				return
			}
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, p)
	}
}

// DeleteProfile handles DELETE /v1/profiles/{profile_id}.
func DeleteProfile(d AuthDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		userID, ok := platformauth.UserIDFromContext(r.Context())
		if !ok {
			api.Unauthorized(w, "AUTH_MISSING", "Missing bearer token", rid)
			return
		}
		profileID := chi.URLParam(r, "profile_id")

		if err := d.Store.DeleteProfile(r.Context(), userID, profileID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "PROFILE_NOT_FOUND", "Profile not found", rid)
				return
			}
			api.Internal(w, rid)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

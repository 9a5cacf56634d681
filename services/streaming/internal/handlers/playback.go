package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/ott-platform/internal/platform/api"
	"github.com/example/ott-platform/internal/platform/httpserver"
	"github.com/example/ott-platform/services/streaming/internal/playback"
)

type playbackRequest struct {
	UserID    string `json:"user_id"`
	ProfileID string `json:"profile_id"`
	ContentID string `json:"content_id"`
	EpisodeID string `json:"episode_id,omitempty"`
	Position  *int   `json:"position,omitempty"`
}

type startResponse struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type ackResponse struct {
	Message string `json:"message"`
}

type continueWatchingResponse struct {
	Items []playback.Entry `json:"items"`
}

// decodePlaybackRequest parses the flat request payload and validates the
// identity fields. Caller identity is trusted as supplied; this layer does
// no authentication.
func decodePlaybackRequest(w http.ResponseWriter, r *http.Request, rid string) (playbackRequest, playback.Key, bool) {
	var req playbackRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		api.BadRequest(w, "INVALID_JSON", "Invalid JSON", rid, nil)
		return req, playback.Key{}, false
	}
	req.UserID = strings.TrimSpace(req.UserID)
	req.ProfileID = strings.TrimSpace(req.ProfileID)
	req.ContentID = strings.TrimSpace(req.ContentID)
	req.EpisodeID = strings.TrimSpace(req.EpisodeID)
	if req.UserID == "" || req.ProfileID == "" || req.ContentID == "" {
		api.BadRequest(w, "MISSING_FIELDS", "user_id, profile_id and content_id are required", rid, nil)
		return req, playback.Key{}, false
	}
	k := playback.Key{
		UserID:    req.UserID,
		ProfileID: req.ProfileID,
		ContentID: req.ContentID,
		EpisodeID: req.EpisodeID,
	}
	return req, k, true
}

// StartPlayback handles POST /v1/playback/start.
func StartPlayback(svc *playback.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		_, k, ok := decodePlaybackRequest(w, r, rid)
		if !ok {
			return
		}

		sessionID, err := svc.Start(r.Context(), k)
		if err != nil {
			log.Error("start playback", zap.String("session_id", k.SessionID()), zap.Error(err))
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, startResponse{SessionID: sessionID, Message: "Playback session started"})
	}
}

// UpdatePosition handles PUT /v1/playback/position.
func UpdatePosition(svc *playback.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		req, k, ok := decodePlaybackRequest(w, r, rid)
		if !ok {
			return
		}
		if req.Position == nil || *req.Position < 0 {
			api.BadRequest(w, "INVALID_POSITION", "position must be a non-negative integer", rid, nil)
			return
		}

		if err := svc.UpdatePosition(r.Context(), k, *req.Position); err != nil {
			log.Error("update position", zap.String("session_id", k.SessionID()), zap.Error(err))
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, ackResponse{Message: "Position updated"})
	}
}

// CompletePlayback handles POST /v1/playback/complete.
func CompletePlayback(svc *playback.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		_, k, ok := decodePlaybackRequest(w, r, rid)
		if !ok {
			return
		}

		if err := svc.Complete(r.Context(), k); err != nil {
			log.Error("complete playback", zap.String("session_id", k.SessionID()), zap.Error(err))
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, ackResponse{Message: "Playback completed"})
	}
}

// GetContinueWatching handles GET /v1/continue-watching/{user_id}/{profile_id}.
func GetContinueWatching(svc *playback.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		userID := strings.TrimSpace(chi.URLParam(r, "user_id"))
		profileID := strings.TrimSpace(chi.URLParam(r, "profile_id"))
		if userID == "" || profileID == "" {
			api.BadRequest(w, "MISSING_ID", "user_id and profile_id are required", rid, nil)
			return
		}

		entries, err := svc.ContinueWatching(r.Context(), userID, profileID)
		if err != nil {
			log.Error("continue watching", zap.String("user_id", userID), zap.Error(err))
			api.Internal(w, rid)
			return
		}
		if entries == nil {
			entries = []playback.Entry{}
		}
		api.WriteJSON(w, http.StatusOK, continueWatchingResponse{Items: entries})
	}
}

// GetSession handles GET /v1/playback/session. The identity comes from query
// params; a missing or expired record is a 404.
func GetSession(svc *playback.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		q := r.URL.Query()
		k := playback.Key{
			UserID:    strings.TrimSpace(q.Get("user_id")),
			ProfileID: strings.TrimSpace(q.Get("profile_id")),
			ContentID: strings.TrimSpace(q.Get("content_id")),
			EpisodeID: strings.TrimSpace(q.Get("episode_id")),
		}
		if k.UserID == "" || k.ProfileID == "" || k.ContentID == "" {
			api.BadRequest(w, "MISSING_FIELDS", "user_id, profile_id and content_id are required", rid, nil)
			return
		}

		sess, ok, err := svc.Session(r.Context(), k)
		if err != nil {
			log.Error("get session", zap.String("session_id", k.SessionID()), zap.Error(err))
			api.Internal(w, rid)
			return
		}
		if !ok {
			api.NotFound(w, "SESSION_NOT_FOUND", "No active playback session", rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, sess)
	}
}

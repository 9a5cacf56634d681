package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/ott-platform/internal/platform/api"
	"github.com/example/ott-platform/internal/platform/httpserver"
	"github.com/example/ott-platform/services/catalog/internal/store"
)

type listResponse struct {
	Items []store.Content `json:"items"`
}

type genresResponse struct {
	Genres []store.Genre `json:"genres"`
}

type seasonsResponse struct {
	Seasons []store.Season `json:"seasons"`
}

type episodesResponse struct {
	Episodes []store.Episode `json:"episodes"`
}

func queryInt(r *http.Request, name string, def int) int {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// ListContent handles GET /v1/content
func ListContent(cs store.ContentStore, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		items, err := cs.List(r.Context(), store.ListFilter{
			Type:   strings.TrimSpace(r.URL.Query().Get("type")),
			Limit:  queryInt(r, "limit", 20),
			Offset: queryInt(r, "offset", 0),
		})
		if err != nil {
			log.Error("list content", zap.Error(err))
			api.Internal(w, rid)
			return
		}
		if items == nil {
			items = []store.Content{}
		}
		api.WriteJSON(w, http.StatusOK, listResponse{Items: items})
	}
}

// GetContent handles GET /v1/content/{id}
func GetContent(cs store.ContentStore, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if id == "" {
			api.BadRequest(w, "MISSING_ID", "id is required", rid, nil)
			return
		}

		c, err := cs.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "CONTENT_NOT_FOUND", "Content not found", rid)
				return
			}
			log.Error("get content", zap.String("id", id), zap.Error(err))
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, c)
	}
}

// SearchContent handles GET /v1/search?q=
func SearchContent(cs store.ContentStore, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		if q == "" {
			api.BadRequest(w, "MISSING_QUERY", "q is required", rid, nil)
			return
		}

		items, err := cs.Search(r.Context(), q, 20)
		if err != nil {
			log.Error("search content", zap.String("q", q), zap.Error(err))
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, listResponse{Items: items})
	}
}

// ListGenres handles GET /v1/genres
func ListGenres(cs store.ContentStore, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		genres, err := cs.ListGenres(r.Context())
		if err != nil {
			log.Error("list genres", zap.Error(err))
			api.Internal(w, rid)
			return
		}
		if genres == nil {
			genres = []store.Genre{}
		}
		api.WriteJSON(w, http.StatusOK, genresResponse{Genres: genres})
	}
}

// Trending handles GET /v1/trending
func Trending(cs store.ContentStore, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		items, err := cs.Trending(r.Context(), queryInt(r, "limit", 10))
		if err != nil {
			log.Error("trending content", zap.Error(err))
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, listResponse{Items: items})
	}
}

// GetSeasons handles GET /v1/content/{id}/seasons
func GetSeasons(cs store.ContentStore, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if id == "" {
			api.BadRequest(w, "MISSING_ID", "id is required", rid, nil)
			return
		}

		seasons, err := cs.Seasons(r.Context(), id)
		if err != nil {
			log.Error("get seasons", zap.String("content_id", id), zap.Error(err))
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, seasonsResponse{Seasons: seasons})
	}
}

// GetEpisodes handles GET /v1/seasons/{id}/episodes
func GetEpisodes(cs store.ContentStore, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if id == "" {
			api.BadRequest(w, "MISSING_ID", "id is required", rid, nil)
			return
		}

		episodes, err := cs.Episodes(r.Context(), id)
		if err != nil {
			log.Error("get episodes", zap.String("season_id", id), zap.Error(err))
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, episodesResponse{Episodes: episodes})
	}
}

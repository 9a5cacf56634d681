package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/ott-platform/services/catalog/internal/store"
)

func setupReq(method, url string, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, url, nil)
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func seededStore() *store.InMemoryContentStore {
	cs := store.NewInMemoryContentStore()
	recent := time.Now().AddDate(0, 0, -3)
	old := time.Now().AddDate(-1, 0, 0)
	cs.Seed([]store.Content{
		{ID: "m1", Type: "movie", Title: "Solar Drift", Description: "heist in orbit", ReleaseDate: &recent, TierRequirement: "free"},
		{ID: "t1", Type: "tv_show", Title: "Harbor Lights", Description: "coastal drama", ReleaseDate: &old, TierRequirement: "premium"},
	}, []store.Genre{{ID: "g1", Name: "Drama"}, {ID: "g2", Name: "Action"}})
	cs.SeedSeason(store.Season{ID: "s1", ContentID: "t1", SeasonNumber: 1},
		[]store.Episode{{ID: "e1", SeasonID: "s1", EpisodeNumber: 1, Title: "Arrival"}})
	return cs
}

func TestListContent(t *testing.T) {
	handler := ListContent(seededStore(), zap.NewNop())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, setupReq(http.MethodGet, "/v1/content", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp listResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(resp.Items))
	}
	// Newest release first.
	if resp.Items[0].ID != "m1" {
		t.Fatalf("expected newest first, got %q", resp.Items[0].ID)
	}
}

func TestListContent_TypeFilter(t *testing.T) {
	handler := ListContent(seededStore(), zap.NewNop())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, setupReq(http.MethodGet, "/v1/content?type=movie", nil))

	var resp listResponse
	_ = json.NewDecoder(rr.Body).Decode(&resp)
	if len(resp.Items) != 1 || resp.Items[0].Type != "movie" {
		t.Fatalf("unexpected filtered items: %+v", resp.Items)
	}
}

func TestGetContent(t *testing.T) {
	handler := GetContent(seededStore(), zap.NewNop())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, setupReq(http.MethodGet, "/v1/content/m1", map[string]string{"id": "m1"}))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var c store.Content
	_ = json.NewDecoder(rr.Body).Decode(&c)
	if c.Title != "Solar Drift" {
		t.Fatalf("unexpected content: %+v", c)
	}
}

func TestGetContent_NotFound(t *testing.T) {
	handler := GetContent(seededStore(), zap.NewNop())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, setupReq(http.MethodGet, "/v1/content/nope", map[string]string{"id": "nope"}))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestSearchContent(t *testing.T) {
	handler := SearchContent(seededStore(), zap.NewNop())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, setupReq(http.MethodGet, "/v1/search?q=harbor", nil))

	var resp listResponse
	_ = json.NewDecoder(rr.Body).Decode(&resp)
	if len(resp.Items) != 1 || resp.Items[0].ID != "t1" {
		t.Fatalf("unexpected search result: %+v", resp.Items)
	}
}

func TestSearchContent_MissingQuery(t *testing.T) {
	handler := SearchContent(seededStore(), zap.NewNop())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, setupReq(http.MethodGet, "/v1/search", nil))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestListGenres_SortedByName(t *testing.T) {
	handler := ListGenres(seededStore(), zap.NewNop())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, setupReq(http.MethodGet, "/v1/genres", nil))

	var resp genresResponse
	_ = json.NewDecoder(rr.Body).Decode(&resp)
	if len(resp.Genres) != 2 || resp.Genres[0].Name != "Action" {
		t.Fatalf("unexpected genres: %+v", resp.Genres)
	}
}

func TestTrending_OnlyRecentReleases(t *testing.T) {
	handler := Trending(seededStore(), zap.NewNop())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, setupReq(http.MethodGet, "/v1/trending", nil))

	var resp listResponse
	_ = json.NewDecoder(rr.Body).Decode(&resp)
	if len(resp.Items) != 1 || resp.Items[0].ID != "m1" {
		t.Fatalf("expected only the recent release, got %+v", resp.Items)
	}
}

func TestSeasonsAndEpisodes(t *testing.T) {
	cs := seededStore()
	log := zap.NewNop()

	rr := httptest.NewRecorder()
	GetSeasons(cs, log).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/content/t1/seasons", map[string]string{"id": "t1"}))
	var sr seasonsResponse
	_ = json.NewDecoder(rr.Body).Decode(&sr)
	if len(sr.Seasons) != 1 || sr.Seasons[0].SeasonNumber != 1 {
		t.Fatalf("unexpected seasons: %+v", sr.Seasons)
	}

	rr = httptest.NewRecorder()
	GetEpisodes(cs, log).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/seasons/s1/episodes", map[string]string{"id": "s1"}))
	var er episodesResponse
	_ = json.NewDecoder(rr.Body).Decode(&er)
	if len(er.Episodes) != 1 || er.Episodes[0].Title != "Arrival" {
		t.Fatalf("unexpected episodes: %+v", er.Episodes)
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/ott-platform/services/activity/internal/store"
)

func setupReq(method, url string, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, url, nil)
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func seededHistory(t *testing.T) *store.InMemoryHistoryStore {
	t.Helper()
	mem := store.NewInMemoryHistoryStore()
	rows := []store.HistoryRecord{
		{UserID: "u1", ProfileID: "p1", ContentID: "c1", PositionSeconds: 100, OccurredAtMs: 1000},
		{UserID: "u1", ProfileID: "p1", ContentID: "c2", EpisodeID: "e1", PositionSeconds: 50, OccurredAtMs: 2000},
		{UserID: "u2", ProfileID: "p1", ContentID: "c3", PositionSeconds: 10, OccurredAtMs: 3000},
	}
	for _, rec := range rows {
		if err := mem.Upsert(context.Background(), rec); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return mem
}

func TestGetHistory(t *testing.T) {
	handler := GetHistory(seededHistory(t), zap.NewNop())

	req := setupReq(http.MethodGet, "/v1/history/u1", map[string]string{"user_id": "u1"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Items []store.HistoryRecord `json:"items"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(resp.Items))
	}
	// Most recent first.
	if resp.Items[0].ContentID != "c2" || resp.Items[1].ContentID != "c1" {
		t.Fatalf("unexpected order: %+v", resp.Items)
	}
}

func TestGetHistory_Limit(t *testing.T) {
	handler := GetHistory(seededHistory(t), zap.NewNop())

	req := setupReq(http.MethodGet, "/v1/history/u1?limit=1", map[string]string{"user_id": "u1"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	var resp struct {
		Items []store.HistoryRecord `json:"items"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].ContentID != "c2" {
		t.Fatalf("expected only the newest item, got %+v", resp.Items)
	}
}

func TestGetHistory_InvalidLimit(t *testing.T) {
	handler := GetHistory(seededHistory(t), zap.NewNop())

	req := setupReq(http.MethodGet, "/v1/history/u1?limit=zero", map[string]string{"user_id": "u1"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestGetHistory_EmptyResult(t *testing.T) {
	handler := GetHistory(store.NewInMemoryHistoryStore(), zap.NewNop())

	req := setupReq(http.MethodGet, "/v1/history/u9", map[string]string{"user_id": "u9"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp struct {
		Items []store.HistoryRecord `json:"items"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Items == nil || len(resp.Items) != 0 {
		t.Fatalf("expected empty array, got %+v", resp.Items)
	}
}

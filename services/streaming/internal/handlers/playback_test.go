package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/ott-platform/services/streaming/internal/playback"
)

// setupReq builds a request with chi URL params attached to the context.
func setupReq(method, url, body string, params map[string]string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, url, bytes.NewBufferString(body))
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func newHandlerService() *playback.Service {
	return &playback.Service{
		Sessions: playback.NewInMemorySessionStore(0),
		Index:    playback.NewInMemoryRecencyIndex(),
		Log:      zap.NewNop(),
	}
}

func TestStartPlayback(t *testing.T) {
	svc := newHandlerService()
	handler := StartPlayback(svc, zap.NewNop())

	req := setupReq(http.MethodPost, "/v1/playback/start",
		`{"user_id":"u1","profile_id":"p1","content_id":"c1","episode_id":"e1"}`, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp startResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.SessionID != "u1:p1:c1:e1" {
		t.Fatalf("expected session id 'u1:p1:c1:e1', got %q", resp.SessionID)
	}
}

func TestStartPlayback_MissingFields(t *testing.T) {
	handler := StartPlayback(newHandlerService(), zap.NewNop())

	req := setupReq(http.MethodPost, "/v1/playback/start", `{"user_id":"u1"}`, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestStartPlayback_InvalidJSON(t *testing.T) {
	handler := StartPlayback(newHandlerService(), zap.NewNop())

	req := setupReq(http.MethodPost, "/v1/playback/start", `{not json`, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestUpdatePosition_RequiresPosition(t *testing.T) {
	handler := UpdatePosition(newHandlerService(), zap.NewNop())

	req := setupReq(http.MethodPut, "/v1/playback/position",
		`{"user_id":"u1","profile_id":"p1","content_id":"c1"}`, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without position, got %d", rr.Code)
	}
}

func TestUpdatePosition_RejectsNegative(t *testing.T) {
	handler := UpdatePosition(newHandlerService(), zap.NewNop())

	req := setupReq(http.MethodPut, "/v1/playback/position",
		`{"user_id":"u1","profile_id":"p1","content_id":"c1","position":-5}`, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative position, got %d", rr.Code)
	}
}

func TestPlaybackFlow_EndToEnd(t *testing.T) {
	svc := newHandlerService()
	log := zap.NewNop()

	start := setupReq(http.MethodPost, "/v1/playback/start",
		`{"user_id":"u1","profile_id":"p1","content_id":"c1"}`, nil)
	rr := httptest.NewRecorder()
	StartPlayback(svc, log).ServeHTTP(rr, start)
	if rr.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d", rr.Code)
	}

	update := setupReq(http.MethodPut, "/v1/playback/position",
		`{"user_id":"u1","profile_id":"p1","content_id":"c1","position":120}`, nil)
	rr = httptest.NewRecorder()
	UpdatePosition(svc, log).ServeHTTP(rr, update)
	if rr.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", rr.Code)
	}

	list := setupReq(http.MethodGet, "/v1/continue-watching/u1/p1", "",
		map[string]string{"user_id": "u1", "profile_id": "p1"})
	rr = httptest.NewRecorder()
	GetContinueWatching(svc, log).ServeHTTP(rr, list)
	if rr.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rr.Code)
	}
	var resp continueWatchingResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].ContentID != "c1" || resp.Items[0].Position != 120 {
		t.Fatalf("unexpected continue-watching items: %+v", resp.Items)
	}

	complete := setupReq(http.MethodPost, "/v1/playback/complete",
		`{"user_id":"u1","profile_id":"p1","content_id":"c1"}`, nil)
	rr = httptest.NewRecorder()
	CompletePlayback(svc, log).ServeHTTP(rr, complete)
	if rr.Code != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	GetContinueWatching(svc, log).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/continue-watching/u1/p1", "",
		map[string]string{"user_id": "u1", "profile_id": "p1"}))
	resp = continueWatchingResponse{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 0 {
		t.Fatalf("expected empty list after complete, got %+v", resp.Items)
	}
}

func TestGetSession(t *testing.T) {
	svc := newHandlerService()
	log := zap.NewNop()

	start := setupReq(http.MethodPost, "/v1/playback/start",
		`{"user_id":"u1","profile_id":"p1","content_id":"c1"}`, nil)
	rr := httptest.NewRecorder()
	StartPlayback(svc, log).ServeHTTP(rr, start)

	get := setupReq(http.MethodGet, "/v1/playback/session?user_id=u1&profile_id=p1&content_id=c1", "", nil)
	rr = httptest.NewRecorder()
	GetSession(svc, log).ServeHTTP(rr, get)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var sess playback.Session
	if err := json.NewDecoder(rr.Body).Decode(&sess); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sess.Position != 0 || sess.ContentID != "c1" {
		t.Fatalf("unexpected session: %+v", sess)
	}
}

func TestGetSession_NotFound(t *testing.T) {
	get := setupReq(http.MethodGet, "/v1/playback/session?user_id=u1&profile_id=p1&content_id=missing", "", nil)
	rr := httptest.NewRecorder()
	GetSession(newHandlerService(), zap.NewNop()).ServeHTTP(rr, get)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

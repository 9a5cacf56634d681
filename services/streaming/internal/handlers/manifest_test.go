package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/example/ott-platform/internal/platform/signing"
)

func TestGetManifest(t *testing.T) {
	handler := GetManifest("https://cdn.example.com/hls", nil)

	req := setupReq(http.MethodGet, "/v1/content/c1/manifest", "",
		map[string]string{"content_id": "c1"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp manifestResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ContentID != "c1" || resp.Type != "hls" {
		t.Fatalf("unexpected manifest: %+v", resp)
	}
	if resp.DefaultQuality != "720p" {
		t.Fatalf("expected default quality 720p, got %q", resp.DefaultQuality)
	}
	if resp.ManifestURL != "https://cdn.example.com/hls/c1/master.m3u8" {
		t.Fatalf("unexpected manifest url %q", resp.ManifestURL)
	}
}

func TestGetManifest_QualityOverride(t *testing.T) {
	handler := GetManifest("https://cdn.example.com/hls", nil)

	req := setupReq(http.MethodGet, "/v1/content/c1/manifest?quality=1080p", "",
		map[string]string{"content_id": "c1"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	var resp manifestResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.DefaultQuality != "1080p" {
		t.Fatalf("expected 1080p, got %q", resp.DefaultQuality)
	}
}

func TestGetManifest_MissingID(t *testing.T) {
	handler := GetManifest("https://cdn.example.com/hls", nil)

	req := setupReq(http.MethodGet, "/v1/content//manifest", "",
		map[string]string{"content_id": ""})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestGetManifest_Signed(t *testing.T) {
	signer := signing.New("test-signing-secret-32-bytes-ok!")
	handler := GetManifest("https://cdn.example.com/hls", signer)

	req := setupReq(http.MethodGet, "/v1/content/c1/manifest?user_id=u1", "",
		map[string]string{"content_id": "c1"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp manifestResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	u, err := url.Parse(resp.ManifestURL)
	if err != nil {
		t.Fatalf("parse manifest url: %v", err)
	}
	rawURL, uid, exp, sig, err := signing.ExtractSigned(u.Query())
	if err != nil {
		t.Fatalf("extract signed params: %v", err)
	}
	if uid != "u1" {
		t.Fatalf("expected uid u1, got %q", uid)
	}
	if !signer.Verify(rawURL, uid, exp, sig) {
		t.Fatal("expected signature to verify")
	}
}

func TestGetManifest_SignedRequiresUserID(t *testing.T) {
	signer := signing.New("test-signing-secret-32-bytes-ok!")
	handler := GetManifest("https://cdn.example.com/hls", signer)

	req := setupReq(http.MethodGet, "/v1/content/c1/manifest", "",
		map[string]string{"content_id": "c1"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without user_id, got %d", rr.Code)
	}
}

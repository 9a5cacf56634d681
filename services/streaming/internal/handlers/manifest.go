package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/ott-platform/internal/platform/api"
	"github.com/example/ott-platform/internal/platform/httpserver"
	"github.com/example/ott-platform/internal/platform/signing"
)

var manifestQualities = []string{"144p", "360p", "480p", "720p", "1080p"}

const (
	defaultQuality = "720p"
	signedURLTTL   = 6 * time.Hour
)

type manifestResponse struct {
	ContentID      string   `json:"content_id"`
	Type           string   `json:"type"`
	Qualities      []string `json:"qualities"`
	DefaultQuality string   `json:"default_quality"`
	ManifestURL    string   `json:"manifest_url"`
}

// GetManifest handles GET /v1/content/{content_id}/manifest. It returns the
// HLS manifest descriptor for a piece of content; actual manifest generation
// lives behind the origin referenced by manifestBase. When a signer is
// configured the URL is signed for the requesting user so the edge can
// reject shared links after expiry.
func GetManifest(manifestBase string, signer *signing.Signer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		contentID := strings.TrimSpace(chi.URLParam(r, "content_id"))
		if contentID == "" {
			api.BadRequest(w, "MISSING_ID", "content_id is required", rid, nil)
			return
		}

		quality := strings.TrimSpace(r.URL.Query().Get("quality"))
		if quality == "" {
			quality = defaultQuality
		}

		manifestURL := strings.TrimRight(manifestBase, "/") + "/" + contentID + "/master.m3u8"
		if signer != nil {
			userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
			if userID == "" {
				api.BadRequest(w, "MISSING_USER_ID", "user_id is required for signed manifests", rid, nil)
				return
			}
			signed := signer.Sign(manifestURL, userID, time.Now().Add(signedURLTTL))
			u, err := signing.BuildSignedURL(manifestURL, signed)
			if err != nil {
				api.Internal(w, rid)
				return
			}
			manifestURL = u
		}

		api.WriteJSON(w, http.StatusOK, manifestResponse{
			ContentID:      contentID,
			Type:           "hls",
			Qualities:      manifestQualities,
			DefaultQuality: quality,
			ManifestURL:    manifestURL,
		})
	}
}

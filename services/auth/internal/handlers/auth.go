package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/ott-platform/internal/platform/api"
	platformauth "github.com/example/ott-platform/internal/platform/auth"
	"github.com/example/ott-platform/internal/platform/events"
	"github.com/example/ott-platform/internal/platform/httpserver"
	"github.com/example/ott-platform/services/auth/internal/config"
	"github.com/example/ott-platform/services/auth/internal/domain"
	"github.com/example/ott-platform/services/auth/internal/store"
	"github.com/example/ott-platform/services/auth/internal/tokens"
)

const bcryptCost = 12

type AuthDeps struct {
	Store  store.Store
	Tokens tokens.Service
	Cfg    config.AuthConfig
	Events *events.Publisher
}

type tokenResponse struct {
	User         domain.User `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"`
}

// Register handles POST /v1/auth/register. A default viewing profile is
// created alongside the account.
func Register(d AuthDeps) http.HandlerFunc {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		var req request
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "Invalid request body", rid, nil)
			return
		}
		email := strings.TrimSpace(req.Email)
		if !isValidEmail(email) {
			api.BadRequest(w, "VALIDATION_EMAIL", "Invalid email", rid, map[string]any{"email": "invalid"})
			return
		}
		if len(req.Password) < 8 {
			api.BadRequest(w, "VALIDATION_PASSWORD", "Password too short", rid, map[string]any{"password": "min length 8"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			api.Internal(w, rid)
			return
		}

		u, err := d.Store.CreateUser(r.Context(), store.CreateUserParams{Email: email, PasswordHash: string(hash)})
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				api.Conflict(w, "USER_ALREADY_EXISTS", "User already exists", rid, nil)
				return
			}
			api.Internal(w, rid)
			return
		}

		// Every account starts with one profile so playback can begin
		// without an extra setup step.
		if _, err := d.Store.CreateProfile(r.Context(), store.CreateProfileParams{UserID: u.ID, Name: "Default"}); err != nil {
			api.Internal(w, rid)
			return
		}

		resp, err := issueTokens(r, d, u)
		if err != nil {
			api.Internal(w, rid)
			return
		}
		d.Events.Publish(events.SubjectAuthRegistered, "auth_registered", u.ID, nil)
		api.WriteJSON(w, http.StatusCreated, resp)
	}
}

// Login handles POST /v1/auth/login. Unknown email and wrong password are
// indistinguishable to the caller.
func Login(d AuthDeps) http.HandlerFunc {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		var req request
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "Invalid request body", rid, nil)
			return
		}
		if strings.TrimSpace(req.Email) == "" || req.Password == "" {
			api.BadRequest(w, "MISSING_FIELDS", "email and password are required", rid, nil)
			return
		}

		row, err := d.Store.FindUserByEmail(r.Context(), req.Email)
		if err != nil {
			api.Unauthorized(w, "AUTH_INVALID_CREDENTIALS", "Invalid credentials", rid)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(req.Password)) != nil {
			api.Unauthorized(w, "AUTH_INVALID_CREDENTIALS", "Invalid credentials", rid)
			return
		}

		resp, err := issueTokens(r, d, row.User)
		if err != nil {
			api.Internal(w, rid)
			return
		}
		d.Events.Publish(events.SubjectAuthLoggedIn, "auth_logged_in", row.User.ID, nil)
		api.WriteJSON(w, http.StatusOK, resp)
	}
}

// Refresh handles POST /v1/auth/refresh. The presented token is rotated:
// its session is revoked and a replacement issued.
func Refresh(d AuthDeps) http.HandlerFunc {
	type request struct {
		RefreshToken string `json:"refresh_token"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		var req request
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "Invalid request body", rid, nil)
			return
		}
		raw := strings.TrimSpace(req.RefreshToken)
		if raw == "" {
			api.BadRequest(w, "VALIDATION_REFRESH_TOKEN", "refresh_token is required", rid, map[string]any{"refresh_token": "required"})
			return
		}

		sess, err := d.Store.GetRefreshSessionByHash(r.Context(), sha256Hex(raw))
		if err != nil {
			api.Unauthorized(w, "AUTH_INVALID_REFRESH", "Invalid refresh token", rid)
			return
		}
		now := time.Now().UTC()
		if sess.RevokedAt != nil || now.After(sess.ExpiresAt) {
			api.Unauthorized(w, "AUTH_INVALID_REFRESH", "Invalid refresh token", rid)
			return
		}

		u, err := d.Store.GetUserByID(r.Context(), sess.UserID.String())
		if err != nil {
			api.Internal(w, rid)
			return
		}

		access, exp, err := d.Tokens.NewAccessToken(u.ID, now)
		if err != nil {
			api.Internal(w, rid)
			return
		}
		newRaw, newHash, err := tokens.NewRefreshToken()
		if err != nil {
			api.Internal(w, rid)
			return
		}
		newID := uuid.New()
		if err := d.Store.ReplaceRefreshSession(r.Context(), sess.ID, newID, now); err != nil {
			api.Internal(w, rid)
			return
		}
		if err := d.Store.CreateRefreshSession(r.Context(), store.CreateRefreshSessionParams{
			SessionID: newID,
			UserID:    sess.UserID,
			TokenHash: newHash,
			ExpiresAt: now.Add(d.Cfg.RefreshTokenTTL),
			UserAgent: r.UserAgent(),
			IP:        clientIP(r),
			Now:       now,
		}); err != nil {
			api.Internal(w, rid)
			return
		}

		api.WriteJSON(w, http.StatusOK, tokenResponse{
			User:         u,
			AccessToken:  access,
			RefreshToken: newRaw,
			ExpiresIn:    int64(time.Until(exp).Seconds()),
		})
	}
}

// Logout handles POST /v1/auth/logout. Revocation is best-effort and the
// endpoint never reveals whether the token was known.
func Logout(d AuthDeps) http.HandlerFunc {
	type request struct {
		RefreshToken string `json:"refresh_token"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		var req request
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "Invalid request body", rid, nil)
			return
		}
		raw := strings.TrimSpace(req.RefreshToken)
		if raw != "" {
			if sess, err := d.Store.GetRefreshSessionByHash(r.Context(), sha256Hex(raw)); err == nil {
				_ = d.Store.RevokeRefreshSession(r.Context(), sess.ID, time.Now().UTC())
			}
		}
		api.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
	}
}

// Me handles GET /v1/auth/me behind RequireUser.
func Me(d AuthDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		userID, ok := platformauth.UserIDFromContext(r.Context())
		if !ok {
			api.Unauthorized(w, "AUTH_MISSING", "Missing bearer token", rid)
			return
		}
		u, err := d.Store.GetUserByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "USER_NOT_FOUND", "User not found", rid)
				return
			}
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, u)
	}
}

func issueTokens(r *http.Request, d AuthDeps, u domain.User) (tokenResponse, error) {
	now := time.Now().UTC()
	access, exp, err := d.Tokens.NewAccessToken(u.ID, now)
	if err != nil {
		return tokenResponse{}, err
	}
	refreshRaw, refreshHash, err := tokens.NewRefreshToken()
	if err != nil {
		return tokenResponse{}, err
	}
	userID, err := uuid.Parse(u.ID)
	if err != nil {
		return tokenResponse{}, err
	}
	if err := d.Store.CreateRefreshSession(r.Context(), store.CreateRefreshSessionParams{
		SessionID: uuid.New(),
		UserID:    userID,
		TokenHash: refreshHash,
		ExpiresAt: now.Add(d.Cfg.RefreshTokenTTL),
		UserAgent: r.UserAgent(),
		IP:        clientIP(r),
		Now:       now,
	}); err != nil {
		return tokenResponse{}, err
	}

	return tokenResponse{
		User:         u,
		AccessToken:  access,
		RefreshToken: refreshRaw,
		ExpiresIn:    int64(time.Until(exp).Seconds()),
	}, nil
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func isValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) > 254 {
		return false
	}
	return emailRe.MatchString(s)
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func clientIP(r *http.Request) net.IP {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(parts[0])); ip != nil {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return nil
	}
	return net.ParseIP(host)
}

package store

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/example/ott-platform/services/auth/internal/domain"
)

var (
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrProfileLimit = errors.New("profile limit reached")
)

// MaxProfilesPerAccount caps how many viewing profiles one account may hold.
const MaxProfilesPerAccount = 5

type CreateUserParams struct {
	Email        string
	PasswordHash string
}

// UserRow is a user plus its credential hash, for login verification.
type UserRow struct {
	User         domain.User
	PasswordHash string
}

type CreateRefreshSessionParams struct {
	SessionID uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	UserAgent string
	IP        net.IP
	Now       time.Time
}

type RefreshSession struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
}

type CreateProfileParams struct {
	UserID             string
	Name               string
	LanguagePreference string
}

type UpdateProfileParams struct {
	Name               *string
	AvatarURL          *string
	MaturityRating     *string
	LanguagePreference *string
}

// Store defines persistence for accounts, profiles and refresh sessions.
type Store interface {
	CreateUser(ctx context.Context, p CreateUserParams) (domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (UserRow, error)
	GetUserByID(ctx context.Context, userID string) (domain.User, error)

	CreateRefreshSession(ctx context.Context, p CreateRefreshSessionParams) error
	GetRefreshSessionByHash(ctx context.Context, tokenHash string) (RefreshSession, error)
	RevokeRefreshSession(ctx context.Context, sessionID uuid.UUID, now time.Time) error
	ReplaceRefreshSession(ctx context.Context, oldID, newID uuid.UUID, now time.Time) error

	ListProfiles(ctx context.Context, userID string) ([]domain.Profile, error)
	// CreateProfile returns ErrProfileLimit once the account holds
	// MaxProfilesPerAccount profiles.
	CreateProfile(ctx context.Context, p CreateProfileParams) (domain.Profile, error)
	UpdateProfile(ctx context.Context, userID, profileID string, p UpdateProfileParams) (domain.Profile, error)
	DeleteProfile(ctx context.Context, userID, profileID string) error
}

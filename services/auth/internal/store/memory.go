package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/ott-platform/services/auth/internal/domain"
)

// InMemoryStore is a Store for tests and local development.
type InMemoryStore struct {
	mu       sync.Mutex
	users    map[string]memUser // keyed by user ID
	sessions map[uuid.UUID]RefreshSession
	profiles map[string]domain.Profile // keyed by profile ID
}

type memUser struct {
	user         domain.User
	passwordHash string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		users:    map[string]memUser{},
		sessions: map[uuid.UUID]RefreshSession{},
		profiles: map[string]domain.Profile{},
	}
}

func (s *InMemoryStore) now() time.Time { return time.Now().UTC() }

func (s *InMemoryStore) CreateUser(ctx context.Context, p CreateUserParams) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, mu := range s.users {
		if strings.EqualFold(mu.user.Email, p.Email) {
			return domain.User{}, ErrConflict
		}
	}
	u := domain.User{
		ID:               uuid.New().String(),
		Email:            p.Email,
		SubscriptionTier: "free",
		CreatedAt:        s.now(),
	}
	s.users[u.ID] = memUser{user: u, passwordHash: p.PasswordHash}
	return u, nil
}

func (s *InMemoryStore) FindUserByEmail(ctx context.Context, email string) (UserRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, mu := range s.users {
		if strings.EqualFold(mu.user.Email, strings.TrimSpace(email)) {
			return UserRow{User: mu.user, PasswordHash: mu.passwordHash}, nil
		}
	}
	return UserRow{}, ErrNotFound
}

func (s *InMemoryStore) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mu, ok := s.users[userID]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	return mu.user, nil
}

func (s *InMemoryStore) CreateRefreshSession(ctx context.Context, p CreateRefreshSessionParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[p.SessionID]; ok {
		return ErrConflict
	}
	s.sessions[p.SessionID] = RefreshSession{
		ID:        p.SessionID,
		UserID:    p.UserID,
		TokenHash: p.TokenHash,
		ExpiresAt: p.ExpiresAt,
	}
	return nil
}

func (s *InMemoryStore) GetRefreshSessionByHash(ctx context.Context, tokenHash string) (RefreshSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions {
		if sess.TokenHash == tokenHash {
			return sess, nil
		}
	}
	return RefreshSession{}, ErrNotFound
}

func (s *InMemoryStore) RevokeRefreshSession(ctx context.Context, sessionID uuid.UUID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok || sess.RevokedAt != nil {
		return nil
	}
	t := now
	sess.RevokedAt = &t
	s.sessions[sessionID] = sess
	return nil
}

func (s *InMemoryStore) ReplaceRefreshSession(ctx context.Context, oldID, newID uuid.UUID, now time.Time) error {
	return s.RevokeRefreshSession(ctx, oldID, now)
}

func (s *InMemoryStore) ListProfiles(ctx context.Context, userID string) ([]domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Profile
	for _, p := range s.profiles {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) CreateProfile(ctx context.Context, p CreateProfileParams) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, existing := range s.profiles {
		if existing.UserID == p.UserID {
			count++
		}
	}
	if count >= MaxProfilesPerAccount {
		return domain.Profile{}, ErrProfileLimit
	}

	lang := p.LanguagePreference
	if lang == "" {
		lang = "en"
	}
	out := domain.Profile{
		ID:                 uuid.New().String(),
		UserID:             p.UserID,
		Name:               p.Name,
		MaturityRating:     "adult",
		LanguagePreference: lang,
		CreatedAt:          s.now(),
	}
	s.profiles[out.ID] = out
	return out, nil
}

func (s *InMemoryStore) UpdateProfile(ctx context.Context, userID, profileID string, p UpdateProfileParams) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out, ok := s.profiles[profileID]
	if !ok || out.UserID != userID {
		return domain.Profile{}, ErrNotFound
	}
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.AvatarURL != nil {
		out.AvatarURL = *p.AvatarURL
	}
	if p.MaturityRating != nil {
		out.MaturityRating = *p.MaturityRating
	}
	if p.LanguagePreference != nil {
		out.LanguagePreference = *p.LanguagePreference
	}
	s.profiles[profileID] = out
	return out, nil
}

func (s *InMemoryStore) DeleteProfile(ctx context.Context, userID, profileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[profileID]
	if !ok || p.UserID != userID {
		return ErrNotFound
	}
	delete(s.profiles, profileID)
	return nil
}

package store

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/ott-platform/services/auth/internal/domain"
)

// PostgresStore is the production Postgres-backed Store.
type PostgresStore struct {
	DB *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{DB: db}
}

func (s *PostgresStore) CreateUser(ctx context.Context, p CreateUserParams) (domain.User, error) {
	id := uuid.New()
	var u domain.User
	q := `
INSERT INTO users (id, email, password_hash, subscription_tier)
VALUES ($1, $2, $3, 'free')
RETURNING id::text, email, subscription_tier, created_at;
`
	err := s.DB.QueryRow(ctx, q, id, p.Email, p.PasswordHash).Scan(&u.ID, &u.Email, &u.SubscriptionTier, &u.CreatedAt)
	if err != nil {
		// unique violation
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" {
				return domain.User{}, ErrConflict
			}
		}
		return domain.User{}, err
	}
	return u, nil
}

func (s *PostgresStore) FindUserByEmail(ctx context.Context, email string) (UserRow, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return UserRow{}, ErrNotFound
	}

	q := `
SELECT id::text, email, subscription_tier, password_hash, created_at
FROM users
WHERE lower(email) = lower($1)
LIMIT 1;
`
	var row UserRow
	err := s.DB.QueryRow(ctx, q, email).Scan(&row.User.ID, &row.User.Email, &row.User.SubscriptionTier, &row.PasswordHash, &row.User.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserRow{}, ErrNotFound
		}
		return UserRow{}, err
	}
	return row, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	var u domain.User
	q := `SELECT id::text, email, subscription_tier, created_at FROM users WHERE id = $1 LIMIT 1;`
	err := s.DB.QueryRow(ctx, q, userID).Scan(&u.ID, &u.Email, &u.SubscriptionTier, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

func (s *PostgresStore) CreateRefreshSession(ctx context.Context, p CreateRefreshSessionParams) error {
	q := `
INSERT INTO refresh_sessions (id, user_id, token_hash, expires_at, created_at, user_agent, ip)
VALUES ($1, $2, $3, $4, $5, $6, $7);
`
	_, err := s.DB.Exec(ctx, q, p.SessionID, p.UserID, p.TokenHash, p.ExpiresAt, p.Now, nullableString(p.UserAgent), nullableInet(p.IP))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" {
				return ErrConflict
			}
		}
		return err
	}
	return nil
}

func (s *PostgresStore) GetRefreshSessionByHash(ctx context.Context, tokenHash string) (RefreshSession, error) {
	q := `
SELECT id, user_id, token_hash, expires_at, revoked_at
FROM refresh_sessions
WHERE token_hash = $1
LIMIT 1;
`
	var rs RefreshSession
	err := s.DB.QueryRow(ctx, q, tokenHash).Scan(&rs.ID, &rs.UserID, &rs.TokenHash, &rs.ExpiresAt, &rs.RevokedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RefreshSession{}, ErrNotFound
		}
		return RefreshSession{}, err
	}
	return rs, nil
}

func (s *PostgresStore) RevokeRefreshSession(ctx context.Context, sessionID uuid.UUID, now time.Time) error {
	q := `UPDATE refresh_sessions SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL;`
	_, err := s.DB.Exec(ctx, q, sessionID, now)
	return err
}

func (s *PostgresStore) ReplaceRefreshSession(ctx context.Context, oldID, newID uuid.UUID, now time.Time) error {
	q := `UPDATE refresh_sessions SET revoked_at = $3, replaced_by_session_id = $2 WHERE id = $1 AND revoked_at IS NULL;`
	_, err := s.DB.Exec(ctx, q, oldID, newID, now)
	return err
}

func (s *PostgresStore) ListProfiles(ctx context.Context, userID string) ([]domain.Profile, error) {
	q := `
SELECT id::text, user_id::text, name, COALESCE(avatar_url, ''), maturity_rating, language_preference, created_at
FROM profiles
WHERE user_id = $1
ORDER BY created_at;
`
	rows, err := s.DB.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Profile
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.AvatarURL, &p.MaturityRating, &p.LanguagePreference, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateProfile(ctx context.Context, p CreateProfileParams) (domain.Profile, error) {
	if p.LanguagePreference == "" {
		p.LanguagePreference = "en"
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return domain.Profile{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var count int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM profiles WHERE user_id = $1`, p.UserID).Scan(&count); err != nil {
		return domain.Profile{}, err
	}
	if count >= MaxProfilesPerAccount {
		return domain.Profile{}, ErrProfileLimit
	}

	var out domain.Profile
	q := `
INSERT INTO profiles (id, user_id, name, language_preference)
VALUES ($1, $2, $3, $4)
RETURNING id::text, user_id::text, name, COALESCE(avatar_url, ''), maturity_rating, language_preference, created_at;
`
	err = tx.QueryRow(ctx, q, uuid.New(), p.UserID, p.Name, p.LanguagePreference).
		Scan(&out.ID, &out.UserID, &out.Name, &out.AvatarURL, &out.MaturityRating, &out.LanguagePreference, &out.CreatedAt)
	if err != nil {
		return domain.Profile{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Profile{}, err
	}
	return out, nil
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, userID, profileID string, p UpdateProfileParams) (domain.Profile, error) {
	sets := []string{}
	args := []any{}
	i := 1

	appendSet := func(col string, v *string) {
		if v != nil {
			sets = append(sets, col+" = $"+strconv.Itoa(i))
			args = append(args, *v)
			i++
		}
	}
	appendSet("name", p.Name)
	appendSet("avatar_url", p.AvatarURL)
	appendSet("maturity_rating", p.MaturityRating)
	appendSet("language_preference", p.LanguagePreference)

	if len(sets) == 0 {
		return s.getProfile(ctx, userID, profileID)
	}

	q := `UPDATE profiles SET ` + strings.Join(sets, ", ") +
		` WHERE id = $` + strconv.Itoa(i) + ` AND user_id = $` + strconv.Itoa(i+1) +
		` RETURNING id::text, user_id::text, name, COALESCE(avatar_url, ''), maturity_rating, language_preference, created_at;`
	args = append(args, profileID, userID)

	var out domain.Profile
	err := s.DB.QueryRow(ctx, q, args...).
		Scan(&out.ID, &out.UserID, &out.Name, &out.AvatarURL, &out.MaturityRating, &out.LanguagePreference, &out.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, ErrNotFound
		}
		return domain.Profile{}, err
	}
	return out, nil
}

func (s *PostgresStore) getProfile(ctx context.Context, userID, profileID string) (domain.Profile, error) {
	q := `
SELECT id::text, user_id::text, name, COALESCE(avatar_url, ''), maturity_rating, language_preference, created_at
FROM profiles WHERE id = $1 AND user_id = $2 LIMIT 1;
`
	var out domain.Profile
	err := s.DB.QueryRow(ctx, q, profileID, userID).
		Scan(&out.ID, &out.UserID, &out.Name, &out.AvatarURL, &out.MaturityRating, &out.LanguagePreference, &out.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, ErrNotFound
		}
		return domain.Profile{}, err
	}
	return out, nil
}

func (s *PostgresStore) DeleteProfile(ctx context.Context, userID, profileID string) error {
	ct, err := s.DB.Exec(ctx, `DELETE FROM profiles WHERE id = $1 AND user_id = $2`, profileID, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableString(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}

func nullableInet(ip net.IP) any {
	if ip == nil {
		return nil
	}
	return ip
}

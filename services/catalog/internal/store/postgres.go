package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresContentStore is the production Postgres-backed implementation.
type PostgresContentStore struct {
	db *pgxpool.Pool
}

func NewPostgresContentStore(db *pgxpool.Pool) *PostgresContentStore {
	return &PostgresContentStore{db: db}
}

const contentColumns = `
c.id::text, c.type, c.title, c.description, c.release_date, c.duration_minutes,
c.maturity_rating, c.poster_url, c.thumbnail_url, c.tier_requirement,
COALESCE(json_agg(DISTINCT jsonb_build_object('id', g.id, 'name', g.name))
         FILTER (WHERE g.id IS NOT NULL), '[]') AS genres`

const contentJoins = `
LEFT JOIN content_genres cg ON c.id = cg.content_id
LEFT JOIN genres g ON cg.genre_id = g.id`

func scanContentRows(rows pgx.Rows) ([]Content, error) {
	var out []Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanContent(row pgx.Row) (Content, error) {
	var c Content
	var genresJSON []byte
	err := row.Scan(&c.ID, &c.Type, &c.Title, &c.Description, &c.ReleaseDate, &c.DurationMinutes,
		&c.MaturityRating, &c.PosterURL, &c.ThumbnailURL, &c.TierRequirement, &genresJSON)
	if err != nil {
		return Content{}, err
	}
	c.Genres = []Genre{}
	_ = json.Unmarshal(genresJSON, &c.Genres)
	return c, nil
}

func (s *PostgresContentStore) Create(ctx context.Context, p CreateContentParams) (Content, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return Content{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	id := uuid.New()
	q := `
INSERT INTO content (id, type, title, description, release_date, duration_minutes,
                     maturity_rating, poster_url, thumbnail_url, tier_requirement, workflow_state)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'published');
`
	_, err = tx.Exec(ctx, q, id, p.Type, p.Title, p.Description, p.ReleaseDate, p.DurationMinutes,
		p.MaturityRating, p.PosterURL, p.ThumbnailURL, p.TierRequirement)
	if err != nil {
		return Content{}, err
	}
	for _, genreID := range p.GenreIDs {
		if _, err := tx.Exec(ctx, `INSERT INTO content_genres (content_id, genre_id) VALUES ($1, $2)`, id, genreID); err != nil {
			return Content{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return Content{}, err
	}
	return s.GetByID(ctx, id.String())
}

func (s *PostgresContentStore) List(ctx context.Context, f ListFilter) ([]Content, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	q := `SELECT ` + contentColumns + `
FROM content c` + contentJoins + `
WHERE c.workflow_state = 'published'`
	args := []any{}
	if f.Type != "" {
		q += ` AND c.type = $1`
		args = append(args, f.Type)
	}
	q += ` GROUP BY c.id ORDER BY c.release_date DESC NULLS LAST`
	if f.Type != "" {
		q += ` LIMIT $2 OFFSET $3`
	} else {
		q += ` LIMIT $1 OFFSET $2`
	}
	args = append(args, f.Limit, f.Offset)

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanContentRows(rows)
}

func (s *PostgresContentStore) GetByID(ctx context.Context, id string) (Content, error) {
	q := `SELECT ` + contentColumns + `
FROM content c` + contentJoins + `
WHERE c.id = $1 AND c.workflow_state = 'published'
GROUP BY c.id`

	c, err := scanContent(s.db.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Content{}, ErrNotFound
		}
		return Content{}, err
	}
	return c, nil
}

func (s *PostgresContentStore) Search(ctx context.Context, query string, limit int) ([]Content, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	q := `SELECT ` + contentColumns + `
FROM content c` + contentJoins + `
WHERE c.workflow_state = 'published'
  AND (c.title ILIKE $1 OR c.description ILIKE $1)
GROUP BY c.id
ORDER BY c.release_date DESC NULLS LAST
LIMIT $2`

	rows, err := s.db.Query(ctx, q, "%"+query+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanContentRows(rows)
}

func (s *PostgresContentStore) ListGenres(ctx context.Context) ([]Genre, error) {
	rows, err := s.db.Query(ctx, `SELECT id::text, name FROM genres ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Genre
	for rows.Next() {
		var g Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *PostgresContentStore) Trending(ctx context.Context, limit int) ([]Content, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	q := `SELECT ` + contentColumns + `
FROM content c` + contentJoins + `
WHERE c.workflow_state = 'published'
  AND c.release_date >= CURRENT_DATE - INTERVAL '30 days'
GROUP BY c.id
ORDER BY c.release_date DESC
LIMIT $1`

	rows, err := s.db.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanContentRows(rows)
}

func (s *PostgresContentStore) Seasons(ctx context.Context, contentID string) ([]Season, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id::text, content_id::text, season_number, COALESCE(title, '')
		 FROM seasons WHERE content_id = $1 ORDER BY season_number`, contentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Season
	for rows.Next() {
		var s Season
		if err := rows.Scan(&s.ID, &s.ContentID, &s.SeasonNumber, &s.Title); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (s *PostgresContentStore) Episodes(ctx context.Context, seasonID string) ([]Episode, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id::text, season_id::text, episode_number, COALESCE(title, ''), COALESCE(description, ''), duration_minutes
		 FROM episodes WHERE season_id = $1 ORDER BY episode_number`, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Episode
	for rows.Next() {
		var e Episode
		if err := rows.Scan(&e.ID, &e.SeasonID, &e.EpisodeNumber, &e.Title, &e.Description, &e.DurationMinutes); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

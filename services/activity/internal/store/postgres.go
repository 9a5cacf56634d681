package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresHistoryStore is the production Postgres-backed implementation.
type PostgresHistoryStore struct {
	db *pgxpool.Pool
}

func NewPostgresHistoryStore(db *pgxpool.Pool) *PostgresHistoryStore {
	return &PostgresHistoryStore{db: db}
}

func (s *PostgresHistoryStore) Upsert(ctx context.Context, rec HistoryRecord) error {
	q := `
INSERT INTO watch_history (user_id, profile_id, content_id, episode_id, position_seconds, completed, occurred_at_ms, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (user_id, profile_id, content_id, episode_id)
DO UPDATE SET
  position_seconds = EXCLUDED.position_seconds,
  completed        = watch_history.completed OR EXCLUDED.completed,
  occurred_at_ms   = EXCLUDED.occurred_at_ms,
  updated_at       = EXCLUDED.updated_at
WHERE watch_history.occurred_at_ms <= EXCLUDED.occurred_at_ms;
`
	_, err := s.db.Exec(ctx, q,
		rec.UserID, rec.ProfileID, rec.ContentID, rec.EpisodeID,
		rec.PositionSeconds, rec.Completed, rec.OccurredAtMs, time.Now().UTC(),
	)
	return err
}

func (s *PostgresHistoryStore) List(ctx context.Context, userID string, limit int) ([]HistoryRecord, error) {
	q := `
SELECT user_id, profile_id, content_id, episode_id, position_seconds, completed, occurred_at_ms, updated_at
FROM watch_history
WHERE user_id = $1
ORDER BY updated_at DESC
LIMIT $2;
`
	rows, err := s.db.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryRecord
	for rows.Next() {
		var rec HistoryRecord
		if err := rows.Scan(&rec.UserID, &rec.ProfileID, &rec.ContentID, &rec.EpisodeID,
			&rec.PositionSeconds, &rec.Completed, &rec.OccurredAtMs, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

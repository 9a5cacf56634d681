package store

import (
	"context"
	"time"
)

// HistoryRecord is one row of durable watch history. The Redis
// continue-watching index stays the low-latency read path; this table is the
// long-term record derived from playback events.
type HistoryRecord struct {
	UserID          string    `json:"user_id"`
	ProfileID       string    `json:"profile_id"`
	ContentID       string    `json:"content_id"`
	EpisodeID       string    `json:"episode_id,omitempty"`
	PositionSeconds int       `json:"position_seconds"`
	Completed       bool      `json:"completed"`
	OccurredAtMs    int64     `json:"-"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// HistoryStore defines persistence for watch history.
type HistoryStore interface {
	// Upsert inserts or updates a row keyed by
	// (user_id, profile_id, content_id, episode_id). Writes whose
	// OccurredAtMs is older than the stored row are ignored, so replayed
	// or reordered events cannot move history backwards.
	Upsert(ctx context.Context, rec HistoryRecord) error
	// List returns up to limit records for the user, most recent first.
	List(ctx context.Context, userID string, limit int) ([]HistoryRecord, error)
}

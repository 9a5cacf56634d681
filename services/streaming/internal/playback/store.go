package playback

import (
	"context"
	"time"
)

// DefaultSessionTTL is how long a session record lives without being restarted.
const DefaultSessionTTL = 24 * time.Hour

// DefaultContinueWatchingLimit caps continue-watching listings.
const DefaultContinueWatchingLimit = 10

// Session is the field-set record kept per session key.
type Session struct {
	UserID      string     `json:"user_id"`
	ProfileID   string     `json:"profile_id"`
	ContentID   string     `json:"content_id"`
	EpisodeID   string     `json:"episode_id,omitempty"`
	Position    int        `json:"position"`
	StartedAt   time.Time  `json:"started_at"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Entry is one continue-watching item, most recent first in listings.
type Entry struct {
	ContentID   string `json:"content_id"`
	EpisodeID   string `json:"episode_id,omitempty"`
	Position    int    `json:"position"`
	UpdatedAtMs int64  `json:"updated_at_ms"`
}

// SessionStore owns the lifecycle of session records.
//
// None of the mutating operations check for existence: Create overwrites and
// re-arms the TTL, SetPosition on an expired key silently recreates a partial
// record (the store has no existence gate), and MarkComplete behaves the same.
// Position values are trusted verbatim from the caller; decreasing values and
// values past the content duration are both legal.
type SessionStore interface {
	Create(ctx context.Context, k Key) error
	// SetPosition writes position and last_updated. It does NOT refresh the TTL.
	SetPosition(ctx context.Context, k Key, position int) error
	MarkComplete(ctx context.Context, k Key) error
	// Get reads the record back; ok is false when the key is absent or expired.
	Get(ctx context.Context, k Key) (s Session, ok bool, err error)
}

// RecencyIndex owns the per-profile continue-watching ordering.
//
// The index member is the logical identity (content[, episode]) alone, with
// the position kept as an associated value, so repeated upserts re-score a
// single member and removal is a direct delete. Entries have no TTL.
type RecencyIndex interface {
	Upsert(ctx context.Context, k Key, position int) error
	RemoveByIdentity(ctx context.Context, k Key) error
	// TopRecent returns at most n entries, most recently touched first.
	TopRecent(ctx context.Context, userID, profileID string, n int) ([]Entry, error)
}

package playback

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/ott-platform/internal/platform/events"
)

// Service orchestrates the session store and the recency index. It is the
// sole writer of both structures.
//
// The two writes inside UpdatePosition and Complete are not wrapped in a
// transaction: both structures are soft resume-hint state, not a system of
// record, so a failure between the writes leaves them briefly inconsistent
// and the error from the second write propagates without rolling back the
// first. "Not found" and "already exists" are never errors at this layer;
// the only failure surfaced is the store itself failing.
type Service struct {
	Sessions SessionStore
	Index    RecencyIndex
	Events   *events.Publisher
	Log      *zap.Logger
	ListCap  int // max continue-watching entries returned; 0 means default
}

// Start creates (or re-creates) the session record for k and re-arms its TTL.
// Idempotent at the identity level: the returned session id is a pure
// function of k.
func (s *Service) Start(ctx context.Context, k Key) (string, error) {
	if err := s.Sessions.Create(ctx, k); err != nil {
		return "", err
	}
	sessionID := k.SessionID()
	s.Log.Info("playback session started", zap.String("session_id", sessionID))
	s.Events.Publish(events.SubjectPlaybackStarted, "playback_started", k.UserID, map[string]any{
		"profile_id": k.ProfileID,
		"content_id": k.ContentID,
		"episode_id": k.EpisodeID,
	})
	return sessionID, nil
}

// UpdatePosition writes the client-reported position to the session record,
// then refreshes the continue-watching entry for the same identity.
func (s *Service) UpdatePosition(ctx context.Context, k Key, position int) error {
	if err := s.Sessions.SetPosition(ctx, k, position); err != nil {
		return err
	}
	if err := s.Index.Upsert(ctx, k, position); err != nil {
		return err
	}
	s.Events.Publish(events.SubjectPlaybackPosition, "playback_position", k.UserID, map[string]any{
		"profile_id": k.ProfileID,
		"content_id": k.ContentID,
		"episode_id": k.EpisodeID,
		"position":   position,
	})
	return nil
}

// Complete marks the session finished and drops its continue-watching entry.
func (s *Service) Complete(ctx context.Context, k Key) error {
	if err := s.Sessions.MarkComplete(ctx, k); err != nil {
		return err
	}
	if err := s.Index.RemoveByIdentity(ctx, k); err != nil {
		return err
	}
	s.Log.Info("playback session completed", zap.String("session_id", k.SessionID()))
	s.Events.Publish(events.SubjectPlaybackCompleted, "playback_completed", k.UserID, map[string]any{
		"profile_id": k.ProfileID,
		"content_id": k.ContentID,
		"episode_id": k.EpisodeID,
	})
	return nil
}

// ContinueWatching lists the profile's most recently touched entries.
func (s *Service) ContinueWatching(ctx context.Context, userID, profileID string) ([]Entry, error) {
	n := s.ListCap
	if n <= 0 {
		n = DefaultContinueWatchingLimit
	}
	return s.Index.TopRecent(ctx, userID, profileID, n)
}

// Session reads the raw session record back; ok is false once the TTL lapsed.
func (s *Service) Session(ctx context.Context, k Key) (Session, bool, error) {
	return s.Sessions.Get(ctx, k)
}

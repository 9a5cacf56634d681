package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

type historyKey struct {
	userID, profileID, contentID, episodeID string
}

// InMemoryHistoryStore is a HistoryStore for tests and local development.
type InMemoryHistoryStore struct {
	mu   sync.Mutex
	rows map[historyKey]HistoryRecord
}

func NewInMemoryHistoryStore() *InMemoryHistoryStore {
	return &InMemoryHistoryStore{rows: map[historyKey]HistoryRecord{}}
}

func (s *InMemoryHistoryStore) Upsert(ctx context.Context, rec HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := historyKey{rec.UserID, rec.ProfileID, rec.ContentID, rec.EpisodeID}
	if existing, ok := s.rows[k]; ok {
		if existing.OccurredAtMs > rec.OccurredAtMs {
			return nil
		}
		rec.Completed = existing.Completed || rec.Completed
	}
	rec.UpdatedAt = time.Now().UTC()
	s.rows[k] = rec
	return nil
}

func (s *InMemoryHistoryStore) List(ctx context.Context, userID string, limit int) ([]HistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []HistoryRecord
	for _, rec := range s.rows {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OccurredAtMs != out[j].OccurredAtMs {
			return out[i].OccurredAtMs > out[j].OccurredAtMs
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

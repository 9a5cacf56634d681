package playback

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemorySessionStore is a development-only in-memory SessionStore.
// It mirrors the Redis field-set semantics: writes to a missing or expired
// key create a fresh partial record rather than failing.
type InMemorySessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*memorySession
}

type memorySession struct {
	session   Session
	expiresAt time.Time // zero means no TTL armed (partial record)
}

func NewInMemorySessionStore(ttl time.Duration) *InMemorySessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &InMemorySessionStore{ttl: ttl, sessions: make(map[string]*memorySession)}
}

// live returns the record for key, dropping it first if the TTL has lapsed.
func (s *InMemorySessionStore) live(key string) *memorySession {
	rec, ok := s.sessions[key]
	if !ok {
		return nil
	}
	if !rec.expiresAt.IsZero() && time.Now().After(rec.expiresAt) {
		delete(s.sessions, key)
		return nil
	}
	return rec
}

func (s *InMemorySessionStore) Create(_ context.Context, k Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	s.sessions[recordKey(k)] = &memorySession{
		session: Session{
			UserID:    k.UserID,
			ProfileID: k.ProfileID,
			ContentID: k.ContentID,
			EpisodeID: k.EpisodeID,
			StartedAt: now,
			Position:  0,
		},
		expiresAt: now.Add(s.ttl),
	}
	return nil
}

func (s *InMemorySessionStore) SetPosition(_ context.Context, k Key, position int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := recordKey(k)
	rec := s.live(key)
	if rec == nil {
		// Same as a Redis HSET on a missing key: a partial record appears.
		rec = &memorySession{}
		s.sessions[key] = rec
	}
	now := time.Now().UTC()
	rec.session.Position = position
	rec.session.LastUpdated = &now
	return nil
}

func (s *InMemorySessionStore) MarkComplete(_ context.Context, k Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := recordKey(k)
	rec := s.live(key)
	if rec == nil {
		rec = &memorySession{}
		s.sessions[key] = rec
	}
	now := time.Now().UTC()
	rec.session.Completed = true
	rec.session.CompletedAt = &now
	return nil
}

func (s *InMemorySessionStore) Get(_ context.Context, k Key) (Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.live(recordKey(k))
	if rec == nil {
		return Session{}, false, nil
	}
	return rec.session, true, nil
}

// InMemoryRecencyIndex is a development-only in-memory RecencyIndex.
type InMemoryRecencyIndex struct {
	mu       sync.Mutex
	seq      int64
	profiles map[string]map[string]memoryEntry // profile key -> identity -> entry
}

type memoryEntry struct {
	position    int
	updatedAtMs int64
	seq         int64 // ties broken by insertion order within the same millisecond
}

func NewInMemoryRecencyIndex() *InMemoryRecencyIndex {
	return &InMemoryRecencyIndex{profiles: make(map[string]map[string]memoryEntry)}
}

func (x *InMemoryRecencyIndex) Upsert(_ context.Context, k Key, position int) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	pk := indexKey(k.UserID, k.ProfileID)
	if x.profiles[pk] == nil {
		x.profiles[pk] = make(map[string]memoryEntry)
	}
	x.seq++
	x.profiles[pk][k.Identity()] = memoryEntry{
		position:    position,
		updatedAtMs: time.Now().UnixMilli(),
		seq:         x.seq,
	}
	return nil
}

func (x *InMemoryRecencyIndex) RemoveByIdentity(_ context.Context, k Key) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	delete(x.profiles[indexKey(k.UserID, k.ProfileID)], k.Identity())
	return nil
}

func (x *InMemoryRecencyIndex) TopRecent(_ context.Context, userID, profileID string, n int) ([]Entry, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if n <= 0 {
		n = DefaultContinueWatchingLimit
	}

	type member struct {
		identity string
		memoryEntry
	}
	var members []member
	for identity, e := range x.profiles[indexKey(userID, profileID)] {
		members = append(members, member{identity: identity, memoryEntry: e})
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].updatedAtMs != members[j].updatedAtMs {
			return members[i].updatedAtMs > members[j].updatedAtMs
		}
		return members[i].seq > members[j].seq
	})
	if len(members) > n {
		members = members[:n]
	}

	entries := make([]Entry, len(members))
	for i, m := range members {
		contentID, episodeID := splitIdentity(m.identity)
		entries[i] = Entry{
			ContentID:   contentID,
			EpisodeID:   episodeID,
			Position:    m.position,
			UpdatedAtMs: m.updatedAtMs,
		}
	}
	return entries, nil
}

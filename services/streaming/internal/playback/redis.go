package playback

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	recordKeyPrefix = "playback:"
	indexKeyPrefix  = "continue-watching:"
	posKeyPrefix    = "continue-watching:pos:"
)

func recordKey(k Key) string { return recordKeyPrefix + k.SessionID() }

func indexKey(userID, profileID string) string { return indexKeyPrefix + userID + ":" + profileID }

func posKey(userID, profileID string) string { return posKeyPrefix + userID + ":" + profileID }

// RedisSessionStore is the production Redis-backed SessionStore.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) Create(ctx context.Context, k Key) error {
	key := recordKey(k)
	err := s.client.HSet(ctx, key, map[string]any{
		"user_id":    k.UserID,
		"profile_id": k.ProfileID,
		"content_id": k.ContentID,
		"episode_id": k.EpisodeID,
		"started_at": time.Now().UTC().Format(time.RFC3339),
		"position":   "0",
	}).Err()
	if err != nil {
		return err
	}
	return s.client.Expire(ctx, key, s.ttl).Err()
}

func (s *RedisSessionStore) SetPosition(ctx context.Context, k Key, position int) error {
	return s.client.HSet(ctx, recordKey(k), map[string]any{
		"position":     strconv.Itoa(position),
		"last_updated": time.Now().UTC().Format(time.RFC3339),
	}).Err()
}

func (s *RedisSessionStore) MarkComplete(ctx context.Context, k Key) error {
	return s.client.HSet(ctx, recordKey(k), map[string]any{
		"completed":    "true",
		"completed_at": time.Now().UTC().Format(time.RFC3339),
	}).Err()
}

func (s *RedisSessionStore) Get(ctx context.Context, k Key) (Session, bool, error) {
	fields, err := s.client.HGetAll(ctx, recordKey(k)).Result()
	if err != nil {
		return Session{}, false, err
	}
	if len(fields) == 0 {
		return Session{}, false, nil
	}
	return sessionFromFields(fields), true, nil
}

func sessionFromFields(fields map[string]string) Session {
	s := Session{
		UserID:    fields["user_id"],
		ProfileID: fields["profile_id"],
		ContentID: fields["content_id"],
		EpisodeID: fields["episode_id"],
		Completed: fields["completed"] == "true",
	}
	s.Position, _ = strconv.Atoi(fields["position"])
	if t, err := time.Parse(time.RFC3339, fields["started_at"]); err == nil {
		s.StartedAt = t
	}
	if t, err := time.Parse(time.RFC3339, fields["last_updated"]); err == nil {
		s.LastUpdated = &t
	}
	if t, err := time.Parse(time.RFC3339, fields["completed_at"]); err == nil {
		s.CompletedAt = &t
	}
	return s
}

// RedisRecencyIndex is the production Redis-backed RecencyIndex.
//
// Each profile has a sorted set scored by write time in unix millis whose
// members are logical identities, plus a companion hash mapping identity to
// the latest position. Re-upserting an identity re-scores the single member
// instead of accumulating duplicates, and removal is a direct ZREM/HDEL with
// no scan.
type RedisRecencyIndex struct {
	client *redis.Client
}

func NewRedisRecencyIndex(client *redis.Client) *RedisRecencyIndex {
	return &RedisRecencyIndex{client: client}
}

func (x *RedisRecencyIndex) Upsert(ctx context.Context, k Key, position int) error {
	member := k.Identity()
	err := x.client.ZAdd(ctx, indexKey(k.UserID, k.ProfileID), redis.Z{
		Score:  float64(time.Now().UnixMilli()),
		Member: member,
	}).Err()
	if err != nil {
		return err
	}
	return x.client.HSet(ctx, posKey(k.UserID, k.ProfileID), member, strconv.Itoa(position)).Err()
}

func (x *RedisRecencyIndex) RemoveByIdentity(ctx context.Context, k Key) error {
	member := k.Identity()
	if err := x.client.ZRem(ctx, indexKey(k.UserID, k.ProfileID), member).Err(); err != nil {
		return err
	}
	return x.client.HDel(ctx, posKey(k.UserID, k.ProfileID), member).Err()
}

func (x *RedisRecencyIndex) TopRecent(ctx context.Context, userID, profileID string, n int) ([]Entry, error) {
	if n <= 0 {
		n = DefaultContinueWatchingLimit
	}
	members, err := x.client.ZRevRangeWithScores(ctx, indexKey(userID, profileID), 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(members))
	if len(members) == 0 {
		return entries, nil
	}

	fields := make([]string, len(members))
	for i, m := range members {
		fields[i], _ = m.Member.(string)
	}
	positions, err := x.client.HMGet(ctx, posKey(userID, profileID), fields...).Result()
	if err != nil {
		return nil, err
	}

	for i, m := range members {
		contentID, episodeID := splitIdentity(fields[i])
		e := Entry{
			ContentID:   contentID,
			EpisodeID:   episodeID,
			UpdatedAtMs: int64(m.Score),
		}
		if i < len(positions) {
			if v, ok := positions[i].(string); ok {
				e.Position, _ = strconv.Atoi(v)
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

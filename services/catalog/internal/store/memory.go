package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryContentStore is a development-only in-memory implementation.
type InMemoryContentStore struct {
	mu       sync.RWMutex
	content  map[string]Content
	seasons  map[string][]Season  // contentID -> seasons
	episodes map[string][]Episode // seasonID -> episodes
	genres   []Genre
}

func NewInMemoryContentStore() *InMemoryContentStore {
	return &InMemoryContentStore{
		content:  make(map[string]Content),
		seasons:  make(map[string][]Season),
		episodes: make(map[string][]Episode),
	}
}

// Seed loads fixtures; test helper, not part of ContentStore.
func (s *InMemoryContentStore) Seed(content []Content, genres []Genre) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range content {
		if c.Genres == nil {
			c.Genres = []Genre{}
		}
		s.content[c.ID] = c
	}
	s.genres = append(s.genres, genres...)
}

func (s *InMemoryContentStore) SeedSeason(season Season, episodes []Episode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seasons[season.ContentID] = append(s.seasons[season.ContentID], season)
	s.episodes[season.ID] = append(s.episodes[season.ID], episodes...)
}

func (s *InMemoryContentStore) Create(_ context.Context, p CreateContentParams) (Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := Content{
		ID:              uuid.New().String(),
		Type:            p.Type,
		Title:           p.Title,
		Description:     p.Description,
		ReleaseDate:     p.ReleaseDate,
		DurationMinutes: p.DurationMinutes,
		MaturityRating:  p.MaturityRating,
		PosterURL:       p.PosterURL,
		ThumbnailURL:    p.ThumbnailURL,
		TierRequirement: p.TierRequirement,
		Genres:          []Genre{},
	}
	for _, genreID := range p.GenreIDs {
		for _, g := range s.genres {
			if g.ID == genreID {
				c.Genres = append(c.Genres, g)
			}
		}
	}
	s.content[c.ID] = c
	return c, nil
}

func (s *InMemoryContentStore) sortedContent() []Content {
	out := make([]Content, 0, len(s.content))
	for _, c := range s.content {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := out[i].ReleaseDate, out[j].ReleaseDate
		if ri == nil {
			return false
		}
		if rj == nil {
			return true
		}
		return ri.After(*rj)
	})
	return out
}

func (s *InMemoryContentStore) List(_ context.Context, f ListFilter) ([]Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var out []Content
	for _, c := range s.sortedContent() {
		if f.Type != "" && c.Type != f.Type {
			continue
		}
		out = append(out, c)
	}
	if f.Offset >= len(out) {
		return []Content{}, nil
	}
	out = out[f.Offset:]
	if len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *InMemoryContentStore) GetByID(_ context.Context, id string) (Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.content[id]
	if !ok {
		return Content{}, ErrNotFound
	}
	return c, nil
}

func (s *InMemoryContentStore) Search(_ context.Context, query string, limit int) ([]Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	q := strings.ToLower(query)
	var out []Content
	for _, c := range s.sortedContent() {
		if strings.Contains(strings.ToLower(c.Title), q) || strings.Contains(strings.ToLower(c.Description), q) {
			out = append(out, c)
		}
		if len(out) == limit {
			break
		}
	}
	if out == nil {
		out = []Content{}
	}
	return out, nil
}

func (s *InMemoryContentStore) ListGenres(_ context.Context) ([]Genre, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]Genre(nil), s.genres...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemoryContentStore) Trending(_ context.Context, limit int) ([]Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > 50 {
		limit = 10
	}
	cutoff := time.Now().AddDate(0, 0, -30)
	var out []Content
	for _, c := range s.sortedContent() {
		if c.ReleaseDate == nil || c.ReleaseDate.Before(cutoff) {
			continue
		}
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	if out == nil {
		out = []Content{}
	}
	return out, nil
}

func (s *InMemoryContentStore) Seasons(_ context.Context, contentID string) ([]Season, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]Season(nil), s.seasons[contentID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].SeasonNumber < out[j].SeasonNumber })
	if out == nil {
		out = []Season{}
	}
	return out, nil
}

func (s *InMemoryContentStore) Episodes(_ context.Context, seasonID string) ([]Episode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]Episode(nil), s.episodes[seasonID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].EpisodeNumber < out[j].EpisodeNumber })
	if out == nil {
		out = []Episode{}
	}
	return out, nil
}

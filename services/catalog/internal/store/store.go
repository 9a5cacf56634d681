package store

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

// Content is the internal catalog representation of a title.
// Only rows in workflow state "published" are ever returned.
type Content struct {
	ID              string     `json:"id"`
	Type            string     `json:"type"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	ReleaseDate     *time.Time `json:"release_date,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	MaturityRating  string     `json:"maturity_rating,omitempty"`
	PosterURL       string     `json:"poster_url,omitempty"`
	ThumbnailURL    string     `json:"thumbnail_url,omitempty"`
	TierRequirement string     `json:"tier_requirement"`
	Genres          []Genre    `json:"genres"`
}

type Genre struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Season struct {
	ID           string `json:"id"`
	ContentID    string `json:"content_id"`
	SeasonNumber int    `json:"season_number"`
	Title        string `json:"title,omitempty"`
}

type Episode struct {
	ID              string `json:"id"`
	SeasonID        string `json:"season_id"`
	EpisodeNumber   int    `json:"episode_number"`
	Title           string `json:"title,omitempty"`
	Description     string `json:"description,omitempty"`
	DurationMinutes *int   `json:"duration_minutes,omitempty"`
}

// ListFilter narrows content listings.
type ListFilter struct {
	Type   string
	Limit  int
	Offset int
}

// CreateContentParams holds the fields an operator supplies when publishing
// a new title.
type CreateContentParams struct {
	Type            string
	Title           string
	Description     string
	ReleaseDate     *time.Time
	DurationMinutes *int
	MaturityRating  string
	PosterURL       string
	ThumbnailURL    string
	TierRequirement string
	GenreIDs        []string
}

// ContentStore defines the contract for catalog reads plus the operator
// write path.
type ContentStore interface {
	// Create publishes a new title and returns it with genres resolved.
	Create(ctx context.Context, p CreateContentParams) (Content, error)
	List(ctx context.Context, f ListFilter) ([]Content, error)
	GetByID(ctx context.Context, id string) (Content, error)
	Search(ctx context.Context, query string, limit int) ([]Content, error)
	ListGenres(ctx context.Context) ([]Genre, error)
	// Trending returns recently released titles, newest first.
	Trending(ctx context.Context, limit int) ([]Content, error)
	Seasons(ctx context.Context, contentID string) ([]Season, error)
	Episodes(ctx context.Context, seasonID string) ([]Episode, error)
}

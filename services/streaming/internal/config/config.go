package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	RedisURL              string
	SessionTTL            time.Duration
	ContinueWatchingLimit int
	ManifestBaseURL       string
	// SigningSecret enables signed manifest URLs when non-empty.
	SigningSecret string
}

func Load() Config {
	cfg := Config{
		RedisURL:              strings.TrimSpace(os.Getenv("REDIS_URL")),
		SessionTTL:            24 * time.Hour,
		ContinueWatchingLimit: 10,
		ManifestBaseURL:       strings.TrimSpace(os.Getenv("MANIFEST_BASE_URL")),
		SigningSecret:         strings.TrimSpace(os.Getenv("MANIFEST_SIGNING_SECRET")),
	}
	if v := strings.TrimSpace(os.Getenv("PLAYBACK_SESSION_TTL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SessionTTL = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("CONTINUE_WATCHING_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ContinueWatchingLimit = n
		}
	}
	if cfg.ManifestBaseURL == "" {
		cfg.ManifestBaseURL = "https://cdn.ottstream.io/hls"
	}
	return cfg
}

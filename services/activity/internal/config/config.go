package config

import (
	"os"
	"strconv"
	"strings"
)

// WorkerConfig controls the history consumer's batch behaviour.
type WorkerConfig struct {
	BatchSize       int
	BatchIntervalMs int
}

func LoadWorker() WorkerConfig {
	return WorkerConfig{
		BatchSize:       envInt("WORKER_BATCH_SIZE", 100),
		BatchIntervalMs: envInt("WORKER_BATCH_INTERVAL_MS", 2000),
	}
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

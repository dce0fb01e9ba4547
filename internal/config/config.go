// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers file and env overrides on top.
// - External errors must be wrapped via this package's error helpers.
package config

import "runtime"

// Store backend selectors.
const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Store selects the backing store: memory or mongo.
	Store string `koanf:"store"`

	// MongoURI and MongoDatabase configure the mongo backend.
	MongoURI      string `koanf:"mongo_uri"`
	MongoDatabase string `koanf:"mongo_database"`

	// ActivityQueueSize bounds the in-memory activity queue.
	ActivityQueueSize int `koanf:"activity_queue_size"`

	// RecorderWorkers sets the number of activity recorder workers.
	RecorderWorkers int `koanf:"recorder_workers"`

	// DedupeSize sets the size of the submission reference cache.
	DedupeSize int `koanf:"dedupe_size"`

	// DefaultPageSize and MaxPageSize bound list endpoints.
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`

	// DashboardWindowDays bounds the performance chart lookback.
	DashboardWindowDays int `koanf:"dashboard_window_days"`

	// RecentActivityLimit caps the dashboard activity feed.
	RecentActivityLimit int `koanf:"recent_activity_limit"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		Store:               StoreMemory,
		MongoURI:            "mongodb://localhost:27017",
		MongoDatabase:       "podium",
		ActivityQueueSize:   10_000,
		RecorderWorkers:     runtime.NumCPU() * 2,
		DedupeSize:          50_000,
		DefaultPageSize:     20,
		MaxPageSize:         100,
		DashboardWindowDays: 30,
		RecentActivityLimit: 20,
	}
}

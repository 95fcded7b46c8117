package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig holds all daemon-level configuration loaded from environment variables.
type AppConfig struct {
	// Port is the HTTP server port. Defaults to 8790.
	Port int `envconfig:"PORT" default:"8790"`

	// DataDir is the root data directory. Defaults to ~/.zephyr.
	DataDir string `envconfig:"ZEPHYR_DATA_DIR"`

	// LogLevel sets the minimum log level (debug, info, warn, error). Defaults to info.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// ConfigFile is an explicit path to the listener definition file. When
	// empty, the daemon probes for zephyr.{yaml,yml,json,toml} in the working
	// directory and then in DataDir.
	ConfigFile string `envconfig:"ZEPHYR_CONFIG_FILE"`

	// AsyncWorkers caps the number of concurrently running asynchronous
	// deliveries.
	AsyncWorkers int `envconfig:"ZEPHYR_ASYNC_WORKERS" default:"10"`

	// PoolWorkers is the number of worker goroutines in the queued-task pool.
	PoolWorkers int `envconfig:"ZEPHYR_POOL_WORKERS" default:"3"`

	// PoolCapacity bounds the queued-task submission buffer.
	PoolCapacity int `envconfig:"ZEPHYR_POOL_CAPACITY" default:"100"`

	// HistoryRetentionDays bounds how long delivery history rows are kept.
	// Zero disables pruning.
	HistoryRetentionDays int `envconfig:"ZEPHYR_HISTORY_RETENTION_DAYS" default:"30"`
}

// Load reads AppConfig from environment variables using envconfig.
// DataDir defaults to ~/.zephyr if not set.
func Load() (*AppConfig, error) {
	var c AppConfig
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		c.DataDir = filepath.Join(home, ".zephyr")
	}
	return &c, nil
}

// SlogLevel converts the LogLevel string to a slog.Level.
// Unknown values default to slog.LevelInfo.
func (c *AppConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogDir returns the path to the log directory (~/.zephyr/logs).
func (c *AppConfig) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// DBPath returns the path to the SQLite database file.
func (c *AppConfig) DBPath() string {
	return filepath.Join(c.DataDir, "zephyr.db")
}

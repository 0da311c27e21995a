package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

const DefaultFeedURL = "https://cvefeed.io/rssfeed/severity/high.xml"

type Config struct {
	FeedURL            string
	EmailConfigPath    string
	DataDir            string
	StateFile          string
	LogFile            string
	LogLevel           string
	FetchInterval      time.Duration
	DigestAt           string
	TickInterval       time.Duration
	FeedTimeout        time.Duration
	SMTPTimeout        time.Duration
	StatusAddr         string
	TriggerMinInterval time.Duration
	DatabaseURL        string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	dataDir := getEnv("DATA_DIR", "data")
	return &Config{
		FeedURL:            getEnv("CVE_FEED_URL", DefaultFeedURL),
		EmailConfigPath:    getEnv("EMAIL_CONFIG", ""),
		DataDir:            dataDir,
		StateFile:          getEnv("STATE_FILE", filepath.Join(dataDir, "state.json")),
		LogFile:            getEnv("LOG_FILE", filepath.Join("log", "cve_monitor.log")),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		FetchInterval:      getDuration("FETCH_INTERVAL", 15*time.Minute),
		DigestAt:           getEnv("DIGEST_AT", "02:00"),
		TickInterval:       getDuration("TICK_INTERVAL", time.Second),
		FeedTimeout:        getDuration("FEED_TIMEOUT", 30*time.Second),
		SMTPTimeout:        getDuration("SMTP_TIMEOUT", 30*time.Second),
		StatusAddr:         getEnv("STATUS_ADDR", ""),
		TriggerMinInterval: getDuration("TRIGGER_MIN_INTERVAL", 30*time.Second),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
	}
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration for env var, using default",
			"key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}

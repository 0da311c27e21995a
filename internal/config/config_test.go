package config

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := Load()

	assert.Equal(t, DefaultFeedURL, cfg.FeedURL)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "data/state.json", cfg.StateFile)
	assert.Equal(t, "log/cve_monitor.log", cfg.LogFile)
	assert.Equal(t, 15*time.Minute, cfg.FetchInterval)
	assert.Equal(t, "02:00", cfg.DigestAt)
	assert.Equal(t, time.Second, cfg.TickInterval)
	assert.Equal(t, 30*time.Second, cfg.FeedTimeout)
	assert.Empty(t, cfg.StatusAddr)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.EmailConfigPath)
}

func TestLoad_CustomValues(t *testing.T) {
	t.Chdir(t.TempDir())
	setEnvs(t, map[string]string{
		"CVE_FEED_URL":   "https://feeds.example/critical.xml",
		"DATA_DIR":       "/var/lib/cve",
		"FETCH_INTERVAL": "5m",
		"DIGEST_AT":      "07:30",
		"STATUS_ADDR":    ":9090",
		"EMAIL_CONFIG":   "/etc/cve/email.json",
	})

	cfg := Load()

	assert.Equal(t, "https://feeds.example/critical.xml", cfg.FeedURL)
	assert.Equal(t, "/var/lib/cve", cfg.DataDir)
	assert.Equal(t, "/var/lib/cve/state.json", cfg.StateFile, "state file follows data dir")
	assert.Equal(t, 5*time.Minute, cfg.FetchInterval)
	assert.Equal(t, "07:30", cfg.DigestAt)
	assert.Equal(t, ":9090", cfg.StatusAddr)
	assert.Equal(t, "/etc/cve/email.json", cfg.EmailConfigPath)
}

func TestLoad_InvalidDuration_FallsBack(t *testing.T) {
	t.Chdir(t.TempDir())
	setEnvs(t, map[string]string{
		"FETCH_INTERVAL": "not-a-duration",
		"TICK_INTERVAL":  "-1s",
	})

	cfg := Load()

	assert.Equal(t, 15*time.Minute, cfg.FetchInterval)
	assert.Equal(t, time.Second, cfg.TickInterval)
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, ".env", "DIGEST_AT=05:45\n")
	// godotenv never overrides a set variable, so unset it; Setenv restores it.
	t.Setenv("DIGEST_AT", "")
	os.Unsetenv("DIGEST_AT")

	cfg := Load()

	assert.Equal(t, "05:45", cfg.DigestAt)
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"info", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.in}
		assert.Equal(t, tt.want, cfg.SlogLevel(), tt.in)
	}
}

package adapter

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(viper.New(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "https://api.themoviedb.org/3", cfg.API.BaseURL)
	assert.Equal(t, "https://image.tmdb.org/t/p/", cfg.API.ImageBaseURL)
	assert.Equal(t, 800*time.Millisecond, cfg.Feed.Debounce)
	assert.Equal(t, 256, cfg.Images.CacheSize)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.False(t, cfg.IsConfigured())
}

func TestLoadConfig_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	yaml := `
api:
  token: file-token
  requests_per_second: 5
feed:
  debounce: 250ms
storage:
  path: ""
browser:
  command: firefox
  args: ["--new-tab"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := loadConfig(viper.New(), dir)
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.API.Token)
	assert.Equal(t, 5.0, cfg.API.RequestsPerSecond)
	assert.Equal(t, 250*time.Millisecond, cfg.Feed.Debounce)
	assert.Empty(t, cfg.Storage.Path)
	assert.Equal(t, "firefox", cfg.Browser.Command)
	assert.Equal(t, []string{"--new-tab"}, cfg.Browser.Args)
	assert.True(t, cfg.IsConfigured())

	// Untouched sections keep their defaults
	assert.Equal(t, "https://api.themoviedb.org/3", cfg.API.BaseURL)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("api:\n  token: file-token\n"), 0644))
	t.Setenv("CINELIST_API_TOKEN", "env-token")
	t.Setenv("CINELIST_LOGGING_LEVEL", "debug")

	cfg, err := loadConfig(viper.New(), dir)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.API.Token)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("api: [unclosed"), 0644))

	_, err := loadConfig(viper.New(), dir)
	assert.ErrorContains(t, err, "error reading config file")
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"Error":   slog.LevelError,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in), in)
	}
}

func TestSetupLogger_WritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "cinelist.log")
	logger, err := SetupLogger(&LoggingConfig{File: path, Level: "debug", MaxSizeMB: 1})
	require.NoError(t, err)

	logger.Debug("hello", "movie", 42)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"movie":42`)
}

func TestSetupLogger_Console(t *testing.T) {
	logger, err := SetupLogger(&LoggingConfig{Console: true, Level: "warn"})
	require.NoError(t, err)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))
}

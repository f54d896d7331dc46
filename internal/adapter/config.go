package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Feed    FeedConfig    `mapstructure:"feed"`
	Images  ImagesConfig  `mapstructure:"images"`
	Storage StorageConfig `mapstructure:"storage"`
	Browser BrowserConfig `mapstructure:"browser"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig holds remote catalog configuration
type APIConfig struct {
	BaseURL           string        `mapstructure:"base_url"`       // e.g. https://api.themoviedb.org/3
	ImageBaseURL      string        `mapstructure:"image_base_url"` // e.g. https://image.tmdb.org/t/p/
	WebBaseURL        string        `mapstructure:"web_base_url"`   // Used to open a movie's page
	Token             string        `mapstructure:"token"`          // Bearer read-access token
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"` // 0 disables pacing
}

// FeedConfig holds feed behaviour
type FeedConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// ImagesConfig holds image cache configuration
type ImagesConfig struct {
	CacheSize int           `mapstructure:"cache_size"` // Decoded images kept in memory
	Timeout   time.Duration `mapstructure:"timeout"`
}

// StorageConfig holds the favorites database location
type StorageConfig struct {
	Path string `mapstructure:"path"` // Empty keeps favorites in memory only
}

// BrowserConfig holds the command used to open movie pages
type BrowserConfig struct {
	Command string   `mapstructure:"command"` // Empty uses the system default
	Args    []string `mapstructure:"args"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Console    bool   `mapstructure:"console"` // Log to stderr instead of the file
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           "https://api.themoviedb.org/3",
			ImageBaseURL:      "https://image.tmdb.org/t/p/",
			WebBaseURL:        "https://www.themoviedb.org/movie/",
			Timeout:           30 * time.Second,
			RequestsPerSecond: 20,
		},
		Feed: FeedConfig{
			Debounce: 800 * time.Millisecond,
		},
		Images: ImagesConfig{
			CacheSize: 256,
			Timeout:   30 * time.Second,
		},
		Storage: StorageConfig{
			Path: defaultDataPath(),
		},
		Logging: LoggingConfig{
			File:       filepath.Join(defaultDataPath(), "cinelist.log"),
			Level:      "INFO",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// envKeyReplacer maps nested keys to env names: api.token -> CINELIST_API_TOKEN
var envKeyReplacer = strings.NewReplacer(".", "_")

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "cinelist")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "cinelist")
	}
}

// defaultConfigPath returns the default config file path for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "cinelist")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "cinelist")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	return loadConfig(viper.GetViper(), defaultConfigPath())
}

func loadConfig(v *viper.Viper, configDir string) (*Config, error) {
	cfg := DefaultConfig()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	// Environment variable overrides, e.g. CINELIST_API_TOKEN
	v.SetEnvPrefix("CINELIST")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()
	bindEnv(v)

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// bindEnv registers the keys that are commonly set from the environment.
// AutomaticEnv alone does not reach nested keys during Unmarshal.
func bindEnv(v *viper.Viper) {
	for _, key := range []string{
		"api.base_url", "api.image_base_url", "api.token", "api.requests_per_second",
		"feed.debounce", "storage.path", "logging.level", "logging.file", "logging.console",
	} {
		_ = v.BindEnv(key)
	}
}

// SaveToken updates just the API token in the configuration
func SaveToken(token string) error {
	viper.Set("api.token", token)

	configPath := defaultConfigPath()
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsConfigured returns true if an API token is set
func (c *Config) IsConfigured() bool {
	return c.API.Token != ""
}

package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// SourceType identifies the catalog backend
type SourceType string

const (
	SourceTypeREST SourceType = "rest"
	SourceTypeBolt SourceType = "bolt"
)

const defaultServerURL = "http://localhost:8000/api"

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Viewer  ViewerConfig  `mapstructure:"viewer"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds catalog backend configuration
type ServerConfig struct {
	Type     SourceType `mapstructure:"type"`      // "rest" or "bolt"
	URL      string     `mapstructure:"url"`       // REST API base URL
	Email    string     `mapstructure:"email"`     // Last signed-in teacher
	BoltPath string     `mapstructure:"bolt_path"` // Offline catalog file (bolt only)
}

// CacheConfig tunes the in-memory catalog cache
type CacheConfig struct {
	FetchConcurrency int  `mapstructure:"fetch_concurrency"` // 1 = strictly sequential
	WarmOnStart      bool `mapstructure:"warm_on_start"`
}

// ViewerConfig holds the external content viewer
type ViewerConfig struct {
	Command string   `mapstructure:"command"` // empty for system default
	Args    []string `mapstructure:"args"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Type:     SourceTypeREST,
			URL:      defaultServerURL,
			BoltPath: filepath.Join(defaultDataPath(), "catalog.db"),
		},
		Cache: CacheConfig{
			FetchConcurrency: 1,
			WarmOnStart:      true,
		},
		Viewer: ViewerConfig{
			Args: []string{},
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), "lectern.log"),
			Level: "INFO",
		},
	}
}

// defaultDataPath returns the directory for logs, session and offline data
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "lectern")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "lectern")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "lectern")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "lectern")
	}
}

// SessionPath returns the file the REST session cookies are kept in
func SessionPath() string {
	return filepath.Join(defaultDataPath(), "session.json")
}

// newViper returns a viper instance with every key defaulted, so that
// environment overrides reach Unmarshal even without a config file.
func newViper() *viper.Viper {
	v := viper.New()
	def := DefaultConfig()

	v.SetDefault("server.type", string(def.Server.Type))
	v.SetDefault("server.url", def.Server.URL)
	v.SetDefault("server.email", def.Server.Email)
	v.SetDefault("server.bolt_path", def.Server.BoltPath)
	v.SetDefault("cache.fetch_concurrency", def.Cache.FetchConcurrency)
	v.SetDefault("cache.warm_on_start", def.Cache.WarmOnStart)
	v.SetDefault("viewer.command", def.Viewer.Command)
	v.SetDefault("viewer.args", def.Viewer.Args)
	v.SetDefault("logging.file", def.Logging.File)
	v.SetDefault("logging.level", def.Logging.Level)

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Environment variable overrides, e.g. LECTERN_SERVER_URL
	v.SetEnvPrefix("LECTERN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	return loadConfig(defaultConfigPath(), ".")
}

func loadConfig(paths ...string) (*Config, error) {
	v := newViper()
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if cfg.Cache.FetchConcurrency < 1 {
		cfg.Cache.FetchConcurrency = 1
	}
	return cfg, nil
}

// SaveConfig saves the configuration to the default config file
func SaveConfig(cfg *Config) error {
	return saveConfig(cfg, defaultConfigPath())
}

func saveConfig(cfg *Config, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to keep snake_case key names
	v := viper.New()
	v.Set("server.type", string(cfg.Server.Type))
	v.Set("server.url", cfg.Server.URL)
	v.Set("server.email", cfg.Server.Email)
	v.Set("server.bolt_path", cfg.Server.BoltPath)

	v.Set("cache.fetch_concurrency", cfg.Cache.FetchConcurrency)
	v.Set("cache.warm_on_start", cfg.Cache.WarmOnStart)

	v.Set("viewer.command", cfg.Viewer.Command)
	v.Set("viewer.args", cfg.Viewer.Args)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// IsConfigured returns true if the selected backend has what it needs
func (c *Config) IsConfigured() bool {
	switch c.Server.Type {
	case SourceTypeBolt:
		return c.Server.BoltPath != ""
	default:
		return c.Server.URL != ""
	}
}

// ClearSession forgets the signed-in teacher and removes stored cookies,
// keeping every other setting.
func ClearSession(cfg *Config) error {
	cfg.Server.Email = ""
	if err := SaveConfig(cfg); err != nil {
		return err
	}
	if err := os.Remove(SessionPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

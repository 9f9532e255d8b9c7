package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Tone    ToneConfig    `yaml:"tone" mapstructure:"tone"`
	History HistoryConfig `yaml:"history" mapstructure:"history"`
	LogFile string        `yaml:"log_file" mapstructure:"log_file"`
}

// StoreConfig selects where the buffer and its history are persisted.
type StoreConfig struct {
	Backend     string        `yaml:"backend" mapstructure:"backend"`
	Path        string        `yaml:"path" mapstructure:"path"`
	RedisURL    string        `yaml:"redis_url" mapstructure:"redis_url"`
	DatabaseURL string        `yaml:"database_url" mapstructure:"database_url"`
	Prefix      string        `yaml:"prefix" mapstructure:"prefix"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ToneConfig selects the service that rewrites the buffer.
type ToneConfig struct {
	Backend    string        `yaml:"backend" mapstructure:"backend"`
	BaseURL    string        `yaml:"base_url" mapstructure:"base_url"`
	APIKey     string        `yaml:"api_key" mapstructure:"api_key"`
	Model      string        `yaml:"model" mapstructure:"model"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxRetries int           `yaml:"max_retries" mapstructure:"max_retries"`
}

type HistoryConfig struct {
	MaxDepth int `yaml:"max_depth" mapstructure:"max_depth"`
}

const (
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	ToneHTTP      = "http"
	ToneOpenAI    = "openai"
	ToneAnthropic = "anthropic"

	// DefaultToneURL is where the HTTP tone service listens by default.
	DefaultToneURL = "http://localhost:5000"
)

var envVarRe = regexp.MustCompile(`\$([A-Z_][A-Z0-9_]*)`)

func expandEnv(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimPrefix(match, "$")
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match
	})
}

// expandHome resolves a leading "~/" against the user's home directory.
func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p
}

// Dir returns the directory holding config.yaml, the file store and the log.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tonepad")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "tonepad")
}

// Path returns the default config file location.
func Path() string {
	return filepath.Join(Dir(), "config.yaml")
}

func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: StoreFile,
			Path:    filepath.Join(Dir(), "session.json"),
			Prefix:  "tonepad:",
			Timeout: 2 * time.Second,
		},
		Tone: ToneConfig{
			Backend:    ToneHTTP,
			BaseURL:    DefaultToneURL,
			Model:      "mistral-small-latest",
			Timeout:    60 * time.Second,
			MaxRetries: 2,
		},
		History: HistoryConfig{MaxDepth: 200},
		LogFile: filepath.Join(Dir(), "tonepad.log"),
	}
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("store.backend", cfg.Store.Backend)
	v.SetDefault("store.path", cfg.Store.Path)
	v.SetDefault("store.redis_url", cfg.Store.RedisURL)
	v.SetDefault("store.database_url", cfg.Store.DatabaseURL)
	v.SetDefault("store.prefix", cfg.Store.Prefix)
	v.SetDefault("store.timeout", cfg.Store.Timeout)
	v.SetDefault("tone.backend", cfg.Tone.Backend)
	v.SetDefault("tone.base_url", cfg.Tone.BaseURL)
	v.SetDefault("tone.api_key", cfg.Tone.APIKey)
	v.SetDefault("tone.model", cfg.Tone.Model)
	v.SetDefault("tone.timeout", cfg.Tone.Timeout)
	v.SetDefault("tone.max_retries", cfg.Tone.MaxRetries)
	v.SetDefault("history.max_depth", cfg.History.MaxDepth)
	v.SetDefault("log_file", cfg.LogFile)
}

// Load reads configuration. An explicit path must exist; otherwise the
// usual locations are searched and defaults are used when nothing is found.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	setDefaults(v, cfg)

	if path != "" {
		v.SetConfigFile(expandHome(path))
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Search paths
		v.AddConfigPath(".")
		v.AddConfigPath(Dir())
	}

	// Environment variables
	v.SetEnvPrefix("TONEPAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: %w", err)
		}
		// Config file not found; use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg.Tone.APIKey = expandEnv(cfg.Tone.APIKey)
	cfg.Tone.BaseURL = expandEnv(cfg.Tone.BaseURL)
	cfg.Store.RedisURL = expandEnv(cfg.Store.RedisURL)
	cfg.Store.DatabaseURL = expandEnv(cfg.Store.DatabaseURL)
	cfg.Store.Path = expandHome(cfg.Store.Path)
	cfg.LogFile = expandHome(cfg.LogFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors and fills zero limits.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case StoreFile:
		if c.Store.Path == "" {
			return fmt.Errorf("config: store backend %q requires path", c.Store.Backend)
		}
	case StoreRedis:
		if c.Store.RedisURL == "" {
			return fmt.Errorf("config: store backend %q requires redis_url", c.Store.Backend)
		}
	case StorePostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("config: store backend %q requires database_url", c.Store.Backend)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("config: invalid store backend %q (must be file, redis, postgres, or memory)", c.Store.Backend)
	}

	switch c.Tone.Backend {
	case ToneHTTP, ToneOpenAI:
		if c.Tone.BaseURL == "" {
			return fmt.Errorf("config: tone backend %q requires base_url", c.Tone.Backend)
		}
	case ToneAnthropic:
		if c.Tone.APIKey == "" {
			return fmt.Errorf("config: tone backend %q requires api_key", c.Tone.Backend)
		}
		// the HTTP service default means nothing to the Messages API
		if c.Tone.BaseURL == DefaultToneURL {
			c.Tone.BaseURL = ""
		}
	default:
		return fmt.Errorf("config: invalid tone backend %q (must be http, openai, or anthropic)", c.Tone.Backend)
	}

	if c.Store.Timeout <= 0 {
		c.Store.Timeout = 2 * time.Second
	}
	if c.Tone.Timeout <= 0 {
		c.Tone.Timeout = 60 * time.Second
	}
	if c.Tone.MaxRetries < 0 {
		c.Tone.MaxRetries = 0
	}
	if c.History.MaxDepth < 1 {
		c.History.MaxDepth = 200
	}
	return nil
}

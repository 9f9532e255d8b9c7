package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the search path at an empty temp dir and clears overrides.
func isolate(t *testing.T) string {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Chdir(dir)
	return dir
}

// TestDefaults verifies the stock backends and limits
func TestDefaults(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, StoreFile, cfg.Store.Backend)
	assert.Equal(t, ToneHTTP, cfg.Tone.Backend)
	assert.Equal(t, "http://localhost:5000", cfg.Tone.BaseURL)
	assert.Equal(t, 200, cfg.History.MaxDepth)
	require.NoError(t, cfg.Validate())
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "tonepad", "session.json"), cfg.Store.Path)
	assert.Equal(t, 2*time.Second, cfg.Store.Timeout)
}

func TestLoadFromFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	content := `store:
  backend: redis
  redis_url: redis://localhost:6379/1
  timeout: 500ms
tone:
  backend: openai
  base_url: http://localhost:11434/v1
  model: mistral
  api_key: $TONEPAD_TEST_KEY
history:
  max_depth: 50
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("TONEPAD_TEST_KEY", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StoreRedis, cfg.Store.Backend)
	assert.Equal(t, 500*time.Millisecond, cfg.Store.Timeout)
	assert.Equal(t, "tonepad:", cfg.Store.Prefix, "unset keys keep defaults")
	assert.Equal(t, ToneOpenAI, cfg.Tone.Backend)
	assert.Equal(t, "secret", cfg.Tone.APIKey)
	assert.Equal(t, 50, cfg.History.MaxDepth)
}

func TestLoadEnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("TONEPAD_STORE_BACKEND", "memory")
	t.Setenv("TONEPAD_TONE_BASE_URL", "http://tone.internal:5000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.Store.Backend)
	assert.Equal(t, "http://tone.internal:5000", cfg.Tone.BaseURL)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown store", func(c *Config) { c.Store.Backend = "s3" }, "invalid store backend"},
		{"redis without url", func(c *Config) { c.Store.Backend = StoreRedis }, "requires redis_url"},
		{"postgres without url", func(c *Config) { c.Store.Backend = StorePostgres }, "requires database_url"},
		{"file without path", func(c *Config) { c.Store.Path = "" }, "requires path"},
		{"unknown tone", func(c *Config) { c.Tone.Backend = "grpc" }, "invalid tone backend"},
		{"http without url", func(c *Config) { c.Tone.BaseURL = "" }, "requires base_url"},
		{"anthropic without key", func(c *Config) { c.Tone.Backend = ToneAnthropic }, "requires api_key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateFillsLimits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.History.MaxDepth = 0
	cfg.Store.Timeout = 0
	cfg.Tone.MaxRetries = -1

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 200, cfg.History.MaxDepth)
	assert.Equal(t, 2*time.Second, cfg.Store.Timeout)
	assert.Equal(t, 0, cfg.Tone.MaxRetries)
}

func TestAnthropicDropsToneServiceURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tone.Backend = ToneAnthropic
	cfg.Tone.APIKey = "sk-ant-test"

	require.NoError(t, cfg.Validate())
	assert.Empty(t, cfg.Tone.BaseURL)

	cfg.Tone.BaseURL = "https://proxy.example.com"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "https://proxy.example.com", cfg.Tone.BaseURL)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "out", "config.yaml")

	cfg := DefaultConfig()
	cfg.Tone.Model = "mistral-large-latest"
	require.NoError(t, Save(path, cfg, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "model: mistral-large-latest")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mistral-large-latest", loaded.Tone.Model)
	assert.Equal(t, cfg.Store.Timeout, loaded.Store.Timeout)

	assert.Error(t, Save(path, cfg, false), "refuses to overwrite")
	assert.NoError(t, Save(path, cfg, true))
}

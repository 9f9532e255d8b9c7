package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeanpaul/tonepad/internal/config"
)

func TestOpenBackends(t *testing.T) {
	s := miniredis.RunT(t)

	tests := []struct {
		name string
		cfg  config.StoreConfig
		want any
	}{
		{"file", config.StoreConfig{Backend: config.StoreFile, Path: filepath.Join(t.TempDir(), "s.json")}, &FileBackend{}},
		{"memory", config.StoreConfig{Backend: config.StoreMemory}, &MemoryBackend{}},
		{"redis", config.StoreConfig{Backend: config.StoreRedis, RedisURL: "redis://" + s.Addr(), Prefix: "t:"}, &RedisBackend{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Open(context.Background(), tt.cfg, nil)
			require.NoError(t, err)
			defer d.Close()
			assert.IsType(t, tt.want, d.Backend())
		})
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Backend: "tape"}, nil)
	assert.Error(t, err)
}

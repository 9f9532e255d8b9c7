package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeanpaul/tonepad/internal/history"
)

func TestPostgresBackendIntegration(t *testing.T) {
	dsn := os.Getenv("TONEPAD_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TONEPAD_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	backend, err := NewPostgresBackend(ctx, dsn, "test:"+t.Name()+":")
	require.NoError(t, err)
	defer backend.Close()

	_, err = backend.Get(ctx, KeyText)
	if err == nil {
		// leftover from a previous run
		_, err = backend.db.ExecContext(ctx, `DELETE FROM tonepad_slots WHERE key LIKE $1`, "test:"+t.Name()+":%")
		require.NoError(t, err)
	}

	ss := NewSessionStore(NewDurable(backend, nil, 0), history.DefaultMaxDepth)
	assert.Equal(t, history.Empty(), ss.LoadState())

	m := history.New(ss.LoadState(), ss)
	m.Set("draft")
	m.Set("final")

	assert.Equal(t, m.State(), ss.LoadState())
}

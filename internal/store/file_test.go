package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/jeanpaul/tonepad/internal/history"
)

func TestFileBackendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	fb, err := NewFileBackend(path)
	require.NoError(t, err)

	_, err = fb.Get(t.Context(), KeyText)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, fb.Put(t.Context(), KeyText, []byte(`"hello"`)))
	require.NoError(t, fb.Put(t.Context(), KeyPast, []byte(`["a","b"]`)))

	got, err := fb.Get(t.Context(), KeyText)
	require.NoError(t, err)
	assert.Equal(t, `"hello"`, string(got))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", gjson.GetBytes(data, `tone\:text`).String())
	assert.Len(t, gjson.GetBytes(data, `tone\:history`).Array(), 2)
}

func TestFileBackendOverwritesSlot(t *testing.T) {
	fb, err := NewFileBackend(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)

	require.NoError(t, fb.Put(t.Context(), KeyText, []byte(`"one"`)))
	require.NoError(t, fb.Put(t.Context(), KeyText, []byte(`"two"`)))

	got, err := fb.Get(t.Context(), KeyText)
	require.NoError(t, err)
	assert.Equal(t, `"two"`, string(got))
}

func TestFileBackendCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tone:text": "unterminated`), 0644))

	fb, err := NewFileBackend(path)
	require.NoError(t, err)
	d := NewDurable(fb, nil, 0)

	st := NewSessionStore(d, history.DefaultMaxDepth).LoadState()
	assert.Equal(t, history.Empty(), st)

	d.Save(KeyText, "recovered")
	assert.Equal(t, "recovered", Load(d, KeyText, ""))
}

func TestFileBackendSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	fb, err := NewFileBackend(path)
	require.NoError(t, err)
	ss := NewSessionStore(NewDurable(fb, nil, 0), history.DefaultMaxDepth)
	m := history.New(ss.LoadState(), ss)
	m.Set("draft")
	m.Set("polished")

	fb2, err := NewFileBackend(path)
	require.NoError(t, err)
	st := NewSessionStore(NewDurable(fb2, nil, 0), history.DefaultMaxDepth).LoadState()
	assert.Equal(t, "polished", st.Current)
	assert.Equal(t, []string{"", "draft"}, st.Past)
}

func TestNewFileBackendRequiresPath(t *testing.T) {
	_, err := NewFileBackend("")
	assert.Error(t, err)
}

func TestEscapeKey(t *testing.T) {
	assert.Equal(t, `tone\:text`, escapeKey("tone:text"))
	assert.Equal(t, `a\.b`, escapeKey("a.b"))
}

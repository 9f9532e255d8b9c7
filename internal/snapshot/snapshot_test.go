package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeanpaul/tonepad/internal/history"
)

func TestExportWriteRead(t *testing.T) {
	st := history.State{Current: "B", Past: []string{"A"}, Future: []string{"C"}}
	snap := Export(st)

	_, err := uuid.Parse(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, Version, snap.Version)
	assert.False(t, snap.CreatedAt.IsZero())

	path := filepath.Join(t.TempDir(), "nested", "snap.json")
	require.NoError(t, snap.Write(path))

	got, err := Read(path, history.DefaultMaxDepth)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, got.ID)
	assert.True(t, snap.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, st, got.State())
}

func TestExportCopiesStacks(t *testing.T) {
	st := history.State{Current: "x", Past: []string{"a"}, Future: []string{}}
	snap := Export(st)
	st.Past[0] = "mutated"
	assert.Equal(t, []string{"a"}, snap.Past)
}

func TestExportIDsAreUnique(t *testing.T) {
	assert.NotEqual(t, Export(history.Empty()).ID, Export(history.Empty()).ID)
}

func TestEmptyStacksEncodeAsArrays(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	require.NoError(t, Export(history.Empty()).Write(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"past": []`)
	assert.Contains(t, string(data), `"future": []`)
}

func TestReadRejectsInvalidDocuments(t *testing.T) {
	long := make([]string, 3)
	for i := range long {
		long[i] = fmt.Sprintf("%q", fmt.Sprint(i))
	}

	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"not json", `{"current": `, "not a snapshot"},
		{"missing future", `{"current":"a","past":[]}`, "future"},
		{"wrong type", `{"current":1,"past":[],"future":[]}`, "current"},
		{"non-string entry", `{"current":"a","past":[1],"future":[]}`, "past"},
		{"too deep", `{"current":"a","past":[` + strings.Join(long, ",") + `],"future":[]}`, "past"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "snap.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.doc), 0644))

			_, err := Read(path, 2)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReadMinimalDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"current":"hi","past":["h"],"future":[]}`), 0644))

	got, err := Read(path, 0)
	require.NoError(t, err)
	assert.Equal(t, history.State{Current: "hi", Past: []string{"h"}, Future: []string{}}, got.State())
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.json"), 0)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestImportReplacesMachineState(t *testing.T) {
	var synced []history.State
	m := history.New(history.State{Current: "old"}, history.SyncFunc(func(s history.State) {
		synced = append(synced, s)
	}))

	snap := Export(history.State{Current: "new", Past: []string{"p"}, Future: []string{}})
	m.Replace(snap.State())

	assert.Equal(t, snap.State(), m.State())
	require.Len(t, synced, 1)
	assert.Equal(t, "new", synced[0].Current)
}

func TestDumpErrors(t *testing.T) {
	assert.Equal(t, "a", dumpErrors([]string{"a"}))
	assert.Equal(t, "a\n- b\n- c\n... and 2 more", dumpErrors([]string{"a", "b", "c", "d", "e"}))
}

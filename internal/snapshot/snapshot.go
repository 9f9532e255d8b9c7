// Package snapshot writes a session to a standalone JSON document and reads
// it back, so a buffer and its history can move between machines or
// backends.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jeanpaul/tonepad/internal/history"
)

const Version = 1

type Snapshot struct {
	Version   int       `json:"version"`
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Current   string    `json:"current"`
	Past      []string  `json:"past"`
	Future    []string  `json:"future"`
}

// Export captures st under a fresh ID.
func Export(st history.State) Snapshot {
	st = st.Clone()
	return Snapshot{
		Version:   Version,
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Current:   st.Current,
		Past:      st.Past,
		Future:    st.Future,
	}
}

// State converts the snapshot back into session state.
func (s Snapshot) State() history.State {
	return history.State{Current: s.Current, Past: s.Past, Future: s.Future}.Clone()
}

// Write stores the snapshot as indented JSON.
func (s Snapshot) Write(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Read loads and validates a snapshot. Stacks longer than maxDepth are
// rejected rather than silently truncated.
func Read(path string, maxDepth int) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, err
	}
	if err := Validate(data, maxDepth); err != nil {
		return Snapshot{}, fmt.Errorf("%s: %w", path, err)
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

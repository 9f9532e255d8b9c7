package store

import "github.com/jeanpaul/tonepad/internal/history"

// Ensure SessionStore implements history.Syncer
var _ history.Syncer = (*SessionStore)(nil)

// SessionStore maps a history.State onto the three slots.
type SessionStore struct {
	durable  *Durable
	maxDepth int
}

// NewSessionStore binds the slots to d. maxDepth bounds the stacks read
// back from storage.
func NewSessionStore(d *Durable, maxDepth int) *SessionStore {
	return &SessionStore{durable: d, maxDepth: maxDepth}
}

// LoadState reads the session once. Each slot falls back independently.
func (s *SessionStore) LoadState() history.State {
	st := history.State{
		Current: Load(s.durable, KeyText, ""),
		Past:    Load(s.durable, KeyPast, []string{}),
		Future:  Load(s.durable, KeyFuture, []string{}),
	}
	return history.Normalize(st, s.maxDepth)
}

// Sync rewrites all three slots from st.
func (s *SessionStore) Sync(st history.State) {
	s.durable.Save(KeyText, st.Current)
	s.durable.Save(KeyPast, nonNil(st.Past))
	s.durable.Save(KeyFuture, nonNil(st.Future))
}

// nonNil keeps empty stacks encoded as [] rather than null.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Package history owns the editing session state: the live buffer plus its
// bounded undo and redo stacks.
//
// Every transition is computed from the old state and then handed to a
// Syncer so the caller can persist it. Transitions never fail.
package history

import "sync"

// DefaultMaxDepth bounds both the undo and redo stacks.
const DefaultMaxDepth = 200

// State is a snapshot of the session.
//
// Past is ordered oldest to newest. Future is ordered nearest to farthest
// redo target.
type State struct {
	Current string   `json:"current"`
	Past    []string `json:"past"`
	Future  []string `json:"future"`
}

// Empty returns the default state used when no prior session exists.
func Empty() State {
	return State{Current: "", Past: []string{}, Future: []string{}}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	return State{
		Current: s.Current,
		Past:    append([]string{}, s.Past...),
		Future:  append([]string{}, s.Future...),
	}
}

// Equal reports whether two states hold the same buffer and stacks.
func (s State) Equal(o State) bool {
	return s.Current == o.Current && equalSlices(s.Past, o.Past) && equalSlices(s.Future, o.Future)
}

// Normalize repairs a state read from storage: nil stacks become empty and
// oversized stacks are truncated the same way transitions truncate them.
func Normalize(s State, maxDepth int) State {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	out := s.Clone()
	out.Past = keepLast(out.Past, maxDepth)
	out.Future = keepFirst(out.Future, maxDepth)
	return out
}

// Syncer receives the full state after every observable change.
type Syncer interface {
	Sync(State)
}

// SyncFunc adapts a function to Syncer.
type SyncFunc func(State)

func (f SyncFunc) Sync(s State) { f(s) }

// Option configures a Machine.
type Option func(*Machine)

// WithMaxDepth overrides the stack bound. Values <= 0 keep the default.
func WithMaxDepth(n int) Option {
	return func(m *Machine) {
		if n > 0 {
			m.maxDepth = n
		}
	}
}

// Machine is the undo/redo state machine for one session.
type Machine struct {
	mu       sync.Mutex
	state    State
	syncer   Syncer
	maxDepth int
}

// New creates a machine starting from initial. syncer may be nil.
func New(initial State, syncer Syncer, opts ...Option) *Machine {
	m := &Machine{syncer: syncer, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(m)
	}
	m.state = Normalize(initial, m.maxDepth)
	return m
}

// State returns a copy of the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// MaxDepth returns the stack bound.
func (m *Machine) MaxDepth() int { return m.maxDepth }

// Set records a committed edit. Setting the current value is a no-op.
func (m *Machine) Set(value string) State {
	return m.apply(func(s State) (State, bool) {
		if value == s.Current {
			return s, false
		}
		return State{
			Current: value,
			Past:    keepLast(append(s.Past, s.Current), m.maxDepth),
			Future:  []string{},
		}, true
	})
}

// DirectSet replaces the buffer without creating an undo checkpoint.
// The redo stack is left as is.
func (m *Machine) DirectSet(value string) State {
	return m.apply(func(s State) (State, bool) {
		if value == s.Current {
			return s, false
		}
		s.Current = value
		return s, true
	})
}

// Undo steps back one checkpoint. With nothing to undo it is a no-op.
func (m *Machine) Undo() State {
	return m.apply(func(s State) (State, bool) {
		if len(s.Past) == 0 {
			return s, false
		}
		prev := s.Past[len(s.Past)-1]
		future := make([]string, 0, len(s.Future)+1)
		future = append(future, s.Current)
		future = append(future, s.Future...)
		return State{
			Current: prev,
			Past:    s.Past[:len(s.Past)-1],
			Future:  keepFirst(future, m.maxDepth),
		}, true
	})
}

// Redo reapplies the nearest undone checkpoint. With nothing to redo it is
// a no-op.
func (m *Machine) Redo() State {
	return m.apply(func(s State) (State, bool) {
		if len(s.Future) == 0 {
			return s, false
		}
		return State{
			Current: s.Future[0],
			Past:    keepLast(append(s.Past, s.Current), m.maxDepth),
			Future:  s.Future[1:],
		}, true
	})
}

// Reset discards the buffer and all history.
func (m *Machine) Reset() State {
	return m.apply(func(State) (State, bool) {
		return Empty(), true
	})
}

// Replace swaps in a whole state, e.g. one read from an exported snapshot.
func (m *Machine) Replace(s State) State {
	return m.apply(func(State) (State, bool) {
		return Normalize(s, m.maxDepth), true
	})
}

// CanUndo returns true if undo is available.
func (m *Machine) CanUndo() bool { return m.UndoCount() > 0 }

// CanRedo returns true if redo is available.
func (m *Machine) CanRedo() bool { return m.RedoCount() > 0 }

// UndoCount returns the number of undo checkpoints.
func (m *Machine) UndoCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.Past)
}

// RedoCount returns the number of redo checkpoints.
func (m *Machine) RedoCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.Future)
}

// apply runs one transition on a private copy of the state and, when it
// changed anything, stores it and syncs it while still holding the lock.
func (m *Machine) apply(fn func(State) (State, bool)) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, changed := fn(m.state.Clone())
	if !changed {
		return m.state.Clone()
	}
	m.state = next
	if m.syncer != nil {
		m.syncer.Sync(m.state.Clone())
	}
	return m.state.Clone()
}

// keepLast drops entries from the front until at most n remain.
func keepLast(s []string, n int) []string {
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return append([]string{}, s...)
}

// keepFirst drops entries from the tail until at most n remain.
func keepFirst(s []string, n int) []string {
	if len(s) > n {
		s = s[:n]
	}
	return append([]string{}, s...)
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Package session ties the history machine to the tone transformer. One
// Session owns the buffer for the lifetime of the process; the editor and
// the headless commands only talk to it.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync/atomic"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"

	"github.com/jeanpaul/tonepad/internal/history"
	"github.com/jeanpaul/tonepad/internal/tone"
)

var (
	ErrEmptyBuffer = errors.New("nothing to rewrite: the buffer is empty")
	ErrBusy        = errors.New("a rewrite is already in progress")
)

type Session struct {
	machine     *history.Machine
	transformer tone.Transformer
	logger      *log.Logger
	busy        atomic.Bool
}

// Open wraps an already loaded machine. A nil logger discards output.
func Open(m *history.Machine, t tone.Transformer, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Session{machine: m, transformer: t, logger: logger}
}

func (s *Session) Machine() *history.Machine { return s.machine }

func (s *Session) State() history.State { return s.machine.State() }

// Type replaces the buffer without creating an undo checkpoint.
func (s *Session) Type(value string) history.State { return s.machine.DirectSet(value) }

// Commit replaces the buffer and records the previous text for undo.
func (s *Session) Commit(value string) history.State { return s.machine.Set(value) }

func (s *Session) Undo() history.State { return s.machine.Undo() }

func (s *Session) Redo() history.State { return s.machine.Redo() }

func (s *Session) Reset() history.State { return s.machine.Reset() }

// Busy reports whether a rewrite is in flight.
func (s *Session) Busy() bool { return s.busy.Load() }

// Adjust rewrites the current buffer. Only one rewrite runs at a time; a
// concurrent call fails with ErrBusy. On failure the history is untouched.
// The result is committed against whatever the buffer holds when it
// arrives, even if the text was edited in between.
func (s *Session) Adjust(ctx context.Context, opts tone.Options) (history.State, error) {
	if err := opts.Validate(); err != nil {
		return s.machine.State(), err
	}
	text := s.machine.State().Current
	if strings.TrimSpace(text) == "" {
		return s.machine.State(), ErrEmptyBuffer
	}
	if !s.busy.CompareAndSwap(false, true) {
		return s.machine.State(), ErrBusy
	}
	defer s.busy.Store(false)

	s.logger.Printf("adjust %s: %d bytes", opts, len(text))
	result, err := s.transformer.Adjust(ctx, text, opts)
	if err != nil {
		s.logger.Printf("adjust %s failed: %v", opts, err)
		return s.machine.State(), err
	}
	return s.machine.Set(result), nil
}

// Diff returns a unified diff from the latest undo checkpoint to the
// current buffer, or "" when there is nothing to compare.
func (s *Session) Diff() string {
	st := s.machine.State()
	if len(st.Past) == 0 {
		return ""
	}
	return Unified(st.Past[len(st.Past)-1], st.Current)
}

// Unified renders the change from before to after as a unified diff.
func Unified(before, after string) string {
	if before == after {
		return ""
	}
	before, after = withNewline(before), withNewline(after)
	edits := myers.ComputeEdits(span.URIFromPath("before"), before, after)
	return fmt.Sprint(gotextdiff.ToUnified("before", "after", before, edits))
}

func withNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

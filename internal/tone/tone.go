// Package tone rewrites text in a requested register. The rewriting itself
// happens elsewhere: a tone service over HTTP or a chat model.
package tone

import (
	"context"
	"fmt"
	"strings"
)

type Formality string

const (
	Formal Formality = "formal"
	Casual Formality = "casual"
)

type Verbosity string

const (
	Concise   Verbosity = "concise"
	Elaborate Verbosity = "elaborate"
)

func ParseFormality(s string) (Formality, error) {
	switch f := Formality(strings.ToLower(strings.TrimSpace(s))); f {
	case Formal, Casual:
		return f, nil
	}
	return "", fmt.Errorf("unknown formality %q (want formal or casual)", s)
}

func ParseVerbosity(s string) (Verbosity, error) {
	switch v := Verbosity(strings.ToLower(strings.TrimSpace(s))); v {
	case Concise, Elaborate:
		return v, nil
	}
	return "", fmt.Errorf("unknown verbosity %q (want concise or elaborate)", s)
}

// Options is the tone requested from a Transformer.
type Options struct {
	Formality Formality `json:"formality"`
	Verbosity Verbosity `json:"verbosity"`
}

func (o Options) Validate() error {
	if _, err := ParseFormality(string(o.Formality)); err != nil {
		return err
	}
	if _, err := ParseVerbosity(string(o.Verbosity)); err != nil {
		return err
	}
	return nil
}

func (o Options) String() string {
	return string(o.Formality) + "_" + string(o.Verbosity)
}

// Quadrant is one of the four fixed presets offered in the editor.
type Quadrant struct {
	ID      string
	Title   string
	Options Options
}

var Quadrants = []Quadrant{
	{ID: "formal_concise", Title: "Formal · Concise", Options: Options{Formal, Concise}},
	{ID: "formal_elaborate", Title: "Formal · Elaborate", Options: Options{Formal, Elaborate}},
	{ID: "casual_concise", Title: "Casual · Concise", Options: Options{Casual, Concise}},
	{ID: "casual_elaborate", Title: "Casual · Elaborate", Options: Options{Casual, Elaborate}},
}

// QuadrantByID also accepts dashes and mixed case ("Formal-Concise").
func QuadrantByID(id string) (Quadrant, bool) {
	id = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(id)), "-", "_")
	for _, q := range Quadrants {
		if q.ID == id {
			return q, true
		}
	}
	return Quadrant{}, false
}

// Transformer rewrites text. Implementations must not mutate anything on
// failure; the returned error carries a message fit for the user.
type Transformer interface {
	Adjust(ctx context.Context, text string, opts Options) (string, error)
}

// Error is a failed rewrite. Status is the HTTP status when one was
// received, otherwise zero.
type Error struct {
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Package headless runs one editing command against the session and
// prints the outcome, for scripts and pipes.
package headless

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeanpaul/tonepad/internal/history"
	"github.com/jeanpaul/tonepad/internal/importer"
	"github.com/jeanpaul/tonepad/internal/session"
	"github.com/jeanpaul/tonepad/internal/snapshot"
	"github.com/jeanpaul/tonepad/internal/tone"
)

var ErrUsage = errors.New("usage")

// Commands lists the subcommands Run understands.
var Commands = []string{"show", "set", "type", "undo", "redo", "reset", "adjust", "diff", "status", "open", "export", "import"}

func IsCommand(name string) bool {
	for _, c := range Commands {
		if c == name {
			return true
		}
	}
	return false
}

type Runner struct {
	Session *session.Session
	Out     io.Writer
	In      io.Reader
}

// Run executes args[0] with the remaining arguments.
func (r *Runner) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: no command given", ErrUsage)
	}
	name, rest := args[0], args[1:]

	switch name {
	case "show":
		return r.show(rest)
	case "set", "type":
		text, err := r.textArg(name, rest)
		if err != nil {
			return err
		}
		if name == "set" {
			r.Session.Commit(text)
		} else {
			r.Session.Type(text)
		}
		return r.summary()
	case "undo":
		return r.printBuffer(r.Session.Undo())
	case "redo":
		return r.printBuffer(r.Session.Redo())
	case "reset":
		r.Session.Reset()
		_, err := fmt.Fprintln(r.Out, "buffer and history cleared")
		return err
	case "adjust":
		return r.adjust(ctx, rest)
	case "diff":
		d := r.Session.Diff()
		if d == "" {
			_, err := fmt.Fprintln(r.Out, "no changes since the last checkpoint")
			return err
		}
		_, err := fmt.Fprint(r.Out, d)
		return err
	case "status":
		return r.status()
	case "open":
		if len(rest) != 1 {
			return fmt.Errorf("%w: tonepad open <path|url>", ErrUsage)
		}
		text, err := importer.Load(ctx, rest[0])
		if err != nil {
			return err
		}
		r.Session.Commit(text)
		return r.summary()
	case "export":
		if len(rest) != 1 {
			return fmt.Errorf("%w: tonepad export <path>", ErrUsage)
		}
		snap := snapshot.Export(r.Session.State())
		if err := snap.Write(rest[0]); err != nil {
			return err
		}
		_, err := fmt.Fprintf(r.Out, "exported %s to %s\n", snap.ID, rest[0])
		return err
	case "import":
		if len(rest) != 1 {
			return fmt.Errorf("%w: tonepad import <path>", ErrUsage)
		}
		m := r.Session.Machine()
		snap, err := snapshot.Read(rest[0], m.MaxDepth())
		if err != nil {
			return err
		}
		m.Replace(snap.State())
		if _, err := fmt.Fprintf(r.Out, "imported %s\n", snap.ID); err != nil {
			return err
		}
		return r.summary()
	}
	return fmt.Errorf("%w: unknown command %q", ErrUsage, name)
}

func (r *Runner) show(args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	render := fs.Bool("render", false, "render the buffer as Markdown")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: tonepad show [--render]", ErrUsage)
	}

	text := r.Session.State().Current
	if *render {
		out, err := glamour.Render(text, "auto")
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(r.Out, out)
		return err
	}
	return r.printBuffer(r.Session.State())
}

func (r *Runner) adjust(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("adjust", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	formality := fs.String("formality", "", "formal or casual")
	verbosity := fs.String("verbosity", "", "concise or elaborate")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	var opts tone.Options
	switch {
	case fs.NArg() == 1 && *formality == "" && *verbosity == "":
		q, ok := tone.QuadrantByID(fs.Arg(0))
		if !ok {
			return fmt.Errorf("%w: unknown tone %q (want one of %s)", ErrUsage, fs.Arg(0), quadrantIDs())
		}
		opts = q.Options
	case fs.NArg() == 0 && *formality != "" && *verbosity != "":
		f, err := tone.ParseFormality(*formality)
		if err != nil {
			return err
		}
		v, err := tone.ParseVerbosity(*verbosity)
		if err != nil {
			return err
		}
		opts = tone.Options{Formality: f, Verbosity: v}
	default:
		return fmt.Errorf("%w: tonepad adjust <%s> | --formality F --verbosity V", ErrUsage, quadrantIDs())
	}

	st, err := r.Session.Adjust(ctx, opts)
	if err != nil {
		return err
	}
	return r.printBuffer(st)
}

func (r *Runner) status() error {
	st := r.Session.State()
	_, err := fmt.Fprintf(r.Out, "buffer: %d chars, %d lines\nundo:   %d\nredo:   %d\n",
		len([]rune(st.Current)), lineCount(st.Current), len(st.Past), len(st.Future))
	return err
}

func (r *Runner) summary() error {
	st := r.Session.State()
	_, err := fmt.Fprintf(r.Out, "%d chars · undo %d · redo %d\n", len([]rune(st.Current)), len(st.Past), len(st.Future))
	return err
}

func (r *Runner) printBuffer(st history.State) error {
	out := st.Current
	if out != "" && !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	_, err := io.WriteString(r.Out, out)
	return err
}

// textArg joins the arguments, or reads In when the only argument is "-".
func (r *Runner) textArg(cmd string, args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("%w: tonepad %s <text|->", ErrUsage, cmd)
	}
	if len(args) == 1 && args[0] == "-" {
		if r.In == nil {
			return "", fmt.Errorf("%w: no input to read", ErrUsage)
		}
		data, err := io.ReadAll(r.In)
		if err != nil {
			return "", err
		}
		return strings.TrimSuffix(string(data), "\n"), nil
	}
	return strings.Join(args, " "), nil
}

func quadrantIDs() string {
	ids := make([]string, len(tone.Quadrants))
	for i, q := range tone.Quadrants {
		ids[i] = q.ID
	}
	return strings.Join(ids, "|")
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(strings.TrimSuffix(s, "\n"), "\n") + 1
}

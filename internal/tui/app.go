package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeanpaul/tonepad/internal/history"
	"github.com/jeanpaul/tonepad/internal/session"
	"github.com/jeanpaul/tonepad/internal/tone"
)

// Braille dots, same cadence as the rest of the UI
var RewriteSpinner = spinner.Spinner{
	Frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	FPS:    time.Second / 12,
}

// f1..f4 map onto tone.Quadrants in order
var quadrantKeys = []string{"f1", "f2", "f3", "f4"}

type adjustDoneMsg struct {
	state history.State
	opts  tone.Options
	err   error
}

type Model struct {
	width, height int
	editor        textarea.Model
	spinner       spinner.Model
	preview       viewport.Model
	showPreview   bool
	renderer      *glamour.TermRenderer
	picker        PickerModel

	session  *session.Session
	backend  string
	pending  bool
	lastTone string
	err      string
	notice   string
	frame    int

	ctx    context.Context
	cancel context.CancelFunc
}

// NewModel builds the editor around s. backend names the tone backend in
// the status bar.
func NewModel(s *session.Session, backend string) Model {
	ta := textarea.New()
	ta.Placeholder = "Type or paste text, then pick a tone..."
	ta.Focus()
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.ShowLineNumbers = false
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(White)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(DimGreen)
	ta.BlurredStyle.Base = lipgloss.NewStyle().Foreground(LightGray)
	ta.SetValue(s.State().Current)

	sp := spinner.New()
	sp.Spinner = RewriteSpinner
	sp.Style = SpinnerStyle

	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		editor:  ta,
		spinner: sp,
		preview: viewport.New(80, 20),
		picker:  NewPickerModel(),
		session: s,
		backend: backend,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case adjustDoneMsg:
		m.pending = false
		m.editor.Focus()
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		m.notice = "Rewritten as " + msg.opts.String()
		m.syncEditor(msg.state)
		return m, nil

	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		m.frame++
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	if !m.pending {
		m.editor, cmd = m.editor.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.cancel()
		return m, tea.Quit
	}

	if m.picker.active {
		if key == "enter" {
			m.picker.active = false
			if q, ok := m.picker.Selected(); ok {
				return m.startAdjust(q.Options)
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}

	switch key {
	case "esc":
		m.err = ""
		return m, nil
	case "ctrl+p":
		m.showPreview = !m.showPreview
		if m.showPreview {
			m.renderPreview()
		}
		return m, nil
	}

	// The buffer is frozen while a rewrite is in flight.
	if m.pending {
		return m, nil
	}

	switch key {
	case "ctrl+z":
		m.syncEditor(m.session.Undo())
		return m, nil
	case "ctrl+y":
		m.syncEditor(m.session.Redo())
		return m, nil
	case "ctrl+r":
		m.notice = "Buffer and history cleared"
		m.syncEditor(m.session.Reset())
		return m, nil
	case "ctrl+t":
		m.picker.active = true
		return m, nil
	}
	for i, k := range quadrantKeys {
		if key == k {
			return m.startAdjust(tone.Quadrants[i].Options)
		}
	}

	if m.showPreview {
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	if v := m.editor.Value(); v != m.session.State().Current {
		m.session.Type(v)
	}
	return m, cmd
}

func (m Model) startAdjust(opts tone.Options) (tea.Model, tea.Cmd) {
	m.err = ""
	m.notice = ""
	if strings.TrimSpace(m.session.State().Current) == "" {
		m.err = session.ErrEmptyBuffer.Error()
		return m, nil
	}
	m.pending = true
	m.lastTone = opts.String()
	m.editor.Blur()

	s, ctx := m.session, m.ctx
	run := func() tea.Msg {
		st, err := s.Adjust(ctx, opts)
		if errors.Is(err, session.ErrBusy) {
			// the request already running delivers its own adjustDoneMsg
			return nil
		}
		return adjustDoneMsg{state: st, opts: opts, err: err}
	}
	return m, tea.Batch(run, m.spinner.Tick)
}

// syncEditor shows st.Current without emitting a Type back to the session.
func (m *Model) syncEditor(st history.State) {
	m.editor.SetValue(st.Current)
	if m.showPreview {
		m.renderPreview()
	}
}

func (m *Model) layout() {
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	h := m.height - 8
	if h < 3 {
		h = 3
	}
	m.editor.SetWidth(w)
	m.editor.SetHeight(h)
	m.preview.Width = w
	m.preview.Height = h
	m.renderer = nil
	if m.showPreview {
		m.renderPreview()
	}
}

func (m *Model) renderPreview() {
	if m.renderer == nil {
		wrap := m.preview.Width
		if wrap <= 0 {
			wrap = 80
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			m.preview.SetContent(m.session.State().Current)
			return
		}
		m.renderer = r
	}
	out, err := m.renderer.Render(m.session.State().Current)
	if err != nil {
		out = m.session.State().Current
	}
	m.preview.SetContent(out)
	m.preview.GotoTop()
}

func (m Model) View() string {
	st := m.session.State()

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		" ", GradientTitle(m.frame), "  ",
		StatusBackendStyle.Render(m.backend),
		StatusBarStyle.Render(fmt.Sprintf("undo %d · redo %d", len(st.Past), len(st.Future))),
	)

	var body string
	switch {
	case m.showPreview:
		body = PreviewStyle.Render(m.preview.View())
	case m.pending:
		body = EditorBusyStyle.Render(m.editor.View())
	default:
		body = EditorStyle.Render(m.editor.View())
	}

	var status string
	switch {
	case m.pending:
		status = m.spinner.View() + " " + SpinnerStyle.Render("Rewriting… ("+m.lastTone+")")
	case m.err != "":
		status = ErrorBannerStyle.Render(m.err + "  " + HelpStyle.Render("esc to dismiss"))
	case m.notice != "":
		status = NoticeStyle.Render(m.notice)
	}

	help := HelpStyle.Render(strings.Join([]string{
		KeyStyle.Render("f1-f4") + " tone",
		KeyStyle.Render("ctrl+t") + " pick",
		KeyStyle.Render("ctrl+z/y") + " undo/redo",
		KeyStyle.Render("ctrl+r") + " reset",
		KeyStyle.Render("ctrl+p") + " preview",
		KeyStyle.Render("ctrl+c") + " quit",
	}, "  •  "))

	view := lipgloss.JoinVertical(lipgloss.Left, header, body, status, " "+help)
	if m.picker.active {
		return lipgloss.JoinVertical(lipgloss.Left, view, m.picker.View())
	}
	return view
}

// Run starts the full-screen editor and blocks until it exits.
func Run(s *session.Session, backend string) error {
	p := tea.NewProgram(NewModel(s, backend), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

package tui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeanpaul/tonepad/internal/tone"
)

type toneItem struct {
	quadrant tone.Quadrant
	key      string
}

func (i toneItem) Title() string       { return i.quadrant.Title }
func (i toneItem) Description() string { return i.key + "  " + i.quadrant.ID }
func (i toneItem) FilterValue() string { return i.quadrant.ID }

// PickerModel is the popup listing the tone presets.
type PickerModel struct {
	list   list.Model
	active bool
}

func NewPickerModel() PickerModel {
	items := make([]list.Item, len(tone.Quadrants))
	for i, q := range tone.Quadrants {
		items[i] = toneItem{quadrant: q, key: quadrantKeys[i]}
	}

	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = lipgloss.NewStyle().Foreground(Green).Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(Green).PaddingLeft(1)
	d.Styles.SelectedDesc = d.Styles.SelectedTitle.Foreground(DimGreen)

	l := list.New(items, d, 36, 14)
	l.Title = "Rewrite as"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = lipgloss.NewStyle().Foreground(Green).Bold(true).MarginLeft(2)

	return PickerModel{list: l}
}

// Selected returns the highlighted preset.
func (p PickerModel) Selected() (tone.Quadrant, bool) {
	it, ok := p.list.SelectedItem().(toneItem)
	if !ok {
		return tone.Quadrant{}, false
	}
	return it.quadrant, true
}

func (p PickerModel) Update(msg tea.Msg) (PickerModel, tea.Cmd) {
	if !p.active {
		return p, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		p.active = false
		return p, nil
	}
	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return p, cmd
}

func (p PickerModel) View() string {
	if !p.active {
		return ""
	}
	return MenuBoxStyle.Render(p.list.View())
}

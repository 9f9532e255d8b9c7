package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Core palette
	Green       = lipgloss.Color("#00FF41")
	BrightGreen = lipgloss.Color("#39FF14")
	MedGreen    = lipgloss.Color("#00C832")
	DarkGreen   = lipgloss.Color("#008F11")
	DimGreen    = lipgloss.Color("#003B00")
	Cyan        = lipgloss.Color("#00D4AA")
	Amber       = lipgloss.Color("#FFB000")
	Black       = lipgloss.Color("#0D0208")
	MidGray     = lipgloss.Color("#3a3a4e")
	LightGray   = lipgloss.Color("#aaaaaa")
	White       = lipgloss.Color("#e0e0e0")
	Red         = lipgloss.Color("#FF4136")

	// CLI output
	BannerStyle = lipgloss.NewStyle().
			Foreground(Green).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(Cyan).
			Bold(true)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Background(DarkGreen).
			Foreground(Black).
			Bold(true).
			Padding(0, 1)

	StatusBackendStyle = lipgloss.NewStyle().
				Background(Green).
				Foreground(Black).
				Bold(true).
				Padding(0, 1)

	// Editor
	EditorStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DarkGreen).
			Padding(0, 1)

	EditorBusyStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Amber).
			Padding(0, 1)

	PreviewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Cyan)

	// Popup for the tone picker
	MenuBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Green).
			Padding(0, 1)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(Amber)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red).
			Bold(true)

	ErrorBannerStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder(), false, false, false, true).
				BorderForeground(Red).
				Foreground(Red).
				PaddingLeft(1)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(MedGreen).
			Italic(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(DimGreen)

	KeyStyle = lipgloss.NewStyle().
			Foreground(MedGreen).
			Bold(true)
)

const title = "tonepad"

var bannerColors = []lipgloss.Color{DarkGreen, MedGreen, Green, BrightGreen, Cyan, BrightGreen, Green, MedGreen}

// GradientTitle colours each letter of the title, shifted by frame so the
// gradient can move while a rewrite runs.
func GradientTitle(frame int) string {
	var b strings.Builder
	for i, r := range title {
		c := bannerColors[(i+frame)%len(bannerColors)]
		b.WriteString(lipgloss.NewStyle().Foreground(c).Bold(true).Render(string(r)))
	}
	return b.String()
}

package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// --- Color Palette ---
var (
	ColorPrimary   = lipgloss.Color("#7D56F4") // Indigo/Purple
	ColorSecondary = lipgloss.Color("#04B575") // Green
	ColorError     = lipgloss.Color("#FF5F87") // Pink/Red
	ColorWarning   = lipgloss.Color("#FFAF00") // Gold
	ColorText      = lipgloss.Color("#FAFAFA")
	ColorSubtle    = lipgloss.Color("#767676")
	ColorBanner    = ColorPrimary
)

var (
	Title = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)

	Label = lipgloss.NewStyle().Foreground(ColorSubtle)
	Value = lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true)
	Warn  = lipgloss.NewStyle().Foreground(ColorWarning)
	Error = lipgloss.NewStyle().Foreground(ColorError)

	Rule = lipgloss.NewStyle().Foreground(ColorSubtle)
)

// Field renders "label : value" with the label padded to width.
func Field(label string, width int, value string) string {
	return Label.Width(width).Render(label) + " : " + Value.Render(value)
}

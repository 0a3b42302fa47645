package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/erroneousboat/slackarchive-term/config"
)

// Styles are the lipgloss styles shared by the panes.
type Styles struct {
	Border    lipgloss.Color
	Selected  lipgloss.Style
	Muted     lipgloss.Style
	Time      lipgloss.Style
	Name      lipgloss.Style
	Text      lipgloss.Style
	Highlight lipgloss.Style
	Mode      lipgloss.Style
}

func NewStyles(theme config.Theme) Styles {
	return Styles{
		Border:    lipgloss.Color(theme.Border),
		Selected:  lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Selected)).Bold(true),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Muted)),
		Time:      lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Time)),
		Name:      lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Name)).Bold(true),
		Text:      lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Text)),
		Highlight: lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Highlight)).Bold(true),
		Mode:      lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Mode)).Bold(true),
	}
}

// DefaultStyles uses the default theme.
func DefaultStyles() Styles {
	return NewStyles(config.DefaultConfig().Theme)
}

package tui

import (
	"charm.land/lipgloss/v2"
)

// styles are rebuilt whenever the theme changes (server theme arrival).
type styles struct {
	title     lipgloss.Style
	subtle    lipgloss.Style
	muted     lipgloss.Style
	accent    lipgloss.Style
	selected  lipgloss.Style
	errorText lipgloss.Style
	success   lipgloss.Style
	statusBar lipgloss.Style
	modal     lipgloss.Style
	hintKey   lipgloss.Style
	hintDesc  lipgloss.Style
	hintSep   lipgloss.Style
}

func buildStyles(t Theme) styles {
	return styles{
		title: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true),
		subtle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Subtle)),
		muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),
		accent: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)),
		selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)).
			Background(lipgloss.Color(t.Surface)).
			Bold(true),
		errorText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Error)).
			Bold(true),
		success: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)),
		statusBar: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Subtle)).
			Background(lipgloss.Color(t.Surface)),
		modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Accent)).
			Padding(1, 2),
		hintKey: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)).
			Bold(true),
		hintDesc: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Subtle)),
		hintSep: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),
	}
}

// renderHintBar renders key-description pairs:
// renderHintBar(s, "↑↓", "navigate", "enter", "select") -> "↑↓ navigate • enter select"
func renderHintBar(s styles, pairs ...string) string {
	if len(pairs) == 0 || len(pairs)%2 != 0 {
		return ""
	}
	var result string
	for i := 0; i < len(pairs); i += 2 {
		if i > 0 {
			result += " " + s.hintSep.Render("•") + " "
		}
		result += s.hintKey.Render(pairs[i]) + " " + s.hintDesc.Render(pairs[i+1])
	}
	return result
}

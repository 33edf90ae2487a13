package tui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
)

// systemChosenMsg fires when a finish system is picked.
type systemChosenMsg struct {
	category string
}

// systemStep selects the finish system for multi-system projects. Variants
// with a single system never see this step.
type systemStep struct {
	systems     []string
	selectedIdx int
}

func newSystemStep(systems []string) *systemStep {
	return &systemStep{systems: systems}
}

func (st *systemStep) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}
	switch keyMsg.String() {
	case "up", "k":
		if st.selectedIdx > 0 {
			st.selectedIdx--
		}
	case "down", "j":
		if st.selectedIdx < len(st.systems)-1 {
			st.selectedIdx++
		}
	case "enter":
		if st.selectedIdx >= 0 && st.selectedIdx < len(st.systems) {
			category := st.systems[st.selectedIdx]
			return func() tea.Msg { return systemChosenMsg{category: category} }
		}
	}
	return nil
}

func (st *systemStep) View(s styles) string {
	var b strings.Builder
	b.WriteString(s.title.Render("Choose a finish system"))
	b.WriteString("\n\n")
	for i, sys := range st.systems {
		if i == st.selectedIdx {
			b.WriteString(s.selected.Render("> " + sys))
		} else {
			b.WriteString("  " + sys)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(renderHintBar(s, "↑↓", "navigate", "enter", "select"))
	return b.String()
}

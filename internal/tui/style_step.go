package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/skisplace/epoxyview/internal/api"
	"github.com/skisplace/epoxyview/internal/wizard"
)

// Messages emitted by the style step and applied to the controller by the app.
type (
	styleChosenMsg    struct{ id string }
	blendAdjustedMsg  struct{ delta float64 }
	finishCycledMsg   struct{}
	renderRequestMsg  struct{}
	stylesRetryReqMsg struct{}
)

// styleStep renders the catalog filtered by the chosen system, the tuning
// knobs, and the guarded jump into rendering.
type styleStep struct {
	cursor int
}

func newStyleStep() *styleStep { return &styleStep{} }

func (st *styleStep) Update(msg tea.Msg, visible []api.Style) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}
	switch keyMsg.String() {
	case "up", "k":
		if st.cursor > 0 {
			st.cursor--
		}
	case "down", "j":
		if st.cursor < len(visible)-1 {
			st.cursor++
		}
	case "enter":
		if st.cursor >= 0 && st.cursor < len(visible) {
			id := visible[st.cursor].ID
			return func() tea.Msg { return styleChosenMsg{id: id} }
		}
	case "+", "=":
		return func() tea.Msg { return blendAdjustedMsg{delta: 0.05} }
	case "-":
		return func() tea.Msg { return blendAdjustedMsg{delta: -0.05} }
	case "f":
		return func() tea.Msg { return finishCycledMsg{} }
	case "r":
		return func() tea.Msg { return renderRequestMsg{} }
	case "R":
		return func() tea.Msg { return stylesRetryReqMsg{} }
	}
	return nil
}

func (st *styleStep) View(s styles, state *wizard.State, spinnerFrame string) string {
	var b strings.Builder
	b.WriteString(s.title.Render("Choose a style"))
	if state.SelectedSystem != "" {
		b.WriteString(s.subtle.Render("  (" + state.SelectedSystem + ")"))
	}
	b.WriteString("\n\n")

	switch {
	case state.StylesLoading:
		b.WriteString(spinnerFrame + " " + s.subtle.Render("Loading style catalog..."))
		b.WriteString("\n")
	case !state.StylesLoaded:
		b.WriteString(s.muted.Render("Catalog not loaded."))
		b.WriteString(" " + renderHintBar(s, "R", "reload"))
		b.WriteString("\n")
	default:
		visible := state.VisibleStyles()
		if len(visible) == 0 {
			b.WriteString(s.muted.Render("No styles available for this system."))
			b.WriteString("\n")
		}
		if st.cursor >= len(visible) {
			st.cursor = 0
		}
		for i, style := range visible {
			cursor := "  "
			if i == st.cursor {
				cursor = s.selected.Render("> ")
			}
			marker := " "
			if style.ID == state.SelectedStyle {
				marker = s.accent.Render("✓")
			}
			b.WriteString(fmt.Sprintf("%s%s %s %s\n",
				cursor, marker, style.Name, s.muted.Render(style.Category)))
		}
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %.2f   %s %s\n",
		s.subtle.Render("blend"), state.Tuning.BlendStrength,
		s.subtle.Render("finish"), string(state.Tuning.Finish)))

	if state.Uploaded.ServerID == "" {
		b.WriteString(s.muted.Render("uploading photo in the background..."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderHintBar(s,
		"enter", "select style",
		"+/-", "blend",
		"f", "finish",
		"r", "render",
	))
	return b.String()
}

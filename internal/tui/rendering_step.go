package tui

import (
	"fmt"
	"strings"

	"github.com/skisplace/epoxyview/internal/wizard"
)

// renderingStep is a passive waiting view. All input except quit is ignored
// while a render is in flight; the controller decides where the wizard lands
// when the result arrives.
type renderingStep struct{}

func newRenderingStep() *renderingStep { return &renderingStep{} }

func (st *renderingStep) View(s styles, state *wizard.State, spinnerFrame string) string {
	var b strings.Builder
	b.WriteString(s.title.Render("Rendering preview"))
	b.WriteString("\n\n")
	b.WriteString(spinnerFrame + " " + s.subtle.Render("Applying style to your photo..."))
	b.WriteString("\n\n")
	if style, ok := state.StyleByID(state.SelectedStyle); ok {
		b.WriteString(s.muted.Render("style  ") + style.Name + "\n")
	}
	b.WriteString(fmt.Sprintf("%s %.2f\n", s.muted.Render("blend "), state.Tuning.BlendStrength))
	b.WriteString(s.muted.Render("finish ") + string(state.Tuning.Finish))
	if state.AppliedMask != "" {
		b.WriteString("\n" + s.muted.Render("mask   ") + "custom")
	}
	b.WriteString("\n")
	return b.String()
}

package tui

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/skisplace/epoxyview/internal/wizard"
)

// dismissErrorMsg acknowledges the active error overlay.
type dismissErrorMsg struct{}

// errorOverlay is the modal that interrupts whichever step is active. It
// captures all key input while visible; dismissal semantics (retry vs reset
// to upload) live in the controller, not here.
type errorOverlay struct{}

func (o errorOverlay) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}
	switch keyMsg.String() {
	case "enter", "esc":
		return func() tea.Msg { return dismissErrorMsg{} }
	}
	return nil
}

func (o errorOverlay) View(s styles, e *wizard.Error) string {
	var b strings.Builder
	b.WriteString(s.errorText.Render(titleFor(e.Kind)))
	b.WriteString("\n\n")
	b.WriteString(e.Message)
	b.WriteString("\n\n")
	if e.Recoverable() {
		b.WriteString(renderHintBar(s, "enter", "start over"))
	} else {
		b.WriteString(renderHintBar(s, "q", "quit"))
	}
	return s.modal.Render(b.String())
}

func titleFor(k wizard.ErrorKind) string {
	switch k {
	case wizard.ErrConfigMissing:
		return "Configuration error"
	case wizard.ErrUploadFailed:
		return "Upload failed"
	case wizard.ErrStyleFetchFailed:
		return "Could not load styles"
	case wizard.ErrUnauthorized:
		return "Not authorized"
	case wizard.ErrRenderFailed:
		return "Render failed"
	case wizard.ErrNetwork:
		return "Network error"
	default:
		return "Error"
	}
}

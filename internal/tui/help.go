package tui

import (
	"bytes"
	"encoding/json"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/glamour/v2"
)

const helpMarkdown = `# epoxyview

Turn a photo of your floor into an epoxy-coated preview without leaving
the terminal.

## Steps

1. **Upload** pick a photo of the space (jpg, png, webp)
2. **System** choose a finish system (shown only when the project has several)
3. **Style** pick a style, tune blend strength and finish, press r to render
4. **Result** view the preview, refine the coating mask, save the image

## Mask editor

The editor paints directly on the area the coating is applied to. White
cells are coated, dark cells keep the original photo.

| Key | Action |
|-----|--------|
| space / mouse drag | paint with the brush |
| m | toggle add / remove |
| [ ] | shrink / grow brush |
| u / U | undo / redo (last 50 strokes) |
| x | reset to the detected mask |
| a | apply mask and re-render |
| esc | discard edits |

## Everywhere

| Key | Action |
|-----|--------|
| ? | toggle this help |
| q / ctrl+c | quit |
`

// renderDebugPayload pretty-prints the render response's diagnostic fields
// as a markdown code block. Shown only on debug sessions.
func renderDebugPayload(raw []byte, width int) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		buf.Write(raw)
	}
	md := "```json\n" + buf.String() + "\n```"
	if width > 100 {
		width = 100
	}
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	rendered, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSuffix(rendered, "\n")
}

// renderHelp renders the help markdown for the current terminal width.
// Falls back to the raw markdown if glamour fails.
func renderHelp(width int) string {
	if width > 100 {
		width = 100
	}
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return helpMarkdown
	}
	rendered, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return strings.TrimSuffix(rendered, "\n")
}

// helpOverlay is the scrollable help screen toggled with ?.
type helpOverlay struct {
	vp viewport.Model
}

func newHelpOverlay() *helpOverlay {
	vp := viewport.New(
		viewport.WithWidth(60),
		viewport.WithHeight(20),
	)
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3
	vp.SetContent(renderHelp(60))
	return &helpOverlay{vp: vp}
}

func (h *helpOverlay) setSize(width, height int) {
	h.vp.SetWidth(width)
	// Header takes two lines above, the hint bar one below.
	vpHeight := height - 3
	if vpHeight < 5 {
		vpHeight = 5
	}
	h.vp.SetHeight(vpHeight)
	h.vp.SetContent(renderHelp(width))
}

func (h *helpOverlay) open() {
	h.vp.GotoTop()
}

// Update forwards scrolling input to the viewport.
func (h *helpOverlay) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	h.vp, cmd = h.vp.Update(msg)
	return cmd
}

func (h *helpOverlay) View(s styles) string {
	return h.vp.View() + "\n" + s.subtle.Render("scroll with arrows or wheel, ? or esc to close")
}

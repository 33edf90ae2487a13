package tui

import (
	"fmt"
	"image"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/skisplace/epoxyview/internal/mask"
	"github.com/skisplace/epoxyview/internal/wizard"
)

// Messages emitted by the result step.
type (
	// maskEditRequestMsg asks the app to download the server mask and the
	// base image dimensions before editing can start.
	maskEditRequestMsg struct{}
	// applyMaskMsg commits the edited mask and re-renders.
	applyMaskMsg struct{}
	// saveResultMsg downloads the rendered image to disk.
	saveResultMsg struct{}
	// newPreviewMsg resets the wizard to a fresh session.
	newPreviewMsg struct{}
)

// resultStep shows the finished render and hosts the mask editor. The canvas
// is a cell grid: every terminal cell is one display-space point that the
// session maps back to bitmap pixels, so painting resolution follows the
// terminal size while the mask itself stays at the image's natural size.
type resultStep struct {
	editing bool
	source  image.Image // server mask seeding the session, nil when none

	// cursor position in canvas cells, for keyboard painting
	curX, curY int

	// canvas geometry, recomputed on every View
	canvasW, canvasH     int
	canvasTop, canvasLeft int

	mouseDown bool
	savedPath string

	termW, termH int
}

func newResultStep() *resultStep {
	return &resultStep{termW: 80, termH: 24}
}

func (st *resultStep) setSize(w, h int) {
	st.termW, st.termH = w, h
}

// startEditing is called by the app once the mask source has arrived and the
// controller has created the session.
func (st *resultStep) startEditing(source image.Image) {
	st.editing = true
	st.source = source
	st.curX, st.curY = 0, 0
	st.mouseDown = false
}

func (st *resultStep) stopEditing() {
	st.editing = false
	st.source = nil
	st.mouseDown = false
}

func (st *resultStep) Update(msg tea.Msg, state *wizard.State) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		if st.editing {
			return st.updateEditing(msg, state)
		}
		return st.updateViewing(msg)
	case tea.MouseClickMsg:
		if st.editing && state.Mask != nil {
			m := msg.Mouse()
			if st.inCanvas(m.X, m.Y) {
				st.mouseDown = true
				_ = state.Mask.BeginStroke()
				st.paintAt(state.Mask, m.X, m.Y)
			}
		}
	case tea.MouseMotionMsg:
		if st.editing && st.mouseDown && state.Mask != nil {
			m := msg.Mouse()
			if st.inCanvas(m.X, m.Y) {
				st.paintAt(state.Mask, m.X, m.Y)
			}
		}
	case tea.MouseReleaseMsg:
		if st.editing && st.mouseDown && state.Mask != nil {
			st.mouseDown = false
			if committed, _ := state.Mask.EndStroke(); committed {
				return func() tea.Msg { return strokeCommittedMsg{} }
			}
		}
	}
	return nil
}

// strokeCommittedMsg fires once per committed stroke, for the debug journal.
type strokeCommittedMsg struct{}

func (st *resultStep) updateViewing(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "e":
		return func() tea.Msg { return maskEditRequestMsg{} }
	case "d":
		return func() tea.Msg { return saveResultMsg{} }
	case "n":
		return func() tea.Msg { return newPreviewMsg{} }
	}
	return nil
}

func (st *resultStep) updateEditing(msg tea.KeyPressMsg, state *wizard.State) tea.Cmd {
	sess := state.Mask
	if sess == nil {
		return nil
	}
	switch msg.String() {
	case "up":
		if st.curY > 0 {
			st.curY--
		}
	case "down":
		if st.curY < st.canvasH-1 {
			st.curY++
		}
	case "left":
		if st.curX > 0 {
			st.curX--
		}
	case "right":
		if st.curX < st.canvasW-1 {
			st.curX++
		}
	case " ", "space":
		if err := sess.Stroke([]mask.Point{{X: float64(st.curX), Y: float64(st.curY)}},
			float64(st.canvasW), float64(st.canvasH)); err == nil {
			return func() tea.Msg { return strokeCommittedMsg{} }
		}
	case "m":
		if sess.Mode() == mask.ModeAdd {
			sess.SetMode(mask.ModeRemove)
		} else {
			sess.SetMode(mask.ModeAdd)
		}
	case "[":
		sess.SetBrushRadius(sess.BrushRadius() - 5)
	case "]":
		sess.SetBrushRadius(sess.BrushRadius() + 5)
	case "u":
		sess.Undo()
	case "U":
		sess.Redo()
	case "x":
		_ = sess.ResetToSource(st.source)
	case "a":
		return func() tea.Msg { return applyMaskMsg{} }
	case "esc":
		st.stopEditing()
		return func() tea.Msg { return maskEditCancelledMsg{} }
	}
	return nil
}

// maskEditCancelledMsg tells the app to dispose the session without applying.
type maskEditCancelledMsg struct{}

func (st *resultStep) inCanvas(x, y int) bool {
	return x >= st.canvasLeft && x < st.canvasLeft+st.canvasW &&
		y >= st.canvasTop && y < st.canvasTop+st.canvasH
}

func (st *resultStep) paintAt(sess *mask.Session, x, y int) {
	_ = sess.StrokePoint(
		mask.Point{X: float64(x - st.canvasLeft), Y: float64(y - st.canvasTop)},
		float64(st.canvasW), float64(st.canvasH))
	st.curX, st.curY = x-st.canvasLeft, y-st.canvasTop
}

func (st *resultStep) View(s styles, state *wizard.State) string {
	var b strings.Builder
	b.WriteString(s.title.Render("Preview ready"))
	b.WriteString("\n\n")

	res := state.RenderResult
	if res == nil {
		return b.String()
	}

	if st.editing && state.Mask != nil {
		st.renderCanvas(&b, s, state)
		return b.String()
	}

	b.WriteString(s.subtle.Render("result ") + res.ResultImageURL + "\n")
	if res.MaskImageURL != "" {
		b.WriteString(s.subtle.Render("mask   ") + res.MaskImageURL +
			s.muted.Render("  ("+res.MaskSource+")") + "\n")
	}
	if style, ok := state.StyleByID(state.SelectedStyle); ok {
		b.WriteString(s.subtle.Render("style  ") + style.Name + "\n")
	}
	if st.savedPath != "" {
		b.WriteString(s.success.Render("saved  "+st.savedPath) + "\n")
	}
	if len(res.DebugPayload) > 0 {
		b.WriteString("\n" + renderDebugPayload(res.DebugPayload, st.termW) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(renderHintBar(s,
		"e", "edit mask",
		"d", "save image",
		"n", "new preview",
	))
	return b.String()
}

func (st *resultStep) renderCanvas(b *strings.Builder, s styles, state *wizard.State) {
	sess := state.Mask
	bm := sess.Bitmap()

	// Rows above the canvas in absolute terminal coordinates: the app header
	// and a blank line, then this step's title, blank, and status lines.
	// Mouse events arrive in absolute cells, so the offset must match.
	w := st.termW - 4
	if w > 72 {
		w = 72
	}
	if w < 10 {
		w = 10
	}
	h := st.termH - 8
	if h > 24 {
		h = 24
	}
	if h < 5 {
		h = 5
	}
	st.canvasW, st.canvasH = w, h
	st.canvasTop, st.canvasLeft = 5, 0

	fmt.Fprintf(b, "%s %s   %s %d   %s %d/%d\n",
		s.subtle.Render("brush"), sess.Mode().String(),
		s.subtle.Render("radius"), sess.BrushRadius(),
		s.subtle.Render("history"), sess.HistoryIndex()+1, sess.HistoryLen())

	if st.curX >= w {
		st.curX = w - 1
	}
	if st.curY >= h {
		st.curY = h - 1
	}

	bw, bh := bm.Width(), bm.Height()
	for cy := 0; cy < h; cy++ {
		for cx := 0; cx < w; cx++ {
			bx := cx * bw / w
			by := cy * bh / h
			included := bm.At(bx, by) == mask.Included
			switch {
			case cx == st.curX && cy == st.curY:
				b.WriteString(s.selected.Render("+"))
			case included:
				b.WriteString(s.accent.Render("█"))
			default:
				b.WriteString(s.muted.Render("░"))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderHintBar(s,
		"space/drag", "paint",
		"m", sess.Mode().String(),
		"[ ]", "radius",
		"u/U", "undo/redo",
		"x", "reset",
		"a", "apply",
		"esc", "cancel",
	))
}

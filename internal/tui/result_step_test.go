package tui

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/skisplace/epoxyview/internal/mask"
	"github.com/skisplace/epoxyview/internal/wizard"
)

// appAtResult drives a fresh app to the result step with mask editing armed.
func appAtResult(t *testing.T) *App {
	t.Helper()
	a := newTestApp()
	gen := a.ctrl.Generation()
	a.handleAppMsg(fileSelectedMsg{path: "floor.jpg"})
	a.handleAppMsg(uploadResultMsg{generation: gen, imageID: "img_1"})
	a.handleAppMsg(stylesResultMsg{generation: gen, styles: catalog()})
	a.handleAppMsg(styleChosenMsg{id: "style_a"})
	a.handleAppMsg(renderRequestMsg{})
	a.handleAppMsg(renderResultMsg{generation: gen, result: &wizard.RenderResult{
		ResultImageURL: "https://cdn.example/r.jpg",
	}})
	if a.ctrl.State().Step != wizard.StepResult {
		t.Fatalf("setup failed, step %s", a.ctrl.State().Step)
	}
	return a
}

func enableEditing(t *testing.T, a *App) {
	t.Helper()
	a.handleAppMsg(maskSourceMsg{
		generation: a.ctrl.Generation(),
		naturalW:   400,
		naturalH:   300,
	})
	if a.ctrl.State().Mask == nil {
		t.Fatal("mask session not created")
	}
	// View computes the canvas geometry used for coordinate mapping.
	_ = a.result.View(a.s, a.ctrl.State())
}

func TestResultStepKeyboardPainting(t *testing.T) {
	a := appAtResult(t)
	enableEditing(t, a)
	st := a.ctrl.State()
	sess := st.Mask

	sess.SetMode(mask.ModeRemove)
	cmd := a.result.Update(tea.KeyPressMsg{Code: ' ', Text: " "}, st)
	if cmd == nil {
		t.Fatal("painting should commit a stroke")
	}
	if _, ok := cmd().(strokeCommittedMsg); !ok {
		t.Fatal("expected a stroke journal message")
	}

	// Cursor (0,0) maps to the bitmap's top-left corner.
	if sess.Bitmap().At(0, 0) != mask.Excluded {
		t.Fatal("remove mode should paint excluded pixels")
	}
	if !sess.CanUndo() {
		t.Fatal("stroke should be undoable")
	}
	if !sess.Undo() {
		t.Fatal("undo failed")
	}
	if sess.Bitmap().At(0, 0) != mask.Included {
		t.Fatal("undo did not restore the seed bitmap")
	}
}

func TestResultStepMouseStroke(t *testing.T) {
	a := appAtResult(t)
	enableEditing(t, a)
	st := a.ctrl.State()

	x := a.result.canvasLeft + 1
	y := a.result.canvasTop + 1
	st.Mask.SetMode(mask.ModeRemove)

	a.result.Update(tea.MouseClickMsg{X: x, Y: y, Button: tea.MouseLeft}, st)
	if !a.result.mouseDown {
		t.Fatal("click inside the canvas should start a stroke")
	}
	a.result.Update(tea.MouseMotionMsg{X: x + 2, Y: y, Button: tea.MouseLeft}, st)
	cmd := a.result.Update(tea.MouseReleaseMsg{X: x + 2, Y: y, Button: tea.MouseLeft}, st)
	if a.result.mouseDown {
		t.Fatal("release should end the stroke")
	}
	if cmd == nil {
		t.Fatal("a dragged stroke should commit one history entry")
	}
	if got := st.Mask.HistoryLen(); got != 2 {
		t.Fatalf("expected drag to be one snapshot, history len %d", got)
	}
}

func TestResultStepMouseOutsideCanvasIgnored(t *testing.T) {
	a := appAtResult(t)
	enableEditing(t, a)
	st := a.ctrl.State()

	a.result.Update(tea.MouseClickMsg{X: a.result.canvasLeft - 1, Y: 0, Button: tea.MouseLeft}, st)
	if a.result.mouseDown {
		t.Fatal("click outside the canvas started a stroke")
	}
	if st.Mask.HistoryLen() != 1 {
		t.Fatal("bitmap mutated by an out-of-canvas click")
	}
}

func TestResultStepModeAndRadiusKeys(t *testing.T) {
	a := appAtResult(t)
	enableEditing(t, a)
	st := a.ctrl.State()
	sess := st.Mask

	a.result.Update(tea.KeyPressMsg{Code: 'm', Text: "m"}, st)
	if sess.Mode() != mask.ModeRemove {
		t.Fatal("m should toggle to remove")
	}
	a.result.Update(tea.KeyPressMsg{Code: 'm', Text: "m"}, st)
	if sess.Mode() != mask.ModeAdd {
		t.Fatal("m should toggle back to add")
	}

	start := sess.BrushRadius()
	a.result.Update(tea.KeyPressMsg{Code: ']', Text: "]"}, st)
	if sess.BrushRadius() != start+5 {
		t.Fatalf("] should grow the brush, got %d", sess.BrushRadius())
	}
	for i := 0; i < 30; i++ {
		a.result.Update(tea.KeyPressMsg{Code: '[', Text: "["}, st)
	}
	if sess.BrushRadius() != mask.MinBrushRadius {
		t.Fatalf("radius should clamp at %d, got %d", mask.MinBrushRadius, sess.BrushRadius())
	}
}

func TestResultStepCancelDisposesSession(t *testing.T) {
	a := appAtResult(t)
	enableEditing(t, a)
	st := a.ctrl.State()
	sess := st.Mask

	cmd := a.result.Update(tea.KeyPressMsg{Code: tea.KeyEscape, Text: "esc"}, st)
	drain(t, a, cmd)

	if st.Mask != nil {
		t.Fatal("cancel should detach the session")
	}
	if !sess.Disposed() {
		t.Fatal("cancel should dispose the session")
	}
	if st.AppliedMask != "" {
		t.Fatal("cancel must not export a mask")
	}
	if a.result.editing {
		t.Fatal("step still in editing mode")
	}
}

func TestResultStepApplyRerenders(t *testing.T) {
	a := appAtResult(t)
	enableEditing(t, a)
	st := a.ctrl.State()

	// Paint something so the applied mask differs from the seed.
	a.result.Update(tea.KeyPressMsg{Code: 'm', Text: "m"}, st)
	a.result.Update(tea.KeyPressMsg{Code: ' ', Text: " "}, st)

	cmd := a.result.Update(tea.KeyPressMsg{Code: 'a', Text: "a"}, st)
	if cmd == nil {
		t.Fatal("a should emit the apply message")
	}
	a.handleAppMsg(cmd())

	if st.AppliedMask == "" {
		t.Fatal("apply should export the mask")
	}
	if st.Mask != nil {
		t.Fatal("apply should detach the session")
	}
	if st.Step != wizard.StepRendering {
		t.Fatalf("apply should re-render, step %s", st.Step)
	}
}

func TestResultStepViewingKeys(t *testing.T) {
	a := appAtResult(t)
	st := a.ctrl.State()

	cmd := a.result.Update(tea.KeyPressMsg{Code: 'e', Text: "e"}, st)
	if cmd == nil {
		t.Fatal("e should request mask editing")
	}
	if _, ok := cmd().(maskEditRequestMsg); !ok {
		t.Fatal("expected a mask edit request")
	}

	cmd = a.result.Update(tea.KeyPressMsg{Code: 'n', Text: "n"}, st)
	if _, ok := cmd().(newPreviewMsg); !ok {
		t.Fatal("n should start a new preview")
	}
}

package mask

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// strokeAt paints a single-point stroke with the display rect equal to the
// bitmap size, so display and bitmap coordinates coincide.
func strokeAt(t *testing.T, s *Session, x, y float64) {
	t.Helper()
	if err := s.Stroke([]Point{{X: x, Y: y}}, float64(s.Bitmap().Width()), float64(s.Bitmap().Height())); err != nil {
		t.Fatalf("stroke failed: %v", err)
	}
}

func TestNewSessionStartsFullyIncluded(t *testing.T) {
	s, err := NewSession(100, 80, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	defer s.Dispose()

	if got := s.Bitmap().CoverageRatio(); got != 1.0 {
		t.Errorf("coverage = %v, want 1.0 for a fresh mask", got)
	}
	if s.HistoryLen() != 1 || s.HistoryIndex() != 0 {
		t.Errorf("fresh session history len=%d index=%d, want 1/0", s.HistoryLen(), s.HistoryIndex())
	}
}

func TestNewSessionSeedsFromSourceMask(t *testing.T) {
	// Source mask at a different resolution: left half included.
	src := image.NewGray(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 20; x++ {
			src.SetGray(x, y, color.Gray{Y: 0xFF})
		}
	}

	s, err := NewSession(200, 200, src)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	defer s.Dispose()

	if got := s.Bitmap().At(10, 100); got != Included {
		t.Errorf("left half not included after resample: got %d", got)
	}
	if got := s.Bitmap().At(190, 100); got != Excluded {
		t.Errorf("right half not excluded after resample: got %d", got)
	}
	if s.Bitmap().Width() != 200 || s.Bitmap().Height() != 200 {
		t.Error("bitmap must be at session resolution, not source resolution")
	}
}

func TestUndoRedoInverseLaw(t *testing.T) {
	s, err := NewSession(64, 64, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	defer s.Dispose()
	s.SetMode(ModeRemove)

	// Three strokes, snapshotting the pixels after each.
	var states [][]uint8
	states = append(states, s.Bitmap().Snapshot())
	for _, p := range []Point{{10, 10}, {30, 30}, {50, 50}} {
		strokeAt(t, s, p.X, p.Y)
		states = append(states, s.Bitmap().Snapshot())
	}

	// Undo after stroke k restores the state after stroke k-1, bit-identical.
	for k := 3; k >= 1; k-- {
		if !s.Undo() {
			t.Fatalf("undo %d reported no-op", k)
		}
		if !bytes.Equal(s.Bitmap().Snapshot(), states[k-1]) {
			t.Fatalf("undo to state %d not bit-identical", k-1)
		}
	}

	// Boundary: one more undo is a reported no-op.
	if s.Undo() {
		t.Error("undo past the first snapshot must report false")
	}

	// Redo walks forward through the same states.
	for k := 1; k <= 3; k++ {
		if !s.Redo() {
			t.Fatalf("redo %d reported no-op", k)
		}
		if !bytes.Equal(s.Bitmap().Snapshot(), states[k]) {
			t.Fatalf("redo to state %d not bit-identical", k)
		}
	}
	if s.Redo() {
		t.Error("redo past the newest snapshot must report false")
	}
}

func TestHistoryTruncationDiscardsRedoBranch(t *testing.T) {
	s, err := NewSession(64, 64, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	defer s.Dispose()
	s.SetMode(ModeRemove)

	strokeAt(t, s, 10, 10)
	strokeAt(t, s, 30, 30)
	s.Undo()
	s.Undo()

	// A fresh stroke discards the undone future.
	strokeAt(t, s, 50, 50)
	if s.Redo() {
		t.Error("redo after a branching stroke must be a no-op")
	}
	if !s.CanUndo() {
		t.Error("branching stroke must itself be undoable")
	}
}

func TestStrokeIsAtomicUnitOfUndo(t *testing.T) {
	s, err := NewSession(64, 64, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	defer s.Dispose()
	s.SetMode(ModeRemove)

	// One continuous stroke of many stamps takes exactly one snapshot.
	if err := s.Stroke([]Point{{5, 5}, {15, 15}, {25, 25}, {35, 35}}, 64, 64); err != nil {
		t.Fatalf("stroke: %v", err)
	}
	if s.HistoryLen() != 2 {
		t.Errorf("history len = %d after one multi-stamp stroke, want 2", s.HistoryLen())
	}

	// An empty stroke (pointer down and up, no movement) commits nothing.
	if err := s.BeginStroke(); err != nil {
		t.Fatal(err)
	}
	committed, err := s.EndStroke()
	if err != nil {
		t.Fatal(err)
	}
	if committed || s.HistoryLen() != 2 {
		t.Error("empty stroke must not commit a snapshot")
	}
}

func TestStrokesAccumulate(t *testing.T) {
	s, err := NewSession(100, 100, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	defer s.Dispose()
	s.SetMode(ModeRemove)
	s.SetBrushRadius(5)

	if err := s.Stroke([]Point{{20, 50}, {28, 50}, {36, 50}}, 100, 100); err != nil {
		t.Fatalf("stroke: %v", err)
	}
	// Stamp spacing (8px) is below the radius sum, so the brushed region is
	// connected along the path.
	for x := 20; x <= 36; x++ {
		if s.Bitmap().At(x, 50) != Excluded {
			t.Fatalf("gap in brushed region at x=%d", x)
		}
	}
}

func TestBrushRadiusClamping(t *testing.T) {
	s, err := NewSession(64, 64, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	defer s.Dispose()

	s.SetBrushRadius(200)
	if s.BrushRadius() != 80 {
		t.Errorf("radius = %d, want clamp to 80", s.BrushRadius())
	}
	s.SetBrushRadius(1)
	if s.BrushRadius() != 5 {
		t.Errorf("radius = %d, want clamp to 5", s.BrushRadius())
	}
}

func TestModeSelectsPaintValue(t *testing.T) {
	s, err := NewSession(64, 64, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	defer s.Dispose()
	s.SetBrushRadius(5)

	s.SetMode(ModeRemove)
	strokeAt(t, s, 20, 20)
	if s.Bitmap().At(20, 20) != Excluded {
		t.Error("remove mode must paint excluded")
	}

	s.SetMode(ModeAdd)
	strokeAt(t, s, 20, 20)
	if s.Bitmap().At(20, 20) != Included {
		t.Error("add mode must paint included")
	}
}

func TestResetToSourceActsAsStroke(t *testing.T) {
	s, err := NewSession(64, 64, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	defer s.Dispose()
	s.SetMode(ModeRemove)

	strokeAt(t, s, 20, 20)
	edited := s.Bitmap().Snapshot()

	src := image.NewGray(image.Rect(0, 0, 64, 64)) // all excluded
	if err := s.ResetToSource(src); err != nil {
		t.Fatalf("ResetToSource: %v", err)
	}
	if got := s.Bitmap().CoverageRatio(); got != 0 {
		t.Errorf("coverage after reset = %v, want 0", got)
	}
	if s.HistoryLen() != 3 {
		t.Errorf("history len = %d, want 3 (reset pushes, never clears)", s.HistoryLen())
	}

	// The pre-reset state is still one undo away.
	if !s.Undo() {
		t.Fatal("undo after reset reported no-op")
	}
	if !bytes.Equal(s.Bitmap().Snapshot(), edited) {
		t.Error("undo after reset must restore the edited state")
	}
}

func TestExportRoundTrip(t *testing.T) {
	s, err := NewSession(32, 32, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	defer s.Dispose()
	s.SetMode(ModeRemove)
	s.SetBrushRadius(5)
	strokeAt(t, s, 16, 16)

	if s.Exported() != nil {
		t.Error("exported mask must be unset before apply")
	}

	data, err := s.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !bytes.Equal(s.Exported(), data) {
		t.Error("Exported() must return the applied bytes")
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("exported mask is not a decodable PNG: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 32 || b.Dy() != 32 {
		t.Errorf("exported size = %dx%d, want 32x32", b.Dx(), b.Dy())
	}
	if g, _, _, _ := img.At(16, 16).RGBA(); g != 0 {
		t.Error("brushed pixel must export black")
	}
	if g, _, _, _ := img.At(0, 0).RGBA(); g == 0 {
		t.Error("untouched pixel must export white")
	}
}

func TestDisposeReleasesSession(t *testing.T) {
	s, err := NewSession(32, 32, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	s.Dispose()

	if !s.Disposed() {
		t.Fatal("Disposed() = false after Dispose")
	}
	if err := s.BeginStroke(); err != ErrDisposed {
		t.Errorf("BeginStroke after dispose = %v, want ErrDisposed", err)
	}
	if _, err := s.Export(); err != ErrDisposed {
		t.Errorf("Export after dispose = %v, want ErrDisposed", err)
	}
	if s.Undo() || s.Redo() {
		t.Error("undo/redo after dispose must report no-op")
	}
	s.Dispose() // second dispose is safe
}

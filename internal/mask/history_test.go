package mask

import (
	"bytes"
	"testing"
)

func snap(fill uint8, n int) []uint8 {
	s := make([]uint8, n)
	for i := range s {
		s[i] = fill
	}
	return s
}

func TestHistoryPushUndoRedo(t *testing.T) {
	h, err := NewHistory(10)
	if err != nil {
		t.Fatalf("NewHistory: %v", err)
	}
	defer h.Release()

	if h.CanUndo() || h.CanRedo() {
		t.Error("empty history must report no undo/redo")
	}

	h.Push(snap(0, 16))
	h.Push(snap(1, 16))
	h.Push(snap(2, 16))

	if h.Len() != 3 || h.Index() != 2 {
		t.Fatalf("len=%d index=%d, want 3/2", h.Len(), h.Index())
	}

	got, ok := h.Undo()
	if !ok || !bytes.Equal(got, snap(1, 16)) {
		t.Fatal("first undo must return the middle snapshot")
	}
	got, ok = h.Undo()
	if !ok || !bytes.Equal(got, snap(0, 16)) {
		t.Fatal("second undo must return the oldest snapshot")
	}
	if _, ok := h.Undo(); ok {
		t.Error("undo at the oldest snapshot must report a no-op")
	}

	got, ok = h.Redo()
	if !ok || !bytes.Equal(got, snap(1, 16)) {
		t.Fatal("redo must return the middle snapshot")
	}
}

func TestHistoryPushTruncatesRedoBranch(t *testing.T) {
	h, err := NewHistory(10)
	if err != nil {
		t.Fatalf("NewHistory: %v", err)
	}
	defer h.Release()

	h.Push(snap(0, 8))
	h.Push(snap(1, 8))
	h.Push(snap(2, 8))
	h.Undo()
	h.Undo()

	h.Push(snap(9, 8))

	if h.CanRedo() {
		t.Error("push must discard the redo branch")
	}
	if h.Len() != 2 {
		t.Errorf("len = %d after branch, want 2", h.Len())
	}
	got, ok := h.Undo()
	if !ok || !bytes.Equal(got, snap(0, 8)) {
		t.Error("undo after branch must return the shared ancestor")
	}
}

func TestHistoryBoundedDepthEvictsOldest(t *testing.T) {
	h, err := NewHistory(3)
	if err != nil {
		t.Fatalf("NewHistory: %v", err)
	}
	defer h.Release()

	for i := 0; i < 5; i++ {
		h.Push(snap(uint8(i), 8))
	}

	if h.Len() != 3 {
		t.Fatalf("len = %d, want cap 3", h.Len())
	}
	// Walk to the bottom: the oldest surviving snapshot is fill=2.
	var last []uint8
	for {
		got, ok := h.Undo()
		if !ok {
			break
		}
		last = got
	}
	if !bytes.Equal(last, snap(2, 8)) {
		t.Errorf("deepest snapshot = %v, want fill=2 (0 and 1 evicted)", last[0])
	}
}

func TestHistoryCompressionRoundTrip(t *testing.T) {
	h, err := NewHistory(4)
	if err != nil {
		t.Fatalf("NewHistory: %v", err)
	}
	defer h.Release()

	// A non-trivial pattern survives the compressed store bit-identically.
	in := make([]uint8, 4096)
	for i := range in {
		in[i] = uint8(i * 7)
	}
	h.Push(snap(0, 4096))
	h.Push(in)

	got, ok := h.Undo()
	if !ok {
		t.Fatal("undo failed")
	}
	got, ok = h.Redo()
	if !ok {
		t.Fatal("redo failed")
	}
	if !bytes.Equal(got, in) {
		t.Error("snapshot round trip through compression is not bit-identical")
	}
}

package mask

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// DefaultHistoryDepth caps the number of retained snapshots. Pushing beyond
// the cap evicts the oldest entry, so very long editing sessions lose only
// their deepest undo steps.
const DefaultHistoryDepth = 50

// History is a bounded undo stack of bitmap snapshots. Snapshots are stored
// zstd-compressed: masks are broad flat regions and compress to a tiny
// fraction of their raw size.
//
// The stack keeps an index into its entries; pushing while the index is not
// at the top truncates the redo branch first, standard undo-stack semantics.
type History struct {
	enc     *zstd.Encoder
	dec     *zstd.Decoder
	entries [][]byte
	index   int
	depth   int
}

// NewHistory creates an empty history bounded to depth snapshots.
// A depth of zero or less uses DefaultHistoryDepth.
func NewHistory(depth int) (*History, error) {
	if depth <= 0 {
		depth = DefaultHistoryDepth
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	return &History{enc: enc, dec: dec, depth: depth, index: -1}, nil
}

// Len returns the number of retained snapshots.
func (h *History) Len() int { return len(h.entries) }

// Index returns the current position, -1 when the history is empty.
func (h *History) Index() int { return h.index }

// CanUndo reports whether an older snapshot exists.
func (h *History) CanUndo() bool { return h.index > 0 }

// CanRedo reports whether an undone snapshot can be restored.
func (h *History) CanRedo() bool { return h.index >= 0 && h.index < len(h.entries)-1 }

// Push appends a snapshot and moves the index to it. Any redo branch past
// the current index is discarded; the oldest entry is evicted when the
// bounded depth is exceeded.
func (h *History) Push(snapshot []uint8) {
	h.entries = h.entries[:h.index+1]
	h.entries = append(h.entries, h.enc.EncodeAll(snapshot, nil))
	if len(h.entries) > h.depth {
		h.entries = h.entries[1:]
	}
	h.index = len(h.entries) - 1
}

// Undo moves one snapshot back and returns it. The boundary is a reported
// no-op: ok is false and the history is unchanged when already at the oldest
// snapshot.
func (h *History) Undo() (snapshot []uint8, ok bool) {
	if !h.CanUndo() {
		return nil, false
	}
	h.index--
	return h.at(h.index), true
}

// Redo moves one snapshot forward and returns it; the boundary is a
// reported no-op like Undo.
func (h *History) Redo() (snapshot []uint8, ok bool) {
	if !h.CanRedo() {
		return nil, false
	}
	h.index++
	return h.at(h.index), true
}

// Current returns the snapshot at the current index, or nil when empty.
func (h *History) Current() []uint8 {
	if h.index < 0 {
		return nil
	}
	return h.at(h.index)
}

// Release frees the compressor resources. The history must not be used
// afterwards.
func (h *History) Release() {
	h.entries = nil
	h.index = -1
	if h.enc != nil {
		_ = h.enc.Close()
		h.enc = nil
	}
	if h.dec != nil {
		h.dec.Close()
		h.dec = nil
	}
}

func (h *History) at(i int) []uint8 {
	out, err := h.dec.DecodeAll(h.entries[i], nil)
	if err != nil {
		// Entries are only ever written by our own encoder; a decode
		// failure means memory corruption, not a recoverable state.
		panic(fmt.Sprintf("mask history snapshot %d corrupt: %v", i, err))
	}
	return out
}

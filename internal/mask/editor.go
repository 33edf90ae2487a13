package mask

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
)

// Mode selects the brush paint value.
type Mode int

const (
	// ModeAdd paints pixels as included (white).
	ModeAdd Mode = iota
	// ModeRemove paints pixels as excluded (black).
	ModeRemove
)

// String returns "add" or "remove".
func (m Mode) String() string {
	if m == ModeRemove {
		return "remove"
	}
	return "add"
}

func (m Mode) value() uint8 {
	if m == ModeRemove {
		return Excluded
	}
	return Included
}

// ErrDisposed is returned by operations on a session after Dispose.
var ErrDisposed = errors.New("mask session disposed")

// Point is a pointer position in display space.
type Point struct {
	X, Y float64
}

// Session is one mask-editing session bound to a single bitmap at the base
// image's natural resolution. It owns the bitmap and its history exclusively
// until disposed; the only channel by which edits leave the session is
// Export.
type Session struct {
	bitmap *Bitmap
	hist   *History
	mode   Mode
	radius int

	stroking bool // pointer currently down
	dirty    bool // at least one stamp since the stroke began

	exported []byte // set only by Export ("apply")
	disposed bool
}

// NewSession creates a session with a w×h bitmap. When source is non-nil it
// is resampled into the bitmap (the server-provided mask); otherwise the
// bitmap starts fully included. The initial contents become history entry 0.
func NewSession(w, h int, source image.Image) (*Session, error) {
	var bm *Bitmap
	var err error
	if source != nil {
		bm, err = NewBitmapFromImage(source, w, h)
	} else {
		bm, err = NewBitmap(w, h, Included)
	}
	if err != nil {
		return nil, err
	}

	hist, err := NewHistory(DefaultHistoryDepth)
	if err != nil {
		return nil, err
	}
	hist.Push(bm.Snapshot())

	return &Session{
		bitmap: bm,
		hist:   hist,
		mode:   ModeAdd,
		radius: 20,
	}, nil
}

// Bitmap exposes the owned bitmap for rendering. Callers must not mutate it.
func (s *Session) Bitmap() *Bitmap { return s.bitmap }

// Mode returns the current brush mode.
func (s *Session) Mode() Mode { return s.mode }

// SetMode switches between add and remove for subsequent strokes.
func (s *Session) SetMode(m Mode) { s.mode = m }

// BrushRadius returns the current brush radius in bitmap pixels.
func (s *Session) BrushRadius() int { return s.radius }

// SetBrushRadius sets the brush radius, clamped to [5, 80].
func (s *Session) SetBrushRadius(r int) { s.radius = ClampRadius(r) }

// CanUndo reports whether Undo would change the bitmap.
func (s *Session) CanUndo() bool { return !s.disposed && s.hist.CanUndo() }

// CanRedo reports whether Redo would change the bitmap.
func (s *Session) CanRedo() bool { return !s.disposed && s.hist.CanRedo() }

// HistoryLen returns the number of retained snapshots.
func (s *Session) HistoryLen() int {
	if s.disposed {
		return 0
	}
	return s.hist.Len()
}

// HistoryIndex returns the current history position.
func (s *Session) HistoryIndex() int {
	if s.disposed {
		return -1
	}
	return s.hist.Index()
}

// BeginStroke marks pointer-down. Stamps before the next EndStroke belong to
// one stroke: the atomic unit of undo.
func (s *Session) BeginStroke() error {
	if s.disposed {
		return ErrDisposed
	}
	s.stroking = true
	s.dirty = false
	return nil
}

// StrokePoint stamps the brush at a display-space point. The display
// rectangle is taken fresh on every call because layout can change between
// pointer events.
func (s *Session) StrokePoint(p Point, displayW, displayH float64) error {
	if s.disposed {
		return ErrDisposed
	}
	if !s.stroking {
		return errors.New("stroke point outside a stroke")
	}
	m, err := NewMapper(displayW, displayH, s.bitmap.Width(), s.bitmap.Height())
	if err != nil {
		return err
	}
	bx, by := m.Map(p.X, p.Y)
	Stamp(s.bitmap, bx, by, s.radius, s.mode.value())
	s.dirty = true
	return nil
}

// EndStroke marks pointer-up. A stroke that stamped at least once is
// committed as exactly one history snapshot; an empty stroke commits
// nothing. Returns whether a snapshot was taken.
func (s *Session) EndStroke() (committed bool, err error) {
	if s.disposed {
		return false, ErrDisposed
	}
	s.stroking = false
	if !s.dirty {
		return false, nil
	}
	s.dirty = false
	s.hist.Push(s.bitmap.Snapshot())
	return true, nil
}

// Stroke applies a whole pointer path as one stroke.
func (s *Session) Stroke(points []Point, displayW, displayH float64) error {
	if err := s.BeginStroke(); err != nil {
		return err
	}
	for _, p := range points {
		if err := s.StrokePoint(p, displayW, displayH); err != nil {
			return err
		}
	}
	_, err := s.EndStroke()
	return err
}

// Undo restores the previous snapshot. At the oldest snapshot it reports
// false and leaves the bitmap untouched; that is not an error.
func (s *Session) Undo() bool {
	if s.disposed {
		return false
	}
	snap, ok := s.hist.Undo()
	if !ok {
		return false
	}
	_ = s.bitmap.Restore(snap)
	return true
}

// Redo restores the next snapshot, reporting false at the newest one.
func (s *Session) Redo() bool {
	if s.disposed {
		return false
	}
	snap, ok := s.hist.Redo()
	if !ok {
		return false
	}
	_ = s.bitmap.Restore(snap)
	return true
}

// ResetToSource discards the current bitmap contents, redraws them from the
// given source mask, and commits the result as a new stroke would. Prior
// history stays undoable.
func (s *Session) ResetToSource(source image.Image) error {
	if s.disposed {
		return ErrDisposed
	}
	if source == nil {
		s.bitmap.Fill(Included)
	} else {
		s.bitmap.DrawImage(source)
	}
	s.hist.Push(s.bitmap.Snapshot())
	return nil
}

// Export serializes the current bitmap as a PNG and records it as the
// session's applied mask. This is the only way edits leave the session.
func (s *Session) Export() ([]byte, error) {
	if s.disposed {
		return nil, ErrDisposed
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.bitmap.Image()); err != nil {
		return nil, fmt.Errorf("encoding mask: %w", err)
	}
	s.exported = buf.Bytes()
	return s.exported, nil
}

// ExportBase64 is Export encoded for the multipart custom_mask field.
func (s *Session) ExportBase64() (string, error) {
	data, err := s.Export()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Exported returns the mask recorded by the last Export, nil if the session
// was never applied.
func (s *Session) Exported() []byte { return s.exported }

// Dispose releases the bitmap and history. Called on disable-without-apply,
// on wizard reset, and on unmount. Safe to call twice.
func (s *Session) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.bitmap = nil
	s.exported = nil
	s.hist.Release()
}

// Disposed reports whether the session has been released.
func (s *Session) Disposed() bool { return s.disposed }

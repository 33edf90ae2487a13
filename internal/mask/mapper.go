package mask

import "fmt"

// Mapper converts pointer positions in display space (the on-screen size of
// the rendered image, which changes with layout) to bitmap space (the mask's
// fixed natural resolution). The X and Y scale factors are independent.
//
// A Mapper is cheap and must be rebuilt from the live display rectangle on
// every interaction: caching one across layout changes would silently skew
// strokes.
type Mapper struct {
	displayW, displayH float64
	bitmapW, bitmapH   int
}

// NewMapper builds a mapper for the given display rectangle and bitmap size.
func NewMapper(displayW, displayH float64, bitmapW, bitmapH int) (Mapper, error) {
	if displayW <= 0 || displayH <= 0 {
		return Mapper{}, fmt.Errorf("invalid display rectangle %gx%g", displayW, displayH)
	}
	if bitmapW <= 0 || bitmapH <= 0 {
		return Mapper{}, fmt.Errorf("invalid bitmap size %dx%d", bitmapW, bitmapH)
	}
	return Mapper{displayW: displayW, displayH: displayH, bitmapW: bitmapW, bitmapH: bitmapH}, nil
}

// Map converts a display-space point to bitmap coordinates:
// (x*Bw/W, y*Bh/H), clamped into the bitmap bounds.
func (m Mapper) Map(x, y float64) (int, int) {
	bx := int(x * float64(m.bitmapW) / m.displayW)
	by := int(y * float64(m.bitmapH) / m.displayH)
	if bx < 0 {
		bx = 0
	} else if bx >= m.bitmapW {
		bx = m.bitmapW - 1
	}
	if by < 0 {
		by = 0
	} else if by >= m.bitmapH {
		by = m.bitmapH - 1
	}
	return bx, by
}

// Package mask implements the brush-editable inclusion mask: a fixed-size
// single-channel bitmap, a circular brush, display-to-bitmap coordinate
// mapping, and a bounded snapshot history for undo/redo.
//
// Intensity encodes inclusion: 0xFF means the pixel receives the styled
// surface, 0x00 means it is left untouched.
package mask

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"
)

// Included and Excluded are the two paint values of a binary mask.
const (
	Included uint8 = 0xFF
	Excluded uint8 = 0x00
)

// Bitmap is a w×h single-channel pixel buffer. Dimensions are fixed at
// creation; every mutation happens in place.
type Bitmap struct {
	w, h int
	pix  []uint8
}

// NewBitmap creates a bitmap with every pixel set to fill.
func NewBitmap(w, h int, fill uint8) (*Bitmap, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid bitmap size %dx%d", w, h)
	}
	bm := &Bitmap{w: w, h: h, pix: make([]uint8, w*h)}
	if fill != 0 {
		for i := range bm.pix {
			bm.pix[i] = fill
		}
	}
	return bm, nil
}

// NewBitmapFromImage creates a w×h bitmap seeded from src, resampled to the
// bitmap resolution. Any src pixel above half intensity counts as included,
// so a resampled grayscale mask stays binary.
func NewBitmapFromImage(src image.Image, w, h int) (*Bitmap, error) {
	bm, err := NewBitmap(w, h, Excluded)
	if err != nil {
		return nil, err
	}
	bm.DrawImage(src)
	return bm, nil
}

// Width returns the bitmap width in pixels.
func (b *Bitmap) Width() int { return b.w }

// Height returns the bitmap height in pixels.
func (b *Bitmap) Height() int { return b.h }

// At returns the value at (x, y), or Excluded outside the bounds.
func (b *Bitmap) At(x, y int) uint8 {
	if x < 0 || y < 0 || x >= b.w || y >= b.h {
		return Excluded
	}
	return b.pix[y*b.w+x]
}

// Set writes value at (x, y); writes outside the bounds are dropped.
func (b *Bitmap) Set(x, y int, value uint8) {
	if x < 0 || y < 0 || x >= b.w || y >= b.h {
		return
	}
	b.pix[y*b.w+x] = value
}

// Fill sets every pixel to value.
func (b *Bitmap) Fill(value uint8) {
	for i := range b.pix {
		b.pix[i] = value
	}
}

// DrawImage replaces the bitmap contents with src resampled to the bitmap's
// own resolution and thresholded back to binary. The bitmap dimensions do
// not change.
func (b *Bitmap) DrawImage(src image.Image) {
	gray := image.NewGray(image.Rect(0, 0, b.w, b.h))
	xdraw.ApproxBiLinear.Scale(gray, gray.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	for i, v := range gray.Pix {
		if v >= 0x80 {
			b.pix[i] = Included
		} else {
			b.pix[i] = Excluded
		}
	}
}

// Snapshot returns a copy of the pixel buffer.
func (b *Bitmap) Snapshot() []uint8 {
	out := make([]uint8, len(b.pix))
	copy(out, b.pix)
	return out
}

// Restore overwrites the pixel buffer from a snapshot taken on a bitmap of
// the same dimensions.
func (b *Bitmap) Restore(snapshot []uint8) error {
	if len(snapshot) != len(b.pix) {
		return fmt.Errorf("snapshot size %d does not match bitmap %dx%d", len(snapshot), b.w, b.h)
	}
	copy(b.pix, snapshot)
	return nil
}

// Equal reports whether two bitmaps have identical dimensions and contents.
func (b *Bitmap) Equal(other *Bitmap) bool {
	if other == nil || b.w != other.w || b.h != other.h {
		return false
	}
	for i := range b.pix {
		if b.pix[i] != other.pix[i] {
			return false
		}
	}
	return true
}

// Image returns the bitmap as a grayscale image sharing no storage with the
// bitmap, suitable for encoding.
func (b *Bitmap) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, b.w, b.h))
	copy(img.Pix, b.pix)
	return img
}

// CoverageRatio returns the fraction of pixels marked included, in [0, 1].
func (b *Bitmap) CoverageRatio() float64 {
	if len(b.pix) == 0 {
		return 0
	}
	n := 0
	for _, v := range b.pix {
		if v >= 0x80 {
			n++
		}
	}
	return float64(n) / float64(len(b.pix))
}

package mask

// Brush radius bounds in bitmap pixels.
const (
	MinBrushRadius = 5
	MaxBrushRadius = 80
)

// ClampRadius bounds a requested brush radius to [MinBrushRadius, MaxBrushRadius].
func ClampRadius(r int) int {
	if r < MinBrushRadius {
		return MinBrushRadius
	}
	if r > MaxBrushRadius {
		return MaxBrushRadius
	}
	return r
}

// Stamp paints a filled circle of the given radius centered at (cx, cy) onto
// the bitmap. Stamps accumulate: pixels outside the circle are untouched, so
// consecutive stamps along a pointer path form a connected brushed region.
func Stamp(b *Bitmap, cx, cy, radius int, value uint8) {
	radius = ClampRadius(radius)
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		y := cy + dy
		if y < 0 || y >= b.h {
			continue
		}
		// Row span via the circle equation, avoids a per-pixel sqrt.
		dx := 0
		for dx*dx+dy*dy <= r2 {
			dx++
		}
		half := dx - 1
		x0, x1 := cx-half, cx+half
		if x0 < 0 {
			x0 = 0
		}
		if x1 >= b.w {
			x1 = b.w - 1
		}
		row := y * b.w
		for x := x0; x <= x1; x++ {
			b.pix[row+x] = value
		}
	}
}

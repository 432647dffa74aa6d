// Package layout computes the scaled presentation geometry for fullscreen
// and windowed display, and keeps fullscreen state in sync with the host
// platform.
package layout

// The stage has a fixed 4:3 aspect ratio; scale factors are derived against
// the reference width.
const (
	ReferenceWidth  = 480
	ReferenceHeight = 360
)

// Geometry is a computed width/height pair plus the uniform scale factor
// applied to the session's presentation.
type Geometry struct {
	Width  int
	Height int
	Scale  float64
}

// Compute derives the largest 4:3 geometry that fits the window minus
// padding on each side, capped at maxWidth. maxWidth <= 0 means uncapped.
// It is a pure function of its inputs.
func Compute(winWidth, winHeight, padding, maxWidth int) Geometry {
	width := winWidth - 2*padding
	if maxWidth > 0 && width > maxWidth {
		width = maxWidth
	}
	if width < 0 {
		width = 0
	}
	available := winHeight - 2*padding
	if available < 0 {
		available = 0
	}

	// Shrink to whichever constraint binds, then floor the width to a
	// multiple of 4 so the 4:3 ratio stays exact in integer pixels.
	if width*3 > available*4 {
		width = available * 4 / 3
	}
	width -= width % 4

	return Geometry{
		Width:  width,
		Height: width * 3 / 4,
		Scale:  float64(width) / float64(ReferenceWidth),
	}
}

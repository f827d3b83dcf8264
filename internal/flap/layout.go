package flap

import "time"

// Phases are the two halves of one flip.
type Phases struct {
	Top    time.Duration
	Bottom time.Duration
}

// Total returns Top + Bottom.
func (p Phases) Total() time.Duration {
	return p.Top + p.Bottom
}

// SplitPhases gives the falling top leaf three quarters of d and the
// settling bottom leaf the rest. The two always sum to d.
func SplitPhases(d time.Duration) Phases {
	top := d * 3 / 4
	return Phases{Top: top, Bottom: d - top}
}

// Rect is a cell rectangle.
type Rect struct {
	X, Y          int
	Width, Height int
}

// SplitHalves divides r into an upper and a lower half of equal height.
// When the height is odd the middle row is returned as the hinge line,
// otherwise hinge is -1.
func SplitHalves(r Rect) (upper, lower Rect, hinge int) {
	half := r.Height / 2
	upper = Rect{X: r.X, Y: r.Y, Width: r.Width, Height: half}
	hinge = -1
	lowerY := r.Y + half
	if r.Height%2 == 1 {
		hinge = r.Y + half
		lowerY++
	}
	lower = Rect{X: r.X, Y: lowerY, Width: r.Width, Height: half}
	return upper, lower, hinge
}

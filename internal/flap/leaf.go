package flap

import "time"

// ────────────────────────────────────────────────────────────
// Collaborators provided by the host rendering stack
// ────────────────────────────────────────────────────────────

// Anchor says which half of a tile a leaf occupies. A top leaf hinges on
// its lower edge, a bottom leaf on its upper edge; both edges lie on the
// tile's center line.
type Anchor int

const (
	AnchorTop Anchor = iota
	AnchorBottom
)

func (a Anchor) String() string {
	if a == AnchorBottom {
		return "bottom"
	}
	return "top"
}

// Curve identifies a timing curve implemented by the host.
type Curve int

const (
	CurveLinear Curve = iota
	CurveEaseIn
	CurveEaseOut
)

// FoldAnimation describes one rotation of a leaf about its hinge. A new
// value is built for every flip and never mutated afterwards.
type FoldAnimation struct {
	From        float64 // degrees; 0 is flat, -90 folded away, +90 folded under
	To          float64
	Begin       time.Time
	Duration    time.Duration
	Curve       Curve
	Perspective float64

	// Done is called once when the animation reaches To. Nil for the top phase.
	Done func()
}

// End is the instant the animation finishes.
func (a FoldAnimation) End() time.Time {
	return a.Begin.Add(a.Duration)
}

// Leaf is a passive half-tile. It draws a symbol and runs at most one fold
// animation at a time.
type Leaf interface {
	SetSymbol(t Token)
	// RunFold replaces any animation already attached to the leaf.
	RunFold(a FoldAnimation)
	// CancelAnimation drops the attached animation without calling Done.
	CancelAnimation()
	BringToFront()
}

// Clock is the host animation timeline.
type Clock interface {
	Now() time.Time
}

package render

import (
	"math"
	"time"

	"github.com/Mr-Dark-debug/flapboard/internal/flap"
)

// Timeline is the host animation clock. It owns every leaf created through
// NewLeaf, samples their rotations at its current instant and fires
// completions as time advances.
type Timeline struct {
	now    time.Time
	leaves []*Leaf
	z      uint64
}

// NewTimeline starts a timeline at start.
func NewTimeline(start time.Time) *Timeline {
	return &Timeline{now: start}
}

// Now implements flap.Clock.
func (t *Timeline) Now() time.Time {
	return t.now
}

// NewLeaf creates a flat, blank leaf driven by t.
func (t *Timeline) NewLeaf(anchor flap.Anchor) *Leaf {
	l := &Leaf{tl: t, anchor: anchor}
	t.leaves = append(t.leaves, l)
	return l
}

// Advance moves the clock to now and fires every completion that falls due
// on the way, earliest first. While a completion runs the clock reads the
// animation's end instant, so a flip chained from it begins exactly there.
// It returns the number of completions fired.
func (t *Timeline) Advance(now time.Time) int {
	if now.Before(t.now) {
		now = t.now
	}

	fired := 0
	for {
		l := t.nextDue(now)
		if l == nil {
			break
		}
		if end := l.anim.End(); end.After(t.now) {
			t.now = end
		}
		l.fired = true
		l.anim.Done()
		fired++
	}

	t.now = now
	return fired
}

// Active reports whether any leaf is mid-rotation or waiting to complete.
func (t *Timeline) Active() bool {
	for _, l := range t.leaves {
		if l.anim == nil {
			continue
		}
		if l.anim.Done != nil && !l.fired {
			return true
		}
		if t.now.Before(l.anim.End()) {
			return true
		}
	}
	return false
}

func (t *Timeline) nextDue(now time.Time) *Leaf {
	var due *Leaf
	for _, l := range t.leaves {
		if l.anim == nil || l.anim.Done == nil || l.fired {
			continue
		}
		end := l.anim.End()
		if end.After(now) {
			continue
		}
		if due == nil || end.Before(due.anim.End()) {
			due = l
		}
	}
	return due
}

// Leaf is a terminal half-tile. It implements flap.Leaf.
type Leaf struct {
	tl     *Timeline
	anchor flap.Anchor
	symbol flap.Token
	z      uint64
	anim   *flap.FoldAnimation
	fired  bool
}

// SetSymbol changes the token drawn on the leaf.
func (l *Leaf) SetSymbol(t flap.Token) { l.symbol = t }

// RunFold attaches a, replacing any held animation. The leaf keeps
// showing a.To after it ends until the animation is cancelled.
func (l *Leaf) RunFold(a flap.FoldAnimation) {
	l.anim = &a
	l.fired = false
}

// CancelAnimation returns the leaf to flat without completing.
func (l *Leaf) CancelAnimation() {
	l.anim = nil
	l.fired = false
}

// BringToFront draws the leaf above every leaf raised before it.
func (l *Leaf) BringToFront() {
	l.tl.z++
	l.z = l.tl.z
}

// Symbol returns the drawn token.
func (l *Leaf) Symbol() flap.Token { return l.symbol }

// Anchor returns the half the leaf occupies.
func (l *Leaf) Anchor() flap.Anchor { return l.anchor }

// Z returns the draw order; higher is drawn later.
func (l *Leaf) Z() uint64 { return l.z }

// Angle samples the rotation in degrees at the timeline's instant. Before
// its begin time an animation holds its start angle.
func (l *Leaf) Angle() float64 {
	a := l.anim
	if a == nil {
		return 0
	}
	now := l.tl.now
	if now.Before(a.Begin) {
		return a.From
	}
	if a.Duration <= 0 || !now.Before(a.End()) {
		return a.To
	}
	p := float64(now.Sub(a.Begin)) / float64(a.Duration)
	return a.From + (a.To-a.From)*Ease(a.Curve, p)
}

// Perspective returns the depth factor of the held animation.
func (l *Leaf) Perspective() float64 {
	if l.anim == nil {
		return 0
	}
	return l.anim.Perspective
}

// Ease maps linear progress p in [0,1] through curve c.
func Ease(c flap.Curve, p float64) float64 {
	p = math.Max(0, math.Min(1, p))
	switch c {
	case flap.CurveEaseIn:
		return p * p
	case flap.CurveEaseOut:
		return 1 - (1-p)*(1-p)
	default:
		return p
	}
}

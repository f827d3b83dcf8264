package flap

import (
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

// fakeLeaf records what the orchestrator asks of a leaf.
type fakeLeaf struct {
	symbol  Token
	anim    *FoldAnimation
	fired   bool
	runs    int
	cancels int
	raises  int
}

func (l *fakeLeaf) SetSymbol(t Token) { l.symbol = t }

func (l *fakeLeaf) RunFold(a FoldAnimation) {
	l.anim = &a
	l.fired = false
	l.runs++
}

func (l *fakeLeaf) CancelAnimation() {
	l.anim = nil
	l.fired = false
	l.cancels++
}

func (l *fakeLeaf) BringToFront() { l.raises++ }

// rig is one flap wired to fake leaves.
type rig struct {
	clock  *fakeClock
	leaves [2][2]*fakeLeaf // [set][half]
	pair   *TilePair
	orch   *Orchestrator
	seen   []Transition
}

func newRig(t *testing.T, vocab []Token, cfg Config) *rig {
	t.Helper()
	r := &rig{clock: &fakeClock{now: time.Unix(1000, 0)}}
	var sets [2]LeafSet
	for s := 0; s < 2; s++ {
		for h := 0; h < 2; h++ {
			r.leaves[s][h] = &fakeLeaf{}
		}
		sets[s] = LeafSet{Top: r.leaves[s][HalfTop], Bottom: r.leaves[s][HalfBottom]}
	}
	r.pair = NewTilePair(sets[SetTic], sets[SetTac])
	r.orch = NewOrchestrator(r.pair, r.clock, cfg)
	r.orch.SetVocabulary(vocab)
	r.orch.AddObserver(ObserverFunc(func(tr Transition) {
		r.seen = append(r.seen, tr)
	}))
	return r
}

func tokens(ss ...string) []Token {
	out := make([]Token, len(ss))
	for i, s := range ss {
		out[i] = Token(s)
	}
	return out
}

// pending returns the leaf holding an unfired completion, if any.
func (r *rig) pending() *fakeLeaf {
	for s := 0; s < 2; s++ {
		for h := 0; h < 2; h++ {
			l := r.leaves[s][h]
			if l.anim != nil && l.anim.Done != nil && !l.fired {
				return l
			}
		}
	}
	return nil
}

// animating counts leaves that hold an animation.
func (r *rig) animating() int {
	n := 0
	for s := 0; s < 2; s++ {
		for h := 0; h < 2; h++ {
			if r.leaves[s][h].anim != nil {
				n++
			}
		}
	}
	return n
}

// finish moves the clock to the end of the pending bottom phase and fires
// its completion. It reports false when nothing was pending.
func (r *rig) finish() bool {
	l := r.pending()
	if l == nil {
		return false
	}
	r.clock.now = l.anim.End()
	l.fired = true
	l.anim.Done()
	return true
}

// runToIdle completes flips until none is pending, up to limit.
func (r *rig) runToIdle(t *testing.T, limit int) int {
	t.Helper()
	n := 0
	for r.finish() {
		n++
		if n > limit {
			t.Fatalf("still flipping after %d flips", limit)
		}
	}
	return n
}

func (r *rig) kinds(k TransitionKind) []Transition {
	var out []Transition
	for _, tr := range r.seen {
		if tr.Kind == k {
			out = append(out, tr)
		}
	}
	return out
}

func (r *rig) totalRuns() int {
	n := 0
	for s := 0; s < 2; s++ {
		for h := 0; h < 2; h++ {
			n += r.leaves[s][h].runs
		}
	}
	return n
}

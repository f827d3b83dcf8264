package flap

// ActiveSet names one of the two leaf buffers of a tile.
type ActiveSet int

const (
	SetTic ActiveSet = iota
	SetTac
)

// Other returns the opposite buffer.
func (s ActiveSet) Other() ActiveSet {
	return 1 - s
}

func (s ActiveSet) String() string {
	if s == SetTac {
		return "tac"
	}
	return "tic"
}

// Half is the upper or lower half of a tile.
type Half int

const (
	HalfTop Half = iota
	HalfBottom
)

// LeafSet is one buffer: a top and a bottom leaf.
type LeafSet struct {
	Top    Leaf
	Bottom Leaf
}

func (ls LeafSet) leaf(h Half) Leaf {
	if h == HalfBottom {
		return ls.Bottom
	}
	return ls.Top
}

// TilePair double-buffers the leaves of one tile. The back set receives
// the next symbol while hidden; the front set shows the settled symbol.
//
// The pair is the only owner of the back/front role. Draw order is kept per
// half because mid-flip the top half shows the front set on top while the
// bottom half already shows the back set on top.
type TilePair struct {
	sets  [2]LeafSet
	back  ActiveSet
	onTop [2]ActiveSet
	swaps int
}

// NewTilePair builds a pair with tic as the initial back set.
func NewTilePair(tic, tac LeafSet) *TilePair {
	return &TilePair{
		sets:  [2]LeafSet{tic, tac},
		back:  SetTic,
		onTop: [2]ActiveSet{SetTac, SetTac},
	}
}

// BackSet returns the buffer that receives the next symbol.
func (p *TilePair) BackSet() ActiveSet { return p.back }

// FrontSet returns the buffer currently showing the settled symbol.
func (p *TilePair) FrontSet() ActiveSet { return p.back.Other() }

// Back returns the leaves of the back set.
func (p *TilePair) Back() LeafSet { return p.Set(p.back) }

// Front returns the leaves of the front set.
func (p *TilePair) Front() LeafSet { return p.Set(p.back.Other()) }

// Set returns the leaves of s.
func (p *TilePair) Set(s ActiveSet) LeafSet { return p.sets[s] }

// Raise brings the h-half leaf of s above the other set's leaf.
func (p *TilePair) Raise(h Half, s ActiveSet) {
	p.sets[s].leaf(h).BringToFront()
	p.onTop[h] = s
}

// OnTop returns the set drawn on top in half h.
func (p *TilePair) OnTop(h Half) ActiveSet {
	return p.onTop[h]
}

// Swap exchanges the back and front roles.
func (p *TilePair) Swap() {
	p.back = p.back.Other()
	p.swaps++
}

// Swaps returns how many times the roles have been exchanged.
func (p *TilePair) Swaps() int {
	return p.swaps
}

// CancelAll cancels the animations of all four leaves.
func (p *TilePair) CancelAll() {
	for _, ls := range p.sets {
		ls.Top.CancelAnimation()
		ls.Bottom.CancelAnimation()
	}
}

package render

import (
	"math"
	"sort"
	"strings"

	"github.com/Mr-Dark-debug/flapboard/internal/flap"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/ansi"
)

// Shades is the number of lighting steps a leaf passes through as it
// turns away from the viewer.
const Shades = 4

// Theme holds the styles a tile is painted with. Index 0 is a flat leaf,
// Shades-1 a leaf seen almost edge on.
type Theme struct {
	Face  [Shades]lipgloss.Style
	Ink   [Shades]lipgloss.Style
	Hinge lipgloss.Style
}

// DefaultTheme is a dark board with pale characters.
func DefaultTheme() Theme {
	faces := [Shades]string{"#1C1C1C", "#161616", "#101010", "#0A0A0A"}
	inks := [Shades]string{"#F5F5F0", "#C8C8C0", "#8E8E88", "#5A5A56"}
	var th Theme
	for i := 0; i < Shades; i++ {
		th.Face[i] = lipgloss.NewStyle().Background(lipgloss.Color(faces[i]))
		th.Ink[i] = lipgloss.NewStyle().
			Foreground(lipgloss.Color(inks[i])).
			Background(lipgloss.Color(faces[i]))
	}
	th.Hinge = lipgloss.NewStyle().Foreground(lipgloss.Color("#000000"))
	return th
}

// Tile is one flap on screen: two leaf sets and the pair that tracks which
// of them is in front.
type Tile struct {
	leaves [2][2]*Leaf // [set][half]
	pair   *flap.TilePair
}

// NewTile creates a tile whose leaves are driven by tl.
func NewTile(tl *Timeline) *Tile {
	t := &Tile{}
	var sets [2]flap.LeafSet
	for s := range sets {
		t.leaves[s][flap.HalfTop] = tl.NewLeaf(flap.AnchorTop)
		t.leaves[s][flap.HalfBottom] = tl.NewLeaf(flap.AnchorBottom)
		sets[s] = flap.LeafSet{
			Top:    t.leaves[s][flap.HalfTop],
			Bottom: t.leaves[s][flap.HalfBottom],
		}
	}
	t.pair = flap.NewTilePair(sets[flap.SetTic], sets[flap.SetTac])
	return t
}

// Pair returns the tile's pair for an orchestrator to drive.
func (t *Tile) Pair() *flap.TilePair { return t.pair }

// Leaf returns the leaf of set s in half h.
func (t *Tile) Leaf(s flap.ActiveSet, h flap.Half) *Leaf { return t.leaves[s][h] }

// View paints the tile into a width×height block. Each half paints its
// leaves in draw order; a rotating leaf is squeezed toward the centre line
// by the cosine of its angle, narrowed at its free edge by perspective and
// darkened by the sine.
func (t *Tile) View(width, height int, th Theme) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	upper, lower, hinge := flap.SplitHalves(flap.Rect{Width: width, Height: height})

	canvas := make([][]cell, height)
	for y := range canvas {
		canvas[y] = make([]cell, width)
		for x := range canvas[y] {
			canvas[y][x] = blankCell()
		}
	}

	for _, h := range []flap.Half{flap.HalfTop, flap.HalfBottom} {
		r := upper
		if h == flap.HalfBottom {
			r = lower
		}
		for _, l := range t.ordered(h) {
			paintLeaf(canvas, l, r)
		}
	}

	rows := make([]string, height)
	for y := range canvas {
		if y == hinge {
			rows[y] = th.Hinge.Render(strings.Repeat("─", width))
			continue
		}
		rows[y] = renderRow(canvas[y], th)
	}
	return strings.Join(rows, "\n")
}

// ordered returns the two leaves of half h, lowest first.
func (t *Tile) ordered(h flap.Half) []*Leaf {
	ls := []*Leaf{t.Leaf(flap.SetTic, h), t.Leaf(flap.SetTac, h)}
	sort.SliceStable(ls, func(i, j int) bool { return ls[i].Z() < ls[j].Z() })
	return ls
}

func paintLeaf(canvas [][]cell, l *Leaf, r flap.Rect) {
	half := r.Height
	if half <= 0 {
		return
	}
	rad := l.Angle() * math.Pi / 180
	k := int(math.Round(float64(half) * math.Abs(math.Cos(rad))))
	if k <= 0 {
		return
	}
	tilt := math.Abs(math.Sin(rad))
	shade := int(math.Round(tilt * float64(Shades-1)))
	depth := l.Perspective() * tilt

	src := face(l.Symbol(), r.Width, 2*half)
	for i := 0; i < k; i++ {
		var dy, sy int
		var far float64
		if l.Anchor() == flap.AnchorTop {
			// Hinged at the centre line; the upper edge is free.
			dy = r.Y + half - k + i
			sy = i * half / k
			far = 1 - float64(i)/float64(k)
		} else {
			dy = r.Y + i
			sy = half + i*half/k
			far = float64(i+1) / float64(k)
		}

		inset := int(math.Round(far * depth * float64(r.Width) / 2))
		span := r.Width - 2*inset
		if span <= 0 {
			continue
		}
		for c := 0; c < span; c++ {
			sc := src[sy][c*r.Width/span]
			if span < r.Width {
				switch {
				case sc.s == "":
					sc.s = " "
				case ansi.PrintableRuneWidth(sc.s) > 1:
					sc.s = "▒"
				}
			}
			sc.shade = shade
			canvas[dy][inset+c] = sc
		}
	}
}

func renderRow(row []cell, th Theme) string {
	var b strings.Builder
	i := 0
	for i < len(row) {
		j := i
		var run strings.Builder
		for j < len(row) && row[j].ink == row[i].ink && row[j].shade == row[i].shade {
			run.WriteString(row[j].s)
			j++
		}
		style := th.Face[clampShade(row[i].shade)]
		if row[i].ink {
			style = th.Ink[clampShade(row[i].shade)]
		}
		b.WriteString(style.Render(run.String()))
		i = j
	}
	return b.String()
}

func clampShade(s int) int {
	if s < 0 {
		return 0
	}
	if s >= Shades {
		return Shades - 1
	}
	return s
}

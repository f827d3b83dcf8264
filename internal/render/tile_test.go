package render

import (
	"strings"
	"testing"
	"time"

	"github.com/Mr-Dark-debug/flapboard/internal/flap"
	"github.com/muesli/reflow/ansi"
)

const (
	tileW = 7
	tileH = 9
)

func snapped(t *testing.T, tok flap.Token) []string {
	t.Helper()
	_, tile, orch := newFlap(t, "ABCDE")
	orch.DisplayToken(flap.Ptr(tok), 0)
	return strings.Split(tile.View(tileW, tileH, DefaultTheme()), "\n")
}

func TestGlyphsAreRectangular(t *testing.T) {
	for r, g := range glyphs {
		for i, line := range g {
			if len(line) != GlyphWidth {
				t.Errorf("glyph %q row %d has width %d", r, i, len(line))
			}
		}
	}
	if _, ok := Glyph('q'); !ok {
		t.Error("lower-case letters should resolve")
	}
	if _, ok := Glyph('€'); ok {
		t.Error("euro sign has no glyph")
	}
}

func TestBannerWidth(t *testing.T) {
	tests := []struct {
		tok  flap.Token
		want int
	}{
		{"A", 5},
		{"13", 11},
		{"", 0},
		{"A€", 0},
	}
	for _, tt := range tests {
		if got := BannerWidth(tt.tok); got != tt.want {
			t.Errorf("BannerWidth(%q) = %d, want %d", tt.tok, got, tt.want)
		}
	}
}

func TestFaceCompactFallback(t *testing.T) {
	rows := face("AB", 5, 2)
	if got := joinCells(rows[0]); got != " AB  " {
		t.Errorf("expected centred text, got %q", got)
	}
	if got := joinCells(rows[1]); got != "     " {
		t.Errorf("second row should be blank, got %q", got)
	}

	wide := face("日", 4, 1)
	got := joinCells(wide[0])
	if got != " 日 " {
		t.Errorf("expected wide rune centred, got %q", got)
	}
	if w := ansi.PrintableRuneWidth(got); w != 4 {
		t.Errorf("wide face should keep width 4, got %d", w)
	}
}

func joinCells(cs []cell) string {
	var b strings.Builder
	for _, c := range cs {
		b.WriteString(c.s)
	}
	return b.String()
}

func TestTileViewFlat(t *testing.T) {
	rows := snapped(t, "B")
	if len(rows) != tileH {
		t.Fatalf("expected %d rows, got %d", tileH, len(rows))
	}
	for i, row := range rows {
		if w := ansi.PrintableRuneWidth(row); w != tileW {
			t.Errorf("row %d has width %d", i, w)
		}
	}
	if !strings.Contains(rows[4], "───────") {
		t.Errorf("odd height should draw a hinge row, got %q", rows[4])
	}
	if !strings.Contains(rows[0], "█") || !strings.Contains(rows[8], "█") {
		t.Error("glyph should cover both halves")
	}
}

func TestTileViewMidFlip(t *testing.T) {
	a := snapped(t, "A")
	b := snapped(t, "B")

	tl, tile, orch := newFlap(t, "ABCDE")
	orch.DisplayToken(flap.Ptr("A"), 0)
	orch.DisplayToken(flap.Ptr("B"), time.Second)

	// The top leaf is edge on: the new upper half is exposed while the
	// old lower half is still covered.
	tl.Advance(epoch.Add(750 * time.Millisecond))
	rows := strings.Split(tile.View(tileW, tileH, DefaultTheme()), "\n")
	for y := 0; y < 4; y++ {
		if rows[y] != b[y] {
			t.Errorf("upper row %d: expected %q, got %q", y, b[y], rows[y])
		}
	}
	for y := 5; y < tileH; y++ {
		if rows[y] != a[y] {
			t.Errorf("lower row %d: expected %q, got %q", y, a[y], rows[y])
		}
	}

	tl.Advance(epoch.Add(900 * time.Millisecond))
	rows = strings.Split(tile.View(tileW, tileH, DefaultTheme()), "\n")
	for i, row := range rows {
		if w := ansi.PrintableRuneWidth(row); w != tileW {
			t.Errorf("mid-fold row %d has width %d", i, w)
		}
	}

	tl.Advance(epoch.Add(2 * time.Second))
	rows = strings.Split(tile.View(tileW, tileH, DefaultTheme()), "\n")
	for y := range rows {
		if rows[y] != b[y] {
			t.Errorf("settled row %d: expected %q, got %q", y, b[y], rows[y])
		}
	}
}

func TestTileViewTinyBlocks(t *testing.T) {
	_, tile, orch := newFlap(t, "ABCDE")
	orch.DisplayToken(flap.Ptr("C"), 0)

	if got := tile.View(0, 5, DefaultTheme()); got != "" {
		t.Errorf("zero width should render nothing, got %q", got)
	}
	rows := strings.Split(tile.View(3, 2, DefaultTheme()), "\n")
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if !strings.Contains(rows[0], "C") {
		t.Errorf("compact tile should show the token, got %q", rows[0])
	}
}

func TestTileDrawOrder(t *testing.T) {
	_, tile, orch := newFlap(t, "ABCDE")
	orch.DisplayToken(flap.Ptr("A"), 0)
	orch.DisplayToken(flap.Ptr("B"), time.Second)

	pair := tile.Pair()
	back, front := pair.BackSet(), pair.FrontSet()
	for _, s := range []flap.ActiveSet{back, front} {
		ls := pair.Set(s)
		if ls.Top != flap.Leaf(tile.Leaf(s, flap.HalfTop)) || ls.Bottom != flap.Leaf(tile.Leaf(s, flap.HalfBottom)) {
			t.Errorf("%v: tile and pair disagree on the leaves", s)
		}
		if tile.Leaf(s, flap.HalfTop).Anchor() != flap.AnchorTop || tile.Leaf(s, flap.HalfBottom).Anchor() != flap.AnchorBottom {
			t.Errorf("%v: leaves anchored to the wrong half", s)
		}
	}

	// The old upper half folds down over the new one; the new lower half
	// unfolds over the old one.
	if tile.Leaf(front, flap.HalfTop).Z() <= tile.Leaf(back, flap.HalfTop).Z() {
		t.Error("front top leaf should be drawn above the back top leaf")
	}
	if tile.Leaf(back, flap.HalfBottom).Z() <= tile.Leaf(front, flap.HalfBottom).Z() {
		t.Error("back bottom leaf should be drawn above the front bottom leaf")
	}
	if got := tile.Leaf(back, flap.HalfTop).Symbol(); got != "B" {
		t.Errorf("back set should carry B, got %q", got)
	}
	if got := tile.Leaf(front, flap.HalfBottom).Symbol(); got != "A" {
		t.Errorf("front set should still show A, got %q", got)
	}
}

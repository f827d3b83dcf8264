package render

import (
	"unicode"

	"github.com/Mr-Dark-debug/flapboard/internal/flap"
	"github.com/muesli/reflow/ansi"
)

const (
	GlyphWidth  = 5
	GlyphHeight = 7
	glyphGap    = 1
)

// ────────────────────────────────────────────────────────────
// Glyphs
// ────────────────────────────────────────────────────────────

var glyphs = map[rune][GlyphHeight]string{
	' ':  {"     ", "     ", "     ", "     ", "     ", "     ", "     "},
	'A':  {" ### ", "#   #", "#   #", "#####", "#   #", "#   #", "#   #"},
	'B':  {"#### ", "#   #", "#   #", "#### ", "#   #", "#   #", "#### "},
	'C':  {" ### ", "#   #", "#    ", "#    ", "#    ", "#   #", " ### "},
	'D':  {"#### ", "#   #", "#   #", "#   #", "#   #", "#   #", "#### "},
	'E':  {"#####", "#    ", "#    ", "#### ", "#    ", "#    ", "#####"},
	'F':  {"#####", "#    ", "#    ", "#### ", "#    ", "#    ", "#    "},
	'G':  {" ### ", "#   #", "#    ", "# ###", "#   #", "#   #", " ####"},
	'H':  {"#   #", "#   #", "#   #", "#####", "#   #", "#   #", "#   #"},
	'I':  {" ### ", "  #  ", "  #  ", "  #  ", "  #  ", "  #  ", " ### "},
	'J':  {"  ###", "   # ", "   # ", "   # ", "   # ", "#  # ", " ##  "},
	'K':  {"#   #", "#  # ", "# #  ", "##   ", "# #  ", "#  # ", "#   #"},
	'L':  {"#    ", "#    ", "#    ", "#    ", "#    ", "#    ", "#####"},
	'M':  {"#   #", "## ##", "# # #", "# # #", "#   #", "#   #", "#   #"},
	'N':  {"#   #", "#   #", "##  #", "# # #", "#  ##", "#   #", "#   #"},
	'O':  {" ### ", "#   #", "#   #", "#   #", "#   #", "#   #", " ### "},
	'P':  {"#### ", "#   #", "#   #", "#### ", "#    ", "#    ", "#    "},
	'Q':  {" ### ", "#   #", "#   #", "#   #", "# # #", "#  # ", " ## #"},
	'R':  {"#### ", "#   #", "#   #", "#### ", "# #  ", "#  # ", "#   #"},
	'S':  {" ####", "#    ", "#    ", " ### ", "    #", "    #", "#### "},
	'T':  {"#####", "  #  ", "  #  ", "  #  ", "  #  ", "  #  ", "  #  "},
	'U':  {"#   #", "#   #", "#   #", "#   #", "#   #", "#   #", " ### "},
	'V':  {"#   #", "#   #", "#   #", "#   #", "#   #", " # # ", "  #  "},
	'W':  {"#   #", "#   #", "#   #", "# # #", "# # #", "# # #", " # # "},
	'X':  {"#   #", "#   #", " # # ", "  #  ", " # # ", "#   #", "#   #"},
	'Y':  {"#   #", "#   #", " # # ", "  #  ", "  #  ", "  #  ", "  #  "},
	'Z':  {"#####", "    #", "   # ", "  #  ", " #   ", "#    ", "#####"},
	'0':  {" ### ", "#   #", "#  ##", "# # #", "##  #", "#   #", " ### "},
	'1':  {"  #  ", " ##  ", "  #  ", "  #  ", "  #  ", "  #  ", " ### "},
	'2':  {" ### ", "#   #", "    #", "   # ", "  #  ", " #   ", "#####"},
	'3':  {"#####", "   # ", "  #  ", "   # ", "    #", "#   #", " ### "},
	'4':  {"   # ", "  ## ", " # # ", "#  # ", "#####", "   # ", "   # "},
	'5':  {"#####", "#    ", "#### ", "    #", "    #", "#   #", " ### "},
	'6':  {"  ## ", " #   ", "#    ", "#### ", "#   #", "#   #", " ### "},
	'7':  {"#####", "    #", "   # ", "  #  ", " #   ", " #   ", " #   "},
	'8':  {" ### ", "#   #", "#   #", " ### ", "#   #", "#   #", " ### "},
	'9':  {" ### ", "#   #", "#   #", " ####", "    #", "   # ", " ##  "},
	'.':  {"     ", "     ", "     ", "     ", "     ", " ##  ", " ##  "},
	',':  {"     ", "     ", "     ", "     ", " ##  ", "  #  ", " #   "},
	':':  {"     ", " ##  ", " ##  ", "     ", " ##  ", " ##  ", "     "},
	'-':  {"     ", "     ", "     ", "#####", "     ", "     ", "     "},
	'/':  {"     ", "    #", "   # ", "  #  ", " #   ", "#    ", "     "},
	'!':  {"  #  ", "  #  ", "  #  ", "  #  ", "  #  ", "     ", "  #  "},
	'?':  {" ### ", "#   #", "    #", "   # ", "  #  ", "     ", "  #  "},
	'\'': {"  #  ", "  #  ", " #   ", "     ", "     ", "     ", "     "},
}

// Glyph returns the bitmap for r. Lower-case letters share the upper-case
// bitmaps.
func Glyph(r rune) ([GlyphHeight]string, bool) {
	g, ok := glyphs[unicode.ToUpper(r)]
	return g, ok
}

// BannerWidth returns the columns a token needs in glyph form, or 0 when
// some rune has no glyph.
func BannerWidth(t flap.Token) int {
	n := 0
	for _, r := range string(t) {
		if _, ok := Glyph(r); !ok {
			return 0
		}
		n++
	}
	if n == 0 {
		return 0
	}
	return n*GlyphWidth + (n-1)*glyphGap
}

// ────────────────────────────────────────────────────────────
// Faces
// ────────────────────────────────────────────────────────────

// cell is one terminal column of a painted face. An empty s marks the
// trailing column of a wide rune.
type cell struct {
	s     string
	ink   bool
	shade int
}

func blankCell() cell { return cell{s: " "} }

// face lays t out on a rows×width canvas, glyphs when they fit and the
// raw token text on the centre row otherwise.
func face(t flap.Token, width, rows int) [][]cell {
	canvas := make([][]cell, rows)
	for y := range canvas {
		canvas[y] = make([]cell, width)
		for x := range canvas[y] {
			canvas[y][x] = blankCell()
		}
	}
	if width <= 0 || rows <= 0 || t == "" {
		return canvas
	}

	if bw := BannerWidth(t); bw > 0 && bw <= width && GlyphHeight <= rows {
		x0 := (width - bw) / 2
		y0 := (rows - GlyphHeight) / 2
		for _, r := range string(t) {
			g, _ := Glyph(r)
			for gy, line := range g {
				for gx, px := range line {
					if px == '#' {
						canvas[y0+gy][x0+gx] = cell{s: "█", ink: true}
					}
				}
			}
			x0 += GlyphWidth + glyphGap
		}
		return canvas
	}

	y := (rows - 1) / 2
	tw := ansi.PrintableRuneWidth(string(t))
	x := 0
	if tw < width {
		x = (width - tw) / 2
	}
	for _, r := range string(t) {
		w := ansi.PrintableRuneWidth(string(r))
		if w == 0 {
			continue
		}
		if x+w > width {
			break
		}
		canvas[y][x] = cell{s: string(r), ink: true}
		for i := 1; i < w; i++ {
			canvas[y][x+i] = cell{}
		}
		x += w
	}
	return canvas
}

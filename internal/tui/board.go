package tui

import (
	"math"
	"strings"

	"github.com/Mr-Dark-debug/flapboard/internal/render"
	"github.com/charmbracelet/lipgloss"
)

// ────────────────────────────────────────────────────────────
// Board layout
// ────────────────────────────────────────────────────────────

const (
	tileGap       = 1
	minTileWidth  = 3
	minTileHeight = 3
	tileMargin    = 2
)

// layout is the tile grid chosen for the current window.
type layout struct {
	tileW  int
	tileH  int
	perRow int
	rows   int
}

// computeLayout picks the row count that gives n tiles the most room in
// a width×height area. A tile's room is measured in glyphs of bannerW
// columns, whichever of its two sides is tighter. Tiles never grow much
// beyond the proportions of the glyph they hold.
func computeLayout(width, height, n, bannerW int) layout {
	if n <= 0 {
		return layout{}
	}
	wantW := float64(bannerW + tileMargin)
	wantH := float64(render.GlyphHeight + tileMargin)

	best := layout{
		tileW:  maxInt(1, (width-(n-1)*tileGap)/n),
		tileH:  maxInt(1, height),
		perRow: n,
		rows:   1,
	}
	bestScore := -1.0
	for rows := 1; rows <= n; rows++ {
		perRow := (n + rows - 1) / rows
		w := (width - (perRow-1)*tileGap) / perRow
		h := (height - (rows-1)*tileGap) / rows
		if w < minTileWidth || h < minTileHeight {
			continue
		}
		score := math.Min(float64(w)/wantW, float64(h)/wantH)
		if score > bestScore {
			bestScore = score
			best = layout{tileW: w, tileH: h, perRow: perRow, rows: rows}
		}
	}
	if bestScore < 0 {
		return best
	}

	maxW := int(math.Ceil(float64(best.tileH) * wantW / wantH))
	maxH := int(math.Ceil(float64(best.tileW) * wantH / wantW))
	best.tileW = minInt(best.tileW, maxInt(maxW, minTileWidth))
	best.tileH = minInt(best.tileH, maxInt(maxH, minTileHeight))
	return best
}

// renderBoard draws every tile on the grid, centred in width×height.
func renderBoard(m *Model, width, height int) string {
	l := m.layout
	if l.perRow == 0 || width <= 0 || height <= 0 {
		return ""
	}

	gap := strings.Repeat(" ", tileGap)
	var rows []string
	for start := 0; start < len(m.tiles); start += l.perRow {
		end := minInt(start+l.perRow, len(m.tiles))

		var cells []string
		for i := start; i < end; i++ {
			if i > start {
				cells = append(cells, gap)
			}
			cells = append(cells, m.tiles[i].View(l.tileW, l.tileH, m.theme))
		}
		if len(rows) > 0 {
			rows = append(rows, strings.Repeat("\n", tileGap-1))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	grid := lipgloss.JoinVertical(lipgloss.Center, rows...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, grid)
}

package tui

import (
	rtruncate "github.com/muesli/reflow/truncate"
)

// ────────────────────────────────────────────────────────────
// String helpers
// ────────────────────────────────────────────────────────────

// truncate cuts s to width cells, ANSI sequences included, and appends
// "…" if it had to cut.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return rtruncate.StringWithTail(s, uint(width), "…")
}

// maxInt returns the larger of a and b.
func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// minInt returns the smaller of a and b.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

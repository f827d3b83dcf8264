// Package render draws flaps in a terminal.
//
// A Timeline is the animation host: it implements flap.Clock, creates the
// Leaf values an orchestrator drives and, on every Advance, fires fold
// completions in end-time order. A Tile groups four leaves with their
// flap.TilePair and projects the current rotation of each leaf onto a
// character grid.
package render

// Package tui implements the flapboard terminal user interface.
//
// The board is a row (or grid) of split-flap tiles drawn with lipgloss and
// driven by a BubbleTea frame loop that only runs while flaps are moving.
//
// Component architecture:
//
//	model.go    root model, message routing, Init/Update, board actions
//	theme.go    centralized color + style definitions
//	header.go   top bar with board context, status line + keyboard hints
//	board.go    tile grid layout and rendering
//	activity.go recent transitions panel
//	helpers.go  truncation and integer helpers
package tui

package tui

import (
	"github.com/Mr-Dark-debug/flapboard/internal/render"
	"github.com/charmbracelet/lipgloss"
)

// ────────────────────────────────────────────────────────────
// Color Palette
// ────────────────────────────────────────────────────────────
//
// All colors are defined here. No ad-hoc color literals anywhere.
// The tiles use a warmer ramp than the chrome so the board reads as
// the object on screen and the bars as furniture around it.

var (
	// Base
	colorBg        = lipgloss.Color("#0d1117")
	colorBgSurface = lipgloss.Color("#1c2128")

	// Text
	colorText      = lipgloss.Color("#e6edf3")
	colorTextDim   = lipgloss.Color("#8b949e")
	colorTextMuted = lipgloss.Color("#484f58")

	// Accents
	colorBlue   = lipgloss.Color("#58a6ff")
	colorGreen  = lipgloss.Color("#3fb950")
	colorRed    = lipgloss.Color("#f85149")
	colorYellow = lipgloss.Color("#d29922")
	colorPurple = lipgloss.Color("#bc8cff")

	// Structural
	colorDivider = lipgloss.Color("#30363d")

	// Tiles, flat first
	colorTileFace = [render.Shades]lipgloss.Color{"#22272e", "#1a1e24", "#13161b", "#0b0d10"}
	colorTileInk  = [render.Shades]lipgloss.Color{"#f0e6c8", "#c9bfa3", "#8f8772", "#5c5749"}
	colorHinge    = lipgloss.Color("#010409")
)

// ────────────────────────────────────────────────────────────
// Component Styles
// ────────────────────────────────────────────────────────────

// Header bar
var (
	headerBarStyle = lipgloss.NewStyle().
			Background(colorBgSurface).
			Foreground(colorText).
			Padding(0, 1)

	headerBrandStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorBlue)

	headerSepStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	headerMetaStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	headerBusyStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	headerIdleStyle = lipgloss.NewStyle().
			Foreground(colorGreen)
)

// Activity panel
var (
	panelStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.Border{
			Top:    "─",
			Bottom: "",
			Left:   "",
			Right:  "",
		}).
		BorderForeground(colorDivider)

	panelTitleStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)

	activityTimestampStyle = lipgloss.NewStyle().
				Foreground(colorTextMuted)

	activityFlapStyle = lipgloss.NewStyle().
				Foreground(colorPurple)

	activityStepStyle = lipgloss.NewStyle().
				Foreground(colorTextDim)

	activityDoneStyle = lipgloss.NewStyle().
				Foreground(colorGreen)

	activityAbortStyle = lipgloss.NewStyle().
				Foreground(colorRed)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	emptyStateStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted).
			Padding(1, 4)
)

// Footer / status bar
var (
	statusStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorBgSurface).
			Padding(0, 1)

	statusErrorStyle = lipgloss.NewStyle().
				Foreground(colorRed).
				Background(colorBgSurface).
				Padding(0, 1)

	hintKeyStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true)

	hintDescStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)
)

// Input bar
var (
	inputBarStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorBgSurface).
			Padding(0, 1)

	inputCursorStyle = lipgloss.NewStyle().
				Background(colorBlue).
				Foreground(colorBg)
)

// tileTheme builds the tile palette from the tile colors above.
func tileTheme() render.Theme {
	var th render.Theme
	for i := 0; i < render.Shades; i++ {
		th.Face[i] = lipgloss.NewStyle().Background(colorTileFace[i])
		th.Ink[i] = lipgloss.NewStyle().
			Foreground(colorTileInk[i]).
			Background(colorTileFace[i])
	}
	th.Hinge = lipgloss.NewStyle().Foreground(colorHinge).Background(colorTileFace[0])
	return th
}

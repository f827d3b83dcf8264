package tui

import (
	"fmt"
	"strings"

	"github.com/Mr-Dark-debug/flapboard/pkg/timeutil"
	"github.com/charmbracelet/lipgloss"
)

// renderHeader produces the top bar:
//
//	FLAPBOARD  |  text  |  departures  |  flip 90ms  |  10 flaps  |  settled
func renderHeader(m *Model) string {
	brand := headerBrandStyle.Render("FLAPBOARD")
	sep := headerSepStyle.Render(" │ ")

	vocab := m.preset
	if m.mode == ModeClock {
		vocab = "clock"
		if m.cfg.TwelveHour {
			vocab = "clock 12h"
		}
	}

	flip := "snap"
	if m.duration > 0 {
		flip = "flip " + timeutil.FormatDuration(m.duration)
	}

	state := headerIdleStyle.Render("settled")
	if !m.board.Settled() {
		state = headerBusyStyle.Render("flipping")
	}

	parts := []string{
		brand,
		sep, headerMetaStyle.Render(m.mode.String()),
		sep, headerMetaStyle.Render(vocab),
		sep, headerMetaStyle.Render(flip),
		sep, headerMetaStyle.Render(fmt.Sprintf("%d flaps", m.board.Len())),
		sep, state,
	}

	content := truncate(strings.Join(parts, ""), m.width-2)
	return headerBarStyle.Width(m.width).Render(content)
}

// renderFooter produces the bottom status bar with keyboard hints.
func renderFooter(m *Model) string {
	var left, right string

	if m.inputMode {
		cursor := inputCursorStyle.Render(" ")
		left = inputBarStyle.Render(fmt.Sprintf("> %s%s", string(m.input), cursor))
		right = renderHints([]hint{
			{"enter", "flip"},
			{"esc", "cancel"},
		})
	} else {
		if m.statusMsg != "" {
			style := statusStyle
			if m.err != nil {
				style = statusErrorStyle
			}
			left = style.Render(m.statusMsg)
		}
		right = renderHints([]hint{
			{"i", "text"},
			{"c", "clock"},
			{"+/-", "speed"},
			{"s", "snap"},
			{"r", "random"},
			{"v", "vocab"},
			{"a", "activity"},
			{"q", "quit"},
		})
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		right = ""
		left = truncate(left, m.width)
		gap = m.width - lipgloss.Width(left)
	}

	bar := left + strings.Repeat(" ", gap) + right
	return lipgloss.NewStyle().
		Background(colorBgSurface).
		Width(m.width).
		Render(bar)
}

type hint struct {
	key  string
	desc string
}

func renderHints(hints []hint) string {
	var parts []string
	for _, h := range hints {
		parts = append(parts,
			hintKeyStyle.Render(h.key)+" "+hintDescStyle.Render(h.desc))
	}
	return strings.Join(parts, hintDescStyle.Render("  "))
}

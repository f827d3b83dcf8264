package tui

import (
	"fmt"
	"strings"

	"github.com/Mr-Dark-debug/flapboard/internal/flap"
)

// activityLog keeps the most recent transitions for the activity panel.
// The model holds it by pointer, so every copy of the model shares it.
type activityLog struct {
	entries []flap.Transition
	limit   int
}

func newActivityLog(limit int) *activityLog {
	return &activityLog{limit: limit}
}

// Observe implements flap.Observer. Steps are skipped; the completion of
// the same flip carries the same information.
func (a *activityLog) Observe(t flap.Transition) {
	if t.Kind == flap.TransitionStep {
		return
	}
	a.entries = append(a.entries, t)
	if over := len(a.entries) - a.limit; over > 0 {
		a.entries = append(a.entries[:0], a.entries[over:]...)
	}
}

// renderActivity renders the newest transitions that fit in height rows,
// oldest first.
func renderActivity(m *Model, width, height int) string {
	title := panelTitleStyle.Render("Activity")
	entries := m.activity.entries
	if len(entries) == 0 {
		return title + "\n" + emptyStateStyle.Render("No flips yet.")
	}

	lines := []string{title}
	contentHeight := maxInt(0, height-1)
	start := maxInt(0, len(entries)-contentHeight)

	for _, t := range entries[start:] {
		ts := activityTimestampStyle.Render(t.At.Format("15:04:05.000"))
		tag := activityFlapStyle.Render(fmt.Sprintf("#%02d", t.Flap))
		lines = append(lines, truncate(fmt.Sprintf("%s %s %s", ts, tag, describe(t)), width))
	}
	return strings.Join(lines, "\n")
}

// renderActivityPanel wraps the activity log in a panel with a top rule.
func renderActivityPanel(m *Model, width, height int) string {
	content := renderActivity(m, width-2, height-1)
	return panelStyle.Width(width).Height(height - 1).Render(content)
}

func describe(t flap.Transition) string {
	switch t.Kind {
	case flap.TransitionRequested:
		return dimStyle.Render(fmt.Sprintf("request %q from %q", t.Target, t.From))
	case flap.TransitionSnapped:
		return dimStyle.Render(fmt.Sprintf("snap %q", t.To))
	case flap.TransitionCompleted:
		return activityStepStyle.Render(fmt.Sprintf("%q → %q", t.From, t.To))
	case flap.TransitionReached:
		return activityDoneStyle.Render(fmt.Sprintf("reached %q", t.Target))
	case flap.TransitionSuperseded:
		return activityAbortStyle.Render("superseded")
	case flap.TransitionExhausted:
		return activityAbortStyle.Render(fmt.Sprintf("%q not in vocabulary", t.Target))
	default:
		return activityStepStyle.Render(t.Kind.String())
	}
}

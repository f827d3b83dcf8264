package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Mr-Dark-debug/flapboard/internal/config"
	"github.com/Mr-Dark-debug/flapboard/internal/flap"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// testClock is a wall clock the tests move by hand.
type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time { return c.t }

type harness struct {
	t   *testing.T
	clk *testClock
	m   Model
}

func newHarness(t *testing.T, mutate func(*config.Config)) *harness {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Flaps = 4
	cfg.Text = "AB"
	cfg.Journal = ""
	cfg.FlipDuration = config.Duration(50 * time.Millisecond)
	if mutate != nil {
		mutate(&cfg)
	}
	clk := &testClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	return &harness{t: t, clk: clk, m: newModel(cfg, clk.Now)}
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	h.t.Helper()
	next, cmd := h.m.Update(msg)
	m, ok := next.(Model)
	if !ok {
		h.t.Fatalf("Update returned %T", next)
	}
	h.m = m
	return cmd
}

func (h *harness) key(s string) tea.Cmd {
	h.t.Helper()
	switch s {
	case "enter":
		return h.send(tea.KeyMsg{Type: tea.KeyEnter})
	case "esc":
		return h.send(tea.KeyMsg{Type: tea.KeyEsc})
	case "backspace":
		return h.send(tea.KeyMsg{Type: tea.KeyBackspace})
	case " ":
		return h.send(tea.KeyMsg{Type: tea.KeySpace})
	}
	return h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// settle moves the clock an hour on and delivers one frame, which fires
// every flip scheduled up to then.
func (h *harness) settle() tea.Cmd {
	h.t.Helper()
	h.clk.t = h.clk.t.Add(time.Hour)
	return h.send(frameMsg(h.clk.t))
}

func (h *harness) current(i int) flap.Token {
	tok, _ := h.m.board.Flap(i).Current()
	return tok
}

func TestNewModelStartsFlipping(t *testing.T) {
	h := newHarness(t, nil)

	if !h.m.animating || h.m.Init() == nil {
		t.Fatal("the initial text should start the frame loop")
	}
	if h.m.board.Settled() {
		t.Fatal("board should be flipping before any frame")
	}

	if cmd := h.settle(); cmd != nil {
		t.Error("frame loop should stop once every flap has landed")
	}
	if h.m.animating {
		t.Error("model should record that frames stopped")
	}
	if got := h.m.board.Text(); got != "AB  " {
		t.Errorf("expected %q, got %q", "AB  ", got)
	}
}

func TestViewBeforeAndAfterResize(t *testing.T) {
	h := newHarness(t, nil)
	if got := h.m.View(); got != "Initializing..." {
		t.Errorf("expected the placeholder before a size is known, got %q", got)
	}

	h.send(tea.WindowSizeMsg{Width: 80, Height: 24})
	h.settle()

	if h.m.layout.perRow != 4 || h.m.layout.rows != 1 {
		t.Errorf("expected one row of four tiles, got %+v", h.m.layout)
	}
	view := h.m.View()
	if !strings.Contains(view, "FLAPBOARD") {
		t.Error("header is missing")
	}
	if got := lipgloss.Height(view); got != 24 {
		t.Errorf("view should fill the window, got %d rows", got)
	}

	h.key("a")
	if h.m.activityHeight() == 0 {
		t.Fatal("activity panel should be shown")
	}
	if got := lipgloss.Height(h.m.View()); got != 24 {
		t.Errorf("view with activity should still fill the window, got %d rows", got)
	}
}

func TestComputeLayout(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		n, bannerW    int
		want          layout
	}{
		{"Single row", 80, 22, 4, 5, layout{tileW: 18, tileH: 22, perRow: 4, rows: 1}},
		{"Two rows", 40, 30, 10, 5, layout{tileW: 7, tileH: 9, perRow: 5, rows: 2}},
		{"Too small", 5, 2, 3, 5, layout{tileW: 1, tileH: 2, perRow: 3, rows: 1}},
		{"No flaps", 80, 24, 0, 5, layout{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := computeLayout(tt.width, tt.height, tt.n, tt.bannerW); got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestInputFlipsBoard(t *testing.T) {
	h := newHarness(t, nil)
	h.settle()

	h.key("i")
	if !h.m.inputMode {
		t.Fatal("i should open the input bar")
	}
	h.key("HI")
	h.key(" ")
	h.key("X")
	h.key("backspace")
	h.key("backspace")
	if cmd := h.key("enter"); cmd == nil {
		t.Fatal("enter should start the frame loop")
	}
	if h.m.inputMode || h.m.text != "HI" {
		t.Fatalf("expected text %q with the input bar closed, got %q", "HI", h.m.text)
	}

	h.settle()
	if got := h.m.board.Text(); got != "HI  " {
		t.Errorf("expected %q, got %q", "HI  ", got)
	}
}

func TestInputEscKeepsText(t *testing.T) {
	h := newHarness(t, nil)
	h.settle()

	h.key("/")
	h.key("NOPE")
	h.key("esc")

	if h.m.inputMode || h.m.text != "AB" {
		t.Errorf("esc should discard the input, text is %q", h.m.text)
	}
	if h.m.board.Text() != "AB  " {
		t.Errorf("board should be unchanged, got %q", h.m.board.Text())
	}
}

func TestQuitKeys(t *testing.T) {
	h := newHarness(t, nil)
	for _, k := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
	} {
		cmd := h.send(k)
		if cmd == nil {
			t.Fatalf("%s should quit", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s should quit", k)
		}
	}

	h.key("i")
	if cmd := h.key("q"); cmd != nil {
		t.Error("q in the input bar should be typed, not quit")
	}
}

func TestDurationKeys(t *testing.T) {
	h := newHarness(t, nil)

	h.key("+")
	h.key("+")
	h.key("+")
	if h.m.duration != 80*time.Millisecond {
		t.Errorf("expected 80ms, got %v", h.m.duration)
	}

	for i := 0; i < 20; i++ {
		h.key("-")
	}
	if h.m.duration != 0 || h.m.statusMsg != "flips snap" {
		t.Errorf("duration should stop at zero, got %v (%q)", h.m.duration, h.m.statusMsg)
	}

	h.m.duration = maxDuration
	h.key("+")
	if h.m.duration != maxDuration {
		t.Errorf("duration should stop at %v, got %v", maxDuration, h.m.duration)
	}
}

func TestSnapKey(t *testing.T) {
	h := newHarness(t, nil)
	h.settle()

	h.m.text = "ZZ"
	h.key("s")

	if got := h.m.board.Text(); got != "ZZ  " {
		t.Errorf("snap should show the text at once, got %q", got)
	}
	if !h.m.board.Settled() {
		t.Error("snap should leave every flap idle")
	}
}

func TestClockMode(t *testing.T) {
	h := newHarness(t, nil)
	h.settle()

	if cmd := h.key("c"); cmd == nil {
		t.Fatal("clock mode should schedule a tick")
	}
	if h.m.mode != ModeClock {
		t.Fatalf("expected clock mode, got %v", h.m.mode)
	}
	if first := h.m.board.Flap(0).Vocabulary()[0]; first != "00" {
		t.Errorf("hour flap should use the 24h vocabulary, starts with %q", first)
	}

	at := time.Date(2026, 3, 1, 13, 45, 9, 0, time.UTC)
	if cmd := h.send(clockMsg{gen: h.m.clockGen, at: at}); cmd == nil {
		t.Error("a clock tick should schedule the next one")
	}
	h.settle()

	for i, want := range []flap.Token{"13", "45", "09", " "} {
		if got := h.current(i); got != want {
			t.Errorf("flap %d: expected %q, got %q", i, want, got)
		}
	}

	if cmd := h.send(clockMsg{gen: h.m.clockGen - 1, at: at.Add(time.Minute)}); cmd != nil {
		t.Error("ticks from an earlier clock session should be dropped")
	}

	h.key("c")
	if h.m.mode != ModeText {
		t.Fatalf("expected text mode, got %v", h.m.mode)
	}
	if !h.m.board.Flap(2).InFlight() {
		t.Error("the seconds flap should flip from 09 back to a blank")
	}
	if first := h.m.board.Flap(0).Vocabulary()[0]; first != " " {
		t.Errorf("text vocabulary should be restored, starts with %q", first)
	}
	if cmd := h.send(clockMsg{gen: h.m.clockGen, at: at}); cmd != nil {
		t.Error("ticks outside clock mode should be dropped")
	}
	h.settle()
	if got := h.m.board.Text(); got != "AB  " {
		t.Errorf("leaving clock mode should show the text again, got %q", got)
	}
}

func TestClockNeedsThreeFlaps(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Flaps = 2 })

	h.key("c")
	if h.m.mode != ModeText || h.m.err == nil {
		t.Fatalf("expected an error in text mode, got mode %v err %v", h.m.mode, h.m.err)
	}
	if !strings.Contains(h.m.statusMsg, "3 flaps") {
		t.Errorf("status should explain the problem: %q", h.m.statusMsg)
	}
}

func TestNextPreset(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantVoc  string
		wantText string
	}{
		{"Needs a blank", "12", flap.PresetAlphanumericSpace, "12  "},
		{"Fills the board", "1234", flap.PresetNumeric, "1234"},
		{"Skips numeric", "ABCD", flap.PresetAlphabetic, "ABCD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, func(c *config.Config) { c.Text = tt.text })
			h.settle()

			h.key("v")
			if h.m.preset != tt.wantVoc {
				t.Fatalf("expected %s, got %s", tt.wantVoc, h.m.preset)
			}
			want, _ := flap.Preset(tt.wantVoc)
			if first := h.m.board.Flap(3).Vocabulary()[0]; first != want[0] {
				t.Errorf("every flap should switch vocabulary, flap 3 starts with %q", first)
			}
			h.settle()
			if got := h.m.board.Text(); got != tt.wantText {
				t.Errorf("expected %q, got %q", tt.wantText, got)
			}
			if h.m.animating {
				t.Error("frames should stop once the text is showing")
			}
		})
	}

	for _, name := range textPresets() {
		if name == flap.PresetSexagesimal || strings.HasPrefix(name, "hours") {
			t.Errorf("%s is for clock digits and should be skipped", name)
		}
	}
}

func TestNextPresetKeepsVocabularyWhenNoneFits(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Text = "HI!" })
	h.settle()

	h.key("v")
	if h.m.preset != flap.PresetDepartures {
		t.Errorf("only departures has '!', switched to %s", h.m.preset)
	}
	if h.m.err == nil || !strings.Contains(h.m.statusMsg, "no other vocabulary") {
		t.Errorf("status should explain why nothing changed: %q", h.m.statusMsg)
	}
	if got := h.m.board.Text(); got != "HI! " {
		t.Errorf("board should keep showing the text, got %q", got)
	}
}

func TestTextIsUpperCased(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Text = "ab" })
	h.settle()
	if got := h.m.board.Text(); got != "AB  " {
		t.Errorf("configured text should be upper cased, got %q", got)
	}

	h.key("i")
	h.key("hi")
	if cmd := h.key("enter"); cmd == nil {
		t.Fatal("enter should start the frame loop")
	}
	if h.m.text != "HI" {
		t.Errorf("expected text %q, got %q", "HI", h.m.text)
	}
	if cmd := h.settle(); cmd != nil || h.m.animating {
		t.Error("frames should stop once every flap has landed")
	}
	if got := h.m.board.Text(); got != "HI  " {
		t.Errorf("expected %q, got %q", "HI  ", got)
	}
}

func TestUnreachableInputIsRefused(t *testing.T) {
	for _, input := range []string{"A~B", "ÉTÉ"} {
		t.Run(input, func(t *testing.T) {
			h := newHarness(t, nil)
			h.settle()

			h.key("i")
			h.key(input)
			if cmd := h.key("enter"); cmd != nil {
				t.Error("refused text must not start the frame loop")
			}
			if h.m.err == nil || h.m.text != "AB" {
				t.Errorf("expected an error with the text unchanged, got err %v text %q", h.m.err, h.m.text)
			}
			if !h.m.board.Settled() || h.m.timeline.Active() {
				t.Error("no flap should be flipping")
			}
		})
	}

	h := newHarness(t, func(c *config.Config) { c.Text = "A~" })
	if !errors.Is(h.m.err, flap.ErrUnknownToken) {
		t.Errorf("configured text outside the vocabulary should be refused, got %v", h.m.err)
	}
	if h.m.timeline.Active() {
		t.Error("refused configured text must not leave flaps cycling")
	}
}

func TestRandomText(t *testing.T) {
	h := newHarness(t, nil)
	h.settle()

	h.key("r")
	h.settle()

	if got := h.m.board.Text(); got != h.m.text {
		t.Errorf("board should show the random text %q, got %q", h.m.text, got)
	}
}

func TestActivityLog(t *testing.T) {
	log := newActivityLog(3)
	for i := 0; i < 5; i++ {
		log.Observe(flap.Transition{Kind: flap.TransitionCompleted, Flap: i})
		log.Observe(flap.Transition{Kind: flap.TransitionStep, Flap: i})
	}
	if len(log.entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(log.entries))
	}
	if log.entries[0].Flap != 2 || log.entries[2].Flap != 4 {
		t.Errorf("expected the newest entries, got flaps %d..%d", log.entries[0].Flap, log.entries[2].Flap)
	}
}

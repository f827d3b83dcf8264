package tui

import (
	"fmt"
	"log"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/Mr-Dark-debug/flapboard/internal/config"
	"github.com/Mr-Dark-debug/flapboard/internal/flap"
	"github.com/Mr-Dark-debug/flapboard/internal/render"
	"github.com/Mr-Dark-debug/flapboard/pkg/timeutil"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ────────────────────────────────────────────────────────────
// Modes
// ────────────────────────────────────────────────────────────

// Mode is what the board is showing.
type Mode int

const (
	ModeText Mode = iota
	ModeClock
)

func (m Mode) String() string {
	if m == ModeClock {
		return "clock"
	}
	return "text"
}

const (
	durationStep = 10 * time.Millisecond
	maxDuration  = 2 * time.Second

	activityRows = 8
	activityKeep = 64

	// clockFlaps are the hour, minute and second flaps.
	clockFlaps = 3
)

// ────────────────────────────────────────────────────────────
// Model
// ────────────────────────────────────────────────────────────

// Model is the root BubbleTea model for the flapboard TUI.
// The board, its tiles and the timeline are shared by pointer between
// copies of the model; rendering is delegated to component functions in
// separate files.
type Model struct {
	cfg config.Config
	now func() time.Time

	// Board
	timeline *render.Timeline
	tiles    []*render.Tile
	board    *flap.Board
	theme    render.Theme
	activity *activityLog

	// Display
	mode      Mode
	text      string
	duration  time.Duration
	preset    string
	clockGen  int
	animating bool

	// UI state
	width        int
	height       int
	layout       layout
	inputMode    bool
	input        []rune
	showActivity bool

	// Status
	statusMsg string
	err       error
}

// NewModel builds a board of cfg.Flaps tiles and starts showing cfg.Text,
// or the time when cfg.Clock is set. Observers see every transition of
// every flap.
func NewModel(cfg config.Config, observers ...flap.Observer) Model {
	return newModel(cfg, time.Now, observers...)
}

func newModel(cfg config.Config, now func() time.Time, observers ...flap.Observer) Model {
	tl := render.NewTimeline(now())
	tiles := make([]*render.Tile, cfg.Flaps)
	pairs := make([]*flap.TilePair, cfg.Flaps)
	for i := range tiles {
		tiles[i] = render.NewTile(tl)
		pairs[i] = tiles[i].Pair()
	}

	m := Model{
		cfg:      cfg,
		now:      now,
		timeline: tl,
		tiles:    tiles,
		board:    flap.NewBoard(pairs, tl, cfg.FlapConfig()),
		theme:    tileTheme(),
		activity: newActivityLog(activityKeep),
		text:     strings.ToUpper(cfg.Text),
		duration: time.Duration(cfg.FlipDuration),
		preset:   cfg.Vocabulary,
	}
	if vocab, ok := flap.Preset(cfg.Vocabulary); ok {
		m.board.SetVocabulary(vocab)
	}
	m.board.AddObserver(m.activity)
	for _, obs := range observers {
		m.board.AddObserver(obs)
	}

	if cfg.Clock {
		if err := m.enterClock(); err != nil {
			m.setError(err)
		} else {
			m.showTime(now(), m.duration)
		}
	}
	if m.mode == ModeText {
		m.apply(m.text, m.duration)
	}
	m.animating = tl.Active()
	return m
}

// ────────────────────────────────────────────────────────────
// Messages
// ────────────────────────────────────────────────────────────

type frameMsg time.Time

type clockMsg struct {
	gen int
	at  time.Time
}

// ────────────────────────────────────────────────────────────
// Init
// ────────────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.animating {
		cmds = append(cmds, m.frame())
	}
	if m.mode == ModeClock {
		cmds = append(cmds, m.clockTick())
	}
	return tea.Batch(cmds...)
}

func (m Model) frame() tea.Cmd {
	return tea.Tick(m.cfg.FrameInterval(), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m Model) clockTick() tea.Cmd {
	gen := m.clockGen
	return tea.Every(time.Second, func(t time.Time) tea.Msg {
		return clockMsg{gen: gen, at: t}
	})
}

// startFrames starts the frame loop if flips are scheduled and the loop
// is not already running.
func (m *Model) startFrames() tea.Cmd {
	if m.animating || !m.timeline.Active() {
		return nil
	}
	m.animating = true
	return m.frame()
}

// ────────────────────────────────────────────────────────────
// Update
// ────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.relayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case frameMsg:
		m.timeline.Advance(time.Time(msg))
		if m.timeline.Active() {
			return m, m.frame()
		}
		m.animating = false
		return m, nil

	case clockMsg:
		if m.mode != ModeClock || msg.gen != m.clockGen {
			return m, nil
		}
		m.showTime(msg.at, m.duration)
		cmd := m.startFrames()
		return m, tea.Batch(cmd, m.clockTick())
	}

	return m, nil
}

// handleKey routes keyboard input based on current mode.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// ── Global ──

	if key == "ctrl+c" {
		return m, tea.Quit
	}

	// ── Input mode ──

	if m.inputMode {
		switch msg.Type {
		case tea.KeyEnter:
			text := strings.ToUpper(string(m.input))
			m.inputMode = false
			m.input = nil
			if bad := m.unreachable(text, m.preset, false); len(bad) > 0 {
				m.setError(fmt.Errorf("%s cannot show %q", m.preset, bad))
				return m, nil
			}
			if m.mode == ModeClock {
				m.leaveClock()
			}
			m.apply(text, m.duration)
			cmd := m.startFrames()
			return m, cmd
		case tea.KeyEsc:
			m.inputMode = false
			m.input = nil
		case tea.KeyBackspace:
			if len(m.input) > 0 {
				m.input = m.input[:len(m.input)-1]
			}
		case tea.KeySpace:
			m.input = append(m.input, ' ')
		case tea.KeyRunes:
			m.input = append(m.input, msg.Runes...)
		}
		return m, nil
	}

	// ── Board ──

	switch key {
	case "q":
		return m, tea.Quit

	case "i", "/":
		m.inputMode = true
		m.input = nil
		return m, nil

	case "c":
		if m.mode == ModeClock {
			m.leaveClock()
			m.apply(m.text, m.duration)
			cmd := m.startFrames()
			return m, cmd
		}
		if err := m.enterClock(); err != nil {
			m.setError(err)
			return m, nil
		}
		m.showTime(m.now(), m.duration)
		cmd := m.startFrames()
		return m, tea.Batch(cmd, m.clockTick())

	case "+", "=":
		m.duration = min(m.duration+durationStep, maxDuration)
		m.statusMsg = "flip " + timeutil.FormatDuration(m.duration)
		return m, nil

	case "-", "_":
		m.duration = max(m.duration-durationStep, 0)
		m.statusMsg = "flip " + timeutil.FormatDuration(m.duration)
		if m.duration == 0 {
			m.statusMsg = "flips snap"
		}
		return m, nil

	case "s":
		if m.mode == ModeClock {
			m.showTime(m.now(), 0)
		} else {
			m.apply(m.text, 0)
		}
		return m, nil

	case "r":
		if m.mode == ModeClock {
			m.leaveClock()
		}
		m.randomize()
		cmd := m.startFrames()
		return m, cmd

	case "v":
		m.nextPreset()
		cmd := m.startFrames()
		return m, cmd

	case "a":
		m.showActivity = !m.showActivity
		m.relayout()
		return m, nil
	}

	return m, nil
}

// ────────────────────────────────────────────────────────────
// Board actions
// ────────────────────────────────────────────────────────────

// sync brings the timeline up to the wall clock so new flips start now
// rather than at the last frame.
func (m *Model) sync() {
	m.timeline.Advance(m.now())
}

// apply shows text on the board, flipping each flap over d. Text is upper
// cased first. Text a flap could never reach is refused before anything
// moves, so no flap is left cycling.
func (m *Model) apply(text string, d time.Duration) {
	text = strings.ToUpper(text)
	if err := m.board.Check(text); err != nil {
		m.setError(fmt.Errorf("cannot show %q: %w", text, err))
		return
	}
	m.sync()
	if err := m.board.SetText(text, d); err != nil {
		m.setError(err)
		return
	}
	m.text = text
	m.err = nil
	m.statusMsg = fmt.Sprintf("showing %q", text)
}

// unreachable lists the distinct tokens of text that preset name lacks,
// counting only the flaps the board has. With pad set, flaps past the text
// need a blank.
func (m *Model) unreachable(text, name string, pad bool) []flap.Token {
	vocab, _ := flap.Preset(name)
	toks := flap.Tokenize(text, vocab)
	for pad && len(toks) < m.board.Len() {
		toks = append(toks, " ")
	}
	if len(toks) > m.board.Len() {
		toks = toks[:m.board.Len()]
	}

	var bad []flap.Token
	for _, t := range toks {
		if !slices.Contains(vocab, t) && !slices.Contains(bad, t) {
			bad = append(bad, t)
		}
	}
	return bad
}

// changeVocabulary runs change, then snaps every flap back to the token it
// was showing. A new vocabulary puts the cursors on its first token, which
// is not what the tiles show.
func (m *Model) changeVocabulary(change func() error) error {
	m.sync()
	shown := make([]flap.Token, m.board.Len())
	for i := range shown {
		shown[i], _ = m.board.Flap(i).Current()
	}
	if err := change(); err != nil {
		return err
	}
	return m.board.SetTokens(shown, 0)
}

// randomize sends every flap to a random token of its own vocabulary.
func (m *Model) randomize() {
	tokens := make([]flap.Token, m.board.Len())
	for i := range tokens {
		vocab := m.board.Flap(i).Vocabulary()
		if len(vocab) > 0 {
			tokens[i] = vocab[rand.IntN(len(vocab))]
		}
	}
	m.sync()
	if err := m.board.SetTokens(tokens, m.duration); err != nil {
		m.setError(err)
		return
	}

	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(string(t))
	}
	m.text = sb.String()
	m.err = nil
	m.statusMsg = fmt.Sprintf("showing %q", m.text)
}

// textPresets are the presets meant for messages rather than clock digits.
func textPresets() []string {
	var names []string
	for _, name := range flap.PresetNames() {
		switch name {
		case flap.PresetHours24, flap.PresetHours12, flap.PresetSexagesimal:
			continue
		}
		names = append(names, name)
	}
	return names
}

// nextPreset moves every flap to the next text vocabulary that can show the
// current text, blanks included, and shows the text again.
func (m *Model) nextPreset() {
	names := textPresets()
	start := slices.Index(names, m.preset)

	next := ""
	for k := 1; k <= len(names); k++ {
		name := names[(start+k+len(names))%len(names)]
		if name == m.preset {
			break
		}
		if len(m.unreachable(m.text, name, true)) == 0 {
			next = name
			break
		}
	}
	if next == "" {
		m.setError(fmt.Errorf("no other vocabulary can show %q", m.text))
		return
	}

	m.preset = next
	if m.mode == ModeClock {
		m.leaveClock()
	} else {
		vocab, _ := flap.Preset(next)
		m.changeVocabulary(func() error {
			m.board.SetVocabulary(vocab)
			return nil
		})
		m.relayout()
	}
	log.Printf("[DEBUG] Vocabulary switched to %s", next)
	m.apply(m.text, m.duration)
}

// enterClock gives the first three flaps the hour, minute and second
// vocabularies.
func (m *Model) enterClock() error {
	if m.board.Len() < clockFlaps {
		return fmt.Errorf("clock mode needs %d flaps, have %d", clockFlaps, m.board.Len())
	}
	hours := flap.PresetHours24
	if m.cfg.TwelveHour {
		hours = flap.PresetHours12
	}
	hv, _ := flap.Preset(hours)
	sv, _ := flap.Preset(flap.PresetSexagesimal)
	err := m.changeVocabulary(func() error {
		for i, vocab := range [clockFlaps][]flap.Token{hv, sv, sv} {
			if err := m.board.SetFlapVocabulary(i, vocab); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	m.mode = ModeClock
	m.clockGen++
	m.relayout()
	log.Printf("[DEBUG] Clock mode on (%s)", hours)
	return nil
}

// leaveClock restores the text vocabulary. Pending clock ticks are
// ignored from here on.
func (m *Model) leaveClock() {
	m.mode = ModeText
	m.clockGen++
	if vocab, ok := flap.Preset(m.preset); ok {
		m.changeVocabulary(func() error {
			m.board.SetVocabulary(vocab)
			return nil
		})
	}
	m.relayout()
	log.Printf("[DEBUG] Clock mode off")
}

// showTime flips the clock flaps to t. Flaps past the clock show their
// first token.
func (m *Model) showTime(t time.Time, d time.Duration) {
	digits := timeutil.ClockDigits(t, m.cfg.TwelveHour)
	m.sync()
	err := m.board.SetTokens([]flap.Token{
		flap.Token(digits[0]),
		flap.Token(digits[1]),
		flap.Token(digits[2]),
	}, d)
	if err != nil {
		m.setError(err)
		return
	}
	m.err = nil
	m.statusMsg = strings.Join(digits[:], ":")
}

func (m *Model) setError(err error) {
	m.err = err
	m.statusMsg = fmt.Sprintf("Error: %v", err)
	log.Printf("[WARN] %v", err)
}

// relayout fits the tiles to the window. It is a no-op until the first
// WindowSizeMsg arrives.
func (m *Model) relayout() {
	if m.width == 0 {
		return
	}
	m.layout = computeLayout(m.width, m.boardHeight(), m.board.Len(), m.bannerWidth())
}

// bannerWidth is the widest glyph banner any flap may have to show.
func (m *Model) bannerWidth() int {
	w := 0
	for i := 0; i < m.board.Len(); i++ {
		for _, t := range m.board.Flap(i).Vocabulary() {
			w = maxInt(w, render.BannerWidth(t))
		}
	}
	if w == 0 {
		return render.GlyphWidth
	}
	return w
}

func (m *Model) bodyHeight() int {
	return maxInt(0, m.height-2) // header + footer
}

func (m *Model) activityHeight() int {
	h := minInt(activityRows, m.bodyHeight()/2)
	if !m.showActivity || h < 3 {
		return 0
	}
	return h
}

func (m *Model) boardHeight() int {
	return m.bodyHeight() - m.activityHeight()
}

// ────────────────────────────────────────────────────────────
// View
// ────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	header := renderHeader(&m)
	footer := renderFooter(&m)

	body := renderBoard(&m, m.width, m.boardHeight())
	if h := m.activityHeight(); h > 0 {
		body = lipgloss.JoinVertical(lipgloss.Left, body, renderActivityPanel(&m, m.width, h))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

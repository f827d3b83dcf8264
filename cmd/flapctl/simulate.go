package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Mr-Dark-debug/flapboard/internal/config"
	"github.com/Mr-Dark-debug/flapboard/internal/flap"
	"github.com/Mr-Dark-debug/flapboard/internal/journal"
	"github.com/Mr-Dark-debug/flapboard/internal/render"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/pflag"
)

type simOptions struct {
	cfg   config.Config
	from  string
	text  string
	start time.Time
	limit time.Duration
	store journal.Store
}

type simResult struct {
	Flips   int
	Elapsed time.Duration
	Settled bool
	Text    string

	tiles []*render.Tile
}

// runSimulation drives a board on a virtual timeline, one frame at a
// time, until it settles or limit passes. Every transition is printed to
// w as it happens.
func runSimulation(w io.Writer, o simOptions) (*simResult, error) {
	tl := render.NewTimeline(o.start)
	tiles := make([]*render.Tile, o.cfg.Flaps)
	pairs := make([]*flap.TilePair, o.cfg.Flaps)
	for i := range tiles {
		tiles[i] = render.NewTile(tl)
		pairs[i] = tiles[i].Pair()
	}
	board := flap.NewBoard(pairs, tl, o.cfg.FlapConfig())
	if vocab, ok := flap.Preset(o.cfg.Vocabulary); ok {
		board.SetVocabulary(vocab)
	}
	if o.from != "" {
		if err := board.SetText(o.from, 0); err != nil {
			return nil, fmt.Errorf("showing %q: %w", o.from, err)
		}
	}

	res := &simResult{tiles: tiles}
	board.AddObserver(flap.ObserverFunc(func(t flap.Transition) {
		if t.Kind == flap.TransitionCompleted {
			res.Flips++
		}
		res.Elapsed = t.At.Sub(o.start)
		fmt.Fprintf(w, "%9s  flap %-2d %-10s %s\n",
			fmt.Sprintf("+%.3fs", res.Elapsed.Seconds()), t.Flap, t.Kind, detail(t))
	}))

	var recorder *journal.Recorder
	if o.store != nil {
		recorder = journal.NewRecorder(o.store, o.cfg.Recorder)
		recorder.Start(context.Background())
		board.AddObserver(recorder)
	}

	err := board.SetText(o.text, time.Duration(o.cfg.FlipDuration))
	if err == nil {
		frame := o.cfg.FrameInterval()
		for now := o.start; !board.Settled() && now.Sub(o.start) < o.limit; {
			now = now.Add(frame)
			tl.Advance(now)
		}
		res.Settled = board.Settled()
		res.Text = board.Text()
	}

	if recorder != nil {
		if stopErr := recorder.Stop(); stopErr != nil && err == nil {
			err = stopErr
		}
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func detail(t flap.Transition) string {
	switch t.Kind {
	case flap.TransitionRequested:
		return fmt.Sprintf("%q → %q", t.From, t.Target)
	case flap.TransitionSnapped:
		return fmt.Sprintf("%q", t.To)
	case flap.TransitionStep:
		return fmt.Sprintf("%q → %q  step %d, back %s", t.From, t.To, t.Step, t.Back)
	case flap.TransitionCompleted:
		return fmt.Sprintf("%q", t.To)
	case flap.TransitionReached:
		return fmt.Sprintf("%q after %d steps", t.Target, t.Step)
	case flap.TransitionSuperseded:
		return fmt.Sprintf("at %q, was heading for %q", t.From, t.Target)
	default:
		return "empty vocabulary"
	}
}

// drawBoard renders the tiles side by side.
func drawBoard(tiles []*render.Tile, width, height int) string {
	th := render.DefaultTheme()
	cells := make([]string, 0, 2*len(tiles))
	for i, t := range tiles {
		if i > 0 {
			cells = append(cells, " ")
		}
		cells = append(cells, t.View(width, height, th))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

// cmdSimulate runs a board headless.
func cmdSimulate(args []string) {
	defaults := config.DefaultConfig()

	fs := pflag.NewFlagSet("simulate", pflag.ExitOnError)
	flaps := fs.IntP("flaps", "n", 0, "Number of flaps (0: one per character of text)")
	vocab := fs.String("vocab", defaults.Vocabulary, "Vocabulary preset")
	text := fs.StringP("text", "t", defaults.Text, "Text to flip to")
	from := fs.String("from", "", "Text shown before the run starts")
	duration := fs.DurationP("duration", "d", time.Duration(defaults.FlipDuration), "Time of one flip (0 snaps)")
	fps := fs.Int("fps", defaults.FPS, "Frames per virtual second")
	limit := fs.Duration("limit", time.Minute, "Give up after this much virtual time")
	strict := fs.Bool("strict", false, "Reject text the vocabulary cannot show")
	show := fs.Bool("show", false, "Draw the board when the run ends")
	tileW := fs.Int("tile-width", 7, "Tile width for --show")
	tileH := fs.Int("tile-height", 9, "Tile height for --show")
	dbPath := fs.String("journal", "", "Also record the run to this journal")
	fs.SetInterspersed(true)
	fs.Parse(args)

	if rest := fs.Args(); len(rest) > 0 {
		*text = strings.Join(rest, " ")
	}

	cfg := defaults
	cfg.Journal = *dbPath
	cfg.Flaps = *flaps
	if cfg.Flaps == 0 {
		cfg.Flaps = max(1, len([]rune(*text)), len([]rune(*from)))
	}
	cfg.Vocabulary = *vocab
	cfg.FlipDuration = config.Duration(*duration)
	cfg.FPS = *fps
	cfg.Strict = *strict
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	opts := simOptions{
		cfg:   cfg,
		from:  *from,
		text:  *text,
		start: time.Now(),
		limit: *limit,
	}
	if cfg.Journal != "" {
		store, err := journal.Open(cfg.Journal)
		if err != nil {
			log.Fatalf("Failed to open journal: %v", err)
		}
		defer store.Close()
		opts.store = store
	}

	res, err := runSimulation(os.Stdout, opts)
	if err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}

	fmt.Println()
	if *show {
		fmt.Println(drawBoard(res.tiles, *tileW, *tileH))
		fmt.Println()
	}
	fmt.Printf("%d flips in %.3fs of virtual time, showing %q\n", res.Flips, res.Elapsed.Seconds(), res.Text)
	if !res.Settled {
		fmt.Printf("Not settled after %v: some text is not in %s\n", *limit, cfg.Vocabulary)
		os.Exit(1)
	}
}

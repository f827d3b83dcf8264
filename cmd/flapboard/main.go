// flapboard shows a split-flap display board in the terminal.
//
// Usage:
//
//	flapboard [flags] [text...]
//
// Positional arguments replace the initial text. Flags override the
// config file, which overrides the built-in defaults.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Mr-Dark-debug/flapboard/internal/config"
	"github.com/Mr-Dark-debug/flapboard/internal/flap"
	"github.com/Mr-Dark-debug/flapboard/internal/journal"
	"github.com/Mr-Dark-debug/flapboard/internal/sound"
	"github.com/Mr-Dark-debug/flapboard/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/term"
	"pkt.systems/version"
)

func init() {
	version.SetDefaultModule("github.com/Mr-Dark-debug/flapboard")
}

func main() {
	var (
		configPath  string
		flaps       int
		vocab       string
		duration    time.Duration
		fps         int
		text        string
		clock       bool
		twelveHour  bool
		journalPath string
		logPath     string
		withSound   bool
		strict      bool
		showVersion bool
	)

	defaults := config.DefaultConfig()
	flags := pflag.NewFlagSet("flapboard", pflag.ExitOnError)
	flags.StringVarP(&configPath, "config", "c", "", "JSON config file")
	flags.IntVarP(&flaps, "flaps", "n", defaults.Flaps, "Number of flaps")
	flags.StringVar(&vocab, "vocab", defaults.Vocabulary, "Vocabulary preset ("+strings.Join(flap.PresetNames(), ", ")+")")
	flags.DurationVarP(&duration, "duration", "d", time.Duration(defaults.FlipDuration), "Time of one flip (0 snaps)")
	flags.IntVar(&fps, "fps", defaults.FPS, "Frame rate while flaps move")
	flags.StringVarP(&text, "text", "t", defaults.Text, "Initial text")
	flags.BoolVar(&clock, "clock", false, "Start as a clock")
	flags.BoolVar(&twelveHour, "12h", false, "Show 01-12 hours in clock mode")
	flags.StringVar(&journalPath, "journal", defaults.Journal, "SQLite flip journal (empty disables)")
	flags.StringVar(&logPath, "log", "", "Write debug logs to this file")
	flags.BoolVar(&withSound, "sound", false, "Clack on every flip")
	flags.BoolVar(&strict, "strict", false, "Reject text the vocabulary cannot show")
	flags.BoolVar(&showVersion, "version", false, "Print version and exit")

	flags.SetInterspersed(true)
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, version.Module(), version.Current())
		fmt.Fprintf(os.Stderr, "Usage: flapboard [flags] [text...]\n")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	if showVersion {
		fmt.Println(version.Module(), version.Current())
		return
	}

	cfg := defaults
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(2)
		}
	}

	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "flaps":
			cfg.Flaps = flaps
		case "vocab":
			cfg.Vocabulary = vocab
		case "duration":
			cfg.FlipDuration = config.Duration(duration)
		case "fps":
			cfg.FPS = fps
		case "text":
			cfg.Text = text
		case "clock":
			cfg.Clock = clock
		case "12h":
			cfg.TwelveHour = twelveHour
		case "journal":
			cfg.Journal = journalPath
		case "log":
			cfg.LogFile = logPath
		case "sound":
			cfg.Sound = withSound
		case "strict":
			cfg.Strict = strict
		}
	})
	if args := flags.Args(); len(args) > 0 {
		cfg.Text = strings.Join(args, " ")
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "flapboard needs a terminal; use 'flapctl simulate' for headless runs")
		os.Exit(2)
	}

	// The alternate screen owns stdout from here on.
	if cfg.LogFile != "" {
		f, err := tea.LogToFile(cfg.LogFile, "flapboard")
		if err != nil {
			log.Fatalf("Failed to open log file %s: %v", cfg.LogFile, err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}
	log.Printf("[INFO] flapboard %s: %d flaps, %s, flip %v",
		version.Current(), cfg.Flaps, cfg.Vocabulary, time.Duration(cfg.FlipDuration))

	clacker := sound.NewClacker(cfg.Sound, cfg.Volume)
	defer clacker.Close()
	observers := []flap.Observer{sound.Observer(clacker)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var recorder *journal.Recorder
	if cfg.Journal != "" {
		store, err := openJournal(cfg.Journal)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: journal disabled: %v\n", err)
		} else {
			defer store.Close()
			recorder = journal.NewRecorder(store, cfg.Recorder)
			recorder.Start(ctx)
			observers = append(observers, recorder)
			log.Printf("[INFO] Journaling flips to %s", store.Path())
		}
	}

	p := tea.NewProgram(tui.NewModel(cfg, observers...), tea.WithAltScreen())
	_, runErr := p.Run()

	if recorder != nil {
		if err := recorder.Stop(); err != nil {
			log.Printf("[ERROR] Closing journal: %v", err)
		}
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", runErr)
		os.Exit(1)
	}
}

func openJournal(path string) (*journal.SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}
	return journal.Open(path)
}

// flapctl inspects the flip journal and runs flaps without a terminal UI.
//
// Usage:
//
//	flapctl <command> [flags]
//
// Commands:
//
//	sessions  List journaled sessions
//	flips     List the flips of one session
//	analyze   Timing report for one session
//	simulate  Run a board on a virtual clock and print every transition
//	vocab     List vocabulary presets or the tokens of one
//	config    Print the effective configuration
//	version   Print version information
package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Mr-Dark-debug/flapboard/internal/analysis"
	"github.com/Mr-Dark-debug/flapboard/internal/config"
	"github.com/Mr-Dark-debug/flapboard/internal/flap"
	"github.com/Mr-Dark-debug/flapboard/internal/journal"
	"github.com/Mr-Dark-debug/flapboard/pkg/jsonutil"
	"github.com/Mr-Dark-debug/flapboard/pkg/timeutil"

	"github.com/muesli/reflow/truncate"
	"github.com/spf13/pflag"
	"golang.org/x/term"
	"pkt.systems/version"
)

const defaultWidth = 100

func init() {
	version.SetDefaultModule("github.com/Mr-Dark-debug/flapboard")
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	args := os.Args[2:]
	switch os.Args[1] {
	case "sessions":
		cmdSessions(args)
	case "flips":
		cmdFlips(args)
	case "analyze":
		cmdAnalyze(args)
	case "simulate":
		cmdSimulate(args)
	case "vocab":
		cmdVocab(args)
	case "config":
		cmdConfig(args)
	case "version":
		fmt.Println(version.Module(), version.Current())
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`flapctl: journal and headless tools for flapboard

Usage:
  flapctl <command> [flags]

Commands:
  sessions   List journaled sessions
  flips      List the flips of one session
  analyze    Timing report for one session
  simulate   Run a board on a virtual clock and print every transition
  vocab      List vocabulary presets, or the tokens of one
  config     Print the effective configuration
  version    Print version information

Run 'flapctl <command> --help' for details on each command.`)
}

func openStore(path string) *journal.SQLiteStore {
	if _, err := os.Stat(path); err != nil {
		log.Fatalf("No journal at %s: %v", path, err)
	}
	store, err := journal.Open(path)
	if err != nil {
		log.Fatalf("Failed to open journal: %v", err)
	}
	return store
}

func printJSON(v interface{}) {
	s, err := jsonutil.Indent(v)
	if err != nil {
		log.Fatalf("Encoding output: %v", err)
	}
	fmt.Println(s)
}

// terminalWidth is the width of stdout, or fallback when it is not a
// terminal.
func terminalWidth(fallback int) int {
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			return w
		}
	}
	return fallback
}

// printRows prints rows cut to the terminal width.
func printRows(rows []string) {
	width := uint(terminalWidth(defaultWidth))
	for _, r := range rows {
		fmt.Println(truncate.StringWithTail(r, width, "…"))
	}
}

// cmdSessions lists sessions matching a filter.
func cmdSessions(args []string) {
	fs := pflag.NewFlagSet("sessions", pflag.ExitOnError)
	dbPath := fs.String("journal", config.DefaultJournalPath(), "Path to the journal")
	flapIndex := fs.IntP("flap", "f", -1, "Only sessions of this flap")
	status := fs.StringP("status", "s", "", "Only sessions with this status")
	limit := fs.IntP("limit", "l", 20, "Maximum results")
	asJSON := fs.Bool("json", false, "Print JSON")
	fs.Parse(args)

	store := openStore(*dbPath)
	defer store.Close()

	filter := journal.SessionFilter{Limit: *limit}
	if *flapIndex >= 0 {
		filter.Flap = flapIndex
	}
	if *status != "" {
		filter.Status = status
	}

	sessions, err := store.QuerySessions(filter)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}
	if *asJSON {
		printJSON(sessions)
		return
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions.")
		return
	}

	rows := []string{fmt.Sprintf("%-36s %4s %-8s %-10s %5s  %-14s %s",
		"SESSION", "FLAP", "KIND", "STATUS", "STEPS", "FROM → TARGET", "STARTED")}
	for _, s := range sessions {
		rows = append(rows, fmt.Sprintf("%-36s %4d %-8s %-10s %5d  %-14s %s (%s)",
			s.SessionID, s.Flap, s.Kind, s.Status, s.Steps,
			fmt.Sprintf("%q → %q", s.From, s.Target),
			timeutil.FormatTimestamp(s.StartTime), timeutil.RelativeTime(s.StartTime)))
	}
	printRows(rows)
}

// cmdFlips lists the flips of one session in step order.
func cmdFlips(args []string) {
	fs := pflag.NewFlagSet("flips", pflag.ExitOnError)
	dbPath := fs.String("journal", config.DefaultJournalPath(), "Path to the journal")
	sessionID := fs.StringP("session", "s", "", "Session ID (required)")
	asJSON := fs.Bool("json", false, "Print JSON")
	fs.Parse(args)

	if *sessionID == "" {
		fmt.Fprintln(os.Stderr, "Error: --session is required")
		fs.Usage()
		os.Exit(1)
	}

	store := openStore(*dbPath)
	defer store.Close()

	flips, err := store.QueryFlips(*sessionID)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}
	if *asJSON {
		printJSON(flips)
		return
	}
	if len(flips) == 0 {
		fmt.Println("No flips.")
		return
	}

	rows := []string{fmt.Sprintf("%4s  %-14s %-4s %-12s %10s  %s", "STEP", "FROM → TO", "BACK", "STARTED", "DURATION", "")}
	for _, f := range flips {
		dur, state := "-", "incomplete"
		if f.Completed {
			dur = timeutil.FormatDuration(time.Duration(f.DurationNs()))
			state = ""
		}
		rows = append(rows, fmt.Sprintf("%4d  %-14s %-4s %-12s %10s  %s",
			f.Step, fmt.Sprintf("%q → %q", f.From, f.To), f.BackSet,
			timeutil.FormatTimestamp(f.StartTime), dur, state))
	}
	printRows(rows)
}

// cmdAnalyze prints the timing report of one session.
func cmdAnalyze(args []string) {
	fs := pflag.NewFlagSet("analyze", pflag.ExitOnError)
	dbPath := fs.String("journal", config.DefaultJournalPath(), "Path to the journal")
	sessionID := fs.StringP("session", "s", "", "Session ID to analyze (required)")
	outputFormat := fs.StringP("format", "o", "markdown", "Output format: markdown, json")
	fs.Parse(args)

	if *sessionID == "" {
		fmt.Fprintln(os.Stderr, "Error: --session is required")
		fs.Usage()
		os.Exit(1)
	}

	store := openStore(*dbPath)
	defer store.Close()

	report, err := analysis.NewAnalyzer(store).AnalyzeSession(*sessionID)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	switch *outputFormat {
	case "json":
		printJSON(report)
	case "markdown":
		fmt.Print(analysis.FormatReport(report))
	default:
		fmt.Fprintf(os.Stderr, "Unknown format: %s\n", *outputFormat)
		os.Exit(1)
	}
}

// cmdVocab lists the presets, or the tokens of the named one.
func cmdVocab(args []string) {
	fs := pflag.NewFlagSet("vocab", pflag.ExitOnError)
	asJSON := fs.Bool("json", false, "Print JSON")
	fs.Parse(args)

	if name := fs.Arg(0); name != "" {
		tokens, ok := flap.Preset(name)
		if !ok {
			fmt.Fprintf(os.Stderr, "Unknown vocabulary %q (have %s)\n", name, strings.Join(flap.PresetNames(), ", "))
			os.Exit(1)
		}
		if *asJSON {
			printJSON(tokens)
			return
		}
		quoted := make([]string, len(tokens))
		for i, t := range tokens {
			quoted[i] = fmt.Sprintf("%q", t)
		}
		fmt.Println(strings.Join(quoted, " "))
		return
	}

	names := flap.PresetNames()
	if *asJSON {
		printJSON(names)
		return
	}
	for _, name := range names {
		tokens, _ := flap.Preset(name)
		marker := " "
		if name == flap.DefaultPreset {
			marker = "*"
		}
		fmt.Printf("%s %-20s %3d tokens  %q … %q\n", marker, name, len(tokens), tokens[0], tokens[len(tokens)-1])
	}
}

// cmdConfig prints the configuration flapboard would run with.
func cmdConfig(args []string) {
	fs := pflag.NewFlagSet("config", pflag.ExitOnError)
	configPath := fs.StringP("config", "c", "", "JSON config file")
	diff := fs.Bool("diff", false, "Only show settings that differ from the defaults")
	fs.Parse(args)

	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("%v", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	if !*diff {
		printJSON(cfg)
		return
	}

	changes, err := jsonutil.Diff(config.DefaultConfig(), cfg)
	if err != nil {
		log.Fatalf("Comparing with defaults: %v", err)
	}
	if len(changes) == 0 {
		fmt.Println("Same as the defaults.")
		return
	}
	for _, c := range changes {
		fmt.Printf("%-28s %s → %s\n", c.Path, c.OldValue, c.NewValue)
	}
}

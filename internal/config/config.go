// Package config holds the settings shared by the flapboard binaries.
//
// Settings come from DefaultConfig, optionally overlaid by a JSON file
// (Load) and finally by command-line flags.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Mr-Dark-debug/flapboard/internal/flap"
	"github.com/Mr-Dark-debug/flapboard/internal/journal"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Limits enforced by Validate.
const (
	MaxFlaps = 64
	MaxFPS   = 240
)

// Duration is a time.Duration that reads from JSON as either a string
// ("150ms") or a number of nanoseconds, and writes as a string.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("parsing duration %q: %w", s, err)
		}
		*d = Duration(v)
		return nil
	}
	var ns int64
	if err := json.Unmarshal(b, &ns); err != nil {
		return fmt.Errorf("duration must be a string or nanoseconds: %s", b)
	}
	*d = Duration(ns)
	return nil
}

// Config holds every flapboard setting.
type Config struct {
	// Flaps is the number of tiles on the board.
	Flaps int `json:"flaps"`

	// Vocabulary names the preset each flap cycles through.
	Vocabulary string `json:"vocabulary"`

	// FlipDuration is the time of one flip; zero snaps.
	FlipDuration Duration `json:"flip_duration"`

	// FPS caps the frame rate while flaps are moving.
	FPS int `json:"fps"`

	// Text is shown when the board starts.
	Text string `json:"text"`

	// Clock starts the board in clock mode.
	Clock bool `json:"clock"`

	// TwelveHour shows 01-12 hours in clock mode.
	TwelveHour bool `json:"twelve_hour"`

	// Perspective is the depth factor of the fold.
	Perspective float64 `json:"perspective"`

	// Strict rejects animated requests for tokens outside the vocabulary.
	Strict bool `json:"strict"`

	// Journal is the SQLite file flips are recorded to. Empty disables it.
	Journal string `json:"journal"`

	// Recorder tunes journal batching.
	Recorder journal.RecorderConfig `json:"recorder"`

	// LogFile receives debug logs. Empty discards them.
	LogFile string `json:"log_file"`

	// Sound plays a clack per flip.
	Sound bool `json:"sound"`

	// Volume scales the clack; 1 is unchanged.
	Volume float64 `json:"volume"`
}

// DefaultJournalPath is ~/.flapboard/journal.db.
func DefaultJournalPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".flapboard", "journal.db")
}

// DefaultConfig returns the settings used when nothing else is given.
func DefaultConfig() Config {
	return Config{
		Flaps:        10,
		Vocabulary:   flap.PresetDepartures,
		FlipDuration: Duration(90 * time.Millisecond),
		FPS:          60,
		Text:         "HELLO",
		Perspective:  flap.DefaultPerspective,
		Journal:      DefaultJournalPath(),
		Recorder:     journal.DefaultRecorderConfig(),
		Volume:       0.6,
	}
}

// Load overlays the JSON file at path on DefaultConfig. Keys missing from
// the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every out-of-range setting.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalid}, args...)...))
	}

	if c.Flaps < 1 || c.Flaps > MaxFlaps {
		bad("flaps must be between 1 and %d, got %d", MaxFlaps, c.Flaps)
	}
	if _, ok := flap.Preset(c.Vocabulary); !ok {
		bad("unknown vocabulary %q (have %s)", c.Vocabulary, strings.Join(flap.PresetNames(), ", "))
	}
	if c.FlipDuration < 0 {
		bad("flip duration must not be negative, got %v", time.Duration(c.FlipDuration))
	}
	if c.FPS < 1 || c.FPS > MaxFPS {
		bad("fps must be between 1 and %d, got %d", MaxFPS, c.FPS)
	}
	if c.Perspective < 0 || c.Perspective > 1 {
		bad("perspective must be within [0,1], got %v", c.Perspective)
	}
	if c.Volume < 0 || c.Volume > 4 {
		bad("volume must be within [0,4], got %v", c.Volume)
	}
	if c.Recorder.BatchSize < 0 || c.Recorder.QueueSize < 0 {
		bad("recorder sizes must not be negative")
	}
	return errors.Join(errs...)
}

// FrameInterval is the time between frames at FPS.
func (c Config) FrameInterval() time.Duration {
	if c.FPS <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.FPS)
}

// FlapConfig derives the orchestrator settings.
func (c Config) FlapConfig() flap.Config {
	cfg := flap.DefaultConfig()
	cfg.Perspective = c.Perspective
	cfg.StrictTargets = c.Strict
	return cfg
}

// Package sound plays the mechanical clack of a landing flap.
package sound

import (
	"log"
	"math"
	"sync"
	"time"

	"github.com/Mr-Dark-debug/flapboard/internal/flap"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(44100)

	// ClackDuration is the length of one clack.
	ClackDuration = 30 * time.Millisecond

	// maxVoices caps overlapping clacks; a full board landing at once
	// would otherwise just get louder.
	maxVoices = 6
)

// Clacker makes a sound each time a flap lands.
type Clacker interface {
	Clack()
	Close()
}

// NewClacker returns a speaker-backed clacker, or a silent one when
// disabled or when no audio device can be opened. Volume is linear,
// 1 being unchanged.
func NewClacker(enabled bool, volume float64) Clacker {
	if !enabled {
		return Silent()
	}
	c := &beepClacker{
		mixer:  &beep.Mixer{},
		volume: volume,
		seed:   time.Now().UnixNano(),
	}
	if err := c.init(); err != nil {
		log.Printf("[WARN] Audio unavailable, flips will be silent: %v", err)
		return Silent()
	}
	return c
}

// Silent returns a clacker that does nothing.
func Silent() Clacker { return silent{} }

type silent struct{}

func (silent) Clack() {}
func (silent) Close() {}

// Observer clacks on every completed flip.
func Observer(c Clacker) flap.Observer {
	return flap.ObserverFunc(func(t flap.Transition) {
		if t.Kind == flap.TransitionCompleted {
			c.Clack()
		}
	})
}

type beepClacker struct {
	mu     sync.Mutex
	mixer  *beep.Mixer
	volume float64
	seed   int64
	closed bool
}

func (c *beepClacker) init() error {
	if err := speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(c.mixer)
	return nil
}

func (c *beepClacker) Clack() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.seed++
	s := newVolume(beep.Take(sampleRate.N(ClackDuration), NewClackGenerator(sampleRate, c.seed)), c.volume)

	speaker.Lock()
	if c.mixer.Len() < maxVoices {
		c.mixer.Add(s)
	}
	speaker.Unlock()
}

func (c *beepClacker) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true

	speaker.Lock()
	c.mixer.Clear()
	speaker.Unlock()
}

// newVolume wraps s in a volume effect. math.Log2(0) is -Inf, so zero
// volume is silence.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// ClackGenerator is a short burst of noise over a low knock, both decaying
// fast. It streams forever; wrap it in beep.Take.
type ClackGenerator struct {
	sr   beep.SampleRate
	pos  int
	seed int64
}

// NewClackGenerator creates a clack generator.
func NewClackGenerator(sr beep.SampleRate, seed int64) *ClackGenerator {
	return &ClackGenerator{sr: sr, seed: seed & 0x7fffffff}
}

func (g *ClackGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		envelope := math.Exp(-t * 180)

		g.seed = (g.seed*1103515245 + 12345) & 0x7fffffff
		noise := float64(g.seed)/float64(0x7fffffff)*2 - 1

		knock := math.Sin(2 * math.Pi * 140 * t)

		sample := envelope * (0.55*noise + 0.45*knock)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *ClackGenerator) Err() error {
	return nil
}

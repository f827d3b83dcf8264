package flap

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrUnknownToken is returned in strict mode when an animated request
// targets a token the vocabulary can never reach.
var ErrUnknownToken = errors.New("token not in vocabulary")

// DefaultPerspective is the depth factor applied to both fold phases.
const DefaultPerspective = 0.3

// ────────────────────────────────────────────────────────────
// States, events, transition table
// ────────────────────────────────────────────────────────────

// State is the orchestrator's position in its flip cycle.
type State int

const (
	// StateIdle: nothing pending; the cursor is the displayed token.
	StateIdle State = iota
	// StateAdvancing: a flip is in flight and the target is not reached.
	StateAdvancing
	// StateReached is transient: the cursor equals the target. Observers
	// see it in a TransitionReached; the orchestrator rests in StateIdle.
	StateReached
	stateCount
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAdvancing:
		return "advancing"
	case StateReached:
		return "reached"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type event int

const (
	eventAdvance event = iota
	eventAnimationCompleted
	eventCount
)

type action int

const (
	actIgnore action = iota
	actStep
	actSettle
	actSettleAndAdvance
)

// transitions is the single place deciding what an event does in a state.
var transitions = [stateCount][eventCount]action{
	StateIdle: {
		eventAdvance:            actIgnore,
		eventAnimationCompleted: actSettle,
	},
	StateAdvancing: {
		eventAdvance:            actStep,
		eventAnimationCompleted: actSettleAndAdvance,
	},
	StateReached: {
		eventAdvance:            actIgnore,
		eventAnimationCompleted: actSettle,
	},
}

// ────────────────────────────────────────────────────────────
// Observation
// ────────────────────────────────────────────────────────────

// TransitionKind classifies a Transition.
type TransitionKind int

const (
	TransitionRequested TransitionKind = iota
	TransitionSnapped
	TransitionStep
	TransitionCompleted
	TransitionReached
	TransitionSuperseded
	TransitionExhausted
)

var transitionNames = [...]string{
	TransitionRequested:  "requested",
	TransitionSnapped:    "snapped",
	TransitionStep:       "step",
	TransitionCompleted:  "completed",
	TransitionReached:    "reached",
	TransitionSuperseded: "superseded",
	TransitionExhausted:  "exhausted",
}

func (k TransitionKind) String() string {
	if int(k) < len(transitionNames) {
		return transitionNames[k]
	}
	return fmt.Sprintf("transition(%d)", int(k))
}

// Transition reports one state change of a flap.
type Transition struct {
	Kind      TransitionKind
	SessionID string
	Flap      int
	From      Token
	To        Token
	Target    Token
	Step      int
	Back      ActiveSet
	Phases    Phases
	At        time.Time

	// Vocabulary is only filled for TransitionRequested and TransitionSnapped.
	Vocabulary []Token
}

// Observer receives transitions synchronously on the caller's goroutine.
type Observer interface {
	Observe(t Transition)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(t Transition)

// Observe calls f(t).
func (f ObserverFunc) Observe(t Transition) { f(t) }

// ────────────────────────────────────────────────────────────
// Orchestrator
// ────────────────────────────────────────────────────────────

// Config tunes an Orchestrator.
type Config struct {
	// Index identifies the flap in transitions; boards number flaps from 0.
	Index int
	// Perspective is the depth factor copied into every FoldAnimation.
	Perspective float64
	// StrictTargets rejects animated requests whose target is absent from
	// the vocabulary instead of cycling forever.
	StrictTargets bool
}

// DefaultConfig returns the configuration used by NewBoard.
func DefaultConfig() Config {
	return Config{Perspective: DefaultPerspective}
}

type session struct {
	id        string
	target    Token
	hasTarget bool
	phases    Phases
	steps     int
}

type flight struct {
	gen       uint64
	sessionID string
	from, to  Token
	step      int
	phases    Phases
}

// Orchestrator drives one flap: it walks the sequencer toward a target,
// one animated flip per intermediate token.
//
// It is not safe for concurrent use. All calls, including the Done
// callbacks of fold animations, must come from the host's event loop.
type Orchestrator struct {
	cfg       Config
	seq       *Sequencer
	pair      *TilePair
	clock     Clock
	observers []Observer

	state   State
	session *session
	flight  *flight
	gen     uint64
}

// NewOrchestrator creates an idle orchestrator with an empty vocabulary.
func NewOrchestrator(pair *TilePair, clock Clock, cfg Config) *Orchestrator {
	return &Orchestrator{
		cfg:   cfg,
		seq:   NewSequencer(nil),
		pair:  pair,
		clock: clock,
	}
}

// AddObserver registers o for every subsequent transition.
func (o *Orchestrator) AddObserver(obs Observer) {
	o.observers = append(o.observers, obs)
}

// SetVocabulary rebuilds the sequencer with the cursor on the first token.
// The display keeps its symbols until the next DisplayToken.
func (o *Orchestrator) SetVocabulary(tokens []Token) {
	o.seq = NewSequencer(tokens)
}

// Vocabulary returns a copy of the current vocabulary.
func (o *Orchestrator) Vocabulary() []Token {
	return o.seq.Tokens()
}

// State returns the resting state.
func (o *Orchestrator) State() State { return o.state }

// Current returns the sequencer cursor.
func (o *Orchestrator) Current() (Token, bool) { return o.seq.Current() }

// Pair returns the tile pair the orchestrator animates.
func (o *Orchestrator) Pair() *TilePair { return o.pair }

// InFlight reports whether a flip animation is still running.
func (o *Orchestrator) InFlight() bool { return o.flight != nil }

// Target returns the token of the active session.
func (o *Orchestrator) Target() (Token, bool) {
	if o.session == nil {
		return "", false
	}
	return o.session.target, o.session.hasTarget
}

// DisplayToken shows token, or the first vocabulary token when token is nil.
// A non-positive duration snaps without animating; otherwise every token
// between the cursor and the target is flipped through in order.
//
// A request made while advancing replaces the previous target.
func (o *Orchestrator) DisplayToken(token *Token, d time.Duration) error {
	target, hasTarget := o.resolve(token)

	if d > 0 && hasTarget && o.cfg.StrictTargets && !o.seq.Contains(target) {
		return fmt.Errorf("flap %d: %w: %q", o.cfg.Index, ErrUnknownToken, target)
	}

	o.supersede()

	if d <= 0 {
		from, _ := o.seq.Current()
		if hasTarget {
			o.seq.SetCurrent(target)
		} else {
			o.seq.Reset()
		}
		o.applyToken(target, false)
		o.state = StateIdle
		o.notify(Transition{
			Kind:       TransitionSnapped,
			SessionID:  uuid.NewString(),
			From:       from,
			To:         target,
			Target:     target,
			Vocabulary: o.seq.Tokens(),
		})
		return nil
	}

	o.session = &session{
		id:        uuid.NewString(),
		target:    target,
		hasTarget: hasTarget,
		phases:    SplitPhases(d),
	}
	o.state = StateAdvancing

	from, _ := o.seq.Current()
	o.notify(Transition{
		Kind:       TransitionRequested,
		SessionID:  o.session.id,
		From:       from,
		Target:     target,
		Phases:     o.session.phases,
		Vocabulary: o.seq.Tokens(),
	})

	o.dispatch(eventAdvance)
	return nil
}

func (o *Orchestrator) resolve(token *Token) (Token, bool) {
	if token != nil {
		return *token, true
	}
	return o.seq.First()
}

// supersede closes a session that is still advancing.
func (o *Orchestrator) supersede() {
	if o.session == nil || o.state != StateAdvancing {
		return
	}
	cur, _ := o.seq.Current()
	o.notify(Transition{
		Kind:      TransitionSuperseded,
		SessionID: o.session.id,
		From:      cur,
		Target:    o.session.target,
		Step:      o.session.steps,
		Phases:    o.session.phases,
	})
	o.session = nil
	o.state = StateIdle
}

func (o *Orchestrator) dispatch(ev event) {
	switch transitions[o.state][ev] {
	case actStep:
		o.step()
	case actSettle:
		o.settle()
	case actSettleAndAdvance:
		o.settle()
		o.dispatch(eventAdvance)
	}
}

// step flips to the next token, or ends the session when the target is
// showing or the vocabulary is empty.
func (o *Orchestrator) step() {
	s := o.session
	if o.seq.Len() == 0 {
		o.notify(Transition{
			Kind:      TransitionExhausted,
			SessionID: s.id,
			Target:    s.target,
			Step:      s.steps,
		})
		o.state = StateIdle
		o.session = nil
		return
	}

	cur, _ := o.seq.Current()
	if s.hasTarget && cur == s.target {
		o.state = StateReached
		o.notify(Transition{
			Kind:      TransitionReached,
			SessionID: s.id,
			From:      cur,
			To:        cur,
			Target:    s.target,
			Step:      s.steps,
			Phases:    s.phases,
		})
		o.state = StateIdle
		o.session = nil
		return
	}

	next, _ := o.seq.Next()
	s.steps++
	o.applyToken(next, true)
	o.flight.sessionID = s.id
	o.flight.from = cur
	o.flight.to = next
	o.flight.step = s.steps

	o.notify(Transition{
		Kind:      TransitionStep,
		SessionID: s.id,
		From:      cur,
		To:        next,
		Target:    s.target,
		Step:      s.steps,
		Back:      o.pair.BackSet(),
		Phases:    s.phases,
	})
}

// applyToken loads t into the hidden back set and exposes it, either at
// once or through the two-phase fold.
func (o *Orchestrator) applyToken(t Token, animated bool) {
	backSet := o.pair.BackSet()
	back := o.pair.Back()
	back.Top.SetSymbol(t)
	back.Bottom.SetSymbol(t)

	o.pair.CancelAll()
	o.gen++
	o.flight = nil

	if !animated {
		o.pair.Raise(HalfTop, backSet)
		o.pair.Raise(HalfBottom, backSet)
		o.pair.Swap()
		return
	}

	phases := o.session.phases
	frontSet := o.pair.FrontSet()
	front := o.pair.Front()

	o.pair.Raise(HalfTop, frontSet)
	o.pair.Raise(HalfBottom, backSet)

	top := FoldAnimation{
		From:        0,
		To:          -90,
		Begin:       o.clock.Now(),
		Duration:    phases.Top,
		Curve:       CurveEaseIn,
		Perspective: o.cfg.Perspective,
	}
	bottom := FoldAnimation{
		From:        90,
		To:          0,
		Begin:       top.End(),
		Duration:    phases.Bottom,
		Curve:       CurveEaseOut,
		Perspective: o.cfg.Perspective,
		Done:        o.completion(o.gen),
	}

	o.flight = &flight{gen: o.gen, phases: phases}
	front.Top.RunFold(top)
	back.Bottom.RunFold(bottom)
}

// completion returns the Done callback for flip gen. Callbacks of flips
// that have since been replaced do nothing.
func (o *Orchestrator) completion(gen uint64) func() {
	return func() {
		if o.flight == nil || o.flight.gen != gen {
			return
		}
		o.dispatch(eventAnimationCompleted)
	}
}

// settle finishes the in-flight flip: the back set, now fully shown,
// becomes the front.
func (o *Orchestrator) settle() {
	f := o.flight
	if f == nil {
		return
	}
	o.flight = nil
	o.pair.Swap()

	o.notify(Transition{
		Kind:      TransitionCompleted,
		SessionID: f.sessionID,
		From:      f.from,
		To:        f.to,
		Step:      f.step,
		Back:      o.pair.BackSet(),
		Phases:    f.phases,
	})
}

func (o *Orchestrator) notify(t Transition) {
	if len(o.observers) == 0 {
		return
	}
	t.Flap = o.cfg.Index
	t.At = o.clock.Now()
	for _, obs := range o.observers {
		obs.Observe(t)
	}
}

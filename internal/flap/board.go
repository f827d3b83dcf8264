package flap

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Board is a row of flaps showing one message.
type Board struct {
	flaps []*Orchestrator
}

// NewBoard creates one orchestrator per pair. Flap i gets Index i; the rest
// of cfg is shared. Every flap starts with the default preset vocabulary.
func NewBoard(pairs []*TilePair, clock Clock, cfg Config) *Board {
	vocab, _ := Preset(DefaultPreset)
	b := &Board{flaps: make([]*Orchestrator, len(pairs))}
	for i, p := range pairs {
		c := cfg
		c.Index = i
		b.flaps[i] = NewOrchestrator(p, clock, c)
		b.flaps[i].SetVocabulary(vocab)
	}
	return b
}

// Len returns the number of flaps.
func (b *Board) Len() int { return len(b.flaps) }

// Flap returns flap i.
func (b *Board) Flap(i int) *Orchestrator { return b.flaps[i] }

// AddObserver registers obs on every flap.
func (b *Board) AddObserver(obs Observer) {
	for _, f := range b.flaps {
		f.AddObserver(obs)
	}
}

// SetVocabulary gives every flap the same vocabulary.
func (b *Board) SetVocabulary(tokens []Token) {
	for _, f := range b.flaps {
		f.SetVocabulary(tokens)
	}
}

// SetFlapVocabulary replaces the vocabulary of flap i only.
func (b *Board) SetFlapVocabulary(i int, tokens []Token) error {
	if i < 0 || i >= len(b.flaps) {
		return fmt.Errorf("flap index %d out of range [0,%d)", i, len(b.flaps))
	}
	b.flaps[i].SetVocabulary(tokens)
	return nil
}

// SetText spreads text over the flaps from the left. Each flap consumes the
// longest token of its own vocabulary that prefixes the remaining text.
// Flaps past the end of the text show their first token.
func (b *Board) SetText(text string, d time.Duration) error {
	rest := []rune(text)
	var errs []error
	for _, f := range b.flaps {
		if len(rest) == 0 {
			errs = append(errs, f.DisplayToken(nil, d))
			continue
		}
		tok, n := matchToken(rest, f.Vocabulary())
		rest = rest[n:]
		errs = append(errs, f.DisplayToken(&tok, d))
	}
	return errors.Join(errs...)
}

// Check reports, without touching the board, every flap that SetText(text)
// would send to a token outside its vocabulary. Each failure wraps
// ErrUnknownToken.
func (b *Board) Check(text string) error {
	rest := []rune(text)
	var errs []error
	for i, f := range b.flaps {
		if len(rest) == 0 {
			break
		}
		vocab := f.Vocabulary()
		tok, n := matchToken(rest, vocab)
		rest = rest[n:]
		if !containsToken(vocab, tok) {
			errs = append(errs, fmt.Errorf("flap %d: %w: %q", i, ErrUnknownToken, tok))
		}
	}
	return errors.Join(errs...)
}

// SetTokens assigns tokens[i] to flap i. Missing entries fall back to the
// first token.
func (b *Board) SetTokens(tokens []Token, d time.Duration) error {
	var errs []error
	for i, f := range b.flaps {
		if i < len(tokens) {
			tok := tokens[i]
			errs = append(errs, f.DisplayToken(&tok, d))
			continue
		}
		errs = append(errs, f.DisplayToken(nil, d))
	}
	return errors.Join(errs...)
}

// Text joins the flaps' cursors. Flaps with an empty vocabulary contribute
// nothing.
func (b *Board) Text() string {
	var sb strings.Builder
	for _, f := range b.flaps {
		if t, ok := f.Current(); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}

// Settled reports whether every flap is idle with no flip in flight.
func (b *Board) Settled() bool {
	for _, f := range b.flaps {
		if f.State() != StateIdle || f.InFlight() {
			return false
		}
	}
	return true
}

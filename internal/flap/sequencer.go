package flap

// Token is one printable unit a flap can show: a character or a short glyph
// string such as "AM" or "23".
type Token string

// Ptr returns a pointer to t, for the optional token argument of DisplayToken.
func Ptr(t Token) *Token {
	return &t
}

// Sequencer walks an ordered, cyclic vocabulary one token at a time.
//
// The cursor is a position plus the token shown there. Duplicate tokens are
// distinct positions, so Next always moves forward. SetCurrent may assign a
// token outside the vocabulary; Next then restarts from the first token.
type Sequencer struct {
	tokens  []Token
	index   int // -1 when the cursor is off the vocabulary
	current Token
	set     bool
}

// NewSequencer creates a sequencer over a copy of tokens with the cursor on
// the first token. The cursor of an empty vocabulary is unset.
func NewSequencer(tokens []Token) *Sequencer {
	cp := make([]Token, len(tokens))
	copy(cp, tokens)
	s := &Sequencer{tokens: cp}
	s.Reset()
	return s
}

// Next advances the cursor one position, wrapping after the last token,
// and returns the new current token. It reports false only when the
// vocabulary is empty.
func (s *Sequencer) Next() (Token, bool) {
	if len(s.tokens) == 0 {
		return "", false
	}

	next := 0
	if s.index >= 0 {
		next = (s.index + 1) % len(s.tokens)
	}
	s.moveTo(next)
	return s.current, true
}

// First returns the first vocabulary token without touching the cursor.
func (s *Sequencer) First() (Token, bool) {
	if len(s.tokens) == 0 {
		return "", false
	}
	return s.tokens[0], true
}

// Current returns the cursor. It is false only for an empty vocabulary.
func (s *Sequencer) Current() (Token, bool) {
	return s.current, s.set
}

// SetCurrent moves the cursor to t. Membership is not checked. A token
// listed more than once resolves to its first position, unless the cursor
// already sits on one of its positions.
func (s *Sequencer) SetCurrent(t Token) {
	s.current = t
	s.set = true
	if s.index >= 0 && s.tokens[s.index] == t {
		return
	}
	s.index = s.indexOf(t)
}

// Reset returns the cursor to the first token, or unsets it when the
// vocabulary is empty.
func (s *Sequencer) Reset() {
	if len(s.tokens) == 0 {
		s.index, s.current, s.set = -1, "", false
		return
	}
	s.moveTo(0)
}

// Contains reports whether t is a vocabulary member.
func (s *Sequencer) Contains(t Token) bool {
	return s.indexOf(t) >= 0
}

// Len returns the vocabulary size.
func (s *Sequencer) Len() int {
	return len(s.tokens)
}

// Tokens returns a copy of the vocabulary in order.
func (s *Sequencer) Tokens() []Token {
	cp := make([]Token, len(s.tokens))
	copy(cp, s.tokens)
	return cp
}

func (s *Sequencer) moveTo(i int) {
	s.index = i
	s.current = s.tokens[i]
	s.set = true
}

func (s *Sequencer) indexOf(t Token) int {
	for i, tok := range s.tokens {
		if tok == t {
			return i
		}
	}
	return -1
}

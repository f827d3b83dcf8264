package flap

import (
	"fmt"
	"sort"
)

// Preset names.
const (
	PresetNumeric           = "numeric"
	PresetAlphabetic        = "alphabetic"
	PresetAlphanumeric      = "alphanumeric"
	PresetAlphanumericSpace = "alphanumeric-space"
	PresetDepartures        = "departures"
	PresetHours24           = "hours-24"
	PresetHours12           = "hours-12"
	PresetSexagesimal       = "sexagesimal"
)

// DefaultPreset is the vocabulary of a freshly built board.
const DefaultPreset = PresetAlphanumericSpace

func runeRange(lo, hi rune) []Token {
	out := make([]Token, 0, hi-lo+1)
	for r := lo; r <= hi; r++ {
		out = append(out, Token(string(r)))
	}
	return out
}

func twoDigit(lo, hi int) []Token {
	out := make([]Token, 0, hi-lo+1)
	for n := lo; n <= hi; n++ {
		out = append(out, Token(fmt.Sprintf("%02d", n)))
	}
	return out
}

func concat(parts ...[]Token) []Token {
	var out []Token
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

var presets = map[string]func() []Token{
	PresetNumeric:    func() []Token { return runeRange('0', '9') },
	PresetAlphabetic: func() []Token { return runeRange('A', 'Z') },
	PresetAlphanumeric: func() []Token {
		return concat(runeRange('0', '9'), runeRange('A', 'Z'))
	},
	PresetAlphanumericSpace: func() []Token {
		return concat([]Token{" "}, runeRange('0', '9'), runeRange('A', 'Z'))
	},
	PresetDepartures: func() []Token {
		return concat([]Token{" "}, runeRange('A', 'Z'), runeRange('0', '9'),
			[]Token{".", ",", ":", "-", "/", "!", "?", "'"})
	},
	PresetHours24:     func() []Token { return twoDigit(0, 23) },
	PresetHours12:     func() []Token { return twoDigit(1, 12) },
	PresetSexagesimal: func() []Token { return twoDigit(0, 59) },
}

// Preset returns a fresh copy of the named vocabulary.
func Preset(name string) ([]Token, bool) {
	build, ok := presets[name]
	if !ok {
		return nil, false
	}
	return build(), true
}

// PresetNames lists the preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tokenize splits text into vocabulary tokens, preferring the longest
// match at each position. Runs that match nothing become one-rune tokens.
func Tokenize(text string, vocab []Token) []Token {
	var out []Token
	rest := []rune(text)
	for len(rest) > 0 {
		tok, n := matchToken(rest, vocab)
		out = append(out, tok)
		rest = rest[n:]
	}
	return out
}

func containsToken(vocab []Token, t Token) bool {
	for _, v := range vocab {
		if v == t {
			return true
		}
	}
	return false
}

// matchToken returns the longest vocabulary token prefixing rs and its
// length in runes, or the first rune alone.
func matchToken(rs []rune, vocab []Token) (Token, int) {
	best, bestLen := Token(string(rs[0])), 1
	found := false
	for _, tok := range vocab {
		tr := []rune(string(tok))
		if len(tr) == 0 || len(tr) > len(rs) {
			continue
		}
		if found && len(tr) <= bestLen {
			continue
		}
		if string(rs[:len(tr)]) == string(tok) {
			best, bestLen, found = tok, len(tr), true
		}
	}
	return best, bestLen
}

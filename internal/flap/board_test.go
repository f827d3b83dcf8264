package flap

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func newFakeBoard(n int) (*Board, *fakeClock, [][2][2]*fakeLeaf) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	pairs := make([]*TilePair, n)
	leaves := make([][2][2]*fakeLeaf, n)
	for i := range pairs {
		var sets [2]LeafSet
		for s := 0; s < 2; s++ {
			leaves[i][s][HalfTop] = &fakeLeaf{}
			leaves[i][s][HalfBottom] = &fakeLeaf{}
			sets[s] = LeafSet{Top: leaves[i][s][HalfTop], Bottom: leaves[i][s][HalfBottom]}
		}
		pairs[i] = NewTilePair(sets[SetTic], sets[SetTac])
	}
	return NewBoard(pairs, clock, DefaultConfig()), clock, leaves
}

// settle fires pending completions across the board until none remain.
func settle(t *testing.T, clock *fakeClock, leaves [][2][2]*fakeLeaf) {
	t.Helper()
	for guard := 0; guard < 1000; guard++ {
		var next *fakeLeaf
		for i := range leaves {
			for s := 0; s < 2; s++ {
				for h := 0; h < 2; h++ {
					l := leaves[i][s][h]
					if l.anim == nil || l.anim.Done == nil || l.fired {
						continue
					}
					if next == nil || l.anim.End().Before(next.anim.End()) {
						next = l
					}
				}
			}
		}
		if next == nil {
			return
		}
		clock.now = next.anim.End()
		next.fired = true
		next.anim.Done()
	}
	t.Fatal("board did not settle")
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		vocab []Token
		want  []Token
	}{
		{"Single runes", "HI", tokens("H", "I"), tokens("H", "I")},
		{"Longest match", "AMPM", tokens("A", "AM", "P", "PM"), tokens("AM", "PM")},
		{"Unknown runes", "a-b", tokens("A"), tokens("a", "-", "b")},
		{"Empty", "", tokens("A"), nil},
		{"Two digit", "1305", tokens("13", "05", "1"), tokens("13", "05")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.text, tt.vocab)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestPresets(t *testing.T) {
	for _, name := range PresetNames() {
		v, ok := Preset(name)
		if !ok || len(v) == 0 {
			t.Errorf("preset %s is empty", name)
		}
	}
	if _, ok := Preset("klingon"); ok {
		t.Error("unknown preset should not resolve")
	}

	v, _ := Preset(PresetAlphanumericSpace)
	if v[0] != " " {
		t.Errorf("alphanumeric-space should start with a blank, got %q", v[0])
	}
	h, _ := Preset(PresetHours24)
	if len(h) != 24 || h[0] != "00" || h[23] != "23" {
		t.Errorf("unexpected hours-24 preset: %v", h)
	}
}

func TestBoardSetTextSnap(t *testing.T) {
	b, _, _ := newFakeBoard(4)
	if err := b.SetText("HI", 0); err != nil {
		t.Fatalf("SetText failed: %v", err)
	}
	if got := b.Text(); got != "HI  " {
		t.Errorf("expected padded text, got %q", got)
	}
	if !b.Settled() {
		t.Error("snapped board should be settled")
	}
}

func TestBoardSetTextAnimated(t *testing.T) {
	b, clock, leaves := newFakeBoard(3)
	b.SetText("AB", 0)

	if err := b.SetText("CD", 100*time.Millisecond); err != nil {
		t.Fatalf("SetText failed: %v", err)
	}
	if b.Settled() {
		t.Fatal("board should be flipping")
	}
	settle(t, clock, leaves)

	if got := b.Text(); got != "CD " {
		t.Errorf("expected CD, got %q", got)
	}
	if !b.Settled() {
		t.Error("board should be settled after all flips")
	}
}

func TestBoardCheck(t *testing.T) {
	b, _, _ := newFakeBoard(3)
	numeric, _ := Preset(PresetNumeric)
	b.SetFlapVocabulary(2, numeric)

	tests := []struct {
		name string
		text string
		bad  []string
	}{
		{"Spellable", "AB7", nil},
		{"Lower case", "ab", []string{"flap 0", "flap 1"}},
		{"Letter on a digit flap", "ABC", []string{"flap 2"}},
		{"Past the board", "AB1xyz", nil},
		{"Empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.Check(tt.text)
			if len(tt.bad) == 0 {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, ErrUnknownToken) {
				t.Fatalf("expected ErrUnknownToken, got %v", err)
			}
			for _, want := range tt.bad {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error should name %s: %v", want, err)
				}
			}
		})
	}
	if got := b.Text(); got != "  0" {
		t.Errorf("Check must not move the board, got %q", got)
	}
}

func TestBoardPerFlapVocabulary(t *testing.T) {
	b, _, _ := newFakeBoard(3)
	hours, _ := Preset(PresetHours24)
	minutes, _ := Preset(PresetSexagesimal)
	b.SetFlapVocabulary(0, hours)
	b.SetFlapVocabulary(1, minutes)
	b.SetFlapVocabulary(2, minutes)

	if err := b.SetText("130559", 0); err != nil {
		t.Fatalf("SetText failed: %v", err)
	}
	for i, want := range tokens("13", "05", "59") {
		if cur, _ := b.Flap(i).Current(); cur != want {
			t.Errorf("flap %d: expected %q, got %q", i, want, cur)
		}
	}

	if err := b.SetFlapVocabulary(7, hours); err == nil {
		t.Error("expected out of range error")
	}
}

func TestBoardSetTokens(t *testing.T) {
	b, _, _ := newFakeBoard(3)
	b.SetTokens(tokens("X", "Y"), 0)
	if got := b.Text(); got != "XY " {
		t.Errorf("expected XY plus first token, got %q", got)
	}
	for i := 0; i < b.Len(); i++ {
		if b.Flap(i).Pair() == nil {
			t.Errorf("flap %d has no pair", i)
		}
	}
}

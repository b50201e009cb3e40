package lexicon

import (
	"strings"
	"testing"
)

func TestMatchKeyword(t *testing.T) {
	m := NewMatcher(Default())

	cases := []struct {
		input string
		want  Label
	}{
		{"I feel sad today", Sad},
		{"I am SO HAPPY right now", Happy},
		{"this makes me furious", Angry},
		{"been really worried lately", Anxious},
		{"tell me about the weather", Neutral},
		{"", Neutral},
	}

	for _, tc := range cases {
		if got := m.Match(tc.input); got != tc.want {
			t.Fatalf("Match(%q) = %s, want %s", tc.input, got, tc.want)
		}
	}
}

func TestMatchWholeWordsOnly(t *testing.T) {
	m := NewMatcher(Default())

	// "sadness" contains "sad" but not as a whole word; same for "madness".
	if got := m.Match("there is a sadness to it"); got != Neutral {
		t.Fatalf("expected neutral for substring-only hit, got %s", got)
	}
	if got := m.Match("sheer madness"); got != Neutral {
		t.Fatalf("expected neutral for substring-only hit, got %s", got)
	}
}

func TestMatchFirstCategoryWins(t *testing.T) {
	m := NewMatcher(Default())

	// Happy precedes sad in the enumeration; no cross-label scoring.
	if got := m.Match("happy on the outside, sad on the inside"); got != Happy {
		t.Fatalf("expected happy to win by enumeration order, got %s", got)
	}
}

func TestMatchVeryLongInput(t *testing.T) {
	m := NewMatcher(Default())

	input := strings.Repeat("the quick brown fox ", 50000) + "lonely"
	if got := m.Match(input); got != Sad {
		t.Fatalf("expected sad for long input ending in keyword, got %s", got)
	}
}

func TestNeutralIsLast(t *testing.T) {
	if Labels[len(Labels)-1] != Neutral {
		t.Fatal("neutral must stay last in the label enumeration")
	}
}

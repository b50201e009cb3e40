package lexicon

import (
	"regexp"
	"strings"
)

// Label is a coarse emotion bucket assigned to user text.
type Label string

const (
	Happy   Label = "happy"
	Sad     Label = "sad"
	Angry   Label = "angry"
	Anxious Label = "anxious"
	Neutral Label = "neutral"
)

// Labels enumerates the closed label set in matching order. Neutral has no
// keywords and must stay last, otherwise it would win every match.
var Labels = []Label{Happy, Sad, Angry, Anxious, Neutral}

// Entry binds one label to its keyword set.
type Entry struct {
	Label    Label
	Keywords []string
}

// Default returns the stock keyword taxonomy.
func Default() []Entry {
	return []Entry{
		{Label: Happy, Keywords: []string{"happy", "joy", "excited", "glad", "cheerful"}},
		{Label: Sad, Keywords: []string{"sad", "down", "depressed", "unhappy", "lonely"}},
		{Label: Angry, Keywords: []string{"angry", "mad", "furious", "annoyed", "irritated"}},
		{Label: Anxious, Keywords: []string{"anxious", "worried", "nervous", "tense", "scared"}},
		{Label: Neutral, Keywords: nil},
	}
}

// Matcher maps free text to exactly one emotion label by whole-word keyword
// matching. Entries are tried in order; the first label with any keyword hit
// wins, no cross-label scoring.
type Matcher struct {
	entries  []Entry
	patterns []*regexp.Regexp
}

// NewMatcher compiles one word-boundary pattern per entry. Entries without
// keywords compile to nil and never match directly.
func NewMatcher(entries []Entry) *Matcher {
	m := &Matcher{entries: entries, patterns: make([]*regexp.Regexp, len(entries))}
	for i, entry := range entries {
		if len(entry.Keywords) == 0 {
			continue
		}
		quoted := make([]string, 0, len(entry.Keywords))
		for _, kw := range entry.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			quoted = append(quoted, regexp.QuoteMeta(kw))
		}
		if len(quoted) == 0 {
			continue
		}
		m.patterns[i] = regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
	}
	return m
}

// Match classifies text, returning Neutral when no keyword occurs.
func (m *Matcher) Match(text string) Label {
	normalized := strings.ToLower(text)
	for i, entry := range m.entries {
		if m.patterns[i] == nil {
			continue
		}
		if m.patterns[i].MatchString(normalized) {
			return entry.Label
		}
	}
	return Neutral
}

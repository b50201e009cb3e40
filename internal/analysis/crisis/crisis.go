package crisis

import (
	"regexp"
	"strings"
)

// DefaultPatterns covers acute self-harm and suicide signals, apostrophe
// variants included. Matching is done on lowercased text.
func DefaultPatterns() []string {
	return []string{
		`\bkill(ing)?\s+myself\b`,
		`\bsuicid(e|al)\b`,
		`\bend\s+it\s+all\b`,
		`\bself[\s-]?harm\b`,
		`\bcutting\b`,
		`\bi\s+want\s+to\s+die\b`,
		`\bi\s+(don['’]?t|do\s+not)\s+want\s+to\s+live\b`,
		`\bhurt(ing)?\s+myself\b`,
		`\bbetter\s+off\s+dead\b`,
	}
}

// Detector flags text that contains a high-risk phrase. It runs before
// emotion classification and must never depend on LLM availability.
type Detector struct {
	patterns []*regexp.Regexp
}

// NewDetector compiles the given pattern list.
func NewDetector(patterns []string) (*Detector, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, re)
	}
	return &Detector{patterns: compiled}, nil
}

// MustDetector is NewDetector for known-good pattern sets.
func MustDetector(patterns []string) *Detector {
	d, err := NewDetector(patterns)
	if err != nil {
		panic(err)
	}
	return d
}

// Detect reports whether any pattern matches anywhere in the text.
func (d *Detector) Detect(text string) bool {
	normalized := strings.ToLower(text)
	for _, re := range d.patterns {
		if re.MatchString(normalized) {
			return true
		}
	}
	return false
}

package game

import (
	"strings"
	"unicode"
)

// Autopilot maps free-text travel requests to bodies by keyword.
type Autopilot struct {
	entries []autopilotEntry
}

type autopilotEntry struct {
	id       string
	keywords []string
}

// NewAutopilot indexes each body's id and catalog keywords, in catalog order.
func NewAutopilot(bodies []CelestialBody) *Autopilot {
	a := &Autopilot{entries: make([]autopilotEntry, 0, len(bodies))}
	for _, b := range bodies {
		kw := []string{strings.ToLower(b.ID)}
		for _, k := range b.Keywords {
			kw = append(kw, strings.ToLower(k))
		}
		a.entries = append(a.entries, autopilotEntry{id: b.ID, keywords: kw})
	}
	return a
}

// Resolve returns the first body, in catalog order, with a keyword matching
// a word of text. Keywords of three or more letters also match as a word
// prefix ("laptops", "clothing"); shorter ones must match the whole word.
func (a *Autopilot) Resolve(text string) (string, bool) {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return "", false
	}
	for _, e := range a.entries {
		for _, kw := range e.keywords {
			for _, w := range words {
				if w == kw || (len(kw) >= 3 && strings.HasPrefix(w, kw)) {
					return e.id, true
				}
			}
		}
	}
	return "", false
}

// Package autocomplete implements live completion of @reference tokens
// inside description text. Each tracked input field owns one State;
// the engine itself is stateless and safe to share.
package autocomplete

import (
	"sort"
	"strings"

	"semcanvas/domain/config"
	"semcanvas/domain/core/valueobjects"
	"semcanvas/domain/parser"
)

// Candidate is one offerable completion
type Candidate struct {
	ID   string
	Name string
	Type valueobjects.ArtifactType

	// IsNew marks the synthetic "create new artifact" entry offered when
	// the typed token matches nothing.
	IsNew bool
}

// State is the per-field autocomplete state. Positions are rune offsets
// into the field's text.
type State struct {
	Active          bool
	Query           string
	TriggerPosition int
	Candidates      []Candidate
	SelectedIndex   int
}

// Engine detects in-progress @ tokens and ranks candidates
type Engine struct {
	cfg *config.DomainConfig
}

// New creates an engine bound to a domain configuration
func New(cfg *config.DomainConfig) *Engine {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &Engine{cfg: cfg}
}

// Update recomputes the state after a keystroke. It scans backward from
// the caret for the nearest '@' within the configured lookback window;
// any disallowed character between the '@' and the caret (a space
// included) deactivates completion.
func (e *Engine) Update(text string, caret int, known []Candidate) State {
	runes := []rune(text)
	if caret < 0 || caret > len(runes) {
		return State{}
	}

	trigger := -1
	for i := caret - 1; i >= 0 && caret-i <= e.cfg.TriggerLookback; i-- {
		r := runes[i]
		if r == '@' {
			trigger = i
			break
		}
		if !parser.IsReferenceRune(r) {
			return State{}
		}
	}
	if trigger < 0 {
		return State{}
	}

	query := string(runes[trigger+1 : caret])
	candidates := e.rank(query, known)

	if query != "" && !hasExactMatch(query, candidates) {
		candidates = append(candidates, Candidate{
			ID:    valueobjects.StripWhitespace(query),
			Name:  query,
			Type:  valueobjects.TypeConcept,
			IsNew: true,
		})
	}
	if len(candidates) > e.cfg.MaxCandidates {
		candidates = candidates[:e.cfg.MaxCandidates]
	}

	return State{
		Active:          true,
		Query:           query,
		TriggerPosition: trigger,
		Candidates:      candidates,
	}
}

// rank filters to candidates whose name or id contains the query
// (case-insensitively) and orders prefix matches before contains-only
// matches, ties broken by name comparison.
func (e *Engine) rank(query string, known []Candidate) []Candidate {
	q := strings.ToLower(query)

	type scored struct {
		c      Candidate
		prefix bool
	}
	var matches []scored
	for _, c := range known {
		name := strings.ToLower(c.Name)
		id := strings.ToLower(c.ID)
		if q != "" && !strings.Contains(name, q) && !strings.Contains(id, q) {
			continue
		}
		matches = append(matches, scored{
			c:      c,
			prefix: strings.HasPrefix(name, q) || strings.HasPrefix(id, q),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].prefix != matches[j].prefix {
			return matches[i].prefix
		}
		return strings.ToLower(matches[i].c.Name) < strings.ToLower(matches[j].c.Name)
	})

	out := make([]Candidate, len(matches))
	for i, m := range matches {
		out[i] = m.c
	}
	return out
}

func hasExactMatch(query string, candidates []Candidate) bool {
	for _, c := range candidates {
		if strings.EqualFold(c.ID, query) || strings.EqualFold(c.Name, query) {
			return true
		}
	}
	return false
}

// Key is a keyboard input routed to an active completion
type Key int

const (
	KeyDown Key = iota
	KeyUp
	KeyTab
	KeyShiftTab
	KeyEnter
	KeyEscape
	KeyDigit1 // KeyDigit1 + n-1 addresses the nth candidate
)

// Step advances the state for one key press. The second return reports
// whether the key was consumed; unconsumed keys pass through to the
// text field. A consumed Enter means "commit the selection"; the caller
// then invokes Commit.
func (s State) Step(k Key) (State, bool) {
	if !s.Active || len(s.Candidates) == 0 {
		return s, false
	}

	switch {
	case k == KeyDown || k == KeyTab:
		s.SelectedIndex = (s.SelectedIndex + 1) % len(s.Candidates)
		return s, true
	case k == KeyUp || k == KeyShiftTab:
		s.SelectedIndex = (s.SelectedIndex - 1 + len(s.Candidates)) % len(s.Candidates)
		return s, true
	case k == KeyEscape:
		return State{}, true
	case k == KeyEnter:
		return s, true
	case k >= KeyDigit1 && int(k-KeyDigit1) < 9:
		if n := int(k - KeyDigit1); n < len(s.Candidates) {
			s.SelectedIndex = n
			return s, true
		}
		return s, false
	}
	return s, false
}

// Selected returns the currently highlighted candidate
func (s State) Selected() (Candidate, bool) {
	if !s.Active || s.SelectedIndex < 0 || s.SelectedIndex >= len(s.Candidates) {
		return Candidate{}, false
	}
	return s.Candidates[s.SelectedIndex], true
}

// Commit rewrites the text span [TriggerPosition, caret) to "@<id> ",
// returning the new text and the caret position just after the inserted
// space. The caller deactivates the state and re-parses the text.
func (s State) Commit(text string, caret int, chosen Candidate) (string, int) {
	runes := []rune(text)
	if !s.Active || s.TriggerPosition < 0 || caret > len(runes) || s.TriggerPosition >= caret {
		return text, caret
	}

	insertion := []rune("@" + chosen.ID + " ")
	out := make([]rune, 0, len(runes)-(caret-s.TriggerPosition)+len(insertion))
	out = append(out, runes[:s.TriggerPosition]...)
	out = append(out, insertion...)
	out = append(out, runes[caret:]...)

	return string(out), s.TriggerPosition + len(insertion)
}

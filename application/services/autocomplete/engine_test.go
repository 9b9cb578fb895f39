package autocomplete

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semcanvas/domain/core/valueobjects"
)

func knownCandidates() []Candidate {
	return []Candidate{
		{ID: "Hexy", Name: "Hexy", Type: valueobjects.TypeConcept},
		{ID: "HexAgent", Name: "HexAgent", Type: valueobjects.TypeActor},
		{ID: "Context", Name: "Context", Type: valueobjects.TypeContext},
	}
}

func TestTriggerActivatesOnOpenToken(t *testing.T) {
	e := New(nil)

	text := "see @Hex"
	state := e.Update(text, len([]rune(text)), knownCandidates())

	require.True(t, state.Active)
	assert.Equal(t, "Hex", state.Query)
	assert.Equal(t, 4, state.TriggerPosition)
}

func TestTriggerDeactivatesOnTrailingSpace(t *testing.T) {
	e := New(nil)

	text := "see @Hex "
	state := e.Update(text, len([]rune(text)), knownCandidates())

	assert.False(t, state.Active)
}

func TestTriggerRespectsLookbackWindow(t *testing.T) {
	e := New(nil)

	// The '@' sits beyond the 30-character lookback window.
	text := "@" + "abcdefghijklmnopqrstuvwxyzabcde"
	state := e.Update(text, len([]rune(text)), knownCandidates())

	assert.False(t, state.Active)
}

func TestRankingPrefixBeforeContains(t *testing.T) {
	e := New(nil)

	state := e.Update("see @hex", 8, knownCandidates())

	require.True(t, state.Active)
	require.GreaterOrEqual(t, len(state.Candidates), 2)
	assert.Equal(t, "HexAgent", state.Candidates[0].Name)
	assert.Equal(t, "Hexy", state.Candidates[1].Name)
	for _, c := range state.Candidates {
		assert.NotEqual(t, "Context", c.Name)
	}
}

func TestNovelTokenOffersCreateNew(t *testing.T) {
	e := New(nil)

	state := e.Update("see @Proposito", 14, knownCandidates())

	require.True(t, state.Active)
	last := state.Candidates[len(state.Candidates)-1]
	assert.True(t, last.IsNew)
	assert.Equal(t, "Proposito", last.ID)
	assert.Equal(t, valueobjects.TypeConcept, last.Type)
}

func TestKeyboardNavigationIsCircular(t *testing.T) {
	e := New(nil)
	state := e.Update("see @hex", 8, knownCandidates())
	require.True(t, state.Active)
	n := len(state.Candidates)

	for i := 0; i < n; i++ {
		var consumed bool
		state, consumed = state.Step(KeyDown)
		assert.True(t, consumed)
	}
	assert.Equal(t, 0, state.SelectedIndex)

	state, _ = state.Step(KeyUp)
	assert.Equal(t, n-1, state.SelectedIndex)

	state, _ = state.Step(KeyTab)
	assert.Equal(t, 0, state.SelectedIndex)
}

func TestDigitJumpSelectsNthCandidate(t *testing.T) {
	e := New(nil)
	state := e.Update("see @hex", 8, knownCandidates())
	require.True(t, state.Active)

	state, consumed := state.Step(KeyDigit1 + 1)
	assert.True(t, consumed)
	assert.Equal(t, 1, state.SelectedIndex)

	// A digit past the candidate list is not consumed.
	_, consumed = state.Step(KeyDigit1 + 8)
	assert.False(t, consumed)
}

func TestEscapeDeactivatesWithoutCommit(t *testing.T) {
	e := New(nil)
	state := e.Update("see @hex", 8, knownCandidates())
	require.True(t, state.Active)

	state, consumed := state.Step(KeyEscape)
	assert.True(t, consumed)
	assert.False(t, state.Active)
}

func TestCommitRewritesTokenAndMovesCaret(t *testing.T) {
	e := New(nil)
	text := "see @Hex and more"
	caret := 8 // just after "@Hex"
	state := e.Update(text, caret, knownCandidates())
	require.True(t, state.Active)

	chosen, ok := state.Selected()
	require.True(t, ok)
	newText, newCaret := state.Commit(text, caret, chosen)

	assert.Equal(t, "see @HexAgent  and more", newText)
	assert.Equal(t, len([]rune("see @HexAgent ")), newCaret)
}

func TestCommitHandlesAccentedRunes(t *testing.T) {
	e := New(nil)
	known := []Candidate{{ID: "Propósito", Name: "Propósito", Type: valueobjects.TypeConcept}}

	text := "guiado por @Prop"
	caret := len([]rune(text))
	state := e.Update(text, caret, known)
	require.True(t, state.Active)

	chosen, _ := state.Selected()
	newText, newCaret := state.Commit(text, caret, chosen)

	assert.Equal(t, "guiado por @Propósito ", newText)
	assert.Equal(t, len([]rune(newText)), newCaret)
}

func TestKeysPassThroughWhenInactive(t *testing.T) {
	var state State

	_, consumed := state.Step(KeyDown)
	assert.False(t, consumed)
	_, consumed = state.Step(KeyEnter)
	assert.False(t, consumed)
}

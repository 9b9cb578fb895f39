package interaction

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semcanvas/application/commands"
	"semcanvas/application/commands/bus"
	"semcanvas/domain/config"
	"semcanvas/domain/core/entities"
	"semcanvas/domain/core/valueobjects"
)

type recordingDispatcher struct {
	sent []bus.Command
	err  error
}

func (d *recordingDispatcher) Send(_ context.Context, cmd bus.Command) error {
	d.sent = append(d.sent, cmd)
	return d.err
}

type recordingSim struct {
	pins   []string
	unpins []string
	lastX  float64
	lastY  float64
}

func (s *recordingSim) SetGraph(_ []*entities.Artifact, _ []*entities.Relationship) {}

func (s *recordingSim) Pin(id valueobjects.ArtifactID, x, y float64) {
	s.pins = append(s.pins, id.String())
	s.lastX, s.lastY = x, y
}

func (s *recordingSim) Unpin(id valueobjects.ArtifactID) {
	s.unpins = append(s.unpins, id.String())
}

func (s *recordingSim) OnTick(func(map[string]valueobjects.Position)) {}

type recordingNotifier struct {
	errors []string
}

func (n *recordingNotifier) Info(string)        {}
func (n *recordingNotifier) Error(msg string)   { n.errors = append(n.errors, msg) }

type fixture struct {
	session    *Session
	dispatcher *recordingDispatcher
	sim        *recordingSim
	notifier   *recordingNotifier
	clock      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		dispatcher: &recordingDispatcher{},
		sim:        &recordingSim{},
		notifier:   &recordingNotifier{},
		clock:      time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.session = NewSession(config.DefaultDomainConfig(), f.dispatcher, f.sim, f.notifier, nil)
	f.session.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

func mustID(t *testing.T, raw string) valueobjects.ArtifactID {
	t.Helper()
	id, err := valueobjects.NewArtifactIDFromString(raw)
	require.NoError(t, err)
	return id
}

func twoNodes(t *testing.T) []Node {
	return []Node{
		{ID: mustID(t, "Origen"), X: 100, Y: 100},
		{ID: mustID(t, "Destino"), X: 300, Y: 100},
	}
}

func TestClickWithinGraceOpensEditorWithoutMove(t *testing.T) {
	f := newFixture(t)
	f.session.SetNodes(twoNodes(t))

	var opened []string
	f.session.OnOpenEditor = func(id valueobjects.ArtifactID) {
		opened = append(opened, id.String())
	}

	f.session.PointerDown(102, 98, false)
	f.advance(50 * time.Millisecond)
	f.session.PointerUp(102, 98)

	assert.Equal(t, []string{"Origen"}, opened)
	assert.Empty(t, f.dispatcher.sent)
	assert.Empty(t, f.sim.pins)
}

func TestDragPersistsExactlyOneFinalPosition(t *testing.T) {
	f := newFixture(t)
	f.session.SetNodes(twoNodes(t))

	f.session.PointerDown(100, 100, false)
	f.advance(200 * time.Millisecond)
	f.session.PointerMove(150, 120)
	f.session.FlushFrame()
	f.session.PointerMove(200, 140)
	f.session.PointerMove(210, 150)
	f.session.FlushFrame()
	f.session.PointerUp(210, 150)

	require.Len(t, f.dispatcher.sent, 1)
	move, ok := f.dispatcher.sent[0].(commands.MoveArtifactCommand)
	require.True(t, ok)
	assert.Equal(t, "Origen", move.ID)
	assert.Equal(t, 210.0, move.X)
	assert.Equal(t, 150.0, move.Y)
	assert.Equal(t, SourceCanvas, move.Source)

	// Two flushes, three moves: writes are frame-coalesced.
	assert.Len(t, f.sim.pins, 2)
	assert.Equal(t, []string{"Origen"}, f.sim.unpins)
}

func TestClickAfterDragSuppressedThenAllowed(t *testing.T) {
	f := newFixture(t)
	f.session.SetNodes(twoNodes(t))

	f.session.PointerDown(100, 100, false)
	f.advance(200 * time.Millisecond)
	f.session.PointerMove(150, 120)
	f.session.PointerUp(150, 120)

	var opened int
	f.session.OnOpenEditor = func(valueobjects.ArtifactID) { opened++ }

	f.session.SetNodes([]Node{{ID: mustID(t, "Origen"), X: 150, Y: 120}})
	f.advance(100 * time.Millisecond)
	f.session.PointerDown(150, 120, false)
	f.session.PointerUp(150, 120)
	assert.Zero(t, opened)

	f.advance(300 * time.Millisecond)
	f.session.PointerDown(150, 120, false)
	f.session.PointerUp(150, 120)
	assert.Equal(t, 1, opened)
}

func TestMarqueeSelectionAndNormalization(t *testing.T) {
	f := newFixture(t)
	f.session.SetNodes(twoNodes(t))

	// Drawn backward, from bottom-right to top-left.
	f.session.PointerDown(350, 200, false)
	f.session.PointerMove(50, 50)
	assert.True(t, f.session.IsSelecting())
	f.session.PointerUp(50, 50)

	assert.ElementsMatch(t, []string{"Origen", "Destino"}, f.session.Selection())
	assert.False(t, f.session.IsSelecting())
}

func TestMarqueeArmsCanvasClickSuppression(t *testing.T) {
	f := newFixture(t)
	f.session.SetNodes(twoNodes(t))

	var drafts int
	f.session.OnCreateDraft = func(x, y float64) { drafts++ }

	f.session.PointerDown(400, 300, false)
	f.session.PointerMove(500, 400)
	f.session.PointerUp(500, 400)

	f.advance(100 * time.Millisecond)
	f.session.PointerDown(600, 300, false)
	f.session.PointerUp(600, 300)
	assert.Zero(t, drafts)

	f.advance(time.Second)
	f.session.PointerDown(600, 300, false)
	f.session.PointerUp(600, 300)
	assert.Equal(t, 1, drafts)
}

func TestTinyCanvasDragStaysAClick(t *testing.T) {
	f := newFixture(t)
	f.session.SetNodes(twoNodes(t))

	var drafts int
	f.session.OnCreateDraft = func(x, y float64) { drafts++ }

	f.session.PointerDown(400, 300, false)
	f.session.PointerMove(403, 302)
	assert.False(t, f.session.IsSelecting())
	f.session.PointerUp(403, 302)

	assert.Equal(t, 1, drafts)
}

func TestShiftPreservesSelectionOnCanvasPress(t *testing.T) {
	f := newFixture(t)
	f.session.SetNodes(twoNodes(t))

	f.session.PointerDown(50, 50, false)
	f.session.PointerMove(150, 150)
	f.session.PointerUp(150, 150)
	require.Equal(t, []string{"Origen"}, f.session.Selection())

	f.advance(time.Second)
	f.session.PointerDown(600, 600, true)
	assert.Equal(t, []string{"Origen"}, f.session.Selection())

	f.session.PointerDown(600, 600, false)
	assert.Empty(t, f.session.Selection())
}

func TestRelationCreatedWithinHitRadius(t *testing.T) {
	f := newFixture(t)
	f.session.SetNodes(twoNodes(t))

	var opened []string
	f.session.OnOpenEditor = func(id valueobjects.ArtifactID) {
		opened = append(opened, id.String())
	}

	f.session.DoubleClick(100, 100)
	src, ok := f.session.RelationSource()
	require.True(t, ok)
	assert.Equal(t, "Origen", src.String())

	f.session.PointerMove(200, 100)
	f.session.PointerUp(310, 95) // within 28px of Destino

	require.Len(t, f.dispatcher.sent, 1)
	rel, ok := f.dispatcher.sent[0].(commands.CreateRelationshipCommand)
	require.True(t, ok)
	assert.Equal(t, "Origen", rel.SourceID)
	assert.Equal(t, "Destino", rel.TargetID)
	assert.Equal(t, 0.5, rel.Weight)

	// The source's editor opens so the appended reference is visible.
	assert.Equal(t, []string{"Origen"}, opened)
	_, ok = f.session.RelationSource()
	assert.False(t, ok)
}

func TestRelationAbandonedOnEmptyRelease(t *testing.T) {
	f := newFixture(t)
	f.session.SetNodes(twoNodes(t))

	f.session.DoubleClick(100, 100)
	f.session.PointerUp(500, 500)

	assert.Empty(t, f.dispatcher.sent)
	_, ok := f.session.RelationSource()
	assert.False(t, ok)
}

func TestRelationToSelfIsAbandoned(t *testing.T) {
	f := newFixture(t)
	f.session.SetNodes(twoNodes(t))

	f.session.DoubleClick(100, 100)
	f.session.PointerUp(105, 102)

	assert.Empty(t, f.dispatcher.sent)
}

func TestContextMenuBulkDelete(t *testing.T) {
	f := newFixture(t)
	f.session.SetNodes(twoNodes(t))

	f.session.PointerDown(50, 50, false)
	f.session.PointerMove(350, 200)
	f.session.PointerUp(350, 200)
	require.Len(t, f.session.Selection(), 2)

	f.session.ContextMenu(200, 150)
	assert.True(t, f.session.ContextMenuOpen())

	f.session.DeleteSelected(context.Background())
	assert.False(t, f.session.ContextMenuOpen())
	assert.Empty(t, f.session.Selection())

	require.Len(t, f.dispatcher.sent, 1)
	del, ok := f.dispatcher.sent[0].(commands.BulkDeleteArtifactsCommand)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"Origen", "Destino"}, del.IDs)
}

func TestDeleteSelectedIsNoOpOnEmptySelection(t *testing.T) {
	f := newFixture(t)

	f.session.ContextMenu(200, 150)
	f.session.DeleteSelected(context.Background())

	assert.Empty(t, f.dispatcher.sent)
}

func TestAnyClickClosesContextMenu(t *testing.T) {
	f := newFixture(t)
	f.session.SetNodes(twoNodes(t))

	f.session.ContextMenu(200, 150)
	f.session.PointerDown(100, 100, false)
	f.session.PointerUp(100, 100)

	assert.False(t, f.session.ContextMenuOpen())
	// The press only closed the menu; no editor or drag started.
	assert.Empty(t, f.dispatcher.sent)
}

func TestOpenEditorSuppressesCanvasGestures(t *testing.T) {
	f := newFixture(t)
	f.session.SetNodes(twoNodes(t))

	var opened int
	f.session.OnOpenEditor = func(valueobjects.ArtifactID) { opened++ }

	f.session.PointerDown(100, 100, false)
	f.session.PointerUp(100, 100)
	require.Equal(t, 1, opened)
	_, editorOpen := f.session.ActiveEditor()
	require.True(t, editorOpen)

	// The first press closes the overlay and does nothing else.
	f.session.PointerDown(300, 100, false)
	f.session.PointerUp(300, 100)
	assert.Equal(t, 1, opened)
	_, editorOpen = f.session.ActiveEditor()
	assert.False(t, editorOpen)
}

func TestRepositoryFailureNotifiesWithoutRollback(t *testing.T) {
	f := newFixture(t)
	f.session.SetNodes(twoNodes(t))
	f.dispatcher.err = assert.AnError

	f.session.PointerDown(100, 100, false)
	f.advance(200 * time.Millisecond)
	f.session.PointerMove(150, 120)
	f.session.PointerUp(150, 120)

	require.Len(t, f.dispatcher.sent, 1)
	require.Len(t, f.notifier.errors, 1)
	assert.False(t, f.session.IsDragging())
}

func TestRelationPressOnTargetLeavesNoClickState(t *testing.T) {
	f := newFixture(t)
	f.session.SetNodes(twoNodes(t))

	var opened []string
	f.session.OnOpenEditor = func(id valueobjects.ArtifactID) {
		opened = append(opened, id.String())
	}
	var drafts []point
	f.session.OnCreateDraft = func(x, y float64) {
		drafts = append(drafts, point{x, y})
	}

	f.session.DoubleClick(100, 100)
	f.session.PointerDown(300, 100, false)
	f.session.PointerUp(300, 100)

	require.Len(t, f.dispatcher.sent, 1)
	rel, ok := f.dispatcher.sent[0].(commands.CreateRelationshipCommand)
	require.True(t, ok)
	assert.Equal(t, "Destino", rel.TargetID)
	require.Equal(t, []string{"Origen"}, opened)

	// Dismiss the source editor, then click empty canvas: the click
	// must create a draft there, not resurrect the relation target.
	f.session.PointerDown(600, 400, false)
	f.session.PointerUp(600, 400)
	f.session.PointerDown(600, 400, false)
	f.session.PointerUp(600, 400)

	assert.Equal(t, []string{"Origen"}, opened)
	require.Len(t, drafts, 1)
	assert.Equal(t, point{600, 400}, drafts[0])
}

func TestAbandonedRelationLeavesNoMarqueeAnchor(t *testing.T) {
	f := newFixture(t)
	f.session.SetNodes(twoNodes(t))

	f.session.DoubleClick(100, 100)
	f.session.PointerDown(500, 500, false)
	f.session.PointerUp(500, 500)

	_, ok := f.session.RelationSource()
	require.False(t, ok)

	// Moving without a button down must not start a marquee off the
	// abandoned gesture's press point.
	f.session.PointerMove(50, 50)
	assert.False(t, f.session.IsSelecting())
	assert.Empty(t, f.session.Selection())
	assert.Empty(t, f.dispatcher.sent)
}

func TestDeleteKeyIgnoredWhileEditorOpen(t *testing.T) {
	f := newFixture(t)
	f.session.SetNodes(twoNodes(t))

	f.session.PointerDown(50, 50, false)
	f.session.PointerMove(350, 200)
	f.session.PointerUp(350, 200)
	require.Len(t, f.session.Selection(), 2)

	f.advance(time.Second)
	f.session.PointerDown(100, 100, false)
	f.session.PointerUp(100, 100)
	_, editorOpen := f.session.ActiveEditor()
	require.True(t, editorOpen)

	f.session.DeleteKey(context.Background())
	assert.Empty(t, f.dispatcher.sent)
	require.Len(t, f.session.Selection(), 2)

	f.session.CloseEditor()
	f.session.DeleteKey(context.Background())

	require.Len(t, f.dispatcher.sent, 1)
	del, ok := f.dispatcher.sent[0].(commands.BulkDeleteArtifactsCommand)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"Origen", "Destino"}, del.IDs)
	assert.Empty(t, f.session.Selection())
}

// Package interaction owns the pointer-driven canvas gestures: click to
// create or edit, drag to move, double-click to begin a relation,
// marquee multi-select and context-menu bulk delete. One Session serves
// one canvas.
package interaction

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"semcanvas/application/commands"
	"semcanvas/application/commands/bus"
	"semcanvas/application/ports"
	"semcanvas/domain/config"
	"semcanvas/domain/core/valueobjects"
)

// SourceCanvas tags mutations issued by pointer gestures so views can
// tell their own writes apart from remote ones.
const SourceCanvas = "canvas"

// Dispatcher sends gesture mutations into the application layer
type Dispatcher interface {
	Send(ctx context.Context, cmd bus.Command) error
}

// Node is the hit-testing snapshot of one rendered artifact. The
// renderer refreshes these on every tick; the session never mutates
// them.
type Node struct {
	ID valueobjects.ArtifactID
	X  float64
	Y  float64
}

// Rect is a normalized selection rectangle (Min <= Max on both axes)
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// NormalizeRect builds a Rect from two arbitrary corners
func NormalizeRect(x1, y1, x2, y2 float64) Rect {
	return Rect{
		MinX: math.Min(x1, x2),
		MinY: math.Min(y1, y2),
		MaxX: math.Max(x1, x2),
		MaxY: math.Max(y1, y2),
	}
}

// IntersectsCircle reports whether the rectangle touches a circle of
// the given radius centered at (cx, cy)
func (r Rect) IntersectsCircle(cx, cy, radius float64) bool {
	nx := math.Max(r.MinX, math.Min(cx, r.MaxX))
	ny := math.Max(r.MinY, math.Min(cy, r.MaxY))
	return math.Hypot(cx-nx, cy-ny) <= radius
}

type point struct {
	x, y float64
}

type pendingDrag struct {
	id      valueobjects.ArtifactID
	offsetX float64
	offsetY float64
	downAt  time.Time
}

// Session is the per-canvas interaction state machine. It is not safe
// for concurrent use; pointer events arrive on one goroutine.
type Session struct {
	cfg        *config.DomainConfig
	dispatcher Dispatcher
	sim        ports.Simulation
	notifier   ports.Notifier
	logger     *zap.Logger

	now func() time.Time

	nodes     []Node
	selection map[string]struct{}

	// activeEditor suppresses canvas gestures while an overlay editor
	// is open; the first pointer-down only closes it.
	activeEditor *valueobjects.ArtifactID

	anchor    *point
	selecting bool
	marquee   Rect

	pending  *pendingDrag
	dragging bool
	dragID   valueobjects.ArtifactID
	dragPos  point
	// frameWrite holds at most one position write per animation frame;
	// FlushFrame applies it to the simulation pin.
	frameWrite *point

	relationSource *valueobjects.ArtifactID
	relationLine   [2]point

	menuOpen bool
	menuAt   point

	suppressClicksUntil time.Time

	// OnCreateDraft fires on a plain canvas click; the temporal
	// lifecycle places a draft editor there.
	OnCreateDraft func(x, y float64)

	// OnOpenEditor fires when a gesture should open an artifact's
	// description editor.
	OnOpenEditor func(id valueobjects.ArtifactID)
}

// NewSession wires a session to its collaborators
func NewSession(cfg *config.DomainConfig, dispatcher Dispatcher, sim ports.Simulation, notifier ports.Notifier, logger *zap.Logger) *Session {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		cfg:        cfg,
		dispatcher: dispatcher,
		sim:        sim,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
		selection:  make(map[string]struct{}),
	}
}

// SetNodes replaces the hit-testing snapshot
func (s *Session) SetNodes(nodes []Node) {
	s.nodes = nodes
}

// Selection returns the ids in the current multi-selection
func (s *Session) Selection() []string {
	ids := make([]string, 0, len(s.selection))
	for id := range s.selection {
		ids = append(ids, id)
	}
	return ids
}

// IsDragging reports whether a node is gripped and following the pointer
func (s *Session) IsDragging() bool { return s.dragging }

// IsSelecting reports whether a marquee is being drawn
func (s *Session) IsSelecting() bool { return s.selecting }

// Marquee returns the live selection rectangle; meaningful only while
// IsSelecting
func (s *Session) Marquee() Rect { return s.marquee }

// RelationSource returns the node a pending relation line starts from
func (s *Session) RelationSource() (valueobjects.ArtifactID, bool) {
	if s.relationSource == nil {
		return valueobjects.ArtifactID{}, false
	}
	return *s.relationSource, true
}

// ContextMenuOpen reports whether the right-click menu is showing
func (s *Session) ContextMenuOpen() bool { return s.menuOpen }

// ActiveEditor returns the artifact whose overlay editor is open
func (s *Session) ActiveEditor() (valueobjects.ArtifactID, bool) {
	if s.activeEditor == nil {
		return valueobjects.ArtifactID{}, false
	}
	return *s.activeEditor, true
}

// CloseEditor dismisses the overlay editor, re-enabling canvas gestures
func (s *Session) CloseEditor() {
	s.activeEditor = nil
}

// PointerDown begins a gesture at (x, y). shift preserves the current
// selection when pressing on empty canvas.
func (s *Session) PointerDown(x, y float64, shift bool) {
	if s.menuOpen {
		s.menuOpen = false
		return
	}
	if s.activeEditor != nil {
		s.closeEditor()
		return
	}
	if s.relationSource != nil {
		// The press preceding the relation-completing release belongs
		// to the relation gesture; it must not arm a drag or a marquee.
		return
	}

	if node := s.hitTest(x, y); node != nil {
		s.pending = &pendingDrag{
			id:      node.ID,
			offsetX: x - node.X,
			offsetY: y - node.Y,
			downAt:  s.now(),
		}
		return
	}

	if !shift {
		s.selection = make(map[string]struct{})
	}
	s.anchor = &point{x, y}
}

// PointerMove advances the gesture in progress
func (s *Session) PointerMove(x, y float64) {
	if s.activeEditor != nil {
		return
	}

	if s.relationSource != nil {
		s.relationLine[1] = point{x, y}
		return
	}

	if s.dragging {
		s.dragPos = point{x - s.pending.offsetX, y - s.pending.offsetY}
		s.frameWrite = &point{s.dragPos.x, s.dragPos.y}
		return
	}

	if s.pending != nil {
		if s.now().Sub(s.pending.downAt) >= s.cfg.DragGraceDelay {
			s.dragging = true
			s.dragPos = point{x - s.pending.offsetX, y - s.pending.offsetY}
			s.frameWrite = &point{s.dragPos.x, s.dragPos.y}
		}
		return
	}

	if s.anchor != nil {
		if !s.selecting && math.Hypot(x-s.anchor.x, y-s.anchor.y) > s.cfg.MoveThresholdPx {
			s.selecting = true
		}
		if s.selecting {
			s.marquee = NormalizeRect(s.anchor.x, s.anchor.y, x, y)
			s.recomputeSelection()
		}
	}
}

// FlushFrame applies the coalesced drag position to the simulation pin.
// The renderer calls this once per animation frame.
func (s *Session) FlushFrame() {
	if s.frameWrite == nil || !s.dragging {
		return
	}
	if s.sim != nil {
		s.sim.Pin(s.pending.id, s.frameWrite.x, s.frameWrite.y)
	}
	s.frameWrite = nil
}

// PointerUp completes the gesture at (x, y)
func (s *Session) PointerUp(x, y float64) {
	switch {
	case s.relationSource != nil:
		s.finishRelation(x, y)

	case s.dragging:
		s.finishDrag()

	case s.pending != nil:
		// Grace never elapsed: a true click on the node.
		id := s.pending.id
		s.pending = nil
		if s.clicksSuppressed() {
			return
		}
		s.openEditor(id)

	case s.selecting:
		s.selecting = false
		s.anchor = nil
		s.suppressClicksUntil = s.now().Add(s.cfg.PostSelectSuppression)

	case s.anchor != nil:
		// A plain click on empty canvas.
		s.anchor = nil
		if s.clicksSuppressed() {
			return
		}
		if s.OnCreateDraft != nil {
			s.OnCreateDraft(x, y)
		}
	}
}

// DoubleClick begins drawing a relation line from the node under the
// pointer, if any
func (s *Session) DoubleClick(x, y float64) {
	if s.activeEditor != nil {
		return
	}
	node := s.hitTest(x, y)
	if node == nil {
		return
	}
	s.cancelPending()
	id := node.ID
	s.relationSource = &id
	s.relationLine = [2]point{{node.X, node.Y}, {x, y}}
}

// ContextMenu opens the right-click menu at (x, y)
func (s *Session) ContextMenu(x, y float64) {
	if s.activeEditor != nil {
		return
	}
	s.menuOpen = true
	s.menuAt = point{x, y}
}

// DismissContextMenu closes the menu without acting
func (s *Session) DismissContextMenu() {
	s.menuOpen = false
}

// DeleteKey handles the Delete (or modified Backspace) shortcut. It is
// ignored while an overlay editor has focus, where the same key edits
// text instead.
func (s *Session) DeleteKey(ctx context.Context) {
	if s.activeEditor != nil {
		return
	}
	s.DeleteSelected(ctx)
}

// DeleteSelected removes every selected artifact. The context menu and
// DeleteKey both land here; it is a no-op on an empty selection.
func (s *Session) DeleteSelected(ctx context.Context) {
	s.menuOpen = false
	if len(s.selection) == 0 {
		return
	}
	cmd := commands.BulkDeleteArtifactsCommand{
		IDs:    s.Selection(),
		Source: SourceCanvas,
	}
	s.selection = make(map[string]struct{})
	s.dispatch(ctx, cmd, "delete selected artifacts")
}

func (s *Session) finishDrag() {
	id := s.pending.id
	x, y := s.dragPos.x, s.dragPos.y
	s.pending = nil
	s.dragging = false
	s.frameWrite = nil
	if s.sim != nil {
		s.sim.Unpin(id)
	}
	s.suppressClicksUntil = s.now().Add(s.cfg.PostDragSuppression)

	s.dispatch(context.Background(), commands.MoveArtifactCommand{
		ID:     id.String(),
		X:      x,
		Y:      y,
		Source: SourceCanvas,
	}, "persist moved artifact")
}

func (s *Session) finishRelation(x, y float64) {
	source := *s.relationSource
	s.relationSource = nil
	s.cancelPending()

	target := s.hitTest(x, y)
	if target == nil || target.ID.Equals(source) {
		return
	}

	s.dispatch(context.Background(), commands.CreateRelationshipCommand{
		SourceID: source.String(),
		TargetID: target.ID.String(),
		Weight:   s.cfg.DefaultRelationshipWeight,
		Source:   SourceCanvas,
	}, "create relationship")

	// Open the source's editor so the appended reference is visible.
	s.openEditor(source)
}

// dispatch sends a command without letting a failure disturb the
// already-applied optimistic state; the error surfaces as a
// notification instead.
func (s *Session) dispatch(ctx context.Context, cmd bus.Command, action string) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Send(ctx, cmd); err != nil {
		s.logger.Error("canvas mutation failed", zap.String("action", action), zap.Error(err))
		if s.notifier != nil {
			s.notifier.Error("could not " + action)
		}
	}
}

func (s *Session) recomputeSelection() {
	next := make(map[string]struct{})
	for _, n := range s.nodes {
		if s.marquee.IntersectsCircle(n.X, n.Y, s.cfg.NodeRadiusPx) {
			next[n.ID.String()] = struct{}{}
		}
	}
	s.selection = next
}

func (s *Session) hitTest(x, y float64) *Node {
	var best *Node
	bestDist := s.cfg.HitRadiusPx
	for i := range s.nodes {
		n := &s.nodes[i]
		if d := math.Hypot(n.X-x, n.Y-y); d <= bestDist {
			best = n
			bestDist = d
		}
	}
	return best
}

func (s *Session) clicksSuppressed() bool {
	return s.now().Before(s.suppressClicksUntil)
}

func (s *Session) openEditor(id valueobjects.ArtifactID) {
	s.activeEditor = &id
	if s.OnOpenEditor != nil {
		s.OnOpenEditor(id)
	}
}

func (s *Session) closeEditor() {
	s.activeEditor = nil
}

func (s *Session) cancelPending() {
	s.pending = nil
	s.dragging = false
	s.frameWrite = nil
	s.anchor = nil
	s.selecting = false
}

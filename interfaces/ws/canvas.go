package ws

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"semcanvas/application/ports"
	"semcanvas/application/services/interaction"
	"semcanvas/application/services/temporal"
	"semcanvas/domain/config"
	"semcanvas/domain/core/valueobjects"
)

// CanvasDeps are the collaborators a per-connection interaction session
// needs. Drafts may be nil when no temporal lifecycle is mounted.
type CanvasDeps struct {
	Domain     *config.DomainConfig
	Dispatcher interaction.Dispatcher
	Drafts     *temporal.Service
	Notifier   ports.Notifier
}

// AttachCanvas enables inbound canvas frames: every subsequent
// connection gets its own interaction session driven by the pointer
// and key messages the browser sends over the socket.
func (h *Hub) AttachCanvas(deps CanvasDeps) {
	h.canvas = &deps
}

// canvasFrame is the wire shape of an inbound canvas message
type canvasFrame struct {
	Type   string       `json:"type"`
	Action string       `json:"action,omitempty"`
	X      float64      `json:"x,omitempty"`
	Y      float64      `json:"y,omitempty"`
	Shift  bool         `json:"shift,omitempty"`
	Nodes  []canvasNode `json:"nodes,omitempty"`
}

// canvasNode is one hit-testing entry pushed by the renderer
type canvasNode struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// editorFrame tells the client which artifact's editor to open
type editorFrame struct {
	Type       string `json:"type"`
	ArtifactID string `json:"artifactId"`
}

// newSession builds the interaction session for one connection
func (h *Hub) newSession(c *client) *interaction.Session {
	deps := h.canvas
	sess := interaction.NewSession(deps.Domain, deps.Dispatcher, nil, deps.Notifier, h.logger)

	sess.OnCreateDraft = func(x, y float64) {
		if deps.Drafts == nil {
			return
		}
		if _, err := deps.Drafts.CreateDraft(context.Background(), x, y, interaction.SourceCanvas); err != nil {
			h.logger.Warn("draft creation from canvas click failed", zap.Error(err))
		}
	}
	sess.OnOpenEditor = func(id valueobjects.ArtifactID) {
		c.sendFrame(editorFrame{Type: "editor", ArtifactID: id.String()})
	}
	return sess
}

// handleFrame routes one inbound message to the connection's session.
// Pointer events arrive on the connection's read goroutine, which
// matches the session's single-goroutine contract.
func (c *client) handleFrame(payload []byte) {
	if c.session == nil {
		return
	}

	var frame canvasFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		c.hub.logger.Warn("discarding malformed canvas frame", zap.Error(err))
		return
	}

	switch frame.Type {
	case "nodes":
		nodes := make([]interaction.Node, 0, len(frame.Nodes))
		for _, n := range frame.Nodes {
			id, err := valueobjects.NewArtifactIDFromString(n.ID)
			if err != nil {
				continue
			}
			nodes = append(nodes, interaction.Node{ID: id, X: n.X, Y: n.Y})
		}
		c.session.SetNodes(nodes)

	case "pointer":
		switch frame.Action {
		case "down":
			c.session.PointerDown(frame.X, frame.Y, frame.Shift)
		case "move":
			c.session.PointerMove(frame.X, frame.Y)
		case "up":
			c.session.PointerUp(frame.X, frame.Y)
		case "double":
			c.session.DoubleClick(frame.X, frame.Y)
		case "context":
			c.session.ContextMenu(frame.X, frame.Y)
		case "flush":
			c.session.FlushFrame()
		}

	case "menu":
		switch frame.Action {
		case "delete":
			c.session.DeleteSelected(context.Background())
		case "dismiss":
			c.session.DismissContextMenu()
		}

	case "key":
		switch frame.Action {
		case "delete":
			c.session.DeleteKey(context.Background())
		case "close-editor":
			c.session.CloseEditor()
		}
	}
}

// sendFrame queues a JSON frame for this client only
func (c *client) sendFrame(frame interface{}) {
	payload, err := json.Marshal(frame)
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
		c.hub.logger.Warn("dropping frame for stalled websocket client")
	}
}

package ws

import (
	"encoding/json"

	"go.uber.org/zap"
)

// notice is the wire shape of a transient user-facing notification
type notice struct {
	Type    string `json:"type"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Notifier pushes transient notices to every connected browser. It
// backs ports.Notifier, so repository failures during optimistic
// interactions surface as toasts instead of rolled-back state.
type Notifier struct {
	hub    *Hub
	logger *zap.Logger
}

// NewNotifier creates a notifier that broadcasts through the hub
func NewNotifier(hub *Hub, logger *zap.Logger) *Notifier {
	return &Notifier{hub: hub, logger: logger}
}

// Info pushes an informational notice
func (n *Notifier) Info(message string) {
	n.logger.Info("user notice", zap.String("message", message))
	n.push("info", message)
}

// Error pushes an error notice
func (n *Notifier) Error(message string) {
	n.logger.Warn("user error notice", zap.String("message", message))
	n.push("error", message)
}

func (n *Notifier) push(level, message string) {
	payload, err := json.Marshal(notice{Type: "notice", Level: level, Message: message})
	if err != nil {
		return
	}
	n.hub.broadcast(payload)
}

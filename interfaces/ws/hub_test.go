package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"semcanvas/domain/core/valueobjects"
	domainevents "semcanvas/domain/events"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("hub never reached %d clients", want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubBroadcastsEventsToClient(t *testing.T) {
	hub := NewHub(zap.NewNop())
	conn := dialHub(t, hub)
	waitForClients(t, hub, 1)

	id, err := valueobjects.NewArtifactIDFromString("Claridad")
	require.NoError(t, err)

	event := domainevents.NewArtifactCreated(id, "Claridad", valueobjects.TypeConcept, "canvas", time.Now())
	require.NoError(t, hub.Handle(context.Background(), event))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame struct {
		Type  string `json:"type"`
		Event struct {
			AggregateID string `json:"aggregate_id"`
			Source      string `json:"source"`
			Name        string `json:"name"`
		} `json:"event"`
	}
	require.NoError(t, json.Unmarshal(payload, &frame))
	assert.Equal(t, domainevents.TypeArtifactCreated, frame.Type)
	assert.Equal(t, "Claridad", frame.Event.AggregateID)
	assert.Equal(t, "canvas", frame.Event.Source)
	assert.Equal(t, "Claridad", frame.Event.Name)
}

func TestHubHandlesEveryEventType(t *testing.T) {
	hub := NewHub(zap.NewNop())

	assert.True(t, hub.CanHandle(domainevents.TypeArtifactMoved))
	assert.True(t, hub.CanHandle(domainevents.TypeTemporalPromoted))
	assert.True(t, hub.CanHandle("anything"))
}

func TestHubDropsDisconnectedClient(t *testing.T) {
	hub := NewHub(zap.NewNop())
	conn := dialHub(t, hub)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}

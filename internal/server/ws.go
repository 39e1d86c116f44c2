package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// ReadingsHandler pushes each published reading to WebSocket clients as JSON.
type ReadingsHandler struct {
	hub *Hub
	log logrus.FieldLogger
}

// NewReadingsHandler creates a new ReadingsHandler reading from hub.
func NewReadingsHandler(hub *Hub, log logrus.FieldLogger) *ReadingsHandler {
	return &ReadingsHandler{hub: hub, log: log}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *ReadingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	updates, unsubscribe := h.hub.Subscribe()
	defer unsubscribe()

	// Reading detects the client going away; incoming messages are ignored.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if _, reading, ok := h.hub.Latest(); ok {
		if err := h.send(conn, reading); err != nil {
			return
		}
	}

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case <-updates:
		}

		_, reading, _ := h.hub.Latest()
		if err := h.send(conn, reading); err != nil {
			h.log.WithError(err).Debug("websocket client dropped")
			return
		}
	}
}

func (h *ReadingsHandler) send(conn *websocket.Conn, reading Reading) error {
	msg, err := json.Marshal(reading)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, msg)
}

package network

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MRamiBalles/PuzzleEspejos/internal/platform/metrics"
	"github.com/MRamiBalles/PuzzleEspejos/internal/session"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// NewClient creates a new WebSocket client and returns it.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// PlayerAction represents an incoming command from the frontend.
type PlayerAction struct {
	Type    string          `json:"type"` // "VIEW", "ACK", "TAP", ...
	Payload json.RawMessage `json:"payload"`
}

// Register adds the client to the hub.
func (c *Client) Register() {
	c.hub.register <- c
}

// ReadPump pumps messages from the websocket connection to the session.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			break
		}
		metrics.Get().RecordWSMessage(true)

		var action PlayerAction
		if err := json.Unmarshal(message, &action); err != nil {
			c.hub.logger.Error("Failed to parse PlayerAction from WebSocket. err: " + err.Error())
			continue
		}

		c.handlePlayerAction(action)
	}
}

// cellPayload carries a single grid position.
type cellPayload struct {
	Pos int `json:"pos"`
}

// handlePlayerAction routes one command into the session state machine and
// pushes the resulting state. The UI only dispatches events and renders
// the snapshot that comes back.
func (c *Client) handlePlayerAction(action PlayerAction) {
	ctrl := c.hub.session
	var err error

	switch action.Type {
	case "VIEW":
		err = ctrl.View()
	case "ACK":
		err = ctrl.Acknowledge()
	case "TAP":
		var p cellPayload
		if err = json.Unmarshal(action.Payload, &p); err == nil {
			err = ctrl.Tap(p.Pos)
		}
	case "DRAG_START":
		var p cellPayload
		if err = json.Unmarshal(action.Payload, &p); err == nil {
			err = ctrl.DragStart(p.Pos)
		}
	case "DRAG_END":
		var p cellPayload
		if err = json.Unmarshal(action.Payload, &p); err == nil {
			err = ctrl.DragEnd(p.Pos)
		}
	case "DRAG_CANCEL":
		ctrl.DragCancel()
	case "MIRROR_PICK":
		var p struct {
			Option string `json:"option"`
		}
		if err = json.Unmarshal(action.Payload, &p); err == nil {
			err = ctrl.PickMirror(p.Option)
		}
	case "SET_MODE":
		var p struct {
			Mode string `json:"mode"`
		}
		if err = json.Unmarshal(action.Payload, &p); err == nil {
			err = ctrl.SetInputMode(session.InputMode(p.Mode))
		}
	case "RESTART":
		err = ctrl.Restart()
	case "RESET_ALL":
		err = ctrl.ResetAll()
	default:
		c.hub.logger.Warn("Unknown PlayerAction type: " + action.Type)
		return
	}

	// Gate violations and phase misuse are normal user-visible states, not
	// transport errors; the refreshed snapshot carries the locked status.
	if err != nil && !errors.Is(err, session.ErrLocked) && !errors.Is(err, session.ErrBadPhase) {
		c.hub.logger.Warn("PlayerAction " + action.Type + " rejected: " + err.Error())
	}
	c.hub.BroadcastState()
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

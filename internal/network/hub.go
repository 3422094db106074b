package network

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MRamiBalles/PuzzleEspejos/internal/events"
	"github.com/MRamiBalles/PuzzleEspejos/internal/platform/logger"
	"github.com/MRamiBalles/PuzzleEspejos/internal/platform/metrics"
	"github.com/MRamiBalles/PuzzleEspejos/internal/session"
)

// Client represents an active WebSocket connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains the set of active clients and broadcasts session state and
// events to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
	logger     *logger.Logger
	session    *session.Controller
}

// NewHub initializes a new WebSocket Hub bound to one session controller.
func NewHub(ctrl *session.Controller, log *logger.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     log,
		session:    ctrl,
	}
}

// Run starts the Hub's main loop to handle client connections and
// broadcasts.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket Hub shutting down.")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.Get().RecordWSConnection(1)
			h.logger.Info("New WebSocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.Get().RecordWSConnection(-1)
				h.logger.Info("WebSocket client disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
					metrics.Get().RecordWSMessage(false)
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// envelope frames every outbound message with its kind.
type envelope struct {
	Kind    string      `json:"kind"` // "state" or "event"
	Payload interface{} `json:"payload"`
}

// BroadcastState serializes the current session snapshot to all clients.
func (h *Hub) BroadcastState() {
	h.send(envelope{Kind: "state", Payload: h.session.Snapshot()})
}

// BroadcastEvent pushes one session event to all clients.
func (h *Hub) BroadcastEvent(event events.GameEvent) {
	h.send(envelope{Kind: "event", Payload: event})
}

func (h *Hub) send(e envelope) {
	payload, err := json.Marshal(e)
	if err != nil {
		metrics.Get().RecordWSError()
		h.logger.Error("Failed to serialize WebSocket message: " + err.Error())
		return
	}
	h.broadcast <- payload
}

// StartEventPoller spawns a goroutine to poll the EventLog and push new
// events (plus a refreshed state snapshot) to the Hub.
func (h *Hub) StartEventPoller(ctx context.Context, eventLog *events.EventLog) {
	go func() {
		pollInterval := time.NewTicker(200 * time.Millisecond)
		defer pollInterval.Stop()

		lastProcessedEvent := 0

		for {
			select {
			case <-ctx.Done():
				return
			case <-pollInterval.C:
				allEvents := eventLog.Replay()
				newEventsCount := len(allEvents) - lastProcessedEvent

				if newEventsCount > 0 {
					newEvents := allEvents[lastProcessedEvent:]
					for _, event := range newEvents {
						h.BroadcastEvent(event)
					}
					lastProcessedEvent = len(allEvents)
					h.BroadcastState()
				}
			}
		}
	}()
}

// StartStateTicker pushes a snapshot once per second while clients are
// connected, so countdown displays stay in sync without client-side
// timers.
func (h *Hub) StartStateTicker(ctx context.Context) {
	go func() {
		tick := time.NewTicker(1 * time.Second)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				h.mu.Lock()
				active := len(h.clients) > 0
				h.mu.Unlock()
				if active {
					h.BroadcastState()
				}
			}
		}
	}()
}

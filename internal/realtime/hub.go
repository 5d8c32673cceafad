// Package realtime fans room events out to connected clients. Each room has
// a Hub; transports (SSE, WebSocket) register a Client and drain its channel.
package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/dartsync/internal/model"
)

// Buffer size for outgoing events per client
const sendBufferSize = 64

// Client is one realtime connection of a room member
type Client struct {
	playerID    model.PlayerID
	connID      model.ConnectionID
	transport   string
	send        chan model.Event
	connectedAt time.Time
}

// NewClient creates a client for a member's connection
func NewClient(playerID model.PlayerID, connID model.ConnectionID, transport string) *Client {
	return &Client{
		playerID:    playerID,
		connID:      connID,
		transport:   transport,
		send:        make(chan model.Event, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// Events is closed when the hub drops the client
func (c *Client) Events() <-chan model.Event {
	return c.send
}

// PlayerID returns the member the client belongs to
func (c *Client) PlayerID() model.PlayerID {
	return c.playerID
}

// Hub manages the clients of a single room
type Hub struct {
	roomID  model.RoomID
	clients map[*Client]bool
	mu      sync.RWMutex
	logger  *slog.Logger

	broadcast chan model.Event
	done      chan struct{}
	closeOnce sync.Once
	closed    bool
}

// NewHub creates a new Hub for a room
func NewHub(roomID model.RoomID, logger *slog.Logger) *Hub {
	return &Hub{
		roomID:    roomID,
		clients:   make(map[*Client]bool),
		logger:    logger.With(slog.String("room_id", string(roomID))),
		broadcast: make(chan model.Event, 256),
		done:      make(chan struct{}),
	}
}

// Run delivers queued events until the hub is closed. A client whose buffer
// is full misses the event; the next full snapshot brings it back in sync.
func (h *Hub) Run() {
	h.logger.Debug("hub started")
	for {
		select {
		case event := <-h.broadcast:
			h.deliver(event)

		case <-h.done:
			// Flush what was queued before close, such as the room_closed event
			for {
				select {
				case event := <-h.broadcast:
					h.deliver(event)
				default:
					h.dropAll()
					return
				}
			}
		}
	}
}

func (h *Hub) deliver(event model.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	dropped := 0
	for client := range h.clients {
		select {
		case client.send <- event:
		default:
			dropped++
			h.logger.Warn("event dropped - client buffer full",
				slog.String("player_id", string(client.playerID)),
				slog.String("event", string(event.Type)))
		}
	}
	if dropped > 0 {
		h.logger.Warn("broadcast partial failure",
			slog.Int("sent", len(h.clients)-dropped),
			slog.Int("dropped", dropped))
	}
}

func (h *Hub) dropAll() {
	h.mu.Lock()
	h.closed = true
	count := len(h.clients)
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.mu.Unlock()
	h.logger.Debug("hub stopped", slog.Int("disconnected_clients", count))
}

// Register adds a client to the hub. Returns false if the hub is closed.
func (h *Hub) Register(client *Client) bool {
	h.mu.Lock()
	if h.closed || h.isDone() {
		h.mu.Unlock()
		return false
	}
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("client registered",
		slog.String("player_id", string(client.playerID)),
		slog.String("transport", client.transport),
		slog.Int("total_clients", count))
	return true
}

// Unregister removes a client and reports whether the same connection of
// the same player still has another client attached.
func (h *Hub) Unregister(client *Client) (stillConnected bool) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	for other := range h.clients {
		if other.playerID == client.playerID && other.connID == client.connID {
			stillConnected = true
		}
	}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("client unregistered",
		slog.String("player_id", string(client.playerID)),
		slog.Duration("connection_duration", time.Since(client.connectedAt)),
		slog.Int("total_clients", count))
	return stillConnected
}

func (h *Hub) isDone() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Broadcast queues an event for all clients
func (h *Hub) Broadcast(event model.Event) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("broadcast dropped - hub buffer full", slog.String("event", string(event.Type)))
	}
}

// Close shuts down the hub; clients see their channel closed
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HubManager manages hubs for all rooms and is the broadcaster's sink
type HubManager struct {
	hubs   map[model.RoomID]*Hub
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.RoomID]*Hub),
		logger: logger.With(slog.String("component", "realtime")),
	}
}

// GetOrCreateHub returns the hub for a room, creating one if it doesn't exist
func (m *HubManager) GetOrCreateHub(roomID model.RoomID) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[roomID]; ok {
		return hub
	}

	hub := NewHub(roomID, m.logger)
	m.hubs[roomID] = hub
	go hub.Run()
	return hub
}

// GetHub returns the hub for a room, or nil if it doesn't exist
func (m *HubManager) GetHub(roomID model.RoomID) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[roomID]
}

// Attach registers a client on the room's hub, creating the hub if needed.
// A hub closed concurrently by cleanup is replaced.
func (m *HubManager) Attach(roomID model.RoomID, client *Client) *Hub {
	for {
		hub := m.GetOrCreateHub(roomID)
		if hub.Register(client) {
			return hub
		}
		m.mu.Lock()
		if m.hubs[roomID] == hub {
			delete(m.hubs, roomID)
		}
		m.mu.Unlock()
	}
}

// Publish queues an event on the room's hub. Rooms without connected clients
// have no hub and the event is discarded.
func (m *HubManager) Publish(roomID model.RoomID, event model.Event) {
	if hub := m.GetHub(roomID); hub != nil {
		hub.Broadcast(event)
	}
}

// CloseRoom removes and closes a room's hub
func (m *HubManager) CloseRoom(roomID model.RoomID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[roomID]; ok {
		hub.Close()
		delete(m.hubs, roomID)
		m.logger.Info("hub removed", slog.String("room_id", string(roomID)))
	}
}

// CleanupEmptyHubs removes hubs with no clients
func (m *HubManager) CleanupEmptyHubs() {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, hub := range m.hubs {
		if hub.ClientCount() == 0 {
			hub.Close()
			delete(m.hubs, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("empty hubs cleaned up", slog.Int("removed", removed))
	}
}

// CloseAll closes every hub, used on shutdown
func (m *HubManager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, hub := range m.hubs {
		hub.Close()
		delete(m.hubs, id)
	}
}

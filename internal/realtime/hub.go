package realtime

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/cutgame/internal/model"
	"github.com/mcoot/cutgame/internal/notify"
	"github.com/mcoot/cutgame/internal/protocol"
)

// Hub fans a room's broadcasts out to its members and spectators.
// Delivery happens in the broadcasting goroutine so frames reach each client
// in the order they were broadcast, interleaved correctly with direct sends.
type Hub struct {
	roomCode model.RoomCode
	clients  map[*Client]bool
	mu       sync.RWMutex
	closed   bool
	logger   *slog.Logger
}

// NewHub creates a new Hub for a room
func NewHub(roomCode model.RoomCode, logger *slog.Logger) *Hub {
	return &Hub{
		roomCode: roomCode,
		clients:  make(map[*Client]bool),
		logger:   logger.With(slog.String("room_code", string(roomCode))),
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		if client.spectator {
			client.Close()
		}
		return
	}
	h.clients[client] = true
	h.logger.Debug("client registered",
		slog.String("player_id", string(client.id)),
		slog.Bool("spectator", client.spectator),
		slog.Int("total_clients", len(h.clients)))
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	h.logger.Debug("client unregistered",
		slog.String("player_id", string(client.id)),
		slog.Duration("connection_duration", time.Since(client.connectedAt)),
		slog.Int("total_clients", len(h.clients)))
}

// Broadcast delivers a frame to every client, dropping it for clients whose
// buffer is full
func (h *Hub) Broadcast(frame Frame) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	dropped := 0
	for client := range h.clients {
		if !client.deliver(frame) {
			dropped++
			h.logger.Warn("message dropped - client buffer full",
				slog.String("player_id", string(client.id)),
				slog.String("event", frame.Event))
		}
	}
	if dropped > 0 {
		h.logger.Warn("broadcast partial failure",
			slog.Int("sent", len(h.clients)-dropped),
			slog.Int("dropped", dropped))
	}
}

// Close drops every client, ending spectator streams
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	count := len(h.clients)
	for client := range h.clients {
		if client.spectator {
			client.Close()
		}
		delete(h.clients, client)
	}
	h.logger.Info("hub closed", slog.Int("disconnected_clients", count))
}

// ClientCount returns the number of registered clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// formatSSEMessage formats an SSE message with event name and data.
// Multi-line data gets a "data: " prefix on each line.
func formatSSEMessage(eventName, data string) []byte {
	var b strings.Builder
	b.WriteString("event: " + eventName + "\n")
	for _, line := range splitLines(data) {
		b.WriteString("data: " + line + "\n")
	}
	b.WriteString("\n")
	return []byte(b.String())
}

// splitLines splits a string into lines, handling various line endings
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

// HubManager tracks connected participants and per-room hubs. It is the
// Notifier the game core talks to.
type HubManager struct {
	hubs    map[model.RoomCode]*Hub
	clients map[model.PlayerID]*Client
	mu      sync.RWMutex
	logger  *slog.Logger
}

var _ notify.Notifier = (*HubManager)(nil)

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:    make(map[model.RoomCode]*Hub),
		clients: make(map[model.PlayerID]*Client),
		logger:  logger.With(slog.String("component", "realtime")),
	}
}

// Connect registers a participant's connection and returns its client
func (m *HubManager) Connect(id model.PlayerID) *Client {
	client := NewClient(id)
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.clients[id]; ok {
		old.Close()
	}
	m.clients[id] = client
	return client
}

// Disconnect forgets a participant's connection and closes it
func (m *HubManager) Disconnect(client *Client) {
	m.mu.Lock()
	if m.clients[client.id] == client {
		delete(m.clients, client.id)
	}
	hubs := make([]*Hub, 0, len(m.hubs))
	for _, hub := range m.hubs {
		hubs = append(hubs, hub)
	}
	m.mu.Unlock()

	for _, hub := range hubs {
		hub.Unregister(client)
	}
	client.Close()
}

// Watch attaches a spectator stream to a room's broadcasts. It reports
// false when the room has no hub; spectators never create one.
func (m *HubManager) Watch(code model.RoomCode, id model.PlayerID) (*Client, bool) {
	hub := m.GetHub(code)
	if hub == nil {
		return nil, false
	}
	client := newClient(id, true)
	hub.Register(client)
	return client, true
}

// Unwatch detaches a spectator stream
func (m *HubManager) Unwatch(code model.RoomCode, client *Client) {
	if hub := m.GetHub(code); hub != nil {
		hub.Unregister(client)
	}
	client.Close()
}

// Send delivers a notification to one connected participant
func (m *HubManager) Send(to model.PlayerID, n model.Notification) {
	m.mu.RLock()
	client := m.clients[to]
	m.mu.RUnlock()
	if client == nil {
		return
	}

	frame, ok := m.encode(n)
	if !ok {
		return
	}
	if !client.deliver(frame) {
		m.logger.Warn("message dropped - client buffer full",
			slog.String("player_id", string(to)),
			slog.String("event", frame.Event))
	}
}

// Broadcast delivers a notification to a room's hub
func (m *HubManager) Broadcast(code model.RoomCode, n model.Notification) {
	hub := m.GetHub(code)
	if hub == nil {
		return
	}
	if frame, ok := m.encode(n); ok {
		hub.Broadcast(frame)
	}
}

// Subscribe adds a connected participant to a room's hub
func (m *HubManager) Subscribe(code model.RoomCode, participant model.PlayerID) {
	m.mu.RLock()
	client := m.clients[participant]
	m.mu.RUnlock()

	hub := m.getOrCreateHub(code)
	if client != nil {
		hub.Register(client)
	}
}

// Unsubscribe removes a participant from a room's hub
func (m *HubManager) Unsubscribe(code model.RoomCode, participant model.PlayerID) {
	m.mu.RLock()
	client := m.clients[participant]
	hub := m.hubs[code]
	m.mu.RUnlock()

	if client != nil && hub != nil {
		hub.Unregister(client)
	}
}

// CloseGroup removes and closes a room's hub
func (m *HubManager) CloseGroup(code model.RoomCode) {
	m.RemoveHub(code)
}

// GetHub returns the hub for a room, or nil if it doesn't exist
func (m *HubManager) GetHub(code model.RoomCode) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[code]
}

func (m *HubManager) getOrCreateHub(code model.RoomCode) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[code]; ok {
		return hub
	}
	hub := NewHub(code, m.logger)
	m.hubs[code] = hub
	return hub
}

// RemoveHub removes and closes a hub
func (m *HubManager) RemoveHub(code model.RoomCode) {
	m.mu.Lock()
	hub, ok := m.hubs[code]
	delete(m.hubs, code)
	m.mu.Unlock()

	if ok {
		hub.Close()
		m.logger.Info("hub removed", slog.String("room_code", string(code)))
	}
}

// ConnectedCount returns the number of connected participants
func (m *HubManager) ConnectedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// Close ends every hub and participant connection
func (m *HubManager) Close() {
	m.mu.Lock()
	hubs := m.hubs
	clients := m.clients
	m.hubs = make(map[model.RoomCode]*Hub)
	m.clients = make(map[model.PlayerID]*Client)
	m.mu.Unlock()

	for _, hub := range hubs {
		hub.Close()
	}
	for _, client := range clients {
		client.Close()
	}
}

func (m *HubManager) encode(n model.Notification) (Frame, bool) {
	data, err := protocol.EncodeNotification(n)
	if err != nil {
		m.logger.Error("failed to encode notification",
			slog.String("event", string(n.Type)),
			slog.String("error", err.Error()))
		return Frame{}, false
	}
	return Frame{Event: string(n.Type), Data: data}, true
}

package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/mcoot/cutgame/internal/dependencies/identity"
	"github.com/mcoot/cutgame/internal/model"
	"github.com/mcoot/cutgame/internal/protocol"
)

// Config holds connection settings
type Config struct {
	// Per-connection action rate limit
	ActionsPerSecond float64
	ActionBurst      int

	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Time between pings and SSE keepalives. Must be less than PongWait.
	PingPeriod time.Duration

	// Maximum inbound message size in bytes
	MaxMessageSize int64
}

// DefaultConfig returns sensible connection defaults
func DefaultConfig() Config {
	return Config{
		ActionsPerSecond: 5,
		ActionBurst:      10,
		WriteWait:        10 * time.Second,
		PongWait:         60 * time.Second,
		PingPeriod:       30 * time.Second,
		MaxMessageSize:   4096,
	}
}

// ActionHandler applies decoded actions for a participant
type ActionHandler interface {
	Handle(ctx context.Context, sender model.PlayerID, action model.Action)
	Reject(sender model.PlayerID, err error)
}

// Gateway serves participant websockets and spectator event streams
type Gateway struct {
	hubs     *HubManager
	handler  ActionHandler
	ids      identity.Provider
	logger   *slog.Logger
	config   Config
	upgrader websocket.Upgrader
}

// NewGateway creates a new Gateway
func NewGateway(hubs *HubManager, handler ActionHandler, ids identity.Provider, logger *slog.Logger, config Config) *Gateway {
	return &Gateway{
		hubs:    hubs,
		handler: handler,
		ids:     ids,
		logger:  logger.With(slog.String("component", "gateway")),
		config:  config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Clients are CLIs and arbitrary frontends
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS upgrades the request and runs a participant session until the
// connection closes
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	id := model.PlayerID(g.ids.NewID())
	client := g.hubs.Connect(id)
	ctx := context.WithoutCancel(r.Context())

	g.logger.Info("participant connected",
		slog.String("player_id", string(id)),
		slog.String("remote_addr", r.RemoteAddr))

	g.hubs.Send(id, model.NewNotification("", model.ConnectedPayload{ParticipantID: id}))

	go g.writePump(conn, client)
	g.readPump(ctx, conn, client)

	g.handler.Handle(ctx, id, model.Disconnect{})
	g.hubs.Disconnect(client)
	_ = conn.Close()

	g.logger.Info("participant disconnected",
		slog.String("player_id", string(id)),
		slog.Duration("connection_duration", time.Since(client.connectedAt)))
}

func (g *Gateway) readPump(ctx context.Context, conn *websocket.Conn, client *Client) {
	limiter := rate.NewLimiter(rate.Limit(g.config.ActionsPerSecond), g.config.ActionBurst)

	conn.SetReadLimit(g.config.MaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(g.config.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(g.config.PongWait))
	})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.logger.Warn("websocket read failed",
					slog.String("player_id", string(client.id)),
					slog.String("error", err.Error()))
			}
			return
		}

		if !limiter.Allow() {
			g.handler.Reject(client.id, model.ErrRateLimited)
			continue
		}

		action, err := protocol.DecodeAction(msg)
		if err != nil {
			g.handler.Reject(client.id, err)
			continue
		}
		g.handler.Handle(ctx, client.id, action)
	}
}

func (g *Gateway) writePump(conn *websocket.Conn, client *Client) {
	ticker := time.NewTicker(g.config.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case frame := <-client.Frames():
			_ = conn.SetWriteDeadline(time.Now().Add(g.config.WriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame.Data); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(g.config.WriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-client.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(g.config.WriteWait))
			return
		}
	}
}

// ServeSSE streams a room's broadcasts to a read-only spectator. It returns
// model.ErrRoomNotFound, with nothing written, when the room is gone.
func (g *Gateway) ServeSSE(w http.ResponseWriter, r *http.Request, code model.RoomCode) error {
	// Check if SSE is supported
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return nil
	}

	client, ok := g.hubs.Watch(code, model.PlayerID("spectator-"+g.ids.NewID()))
	if !ok {
		return model.ErrRoomNotFound
	}
	defer g.hubs.Unwatch(code, client)

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	// Send initial connection event
	_, _ = w.Write(formatSSEMessage("connected", `{"status":"connected"}`))
	flusher.Flush()

	// Create ticker for keepalive
	ticker := time.NewTicker(g.config.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case frame := <-client.Frames():
			if _, err := w.Write(formatSSEMessage(frame.Event, string(frame.Data))); err != nil {
				return nil
			}
			flusher.Flush()

		case <-ticker.C:
			// Send keepalive comment
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return nil
			}
			flusher.Flush()

		case <-client.Done():
			// Room closed; flush what was queued before it
			for {
				select {
				case frame := <-client.Frames():
					_, _ = w.Write(formatSSEMessage(frame.Event, string(frame.Data)))
				default:
					flusher.Flush()
					return nil
				}
			}

		case <-r.Context().Done():
			// Client disconnected
			return nil
		}
	}
}

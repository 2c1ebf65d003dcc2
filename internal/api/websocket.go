package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/mqtt-tickbridge/internal/infrastructure/config"
	"github.com/nerrad567/mqtt-tickbridge/internal/infrastructure/logging"
)

// WebSocket message types.
const (
	WSTypeCall     = "call"
	WSTypePing     = "ping"
	WSTypePong     = "pong"
	WSTypeResponse = "response"
	WSTypeError    = "error"

	// wsSendBufferSize is the per-client outbound message buffer size.
	wsSendBufferSize = 64
)

// Fallbacks for a zero WebSocket config.
const (
	defaultPingInterval = 30 * time.Second
	defaultPongTimeout  = 10 * time.Second
)

// WSMessage is one frame in either direction.
//
// Inbound calls carry Op and Args; responses carry Payload
// {"result": value} with the call's ID echoed back.
type WSMessage struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Op        string          `json:"op,omitempty"`
	Args      json.RawMessage `json:"args,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
	Payload   any             `json:"payload,omitempty"`
}

// Hub tracks connected WebSocket clients so they can be closed on shutdown.
type Hub struct {
	logger  *logging.Logger
	clients map[*WSClient]struct{}
	mu      sync.RWMutex
}

// WSClient represents a connected WebSocket client.
type WSClient struct {
	hub     *Hub
	server  *Server
	conn    *websocket.Conn
	send    chan []byte
	subject string
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *logging.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[*WSClient]struct{}),
	}
}

// Run blocks until the context is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// Register adds a client to the hub.
func (h *Hub) Register(client *WSClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "clients", h.ClientCount(), "subject", client.subject)
}

// Unregister removes a client from the hub.
// Only the goroutine that successfully removes the client from the map
// closes the send channel, preventing double-close panics during shutdown.
func (h *Hub) Unregister(client *WSClient) {
	h.mu.Lock()
	_, existed := h.clients[client]
	delete(h.clients, client)
	h.mu.Unlock()

	if existed {
		close(client.send)
	}
	h.logger.Debug("websocket client disconnected", "clients", h.ClientCount())
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// closeAll disconnects all clients and closes their send channels
// so writePump goroutines can exit cleanly.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.send)
		if client.conn != nil {
			client.conn.Close()
		}
		delete(h.clients, client)
	}
}

// handleWebSocket upgrades the connection and starts the client's pumps.
// Auth has already been checked by authMiddleware.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || s.isAllowedOrigin(origin)
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &WSClient{
		hub:     s.hub,
		server:  s,
		conn:    conn,
		send:    make(chan []byte, wsSendBufferSize),
		subject: subjectFrom(r.Context()),
	}

	s.hub.Register(client)

	go client.writePump(s.wsCfg)
	go client.readPump(s.wsCfg)
}

// wsTimings returns the ping interval and pong wait for cfg.
func wsTimings(cfg config.WebSocketConfig) (ping, pong time.Duration) {
	ping, pong = defaultPingInterval, defaultPongTimeout
	if cfg.PingInterval > 0 {
		ping = time.Duration(cfg.PingInterval) * time.Second
	}
	if cfg.PongTimeout > 0 {
		pong = time.Duration(cfg.PongTimeout) * time.Second
	}
	return ping, pong
}

// readPump reads messages from the WebSocket connection.
func (c *WSClient) readPump(cfg config.WebSocketConfig) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	if cfg.MaxMessageSize > 0 {
		c.conn.SetReadLimit(int64(cfg.MaxMessageSize))
	}
	pingInterval, pongWait := wsTimings(cfg)
	//nolint:errcheck // Best-effort deadline on connection setup
	c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", "error", err)
			} else {
				c.hub.logger.Debug("websocket closed", "error", err)
			}
			return
		}
		//nolint:errcheck // Best-effort deadline reset
		c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
		c.handleMessage(message)
	}
}

// writePump writes messages to the WebSocket connection.
func (c *WSClient) writePump(cfg config.WebSocketConfig) {
	pingInterval, pongWait := wsTimings(cfg)
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				//nolint:errcheck // Best-effort close message
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			//nolint:errcheck // Best-effort deadline; write error caught below
			c.conn.SetWriteDeadline(time.Now().Add(pongWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			//nolint:errcheck // Best-effort deadline; ping error caught below
			c.conn.SetWriteDeadline(time.Now().Add(pongWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes an incoming WebSocket message.
func (c *WSClient) handleMessage(data []byte) {
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError("", "invalid JSON message")
		return
	}

	switch msg.Type {
	case WSTypeCall:
		result, err := c.server.call(msg.Op, msg.Args)
		if err != nil {
			c.sendError(msg.ID, err.Error())
			return
		}
		c.sendResponse(msg.ID, WSTypeResponse, map[string]any{"result": result})
	case WSTypePing:
		c.sendResponse(msg.ID, WSTypePong, nil)
	default:
		c.sendError(msg.ID, "unknown message type: "+msg.Type)
	}
}

// call runs one adapter block by name. Commands return a nil result.
func (s *Server) call(op string, args json.RawMessage) (any, error) {
	switch op {
	case "client":
		var req clientRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		s.bridge.Configure(req.resolve())
		return nil, nil
	case "connect":
		s.bridge.Connect()
		return nil, nil
	case "publish":
		var req publishRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		s.bridge.Publish(req.resolve())
		return nil, nil
	case "subscribe":
		var req subscribeRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		s.bridge.Subscribe(req.resolve())
		return nil, nil
	case "next_message":
		s.bridge.NextMessage()
		return nil, nil
	case "connected":
		return s.bridge.Connected(), nil
	case "message_received":
		return s.bridge.MessageReceived(), nil
	case "topic":
		return s.bridge.Topic(), nil
	case "message":
		return s.bridge.Message(), nil
	case "status":
		return s.bridge.Stats(), nil
	default:
		return nil, fmt.Errorf("unknown op: %q", op)
	}
}

// decodeArgs decodes call arguments; absent or null args leave v untouched.
func decodeArgs(args json.RawMessage, v any) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid args: %w", err)
	}
	return nil
}

// trySend attempts to send data to the client's send channel.
// It silently handles closed channels (client disconnected during shutdown)
// and full buffers (slow client).
func (c *WSClient) trySend(data []byte) {
	defer func() {
		recover() //nolint:errcheck // Absorb send-on-closed-channel panic
	}()

	select {
	case c.send <- data:
	default:
		c.hub.logger.Warn("websocket send buffer full, dropping frame", "subject", c.subject)
	}
}

// sendResponse sends a response message to the client.
func (c *WSClient) sendResponse(id, msgType string, payload any) {
	msg := WSMessage{
		Type:      msgType,
		ID:        id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.trySend(data)
}

// sendError sends an error message to the client.
func (c *WSClient) sendError(id, message string) {
	c.sendResponse(id, WSTypeError, map[string]string{"message": message})
}

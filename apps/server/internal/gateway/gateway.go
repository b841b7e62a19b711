// Package gateway owns the websocket edge: upgrades, pumps, auth handshake
// and routing of client envelopes into room actors.
package gateway

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"hokm-lite/apps/server/internal/auth"
	"hokm-lite/apps/server/internal/codec"
	"hokm-lite/apps/server/internal/lobby"
	"hokm-lite/apps/server/internal/room"
	"hokm-lite/hokm"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: Restrict in production
	},
}

// Error codes sent in codec.ErrorPayload.
const (
	errCodeBadMessage = 1
	errCodeAuth       = 2
	errCodeNoRoom     = 3
	errCodeRoom       = 4
)

// Connection represents one authenticated websocket client.
type Connection struct {
	ID       string
	UserID   string
	Username string
	Conn     *websocket.Conn
	Send     chan []byte
	Gateway  *Gateway
	LastPing time.Time

	// Current room association.
	RoomID string
	Room   *room.Room
}

// Gateway manages websocket connections and maps users onto rooms.
type Gateway struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	userConns   map[string]*Connection // userID -> connection
	nextConnID  uint64
	seq         uint64

	lobby *lobby.Lobby
	auth  auth.Service
}

// New creates a gateway.
func New(lby *lobby.Lobby, authService auth.Service) *Gateway {
	return &Gateway{
		connections: make(map[string]*Connection),
		userConns:   make(map[string]*Connection),
		lobby:       lby,
		auth:        authService,
	}
}

// HandleWebSocket upgrades the request. The client's first envelope must be
// an auth message carrying a session token.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Gateway] Upgrade error: %v", err)
		return
	}

	g.mu.Lock()
	g.nextConnID++
	connID := fmt.Sprintf("conn_%d", g.nextConnID)
	c := &Connection{
		ID:       connID,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		Gateway:  g,
		LastPing: time.Now(),
	}
	g.connections[connID] = c
	g.mu.Unlock()

	log.Printf("[Gateway] Client connected: %s, total: %d", connID, len(g.connections))

	go c.readPump()
	go c.writePump()
}

func (c *Connection) readPump() {
	defer func() {
		c.Gateway.removeConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(65536)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		c.LastPing = time.Now()
		return nil
	})

	for {
		messageType, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Gateway] Read error: %v", err)
			}
			break
		}
		if messageType == websocket.TextMessage || messageType == websocket.BinaryMessage {
			c.handleMessage(message)
		}
	}
}

func (c *Connection) handleMessage(data []byte) {
	var env codec.ClientEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Printf("[Gateway] Failed to decode message: %v", err)
		c.sendError(errCodeBadMessage, "invalid message format")
		return
	}

	if env.Type == codec.ClientAuth {
		c.handleAuth(&env)
		return
	}
	if c.UserID == "" {
		c.sendError(errCodeAuth, "not authenticated")
		return
	}

	switch env.Type {
	case codec.ClientCreateRoom:
		c.handleCreateRoom(&env)
	case codec.ClientJoinRoom:
		c.handleJoinRoom(&env)
	case codec.ClientLeaveRoom:
		c.handleLeaveRoom()
	case codec.ClientStartMatch:
		c.submitToRoom(room.Event{Type: room.EventStartMatch, UserID: c.UserID})
	case codec.ClientSelectTrump:
		var req codec.SelectTrumpRequest
		if err := codec.DecodePayload(&env, &req); err != nil {
			c.sendError(errCodeBadMessage, "invalid payload")
			return
		}
		c.submitToRoom(room.Event{Type: room.EventSelectTrump, UserID: c.UserID, Suit: req.Suit})
	case codec.ClientPlayCard:
		var req codec.PlayCardRequest
		if err := codec.DecodePayload(&env, &req); err != nil {
			c.sendError(errCodeBadMessage, "invalid payload")
			return
		}
		c.submitToRoom(room.Event{Type: room.EventPlayCard, UserID: c.UserID, CardID: req.CardID})
	case codec.ClientStateSync:
		c.submitToRoom(room.Event{Type: room.EventStateSync, UserID: c.UserID})
	default:
		log.Printf("[Gateway] Unknown message type: %q from %s", env.Type, c.ID)
		c.sendError(errCodeBadMessage, "unknown message type")
	}
}

func (c *Connection) handleAuth(env *codec.ClientEnvelope) {
	var req codec.AuthRequest
	if err := codec.DecodePayload(env, &req); err != nil {
		c.sendError(errCodeBadMessage, "invalid payload")
		return
	}
	userID, username, ok := c.Gateway.auth.ResolveSession(req.Token)
	if !ok {
		c.sendError(errCodeAuth, "invalid session token")
		return
	}

	c.Gateway.registerUser(c, userID, username)

	c.send(codec.ServerAuthOK, "", codec.AuthOK{UserID: userID, Username: username})
	log.Printf("[Gateway] Connection %s authenticated as %s (%s)", c.ID, username, userID)

	// If the user was mid-game, reattach them to their room.
	if c.Room != nil {
		_ = c.Room.SubmitEvent(room.Event{Type: room.EventConnResume, UserID: userID, Name: username})
	}
}

// registerUser binds the connection to a user, replacing any previous
// connection for the same account.
func (g *Gateway) registerUser(c *Connection, userID, username string) {
	g.mu.Lock()
	prev := g.userConns[userID]
	g.userConns[userID] = c
	c.UserID = userID
	c.Username = username
	if prev != nil && prev != c {
		// Carry the room association over to the new connection.
		c.RoomID = prev.RoomID
		c.Room = prev.Room
		delete(g.connections, prev.ID)
	}
	g.mu.Unlock()

	if prev != nil && prev != c {
		log.Printf("[Gateway] Replacing connection for user %s", userID)
		prev.Conn.Close()
	}
}

func (c *Connection) handleCreateRoom(env *codec.ClientEnvelope) {
	var req codec.CreateRoomRequest
	if err := codec.DecodePayload(env, &req); err != nil {
		c.sendError(errCodeBadMessage, "invalid payload")
		return
	}
	cfg := hokm.Config{
		Mode:        hokm.Mode(req.Mode),
		TurnTimer:   req.TurnTimer,
		KotBonus:    req.KotBonus,
		TargetHands: req.TargetHands,
		IsPrivate:   req.IsPrivate,
	}
	if !cfg.Mode.Valid() {
		c.sendError(errCodeBadMessage, "invalid mode")
		return
	}

	r, err := c.Gateway.lobby.CreateRoom(c.UserID, cfg, c.Gateway.broadcastToUser)
	if err != nil {
		c.sendError(errCodeRoom, err.Error())
		return
	}
	c.attachRoom(r)

	if err := r.SubmitEvent(room.Event{Type: room.EventJoin, UserID: c.UserID, Name: c.Username}); err != nil {
		c.sendError(errCodeRoom, err.Error())
		return
	}
	c.send(codec.ServerRoomCreated, r.ID, codec.RoomInfo{
		RoomID:     r.ID,
		Mode:       int(r.Config().Mode),
		HostID:     c.UserID,
		IsPrivate:  r.Config().IsPrivate,
		InviteCode: r.Config().InviteCode,
		Players:    []codec.RoomPlayer{{ID: c.UserID, Name: c.Username}},
	})
}

func (c *Connection) handleJoinRoom(env *codec.ClientEnvelope) {
	var req codec.JoinRoomRequest
	if err := codec.DecodePayload(env, &req); err != nil {
		c.sendError(errCodeBadMessage, "invalid payload")
		return
	}
	r := c.Gateway.lobby.GetRoom(req.RoomID)
	if r == nil {
		c.sendError(errCodeNoRoom, "room not found")
		return
	}
	if !r.HasMember(c.UserID) {
		if err := r.CheckInvite(req.InviteCode); err != nil {
			c.sendError(errCodeRoom, err.Error())
			return
		}
	}

	if err := r.SubmitEvent(room.Event{Type: room.EventJoin, UserID: c.UserID, Name: c.Username}); err != nil {
		c.sendError(errCodeRoom, err.Error())
		return
	}
	c.attachRoom(r)
	c.send(codec.ServerRoomJoined, r.ID, codec.RoomInfo{
		RoomID:    r.ID,
		Mode:      int(r.Config().Mode),
		IsPrivate: r.Config().IsPrivate,
	})
	log.Printf("[Gateway] User %s joined room %s", c.UserID, r.ID)
}

func (c *Connection) handleLeaveRoom() {
	r := c.currentRoom()
	if r == nil {
		return
	}
	_ = r.SubmitEvent(room.Event{Type: room.EventLeave, UserID: c.UserID})
	c.detachRoom()
}

func (c *Connection) submitToRoom(e room.Event) {
	r := c.currentRoom()
	if r == nil {
		c.sendError(errCodeNoRoom, "not in a room")
		return
	}
	if err := r.SubmitEvent(e); err != nil {
		c.sendError(errCodeRoom, err.Error())
	}
}

func (c *Connection) attachRoom(r *room.Room) {
	c.Gateway.mu.Lock()
	c.RoomID = r.ID
	c.Room = r
	c.Gateway.mu.Unlock()
}

func (c *Connection) detachRoom() {
	c.Gateway.mu.Lock()
	c.RoomID = ""
	c.Room = nil
	c.Gateway.mu.Unlock()
}

func (c *Connection) currentRoom() *room.Room {
	c.Gateway.mu.RLock()
	defer c.Gateway.mu.RUnlock()
	return c.Room
}

func (c *Connection) send(msgType, roomID string, payload any) {
	data, err := codec.Encode(msgType, roomID, atomic.AddUint64(&c.Gateway.seq, 1), payload)
	if err != nil {
		log.Printf("[Gateway] Failed to encode %s: %v", msgType, err)
		return
	}
	select {
	case c.Send <- data:
	default:
		// Drop if buffer full
	}
}

func (c *Connection) sendError(code int, msg string) {
	c.send(codec.ServerError, c.RoomID, codec.ErrorPayload{Code: code, Message: msg})
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (g *Gateway) removeConnection(c *Connection) {
	g.mu.Lock()
	delete(g.connections, c.ID)
	current := g.userConns[c.UserID]
	if c.UserID != "" && current == c {
		delete(g.userConns, c.UserID)
	}
	r := c.Room
	g.mu.Unlock()

	// A replaced connection must not mark the still-live user offline.
	if r != nil && current == c {
		_ = r.SubmitEvent(room.Event{Type: room.EventConnLost, UserID: c.UserID})
	}
	log.Printf("[Gateway] Client disconnected: %s, total: %d", c.ID, len(g.connections))
}

// broadcastToUser delivers room traffic to a specific user's connection.
func (g *Gateway) broadcastToUser(userID string, data []byte) {
	g.mu.RLock()
	c := g.userConns[userID]
	g.mu.RUnlock()

	if c != nil {
		select {
		case c.Send <- data:
		default:
			// Drop if buffer full
		}
	}
}

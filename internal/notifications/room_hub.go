// Package notifications provides real-time delivery for chat rooms.
package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"campuswall/internal/middleware"
	"campuswall/internal/observability"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// RoomHub manages WebSocket connections for chat rooms. It is room-centric:
// fan-out targets the set of clients currently joined to a room, not a
// per-user registry.
type RoomHub struct {
	mu sync.RWMutex

	// Map: roomID -> set of clients joined to the room.
	rooms map[uint]map[*Client]bool

	// Map: client -> set of roomIDs it has joined.
	clientRooms map[*Client]map[uint]struct{}

	// Map: sessionID -> set of active clients (multi-tab support).
	sessionConns map[uint]map[*Client]bool

	// instanceID tags events this process publishes to Redis so the
	// subscriber can skip its own publications.
	instanceID string
}

// Name returns a human-readable identifier for this hub.
func (h *RoomHub) Name() string { return "room hub" }

// RoomEvent is the envelope for everything a room client sends or receives.
type RoomEvent struct {
	Type     string      `json:"type"` // "message", "typing", "joined", "left", "online_count", "error"
	RoomID   uint        `json:"room_id,omitempty"`
	Nickname string      `json:"nickname,omitempty"`
	Payload  interface{} `json:"payload,omitempty"`

	// Origin is the publishing instance, set only on the Redis leg.
	Origin string `json:"origin,omitempty"`
}

// NewRoomHub creates a RoomHub with a fresh instance identity.
func NewRoomHub() *RoomHub {
	return &RoomHub{
		rooms:        make(map[uint]map[*Client]bool),
		clientRooms:  make(map[*Client]map[uint]struct{}),
		sessionConns: make(map[uint]map[*Client]bool),
		instanceID:   uuid.NewString(),
	}
}

// Register creates and registers a client for a session's websocket
// connection. Returns an error when the session holds too many connections.
func (h *RoomHub) Register(sessionID uint, nickname string, conn *websocket.Conn) (*Client, error) {
	client := NewClient(h, conn, sessionID, nickname)
	if err := h.RegisterClient(client); err != nil {
		return nil, err
	}
	return client, nil
}

// RegisterClient adds an already-constructed client to the hub.
func (h *RoomHub) RegisterClient(client *Client) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sessionConns[client.SessionID] == nil {
		h.sessionConns[client.SessionID] = make(map[*Client]bool)
	}
	if len(h.sessionConns[client.SessionID]) >= maxConnsPerSession {
		return errors.New("session connection limit reached")
	}

	h.sessionConns[client.SessionID][client] = true
	observability.WebSocketConnectionsTotal.Inc()
	return nil
}

// UnregisterClient removes a client and cleans up its room memberships.
func (h *RoomHub) UnregisterClient(client *Client) {
	h.mu.Lock()

	clients, ok := h.sessionConns[client.SessionID]
	if !ok || !clients[client] {
		h.mu.Unlock()
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.sessionConns, client.SessionID)
	}
	observability.WebSocketConnectionsTotal.Dec()

	// Pull the client out of every room it joined.
	left := make([]uint, 0, len(h.clientRooms[client]))
	for roomID := range h.clientRooms[client] {
		if members, ok := h.rooms[roomID]; ok {
			delete(members, client)
			if len(members) == 0 {
				delete(h.rooms, roomID)
			}
		}
		observability.WebSocketRoomConnections.WithLabelValues(roomLabel(roomID)).Dec()
		left = append(left, roomID)
	}
	delete(h.clientRooms, client)
	h.mu.Unlock()

	for _, roomID := range left {
		h.broadcastOnlineCount(roomID)
	}
}

// JoinRoom subscribes a client to a room's events and announces the new
// connection count.
func (h *RoomHub) JoinRoom(client *Client, roomID uint) {
	h.mu.Lock()
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	if h.rooms[roomID][client] {
		h.mu.Unlock()
		return
	}
	h.rooms[roomID][client] = true

	if h.clientRooms[client] == nil {
		h.clientRooms[client] = make(map[uint]struct{})
	}
	h.clientRooms[client][roomID] = struct{}{}
	h.mu.Unlock()

	observability.WebSocketRoomConnections.WithLabelValues(roomLabel(roomID)).Inc()

	if joined, err := json.Marshal(RoomEvent{Type: "joined", RoomID: roomID}); err == nil {
		client.TrySend(joined)
	}
	h.broadcastOnlineCount(roomID)
}

// LeaveRoom unsubscribes a client from a room.
func (h *RoomHub) LeaveRoom(client *Client, roomID uint) {
	h.mu.Lock()
	members, ok := h.rooms[roomID]
	if !ok || !members[client] {
		h.mu.Unlock()
		return
	}
	delete(members, client)
	if len(members) == 0 {
		delete(h.rooms, roomID)
	}
	if rooms, ok := h.clientRooms[client]; ok {
		delete(rooms, roomID)
	}
	h.mu.Unlock()

	observability.WebSocketRoomConnections.WithLabelValues(roomLabel(roomID)).Dec()
	h.broadcastOnlineCount(roomID)
}

// OnlineCount returns the number of connections currently joined to a room.
// Connections, not identities: the same session on two tabs counts twice.
func (h *RoomHub) OnlineCount(roomID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// BroadcastToRoom sends an event to every client joined to the room except
// the excluded one. Pass nil to reach everyone.
func (h *RoomHub) BroadcastToRoom(roomID uint, event RoomEvent, exclude *Client) {
	event.RoomID = roomID
	payload, err := json.Marshal(event)
	if err != nil {
		middleware.Logger.Error("failed to marshal room event", "room_id", roomID, "error", err)
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.rooms[roomID]))
	for client := range h.rooms[roomID] {
		if client == exclude {
			continue
		}
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		client.TrySend(payload)
	}
	observability.MessageThroughput.WithLabelValues(roomLabel(roomID), event.Type).Inc()
}

// Fanout delivers an event locally (excluding the sender) and publishes it
// to Redis for clients connected to other instances.
func (h *RoomHub) Fanout(ctx context.Context, n *Notifier, roomID uint, event RoomEvent, sender *Client) {
	ctx, span := observability.TraceWebSocket(ctx, h.Name(), event.Type)
	defer span.End()

	h.BroadcastToRoom(roomID, event, sender)

	event.RoomID = roomID
	event.Origin = h.instanceID
	payload, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		middleware.Logger.Error("failed to marshal room event for publish", "room_id", roomID, "error", err)
		return
	}
	if err := n.PublishRoomEvent(ctx, roomID, string(payload)); err != nil {
		span.RecordError(err)
		middleware.Logger.Error("failed to publish room event", "room_id", roomID, "error", err)
	}
}

// StartWiring connects the hub to Redis pub/sub so events published by other
// instances reach local clients. Events carrying this instance's origin tag
// were already delivered locally and are skipped.
func (h *RoomHub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartRoomSubscriber(ctx, func(channel, payload string) {
		var roomID uint
		if _, err := fmt.Sscanf(channel, "chat:room:%d", &roomID); err != nil {
			middleware.Logger.Warn("invalid room channel", "channel", channel)
			return
		}

		var event RoomEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			middleware.Logger.Warn("failed to parse room event", "channel", channel, "error", err)
			return
		}
		if event.Origin == h.instanceID {
			return
		}
		event.Origin = ""

		h.BroadcastToRoom(roomID, event, nil)
	})
}

// Shutdown closes every websocket connection and clears hub state.
func (h *RoomHub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sessionID, clients := range h.sessionConns {
		for client := range clients {
			if client.Conn == nil {
				continue
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage,
				[]byte(`{"type":"server_shutdown"}`)); err != nil {
				middleware.Logger.Warn("failed to write shutdown message", "session_id", sessionID, "error", err)
			}
			if err := client.Conn.Close(); err != nil {
				middleware.Logger.Warn("failed to close websocket", "session_id", sessionID, "error", err)
			}
		}
	}

	h.rooms = make(map[uint]map[*Client]bool)
	h.clientRooms = make(map[*Client]map[uint]struct{})
	h.sessionConns = make(map[uint]map[*Client]bool)
	return nil
}

func (h *RoomHub) broadcastOnlineCount(roomID uint) {
	count := h.OnlineCount(roomID)
	h.BroadcastToRoom(roomID, RoomEvent{
		Type:    "online_count",
		Payload: map[string]interface{}{"count": count},
	}, nil)
}

func roomLabel(roomID uint) string {
	return strconv.FormatUint(uint64(roomID), 10)
}

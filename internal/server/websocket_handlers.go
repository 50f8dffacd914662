package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"campuswall/internal/middleware"
	"campuswall/internal/models"
	"campuswall/internal/notifications"
	"campuswall/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebSocketUpgrade rejects plain HTTP requests to WS routes and resolves the
// session before the upgrade. Browsers cannot set custom headers on the
// WebSocket handshake, so a token query parameter is accepted as a fallback.
func (s *Server) WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		token := c.Get("X-Session-Token")
		if token == "" {
			token = c.Query("token")
		}
		session, err := s.sessionService.Resolve(c.UserContext(), token)
		if err != nil {
			return respondServiceError(c, err)
		}

		c.Locals("session", session)
		c.Locals("sessionID", session.ID)
		return c.Next()
	}
}

// wsEvent is the envelope for client-to-server websocket events.
type wsEvent struct {
	Type     string `json:"type"`
	RoomID   uint   `json:"room_id"`
	Content  string `json:"content"`
	IsTyping bool   `json:"is_typing"`
}

// WebSocketChatHandler handles WebSocket connections for real-time room chat.
//
// Client events: join/leave {room_id}, typing {room_id, is_typing},
// message {room_id, content}. Messages persist through the same service
// path as the HTTP endpoint before fanning out; typing indicators are
// relayed without persistence and never echo back to the sender.
func (s *Server) WebSocketChatHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		ctx := context.Background()

		session, ok := conn.Locals("session").(*models.Session)
		if !ok {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","payload":{"message":"unauthorized"}}`))
			_ = conn.Close()
			return
		}

		client, err := s.roomHub.Register(session.ID, session.Nickname, conn)
		if err != nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","payload":{"message":"`+err.Error()+`"}}`))
			_ = conn.Close()
			return
		}

		client.IncomingHandler = func(c *notifications.Client, raw []byte) {
			var event wsEvent
			if err := json.Unmarshal(raw, &event); err != nil {
				s.sendWSError(c, "invalid event")
				return
			}

			switch event.Type {
			case "join":
				if _, err := s.chatService.JoinRoom(ctx, session, event.RoomID); err != nil {
					s.sendWSError(c, err.Error())
					return
				}
				s.roomHub.JoinRoom(c, event.RoomID)

			case "leave":
				s.roomHub.LeaveRoom(c, event.RoomID)

			case "typing":
				// Typing indicators are cheap to spam; drop the excess silently.
				id := fmt.Sprintf("session:%d", session.ID)
				allowed, _ := middleware.CheckRateLimit(ctx, s.redis, "typing", id, 10, 10*time.Second)
				if !allowed {
					return
				}
				s.roomHub.Fanout(ctx, s.notifier, event.RoomID, notifications.RoomEvent{
					Type:     "typing",
					Nickname: session.Nickname,
					Payload:  map[string]interface{}{"is_typing": event.IsTyping},
				}, c)

			case "message":
				id := fmt.Sprintf("session:%d", session.ID)
				allowed, _ := middleware.CheckRateLimit(ctx, s.redis, "send_chat", id, 30, time.Minute)
				if !allowed {
					s.sendWSError(c, "Rate limit exceeded. Please wait a moment.")
					return
				}

				msg, err := s.chatService.PostMessage(ctx, service.PostChatMessageInput{
					Session: session,
					RoomID:  event.RoomID,
					Content: event.Content,
				})
				if err != nil {
					s.sendWSError(c, err.Error())
					return
				}

				s.roomHub.Fanout(ctx, s.notifier, event.RoomID, notifications.RoomEvent{
					Type:     "message",
					Nickname: msg.Nickname,
					Payload:  msg,
				}, c)

			default:
				s.sendWSError(c, "unknown event type")
			}
		}

		if welcome, err := json.Marshal(notifications.RoomEvent{
			Type:     "connected",
			Nickname: session.Nickname,
		}); err == nil {
			client.TrySend(welcome)
		}

		go client.WritePump()

		// Read pump runs in the handler goroutine; it unregisters the client
		// from the hub on exit.
		client.ReadPump()
	})
}

func (s *Server) sendWSError(c *notifications.Client, message string) {
	payload, err := json.Marshal(notifications.RoomEvent{
		Type:    "error",
		Payload: map[string]string{"message": message},
	})
	if err != nil {
		return
	}
	c.TrySend(payload)
}

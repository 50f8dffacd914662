package server

import (
	"campuswall/internal/models"
	"campuswall/internal/notifications"
	"campuswall/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetChatRooms lists the active rooms for the session's college.
func (s *Server) GetChatRooms(c *fiber.Ctx) error {
	rooms, err := s.chatService.ListRooms(c.UserContext(), currentSession(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(rooms)
}

// GetRoomMessages returns recent messages for a room in chronological order.
func (s *Server) GetRoomMessages(c *fiber.Ctx) error {
	ctx := c.UserContext()
	session := currentSession(c)

	roomID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	messages, err := s.chatService.History(ctx, session, roomID, c.QueryInt("limit", 0))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(messages)
}

// PostRoomMessage persists a chat message over HTTP, then fans it out to
// connected WebSocket clients. The write is the source of truth; delivery
// failures never roll it back.
func (s *Server) PostRoomMessage(c *fiber.Ctx) error {
	ctx := c.UserContext()
	session := currentSession(c)

	roomID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content  string `json:"content"`
		Nickname string `json:"nickname"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	msg, err := s.chatService.PostMessage(ctx, service.PostChatMessageInput{
		Session:  session,
		RoomID:   roomID,
		Content:  req.Content,
		Nickname: req.Nickname,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.roomHub.Fanout(ctx, s.notifier, roomID, notifications.RoomEvent{
		Type:     "message",
		Nickname: msg.Nickname,
		Payload:  msg,
	}, nil)

	return c.Status(fiber.StatusCreated).JSON(msg)
}

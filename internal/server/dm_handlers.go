package server

import (
	"campuswall/internal/models"
	"campuswall/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SendDirectMessage creates a pending direct message to another session.
// The recipient only sees it after a moderator approves it.
func (s *Server) SendDirectMessage(c *fiber.Ctx) error {
	ctx := c.UserContext()
	session := currentSession(c)

	var req struct {
		ToSessionID uint   `json:"to_session_id"`
		Content     string `json:"content"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	dm, err := s.dmService.Send(ctx, service.SendDirectMessageInput{
		Session:     session,
		ToSessionID: req.ToSessionID,
		Content:     req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dm)
}

// GetDirectMessages lists everything the session sent plus approved
// messages addressed to it, newest first.
func (s *Server) GetDirectMessages(c *fiber.Ctx) error {
	dms, err := s.dmService.List(c.UserContext(), currentSession(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(dms)
}

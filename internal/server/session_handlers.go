package server

import (
	"campuswall/internal/models"
	"campuswall/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateSession returns the session for the supplied token, creating one
// when the token is unknown or absent. The client keeps the returned token
// and sends it as X-Session-Token on every later request.
func (s *Server) CreateSession(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req struct {
		CollegeCode string `json:"college_code"`
		Nickname    string `json:"nickname"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil && len(c.Body()) > 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	session, err := s.sessionService.GetOrCreate(ctx, service.GetOrCreateSessionInput{
		Token:       c.Get("X-Session-Token"),
		CollegeCode: req.CollegeCode,
		Nickname:    req.Nickname,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"session":       session,
		"session_token": session.Token,
	})
}

// GetMySession returns the caller's session plus the remaining daily
// confession allowance.
func (s *Server) GetMySession(c *fiber.Ctx) error {
	session := currentSession(c)
	return c.JSON(fiber.Map{
		"session":         session,
		"remaining_quota": service.RemainingQuota(session),
	})
}

// GetDailyLimit reports the caller's confession allowance for today.
func (s *Server) GetDailyLimit(c *fiber.Ctx) error {
	session := currentSession(c)
	remaining := service.RemainingQuota(session)
	return c.JSON(fiber.Map{
		"used":      service.DailyConfessionLimit - remaining,
		"limit":     service.DailyConfessionLimit,
		"remaining": remaining,
	})
}

// UpdateNickname changes the session's display nickname.
func (s *Server) UpdateNickname(c *fiber.Ctx) error {
	ctx := c.UserContext()
	session := currentSession(c)

	var req struct {
		Nickname string `json:"nickname"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	updated, err := s.sessionService.UpdateNickname(ctx, session, req.Nickname)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(updated)
}

// GetColleges lists active campuses (public).
func (s *Server) GetColleges(c *fiber.Ctx) error {
	colleges, err := s.adminService.ListColleges(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(colleges)
}

// GetCollege returns one campus by code (public).
func (s *Server) GetCollege(c *fiber.Ctx) error {
	college, err := s.collegeRepo.GetByCode(c.UserContext(), c.Params("code"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundError("College not found"))
	}
	return c.JSON(college)
}

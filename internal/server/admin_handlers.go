package server

import (
	"campuswall/internal/models"
	"campuswall/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AdminLogin verifies moderator credentials and binds the account to the
// caller's anonymous session.
func (s *Server) AdminLogin(c *fiber.Ctx) error {
	ctx := c.UserContext()
	session := currentSession(c)

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	user, err := s.adminService.Login(ctx, session, req.Username, req.Password)
	if err != nil {
		// Credential failures answer 401, not the 403 used for role checks.
		var status = statusForError(err)
		if status == fiber.StatusForbidden {
			status = fiber.StatusUnauthorized
		}
		return models.RespondWithError(c, status, err)
	}

	return c.JSON(fiber.Map{
		"user":          user,
		"session_token": session.Token,
	})
}

// AdminLogout detaches the moderator account from the session.
func (s *Server) AdminLogout(c *fiber.Ctx) error {
	if err := s.adminService.Logout(c.UserContext(), currentSession(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// GetPendingConfessions lists the moderation queue, scoped to the
// moderator's college unless they are the chief.
func (s *Server) GetPendingConfessions(c *fiber.Ctx) error {
	confessions, err := s.adminService.PendingConfessions(c.UserContext(), currentAdmin(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(confessions)
}

// ApproveConfession makes a pending confession publicly visible.
func (s *Server) ApproveConfession(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	confession, err := s.adminService.ApproveConfession(c.UserContext(), currentAdmin(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(confession)
}

// RejectConfession hard-deletes a confession along with its likes and comments.
func (s *Server) RejectConfession(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.adminService.RejectConfession(c.UserContext(), currentAdmin(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

func (s *Server) GetPendingComments(c *fiber.Ctx) error {
	comments, err := s.adminService.PendingComments(c.UserContext(), currentAdmin(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comments)
}

func (s *Server) ApproveComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	comment, err := s.adminService.ApproveComment(c.UserContext(), currentAdmin(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comment)
}

func (s *Server) RejectComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.adminService.RejectComment(c.UserContext(), currentAdmin(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// GetPendingDirectMessages lists unreviewed direct messages. Only chief and
// college moderators may review DMs.
func (s *Server) GetPendingDirectMessages(c *fiber.Ctx) error {
	dms, err := s.adminService.PendingDirectMessages(c.UserContext(), currentAdmin(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(dms)
}

// ReviewDirectMessage approves or rejects a pending direct message.
func (s *Server) ReviewDirectMessage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Status    string `json:"status"`
		AdminNote string `json:"admin_note"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}
	if req.Status != models.DMStatusApproved && req.Status != models.DMStatusRejected {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Status must be approved or rejected"))
	}

	dm, err := s.adminService.ReviewDirectMessage(c.UserContext(), currentAdmin(c), id,
		req.Status == models.DMStatusApproved, req.AdminNote)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(dm)
}

// CreateCollege registers a new campus (chief only).
func (s *Server) CreateCollege(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
		Code string `json:"code"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	college, err := s.adminService.CreateCollege(c.UserContext(), currentAdmin(c), service.CreateCollegeInput{
		Name: req.Name,
		Code: req.Code,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(college)
}

// GetModerators lists all moderator accounts (chief only).
func (s *Server) GetModerators(c *fiber.Ctx) error {
	moderators, err := s.adminService.ListModerators(c.UserContext(), currentAdmin(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(moderators)
}

// CreateModerator creates a moderator account (chief only).
func (s *Server) CreateModerator(c *fiber.Ctx) error {
	var req struct {
		Username    string `json:"username"`
		Password    string `json:"password"`
		Role        string `json:"role"`
		CollegeCode string `json:"college_code"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	moderator, err := s.adminService.CreateModerator(c.UserContext(), currentAdmin(c), service.CreateModeratorInput{
		Username:    req.Username,
		Password:    req.Password,
		Role:        models.Role(req.Role),
		CollegeCode: req.CollegeCode,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(moderator)
}

// DeactivateModerator disables a moderator account (chief only).
func (s *Server) DeactivateModerator(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.adminService.DeactivateModerator(c.UserContext(), currentAdmin(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

package server

import (
	"campuswall/internal/models"
	"campuswall/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateConfession submits a confession. It lands pending and stays
// invisible to the feed until a moderator approves it.
func (s *Server) CreateConfession(c *fiber.Ctx) error {
	ctx := c.UserContext()
	session := currentSession(c)

	var req struct {
		Content     string `json:"content"`
		Category    string `json:"category"`
		Nickname    string `json:"nickname"`
		IsAnonymous *bool  `json:"is_anonymous"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	isAnonymous := true
	if req.IsAnonymous != nil {
		isAnonymous = *req.IsAnonymous
	}

	confession, err := s.confessionService.Create(ctx, service.CreateConfessionInput{
		Session:     session,
		Content:     req.Content,
		Category:    req.Category,
		Nickname:    req.Nickname,
		IsAnonymous: isAnonymous,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"confession":      confession,
		"remaining_quota": service.RemainingQuota(session),
	})
}

// GetFeed lists approved confessions for the session's college, newest
// first, optionally filtered by category.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	ctx := c.UserContext()
	session := currentSession(c)
	page := parsePagination(c, 20)

	confessions, err := s.confessionService.Feed(ctx, service.FeedInput{
		CollegeCode: session.CollegeCode,
		Category:    c.Query("category"),
		Limit:       page.Limit,
		Offset:      page.Offset,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(confessions)
}

// GetConfession returns one confession. Pending posts are only visible to
// their author.
func (s *Server) GetConfession(c *fiber.Ctx) error {
	ctx := c.UserContext()
	session := currentSession(c)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	confession, err := s.confessionService.Get(ctx, id, session)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(confession)
}

// GetMyConfessions lists the session's own confessions, pending included.
func (s *Server) GetMyConfessions(c *fiber.Ctx) error {
	ctx := c.UserContext()
	session := currentSession(c)
	page := parsePagination(c, 20)

	confessions, err := s.confessionService.ListMine(ctx, session, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(confessions)
}

// ToggleLike flips the session's like on a confession.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	ctx := c.UserContext()
	session := currentSession(c)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	action, confession, err := s.confessionService.ToggleLike(ctx, id, session)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"action":     action,
		"confession": confession,
	})
}

// CreateComment adds a pending comment to an approved confession.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	session := currentSession(c)

	confessionID, err := s.parseID(c, "id")
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

	comment, err := s.commentService.Create(ctx, service.CreateCommentInput{
		Session:      session,
		ConfessionID: confessionID,
		Content:      req.Content,
		Nickname:     req.Nickname,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetComments lists approved comments on an approved confession.
func (s *Server) GetComments(c *fiber.Ctx) error {
	ctx := c.UserContext()

	confessionID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.List(ctx, confessionID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comments)
}

package server

import (
	"campuswall/internal/models"
	"campuswall/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMarketplace lists active marketplace items.
func (s *Server) GetMarketplace(c *fiber.Ctx) error {
	items, err := s.vipService.Catalog(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(items)
}

// GetTokenBalance returns the caller's token balance, creating an empty one
// on first access.
func (s *Server) GetTokenBalance(c *fiber.Ctx) error {
	balance, err := s.vipService.Balance(c.UserContext(), currentSession(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(balance)
}

// DailyCheckIn credits the daily reward, once per calendar day.
func (s *Server) DailyCheckIn(c *fiber.Ctx) error {
	balance, err := s.vipService.CheckIn(c.UserContext(), currentSession(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(balance)
}

// EarnTokens credits tokens to the caller's ledger (chief only).
func (s *Server) EarnTokens(c *fiber.Ctx) error {
	var req struct {
		Amount      int    `json:"amount"`
		Description string `json:"description"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	balance, err := s.vipService.Credit(c.UserContext(), currentAdmin(c), currentSession(c), req.Amount, req.Description)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(balance)
}

// GetVipMembership returns the caller's active membership, or null.
func (s *Server) GetVipMembership(c *fiber.Ctx) error {
	membership, err := s.vipService.Membership(c.UserContext(), currentSession(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"membership": membership})
}

// GetTokenTransactions returns the caller's ledger, newest first.
func (s *Server) GetTokenTransactions(c *fiber.Ctx) error {
	txs, err := s.vipService.History(c.UserContext(), currentSession(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(txs)
}

// GetPurchases returns the caller's purchase receipts.
func (s *Server) GetPurchases(c *fiber.Ctx) error {
	purchases, err := s.vipService.Purchases(c.UserContext(), currentSession(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(purchases)
}

// PurchaseItem buys a marketplace item with tokens. Insufficient balance
// fails cleanly with no state change.
func (s *Server) PurchaseItem(c *fiber.Ctx) error {
	var req struct {
		ItemID uint `json:"item_id"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	purchase, err := s.vipService.Purchase(c.UserContext(), currentSession(c), req.ItemID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(purchase)
}

// CreateMarketplaceItem adds a catalog item (chief only).
func (s *Server) CreateMarketplaceItem(c *fiber.Ctx) error {
	var req struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		Category     string `json:"category"`
		Price        int    `json:"price"`
		DurationDays int    `json:"duration"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	item, err := s.vipService.CreateItem(c.UserContext(), currentAdmin(c), service.CreateItemInput{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Price:        req.Price,
		DurationDays: req.DurationDays,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

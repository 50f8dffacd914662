package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campuswall/internal/models"
	"campuswall/internal/repository"

	"gorm.io/gorm"
)

// DailyCheckInReward is the token credit for the first check-in of a day.
const DailyCheckInReward = 10

type VipService struct {
	vipRepo repository.VipRepository
}

func NewVipService(vipRepo repository.VipRepository) *VipService {
	return &VipService{vipRepo: vipRepo}
}

// ownerOf prefers the bound moderator account when present so tokens follow
// the account across sessions; anonymous sessions hold their own balance.
func ownerOf(session *models.Session) repository.TokenOwner {
	if session.UserID != nil {
		return repository.TokenOwner{UserID: session.UserID}
	}
	id := session.ID
	return repository.TokenOwner{SessionID: &id}
}

func (s *VipService) Catalog(ctx context.Context) ([]*models.MarketplaceItem, error) {
	return s.vipRepo.ListItems(ctx)
}

func (s *VipService) Balance(ctx context.Context, session *models.Session) (*models.UserTokens, error) {
	return s.vipRepo.GetOrCreateBalance(ctx, ownerOf(session))
}

// checkInKey is the ledger dedup key for one owner's check-in on one day.
func checkInKey(owner repository.TokenOwner, day string) string {
	if owner.UserID != nil {
		return fmt.Sprintf("checkin:user:%d:%s", *owner.UserID, day)
	}
	return fmt.Sprintf("checkin:session:%d:%s", *owner.SessionID, day)
}

// CheckIn credits the daily reward once per calendar day per owner.
func (s *VipService) CheckIn(ctx context.Context, session *models.Session) (*models.UserTokens, error) {
	owner := ownerOf(session)
	key := checkInKey(owner, models.Today())

	balance, err := s.vipRepo.EarnOnce(ctx, owner, DailyCheckInReward, "daily check-in", key)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyCredited) {
			return nil, models.NewValidationError("Already checked in today")
		}
		return nil, err
	}
	return balance, nil
}

// Credit appends an earn transaction to the caller's ledger. A development
// and administration path, gated to the chief role.
func (s *VipService) Credit(ctx context.Context, user *models.User, session *models.Session, amount int, description string) (*models.UserTokens, error) {
	if err := requireChief(user); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, models.NewValidationError("Amount must be positive")
	}
	if description == "" {
		return nil, models.NewValidationError("Description is required")
	}
	return s.vipRepo.Earn(ctx, ownerOf(session), amount, description)
}

func (s *VipService) Purchase(ctx context.Context, session *models.Session, itemID uint) (*models.VipPurchase, error) {
	item, err := s.vipRepo.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Item not found")
		}
		return nil, err
	}
	if !item.IsActive {
		return nil, models.NewNotFoundError("Item not found")
	}

	purchase, err := s.vipRepo.Purchase(ctx, ownerOf(session), item)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientTokens) {
			return nil, models.NewValidationError("Insufficient token balance")
		}
		return nil, err
	}
	return purchase, nil
}

// Membership returns the caller's active membership, or nil when the
// caller never bought one.
func (s *VipService) Membership(ctx context.Context, session *models.Session) (*models.VipMembership, error) {
	membership, err := s.vipRepo.GetMembership(ctx, ownerOf(session))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return membership, nil
}

func (s *VipService) History(ctx context.Context, session *models.Session) ([]*models.TokenTransaction, error) {
	return s.vipRepo.ListTransactions(ctx, ownerOf(session), 100)
}

func (s *VipService) Purchases(ctx context.Context, session *models.Session) ([]*models.VipPurchase, error) {
	return s.vipRepo.ListPurchases(ctx, ownerOf(session))
}

type CreateItemInput struct {
	Title        string
	Description  string
	Category     string
	Price        int
	DurationDays int
}

func (s *VipService) CreateItem(ctx context.Context, user *models.User, in CreateItemInput) (*models.MarketplaceItem, error) {
	if err := requireChief(user); err != nil {
		return nil, err
	}
	if in.Title == "" || in.Description == "" {
		return nil, models.NewValidationError("Title and description are required")
	}
	if in.Price <= 0 {
		return nil, models.NewValidationError("Price must be positive")
	}
	if in.DurationDays < 0 {
		return nil, models.NewValidationError("Duration cannot be negative")
	}

	item := &models.MarketplaceItem{
		Title:        in.Title,
		Description:  in.Description,
		Category:     in.Category,
		Price:        in.Price,
		CreatedByID:  &user.ID,
		IsActive:     true,
		DurationDays: in.DurationDays,
	}
	if err := s.vipRepo.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// SweepExpired marks purchases and memberships past their expiry. Intended
// to run periodically from the server's background loop.
func (s *VipService) SweepExpired(ctx context.Context) (int64, error) {
	return s.vipRepo.ExpirePurchases(ctx, time.Now())
}

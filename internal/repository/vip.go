package repository

import (
	"context"
	"time"

	"campuswall/internal/cache"
	"campuswall/internal/models"

	"gorm.io/gorm"
)

// TokenOwner identifies a token balance holder. Exactly one of UserID or
// SessionID is set.
type TokenOwner struct {
	UserID    *uint
	SessionID *uint
}

// VipRepository defines the interface for marketplace and token ledger operations
type VipRepository interface {
	ListItems(ctx context.Context) ([]*models.MarketplaceItem, error)
	GetItem(ctx context.Context, id uint) (*models.MarketplaceItem, error)
	CreateItem(ctx context.Context, item *models.MarketplaceItem) error
	UpdateItem(ctx context.Context, item *models.MarketplaceItem) error

	GetOrCreateBalance(ctx context.Context, owner TokenOwner) (*models.UserTokens, error)
	// Earn credits the balance and records a ledger row in one transaction.
	Earn(ctx context.Context, owner TokenOwner, amount int, description string) (*models.UserTokens, error)
	// EarnOnce is Earn keyed by dedupKey: a repeat of the same key returns
	// ErrAlreadyCredited and leaves the ledger and balance untouched.
	EarnOnce(ctx context.Context, owner TokenOwner, amount int, description, dedupKey string) (*models.UserTokens, error)
	// Purchase debits the balance, records the ledger row and creates the
	// receipt in one transaction. Returns ErrInsufficientTokens when the
	// balance does not cover the price.
	Purchase(ctx context.Context, owner TokenOwner, item *models.MarketplaceItem) (*models.VipPurchase, error)
	ListTransactions(ctx context.Context, owner TokenOwner, limit int) ([]*models.TokenTransaction, error)
	ListPurchases(ctx context.Context, owner TokenOwner) ([]*models.VipPurchase, error)
	// GetMembership returns the owner's newest active membership, or
	// gorm.ErrRecordNotFound when none exists.
	GetMembership(ctx context.Context, owner TokenOwner) (*models.VipMembership, error)
	// ExpirePurchases marks active purchases whose expiry has passed.
	ExpirePurchases(ctx context.Context, now time.Time) (int64, error)
}

type vipRepository struct {
	db *gorm.DB
}

// NewVipRepository creates a new VIP marketplace repository
func NewVipRepository(db *gorm.DB) VipRepository {
	return &vipRepository{db: db}
}

func ownerScope(q *gorm.DB, owner TokenOwner) *gorm.DB {
	if owner.UserID != nil {
		return q.Where("user_id = ?", *owner.UserID)
	}
	return q.Where("session_id = ?", *owner.SessionID)
}

func (r *vipRepository) ListItems(ctx context.Context) ([]*models.MarketplaceItem, error) {
	var items []*models.MarketplaceItem
	err := cache.Aside(ctx, cache.MarketplaceListKey, &items, cache.MarketplaceTTL, func() error {
		return r.db.WithContext(ctx).
			Where("is_active = ?", true).
			Order("price ASC").
			Find(&items).Error
	})
	return items, err
}

func (r *vipRepository) GetItem(ctx context.Context, id uint) (*models.MarketplaceItem, error) {
	var item models.MarketplaceItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *vipRepository) CreateItem(ctx context.Context, item *models.MarketplaceItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return err
	}
	cache.InvalidateMarketplace(ctx)
	return nil
}

func (r *vipRepository) UpdateItem(ctx context.Context, item *models.MarketplaceItem) error {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return err
	}
	cache.InvalidateMarketplace(ctx)
	return nil
}

func (r *vipRepository) GetOrCreateBalance(ctx context.Context, owner TokenOwner) (*models.UserTokens, error) {
	var balance models.UserTokens
	err := ownerScope(r.db.WithContext(ctx), owner).First(&balance).Error
	if err == nil {
		return &balance, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	balance = models.UserTokens{UserID: owner.UserID, SessionID: owner.SessionID}
	if err := r.db.WithContext(ctx).Create(&balance).Error; err != nil {
		return nil, err
	}
	return &balance, nil
}

func (r *vipRepository) Earn(ctx context.Context, owner TokenOwner, amount int, description string) (*models.UserTokens, error) {
	return r.credit(ctx, owner, amount, description, nil)
}

func (r *vipRepository) EarnOnce(ctx context.Context, owner TokenOwner, amount int, description, dedupKey string) (*models.UserTokens, error) {
	return r.credit(ctx, owner, amount, description, &dedupKey)
}

func (r *vipRepository) credit(ctx context.Context, owner TokenOwner, amount int, description string, dedupKey *string) (*models.UserTokens, error) {
	var balance *models.UserTokens
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if dedupKey != nil {
			// The unique index on dedup_key backs this check: a racing
			// duplicate fails the insert below and rolls the credit back.
			var count int64
			if err := tx.Model(&models.TokenTransaction{}).
				Where("dedup_key = ?", *dedupKey).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrAlreadyCredited
			}
		}

		b, err := (&vipRepository{db: tx}).GetOrCreateBalance(ctx, owner)
		if err != nil {
			return err
		}

		if err := tx.Model(&models.UserTokens{}).
			Where("id = ?", b.ID).
			Updates(map[string]interface{}{
				"balance":      gorm.Expr("balance + ?", amount),
				"total_earned": gorm.Expr("total_earned + ?", amount),
			}).Error; err != nil {
			return err
		}

		ledger := &models.TokenTransaction{
			UserID:      owner.UserID,
			SessionID:   owner.SessionID,
			Type:        models.TokenTxEarn,
			Amount:      amount,
			Description: description,
			DedupKey:    dedupKey,
		}
		if err := tx.Create(ledger).Error; err != nil {
			return err
		}

		var refreshed models.UserTokens
		if err := tx.First(&refreshed, b.ID).Error; err != nil {
			return err
		}
		balance = &refreshed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return balance, nil
}

func (r *vipRepository) Purchase(ctx context.Context, owner TokenOwner, item *models.MarketplaceItem) (*models.VipPurchase, error) {
	var purchase *models.VipPurchase
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := (&vipRepository{db: tx}).GetOrCreateBalance(ctx, owner)
		if err != nil {
			return err
		}

		// Conditional debit so two concurrent purchases cannot both spend
		// the same tokens.
		res := tx.Model(&models.UserTokens{}).
			Where("id = ? AND balance >= ?", b.ID, item.Price).
			Updates(map[string]interface{}{
				"balance":     gorm.Expr("balance - ?", item.Price),
				"total_spent": gorm.Expr("total_spent + ?", item.Price),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientTokens
		}

		ledger := &models.TokenTransaction{
			UserID:        owner.UserID,
			SessionID:     owner.SessionID,
			Type:          models.TokenTxSpend,
			Amount:        item.Price,
			Description:   item.Title,
			RelatedItemID: &item.ID,
		}
		if err := tx.Create(ledger).Error; err != nil {
			return err
		}

		now := time.Now()
		p := &models.VipPurchase{
			UserID:            owner.UserID,
			SessionID:         owner.SessionID,
			MarketplaceItemID: item.ID,
			TokensSpent:       item.Price,
			Status:            models.PurchaseStatusActive,
			PurchasedAt:       now,
		}
		if item.DurationDays > 0 {
			expires := now.AddDate(0, 0, item.DurationDays)
			p.ExpiresAt = &expires
		}
		if err := tx.Create(p).Error; err != nil {
			return err
		}

		if item.Category == "membership" {
			membership := &models.VipMembership{
				UserID:         owner.UserID,
				SessionID:      owner.SessionID,
				MembershipType: item.Title,
				IsActive:       true,
				ExpiresAt:      p.ExpiresAt,
				PurchasedAt:    now,
			}
			if err := tx.Create(membership).Error; err != nil {
				return err
			}
		}

		purchase = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

func (r *vipRepository) ListTransactions(ctx context.Context, owner TokenOwner, limit int) ([]*models.TokenTransaction, error) {
	var txs []*models.TokenTransaction
	err := ownerScope(r.db.WithContext(ctx), owner).
		Order("created_at DESC").
		Limit(limit).
		Find(&txs).Error
	return txs, err
}

func (r *vipRepository) ListPurchases(ctx context.Context, owner TokenOwner) ([]*models.VipPurchase, error) {
	var purchases []*models.VipPurchase
	err := ownerScope(r.db.WithContext(ctx).Preload("Item"), owner).
		Order("purchased_at DESC").
		Find(&purchases).Error
	return purchases, err
}

func (r *vipRepository) GetMembership(ctx context.Context, owner TokenOwner) (*models.VipMembership, error) {
	var membership models.VipMembership
	err := ownerScope(r.db.WithContext(ctx), owner).
		Where("is_active = ?", true).
		Order("purchased_at DESC").
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *vipRepository) ExpirePurchases(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.VipPurchase{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", models.PurchaseStatusActive, now).
		Update("status", models.PurchaseStatusExpired)
	if res.Error != nil {
		return 0, res.Error
	}

	if err := r.db.WithContext(ctx).
		Model(&models.VipMembership{}).
		Where("is_active = ? AND expires_at IS NOT NULL AND expires_at < ?", true, now).
		Update("is_active", false).Error; err != nil {
		return res.RowsAffected, err
	}
	return res.RowsAffected, nil
}

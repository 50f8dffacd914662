package models

import (
	"encoding/json"
	"time"
)

// Token transaction types for the append-only ledger.
const (
	TokenTxEarn  = "earn"
	TokenTxSpend = "spend"
)

// VIP purchase states.
const (
	PurchaseStatusActive  = "active"
	PurchaseStatusExpired = "expired"
)

// UserTokens is a token balance. Exactly one of UserID or SessionID is set:
// anonymous sessions may hold tokens without a registered account.
type UserTokens struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      *uint     `gorm:"index" json:"user_id,omitempty"`
	SessionID   *uint     `gorm:"index" json:"session_id,omitempty"`
	Balance     int       `gorm:"not null;default:0" json:"balance"`
	TotalEarned int       `gorm:"not null;default:0" json:"total_earned"`
	TotalSpent  int       `gorm:"not null;default:0" json:"total_spent"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MarketplaceItem is a purchasable feature bundle in the VIP catalog.
type MarketplaceItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Title       string          `gorm:"not null" json:"title"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Category    string          `gorm:"not null;index" json:"category"`
	Price       int             `gorm:"not null" json:"price"`
	CreatedByID *uint           `json:"created_by_user_id,omitempty"`
	IsActive    bool            `gorm:"not null;default:true" json:"is_active"`
	Features    json.RawMessage `json:"features,omitempty"`
	// DurationDays limits how long a purchase stays active; zero means
	// the purchase never expires.
	DurationDays int       `json:"duration,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TokenTransaction is one row of the append-only token ledger. Rows are
// never updated or deleted; the UserTokens balance is the running total.
type TokenTransaction struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	UserID        *uint  `gorm:"index" json:"user_id,omitempty"`
	SessionID     *uint  `gorm:"index" json:"session_id,omitempty"`
	Type          string `gorm:"not null" json:"type"`
	Amount        int    `gorm:"not null" json:"amount"`
	Description   string `gorm:"not null" json:"description"`
	RelatedItemID *uint  `json:"related_item_id,omitempty"`
	// DedupKey makes once-only credits (the daily check-in) idempotent at
	// the storage layer. Nil for ordinary ledger rows.
	DedupKey  *string   `gorm:"uniqueIndex" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// VipPurchase is a receipt for a marketplace purchase.
type VipPurchase struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	UserID            *uint            `gorm:"index" json:"user_id,omitempty"`
	SessionID         *uint            `gorm:"index" json:"session_id,omitempty"`
	MarketplaceItemID uint             `gorm:"not null;index" json:"marketplace_item_id"`
	Item              *MarketplaceItem `gorm:"foreignKey:MarketplaceItemID" json:"item,omitempty"`
	TokensSpent       int              `gorm:"not null" json:"tokens_spent"`
	Status            string           `gorm:"not null;default:active" json:"status"`
	ExpiresAt         *time.Time       `json:"expires_at,omitempty"`
	PurchasedAt       time.Time        `json:"purchased_at"`
	CreatedAt         time.Time        `json:"created_at"`
}

// VipMembership tracks an active membership-tier purchase.
type VipMembership struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         *uint      `gorm:"index" json:"user_id,omitempty"`
	SessionID      *uint      `gorm:"index" json:"session_id,omitempty"`
	MembershipType string     `gorm:"not null" json:"membership_type"`
	IsActive       bool       `gorm:"not null;default:true" json:"is_active"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	PurchasedAt    time.Time  `json:"purchased_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

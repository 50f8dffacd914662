package models

import "time"

// Direct message review states. A message starts pending and moves to
// exactly one of approved or rejected; it never returns to pending.
const (
	DMStatusPending  = "pending"
	DMStatusApproved = "approved"
	DMStatusRejected = "rejected"
)

// DirectMessage is a session-to-session message gated by admin review.
// Recipients only see messages once an admin approves them.
type DirectMessage struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	FromSessionID uint      `gorm:"not null;index" json:"from_session_id"`
	ToSessionID   uint      `gorm:"not null;index" json:"to_session_id"`
	Status        string    `gorm:"not null;default:pending;index" json:"status"`
	AdminNote     string    `json:"admin_note,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

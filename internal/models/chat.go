package models

import "time"

// ChatRoom is a per-college live chat room. Rooms are seeded, not created
// by end users.
type ChatRoom struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"not null" json:"name"`
	CollegeCode     string    `gorm:"not null;index" json:"college_code"`
	IsActive        bool      `gorm:"not null;default:true" json:"is_active"`
	MaxParticipants int       `gorm:"not null;default:50" json:"max_participants"`
	CreatedAt       time.Time `json:"created_at"`
}

// ChatMessage is a persisted room message. Unlike confessions there is no
// moderation gate; messages are visible immediately on creation.
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	RoomID    uint      `gorm:"not null;index" json:"room_id"`
	SessionID uint      `gorm:"not null;index" json:"session_id"`
	Nickname  string    `json:"nickname,omitempty"`
	IsPublic  bool      `gorm:"not null;default:true" json:"is_public"`
	CreatedAt time.Time `json:"created_at"`
}

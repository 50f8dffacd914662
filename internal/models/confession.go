package models

import "time"

// Confession is an anonymous, categorized post scoped to a college.
// Created unapproved; only admin approval makes it publicly visible.
// Likes and CommentCount are denormalized counters maintained inside the
// same transaction as the like/comment writes that change them.
type Confession struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	Category     string    `gorm:"not null;index" json:"category"`
	CollegeCode  string    `gorm:"not null;index" json:"college_code"`
	SessionID    uint      `gorm:"not null;index" json:"session_id"`
	Nickname     string    `json:"nickname,omitempty"`
	IsAnonymous  bool      `gorm:"not null;default:true" json:"is_anonymous"`
	IsApproved   bool      `gorm:"not null;default:false;index" json:"is_approved"`
	Likes        int       `gorm:"not null;default:0" json:"likes"`
	CommentCount int       `gorm:"not null;default:0" json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Comment on a confession. Same pending/approved lifecycle as confessions.
type Comment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	ConfessionID uint      `gorm:"not null;index" json:"confession_id"`
	SessionID    uint      `gorm:"not null;index" json:"session_id"`
	Nickname     string    `json:"nickname,omitempty"`
	IsApproved   bool      `gorm:"not null;default:false;index" json:"is_approved"`
	CreatedAt    time.Time `json:"created_at"`
}

// Like records a session's like on a confession. At most one row per
// (confession, session) pair, enforced by a composite unique index rather
// than an application-level existence check.
type Like struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ConfessionID uint      `gorm:"not null;uniqueIndex:idx_like_confession_session" json:"confession_id"`
	SessionID    uint      `gorm:"not null;uniqueIndex:idx_like_confession_session" json:"session_id"`
	CreatedAt    time.Time `json:"created_at"`
}

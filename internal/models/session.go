package models

import "time"

// DateLayout is the calendar-date format stored in Session.LastResetDate.
// Daily quota resets compare these strings directly; the comparison is
// deliberately not timezone-aware.
const DateLayout = "2006-01-02"

// Today returns the current calendar date in DateLayout.
func Today() string {
	return time.Now().Format(DateLayout)
}

// Session is an anonymous per-client identity. It scopes daily confession
// quotas, likes, chat attribution, and direct messages without requiring
// registration. Admin logins link a session to a User via UserID.
type Session struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	Token                string    `gorm:"uniqueIndex;not null" json:"-"`
	UserID               *uint     `gorm:"index" json:"user_id,omitempty"`
	User                 *User     `gorm:"foreignKey:UserID" json:"-"`
	CollegeCode          string    `json:"college_code,omitempty"`
	Nickname             string    `json:"nickname,omitempty"`
	DailyConfessionCount int       `gorm:"not null;default:0" json:"daily_confession_count"`
	LastResetDate        string    `gorm:"not null" json:"last_reset_date"`
	CreatedAt            time.Time `json:"created_at"`
}

// Package models contains data structures for the application's domain models.
package models

import "time"

// Admin roles, ordered from widest to narrowest capability.
//
// chief   - full access to every college, plus admin account management.
// college - moderates confessions, comments, and direct messages for its
//
//	own college only.
//
// normal  - moderates confessions and comments for its own college only.
type Role string

const (
	RoleChief   Role = "chief"
	RoleCollege Role = "college"
	RoleNormal  Role = "normal"
)

// ValidRole reports whether r is one of the closed set of admin roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleChief, RoleCollege, RoleNormal:
		return true
	}
	return false
}

// User is an admin account. End users never register; they are identified
// by anonymous sessions only.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"uniqueIndex;not null" json:"username"`
	Password    string    `gorm:"not null" json:"-"` // bcrypt hash
	Role        Role      `gorm:"not null;default:normal" json:"role"`
	CollegeCode string    `gorm:"index" json:"college_code,omitempty"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// College is a campus community. Confessions and chat rooms are scoped to
// a college by its code.
type College struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Code      string    `gorm:"uniqueIndex;not null" json:"code"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

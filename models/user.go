package models

import "time"

const UserTable = "users"

const (
	RoleStudent = "student"
	RoleStaff   = "staff"
)

// User records are created on first login; the identity provider itself
// lives outside this service.
type User struct {
	ID    string `gorm:"primaryKey;type:uuid" json:"id"`
	Email string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name  string `gorm:"size:255;not null" json:"name"`
	Role  string `gorm:"size:20;not null;default:'student'" json:"role"`

	LastLoginAt *time.Time `gorm:"index" json:"lastLoginAt,omitempty"`
	LastSeenAt  *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`
	LoginCount  int64      `gorm:"not null;default:0" json:"loginCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string { return UserTable }

func (u *User) IsStaff() bool { return u.Role == RoleStaff }

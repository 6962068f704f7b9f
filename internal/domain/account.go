package domain

import (
	"context"
	"time"
)

// Role names the coarse permission level of an account.
type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleMember Role = "Member"
)

// User is a login account.
type User struct {
	BaseModel
	UserName         string     `gorm:"size:100;uniqueIndex;not null" json:"userName"`
	Email            string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash     string     `gorm:"size:255" json:"-"`
	Role             Role       `gorm:"size:20;not null;default:Member" json:"role"`
	ResetTokenHash   string     `gorm:"size:128" json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
}

// Principal is the authenticated caller as carried by a bearer token.
type Principal struct {
	UserID   uint
	UserName string
	Role     Role
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// UserRepository defines the data access interface for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uint) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUserName(ctx context.Context, userName string) (*User, error)
	Update(ctx context.Context, user *User) error
}

package account

import (
	"time"

	"github.com/simp-lee/koiconsult/internal/domain"
)

// LoginRequest accepts an email or a user name in the email field.
type LoginRequest struct {
	Email    string `json:"email" binding:"required_without=UserName"`
	UserName string `json:"userName"`
	Password string `json:"password" binding:"required"`
}

func (r LoginRequest) login() string {
	if r.Email != "" {
		return r.Email
	}
	return r.UserName
}

// RegisterRequest is the body of register.
type RegisterRequest struct {
	UserName        string `json:"userName" binding:"required,max=100"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirmPassword" binding:"omitempty,eqfield=Password"`
}

// ForgotPasswordRequest is the body of forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest is the body of reset-password.
type ResetPasswordRequest struct {
	Email                string `json:"email" binding:"required,email"`
	NewPassword          string `json:"newPassword" binding:"required,min=8,max=72"`
	ConfirmedNewPassword string `json:"confirmedNewPassword" binding:"required"`
	Token                string `json:"token" binding:"required"`
}

// TokenResponse is returned by login.
type TokenResponse struct {
	Token     string      `json:"token"`
	ExpiresAt int64       `json:"expiresAt"`
	UserID    uint        `json:"userId"`
	UserName  string      `json:"userName"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
}

// AccountResponse is the public view of an account.
type AccountResponse struct {
	ID          uint        `json:"id"`
	UserName    string      `json:"userName"`
	Email       string      `json:"email"`
	Role        domain.Role `json:"role"`
	CreatedDate time.Time   `json:"createdDate"`
}

func newAccountResponse(u *domain.User) AccountResponse {
	return AccountResponse{ID: u.ID, UserName: u.UserName, Email: u.Email, Role: u.Role, CreatedDate: u.CreatedAt}
}

package client

import (
	"encoding/json"
	"time"

	"github.com/simp-lee/koiconsult/internal/domain"
)

// Page is one page of a list endpoint.
type Page[T any] = domain.PageResult[T]

// PageQuery is the body of every list endpoint: the paging fields plus the
// filters, flattened into one object. A nil filter value is sent as JSON null.
type PageQuery struct {
	PageIndex int
	PageSize  int
	Filters   map[string]any
}

func (q PageQuery) MarshalJSON() ([]byte, error) {
	body := make(map[string]any, len(q.Filters)+2)
	for k, v := range q.Filters {
		body[k] = v
	}
	body["pageIndex"] = q.PageIndex
	body["pageSize"] = q.PageSize
	return json.Marshal(body)
}

// ImageView is the id/path pair embedded in packages.
type ImageView struct {
	ID       uint   `json:"id"`
	FilePath string `json:"filePath"`
}

// Image is an entry of the member image library.
type Image struct {
	ID            uint      `json:"id"`
	FilePath      string    `json:"filePath"`
	ThumbnailPath string    `json:"thumbnailPath"`
	AltText       *string   `json:"altText"`
	FileName      string    `json:"fileName"`
	MimeType      string    `json:"mimeType"`
	Size          int64     `json:"size"`
	Width         int       `json:"width"`
	Height        int       `json:"height"`
	UserID        uint      `json:"userId"`
	UserName      string    `json:"userName"`
	CreatedDate   time.Time `json:"createdDate"`
}

// Blog is a member article.
type Blog struct {
	ID          uint          `json:"id"`
	Title       string        `json:"title"`
	Content     string        `json:"content"`
	UserID      uint          `json:"userId"`
	UserName    string        `json:"userName"`
	Status      domain.Status `json:"status"`
	Images      []Image       `json:"imageViewDtos"`
	ImageIDs    []uint        `json:"imageIds"`
	CreatedDate time.Time     `json:"createdDate"`
	UpdatedDate time.Time     `json:"updatedDate"`
}

// SaveBlog creates a blog when ID is 0 and updates it otherwise.
type SaveBlog struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageIDs []uint `json:"imageIds"`
}

// Package is an advertisement package.
type Package struct {
	ID           uint          `json:"id"`
	Name         string        `json:"name"`
	Price        float64       `json:"price"`
	Description  string        `json:"description"`
	LimitAd      int           `json:"limitAd"`
	LimitContent int           `json:"limitContent"`
	LimitImage   int           `json:"limitImage"`
	Status       domain.Status `json:"status"`
	CreatedBy    string        `json:"createdBy"`
	IsActive     bool          `json:"isActive"`
	Images       []ImageView   `json:"imageViewDTOs"`
	ImageIDs     []uint        `json:"imageIds"`
	CreatedDate  time.Time     `json:"createdDate"`
}

// SavePackage creates a package when ID is 0 and updates it otherwise.
type SavePackage struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Description  string  `json:"description"`
	LimitAd      int     `json:"limitAd"`
	LimitContent int     `json:"limitContent"`
	LimitImage   int     `json:"limitImage"`
	ImageIDs     []uint  `json:"imageIds"`
	IsActive     *bool   `json:"isActive,omitempty"`
}

// UserDetail is a member profile.
type UserDetail struct {
	UserID       uint      `json:"userId"`
	UserName     string    `json:"userName"`
	FullName     string    `json:"fullName"`
	IdentityCard string    `json:"identityCard"`
	DateOfBirth  *string   `json:"dateOfBirth"`
	Gender       string    `json:"gender"`
	Avatar       string    `json:"avatar"`
	ImageID      *uint     `json:"imageId"`
	CreatedDate  time.Time `json:"createdDate"`
}

// SaveUserDetail is the body of create-update-user-detail.
type SaveUserDetail struct {
	FullName     string  `json:"fullName"`
	IdentityCard string  `json:"identityCard"`
	DateOfBirth  *string `json:"dateOfBirth"`
	Gender       string  `json:"gender"`
	ImageID      *uint   `json:"imageId"`
}

// Pond is a member's koi pond.
type Pond struct {
	ID          uint      `json:"id"`
	PondName    string    `json:"pondName"`
	Quantity    int       `json:"quantity"`
	Image       string    `json:"image"`
	Description string    `json:"description"`
	CreatedDate time.Time `json:"createdDate"`
}

// SavePond is the body of add and update.
type SavePond struct {
	PondName    string `json:"pondName"`
	Quantity    int    `json:"quantity"`
	Image       string `json:"image"`
	Description string `json:"description"`
}

// Account is the public view of a registered account.
type Account struct {
	ID          uint        `json:"id"`
	UserName    string      `json:"userName"`
	Email       string      `json:"email"`
	Role        domain.Role `json:"role"`
	CreatedDate time.Time   `json:"createdDate"`
}

// Token is the result of login.
type Token struct {
	Token     string      `json:"token"`
	ExpiresAt int64       `json:"expiresAt"`
	UserID    uint        `json:"userId"`
	UserName  string      `json:"userName"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
}

// Register is the body of register.
type Register struct {
	UserName        string `json:"userName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ResetPassword is the body of reset-password.
type ResetPassword struct {
	Email                string `json:"email"`
	NewPassword          string `json:"newPassword"`
	ConfirmedNewPassword string `json:"confirmedNewPassword"`
	Token                string `json:"token"`
}

// PaymentRequest is the body of request-payment.
type PaymentRequest struct {
	PackageName string  `json:"packageName"`
	FullName    string  `json:"fullName"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

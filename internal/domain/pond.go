package domain

import "context"

// Pond is a koi pond owned by a member.
type Pond struct {
	BaseModel
	UserID      uint   `gorm:"uniqueIndex:idx_user_pond_name;not null" json:"userId"`
	PondName    string `gorm:"size:255;uniqueIndex:idx_user_pond_name;not null" json:"pondName"`
	Quantity    int    `json:"quantity"`
	Description string `gorm:"type:text" json:"description"`
	Image       string `gorm:"size:512" json:"image"`
}

// PondRepository defines the data access interface for ponds.
type PondRepository interface {
	Create(ctx context.Context, pond *Pond) error
	GetByID(ctx context.Context, id uint) (*Pond, error)
	ListByUser(ctx context.Context, userID uint) ([]Pond, error)
	Update(ctx context.Context, pond *Pond) error
	Delete(ctx context.Context, id uint) error
}

// PondService defines the business logic interface for ponds.
type PondService interface {
	Create(ctx context.Context, owner Principal, pond Pond) (*Pond, error)
	Get(ctx context.Context, owner Principal, id uint) (*Pond, error)
	List(ctx context.Context, owner Principal) ([]Pond, error)
	Update(ctx context.Context, owner Principal, id uint, pond Pond) (*Pond, error)
	Delete(ctx context.Context, owner Principal, id uint) error
}

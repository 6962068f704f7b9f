package domain

import "context"

// UserDetail is the public profile attached to an account.
type UserDetail struct {
	BaseModel
	UserID        uint   `gorm:"uniqueIndex;not null" json:"userId"`
	UserName      string `gorm:"size:100;index" json:"userName"`
	FullName      string `gorm:"size:255" json:"fullName"`
	IdentityCard  string `gorm:"size:32" json:"identityCard"`
	DateOfBirth   string `gorm:"size:10" json:"dateOfBirth"`
	Gender        string `gorm:"size:16" json:"gender"`
	AvatarImageID *uint  `json:"-"`
	Avatar        *Image `gorm:"foreignKey:AvatarImageID" json:"-"`
}

// AvatarURL returns the avatar file path, or "" when no avatar is set.
func (d *UserDetail) AvatarURL() string {
	if d == nil || d.Avatar == nil {
		return ""
	}
	return d.Avatar.FilePath
}

// SaveUserDetailInput carries a profile create-or-update request.
type SaveUserDetailInput struct {
	FullName     string
	IdentityCard string
	DateOfBirth  string
	Gender       string
	ImageID      *uint
}

// UserDetailRepository defines the data access interface for profiles.
type UserDetailRepository interface {
	Upsert(ctx context.Context, detail *UserDetail) error
	GetByUserID(ctx context.Context, userID uint) (*UserDetail, error)
	GetByUserName(ctx context.Context, userName string) (*UserDetail, error)
	List(ctx context.Context, req PageRequest) (*PageResult[UserDetail], error)
}

// UserDetailService defines the business logic interface for profiles.
type UserDetailService interface {
	Save(ctx context.Context, owner Principal, in SaveUserDetailInput) (*UserDetail, error)
	GetForUser(ctx context.Context, owner Principal) (*UserDetail, error)
	List(ctx context.Context, req PageRequest) (*PageResult[UserDetail], error)
	AvatarByUserName(ctx context.Context, userName string) (string, error)
}

package domain

import "context"

// Blog is a member-written article subject to admin moderation.
type Blog struct {
	BaseModel
	Title    string  `gorm:"size:255;not null" json:"title"`
	Content  string  `gorm:"type:text" json:"content"`
	UserID   uint    `gorm:"index;not null" json:"userId"`
	UserName string  `gorm:"size:100" json:"userName"`
	Status   Status  `gorm:"index;not null;default:1" json:"status"`
	Images   []Image `gorm:"many2many:blog_images;" json:"imageViewDtos"`
}

// SaveBlogInput carries a create (ID == 0) or update request.
type SaveBlogInput struct {
	ID       uint
	Title    string
	Content  string
	ImageIDs []uint
}

// BlogRepository defines the data access interface for blogs.
type BlogRepository interface {
	Create(ctx context.Context, blog *Blog, imageIDs []uint) error
	Update(ctx context.Context, blog *Blog, imageIDs []uint) error
	GetByID(ctx context.Context, id uint) (*Blog, error)
	List(ctx context.Context, req PageRequest) (*PageResult[Blog], error)
	UpdateStatus(ctx context.Context, id uint, status Status) error
}

// BlogService defines the business logic interface for blogs.
type BlogService interface {
	Save(ctx context.Context, author Principal, in SaveBlogInput) (*Blog, error)
	UpdateStatus(ctx context.Context, id uint, status Status) error
	ListPublic(ctx context.Context, req PageRequest) (*PageResult[Blog], error)
	ListForUser(ctx context.Context, author Principal, req PageRequest) (*PageResult[Blog], error)
	ListForAdmin(ctx context.Context, req PageRequest) (*PageResult[Blog], error)
}

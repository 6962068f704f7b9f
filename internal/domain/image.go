package domain

import (
	"context"
	"io"
	"time"
)

// Image is an uploaded picture in a member's library. Blogs, advertisement
// packages and profiles reference images by id; one image may be referenced
// by many parents.
type Image struct {
	BaseModel
	FilePath      string  `gorm:"size:512;not null" json:"filePath"`
	ThumbnailPath string  `gorm:"size:512" json:"thumbnailPath"`
	AltText       *string `gorm:"size:255" json:"altText"`
	FileName      string  `gorm:"size:255" json:"fileName"`
	MimeType      string  `gorm:"size:64" json:"mimeType"`
	Size          int64   `json:"size"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	UserID        uint    `gorm:"index;not null" json:"userId"`
	UserName      string  `gorm:"size:100" json:"userName"`
}

// ImageView is the compact {id, filePath} projection embedded in parents.
type ImageView struct {
	ID       uint   `json:"id"`
	FilePath string `json:"filePath"`
}

// ImageViews projects images onto their compact views, preserving order.
func ImageViews(images []Image) []ImageView {
	views := make([]ImageView, 0, len(images))
	for _, img := range images {
		views = append(views, ImageView{ID: img.ID, FilePath: img.FilePath})
	}
	return views
}

// ImageIDs returns the ids of images in order.
func ImageIDs(images []Image) []uint {
	ids := make([]uint, 0, len(images))
	for _, img := range images {
		ids = append(ids, img.ID)
	}
	return ids
}

// UploadFile is an incoming file handed to the image service.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// ImageRepository defines the data access interface for images.
type ImageRepository interface {
	Create(ctx context.Context, image *Image) error
	GetByID(ctx context.Context, id uint) (*Image, error)
	FindByIDs(ctx context.Context, ids []uint) ([]Image, error)
	ListByUser(ctx context.Context, userID uint, req PageRequest) (*PageResult[Image], error)
	Delete(ctx context.Context, id uint) error
	IsReferenced(ctx context.Context, id uint) (bool, error)
	ListOrphans(ctx context.Context, createdBefore time.Time, limit int) ([]Image, error)
}

// ImageService defines the business logic interface for the image library.
type ImageService interface {
	Upload(ctx context.Context, owner Principal, file UploadFile) (*Image, error)
	ListForMember(ctx context.Context, owner Principal, req PageRequest) (*PageResult[Image], error)
	Delete(ctx context.Context, owner Principal, id uint) error
	SweepOrphans(ctx context.Context, maxAge time.Duration) (int, error)
}

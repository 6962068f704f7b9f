package domain

import "context"

// AdvertisementPackage is a purchasable membership/advertising tier.
type AdvertisementPackage struct {
	BaseModel
	Name         string  `gorm:"size:255;not null" json:"name"`
	Price        float64 `gorm:"not null" json:"price"`
	Description  string  `gorm:"type:text" json:"description"`
	LimitAd      int     `json:"limitAd"`
	LimitContent int     `json:"limitContent"`
	LimitImage   int     `json:"limitImage"`
	Status       Status  `gorm:"index;not null;default:4" json:"status"`
	CreatedBy    string  `gorm:"size:100" json:"createdBy"`
	Images       []Image `gorm:"many2many:package_images;" json:"-"`
}

// SavePackageInput carries a create (ID == 0) or update request.
type SavePackageInput struct {
	ID           uint
	Name         string
	Price        float64
	Description  string
	LimitAd      int
	LimitContent int
	LimitImage   int
	Status       Status
	ImageIDs     []uint
}

// PackageRepository defines the data access interface for advertisement packages.
type PackageRepository interface {
	Create(ctx context.Context, pkg *AdvertisementPackage, imageIDs []uint) error
	Update(ctx context.Context, pkg *AdvertisementPackage, imageIDs []uint) error
	GetByID(ctx context.Context, id uint) (*AdvertisementPackage, error)
	List(ctx context.Context, req PageRequest) (*PageResult[AdvertisementPackage], error)
	AddImages(ctx context.Context, id uint, imageIDs []uint) error
	RemoveImages(ctx context.Context, id uint, imageIDs []uint) error
}

// PackageService defines the business logic interface for advertisement packages.
type PackageService interface {
	Save(ctx context.Context, admin Principal, in SavePackageInput) (*AdvertisementPackage, error)
	Get(ctx context.Context, id uint) (*AdvertisementPackage, error)
	List(ctx context.Context, req PageRequest) (*PageResult[AdvertisementPackage], error)
	AddImages(ctx context.Context, id uint, imageIDs []uint) error
	RemoveImages(ctx context.Context, id uint, imageIDs []uint) error
}

package adpackage

import (
	"context"
	"strings"

	"github.com/simp-lee/koiconsult/internal/domain"
	"github.com/simp-lee/koiconsult/internal/pkg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	allowedSortFields   = []string{"id", "name", "price", "created_at", "image_count"}
	allowedFilterFields = []string{"name", "price", "status"}
)

const imageCountColumn = "(SELECT COUNT(*) FROM package_images pi WHERE pi.advertisement_package_id = advertisement_packages.id) AS image_count"

// packageRepository implements domain.PackageRepository using GORM.
type packageRepository struct {
	db *gorm.DB
}

// NewPackageRepository creates a new PackageRepository backed by the given GORM database.
func NewPackageRepository(db *gorm.DB) domain.PackageRepository {
	return &packageRepository{db: db}
}

func (r *packageRepository) Create(ctx context.Context, p *domain.AdvertisementPackage, imageIDs []uint) error {
	return pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
			return pkg.MapDBError(err)
		}
		return pkg.ReplaceImages(tx, p, imageIDs)
	})
}

func (r *packageRepository) Update(ctx context.Context, p *domain.AdvertisementPackage, imageIDs []uint) error {
	return pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(p).Error; err != nil {
			return pkg.MapDBError(err)
		}
		return pkg.ReplaceImages(tx, p, imageIDs)
	})
}

func (r *packageRepository) GetByID(ctx context.Context, id uint) (*domain.AdvertisementPackage, error) {
	var p domain.AdvertisementPackage
	if err := r.db.WithContext(ctx).Preload("Images", orderImages).First(&p, id).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &p, nil
}

// List returns a filtered, sorted page of packages with their images.
func (r *packageRepository) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.AdvertisementPackage], error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&domain.AdvertisementPackage{}).
		Scopes(pkg.Filter(req, allowedFilterFields))

	if err := base.Count(&total).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}

	query := base.Session(&gorm.Session{})
	if strings.Contains(req.Sort, "image_count") {
		query = query.Select("advertisement_packages.*, " + imageCountColumn)
	}

	var items []domain.AdvertisementPackage
	if err := query.Scopes(
		pkg.Sort(req, allowedSortFields),
		pkg.Paginate(req),
		pkg.Tiebreak("advertisement_packages.id desc"),
	).Preload("Images", orderImages).Find(&items).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}

	return pkg.NewPage(items, total, req), nil
}

// AddImages attaches imageIDs to the package, keeping the ones already there.
func (r *packageRepository) AddImages(ctx context.Context, id uint, imageIDs []uint) error {
	return pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		p, err := findPackage(tx, id)
		if err != nil {
			return err
		}
		return pkg.AppendImages(tx, p, imageIDs)
	})
}

// RemoveImages detaches imageIDs from the package. Ids that are not attached
// are ignored.
func (r *packageRepository) RemoveImages(ctx context.Context, id uint, imageIDs []uint) error {
	return pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		p, err := findPackage(tx, id)
		if err != nil {
			return err
		}
		return pkg.DeleteImages(tx, p, imageIDs)
	})
}

func findPackage(tx *gorm.DB, id uint) (*domain.AdvertisementPackage, error) {
	var p domain.AdvertisementPackage
	if err := tx.Select("id").First(&p, id).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &p, nil
}

func orderImages(db *gorm.DB) *gorm.DB {
	return db.Order("images.id")
}

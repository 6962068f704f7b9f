package image

import (
	"context"
	"time"

	"github.com/simp-lee/koiconsult/internal/domain"
	"github.com/simp-lee/koiconsult/internal/pkg"
	"gorm.io/gorm"
)

// Allowed fields for sorting and filtering in ListByUser queries.
var (
	allowedSortFields   = []string{"id", "file_name", "created_at"}
	allowedFilterFields = []string{"file_name"}
)

// imageRepository implements domain.ImageRepository using GORM.
type imageRepository struct {
	db *gorm.DB
}

// NewImageRepository creates a new ImageRepository backed by the given GORM database.
func NewImageRepository(db *gorm.DB) domain.ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(ctx context.Context, image *domain.Image) error {
	return pkg.MapDBError(r.db.WithContext(ctx).Create(image).Error)
}

func (r *imageRepository) GetByID(ctx context.Context, id uint) (*domain.Image, error) {
	var image domain.Image
	if err := r.db.WithContext(ctx).First(&image, id).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &image, nil
}

// FindByIDs returns the images with the given ids in the order the ids were
// given. Unknown ids are skipped; callers compare lengths to detect them.
func (r *imageRepository) FindByIDs(ctx context.Context, ids []uint) ([]domain.Image, error) {
	if len(ids) == 0 {
		return []domain.Image{}, nil
	}
	var found []domain.Image
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	byID := make(map[uint]domain.Image, len(found))
	for _, img := range found {
		byID[img.ID] = img
	}
	ordered := make([]domain.Image, 0, len(found))
	for _, id := range ids {
		if img, ok := byID[id]; ok {
			ordered = append(ordered, img)
			delete(byID, id)
		}
	}
	return ordered, nil
}

// ListByUser returns a page of the images uploaded by userID.
func (r *imageRepository) ListByUser(ctx context.Context, userID uint, req domain.PageRequest) (*domain.PageResult[domain.Image], error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&domain.Image{}).
		Where("user_id = ?", userID).
		Scopes(pkg.Filter(req, allowedFilterFields))

	if err := base.Count(&total).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}

	var images []domain.Image
	if err := base.Scopes(
		pkg.Sort(req, allowedSortFields),
		pkg.Paginate(req),
		pkg.Tiebreak("id desc"),
	).Find(&images).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}

	return pkg.NewPage(images, total, req), nil
}

func (r *imageRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Image{}, id)
	if result.Error != nil {
		return pkg.MapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// IsReferenced reports whether any blog, package or profile points at the image.
func (r *imageRepository) IsReferenced(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Raw(`SELECT
		(SELECT COUNT(*) FROM blog_images WHERE image_id = ?) +
		(SELECT COUNT(*) FROM package_images WHERE image_id = ?) +
		(SELECT COUNT(*) FROM user_details WHERE avatar_image_id = ?)`, id, id, id).
		Scan(&n).Error
	if err != nil {
		return false, pkg.MapDBError(err)
	}
	return n > 0, nil
}

// ListOrphans returns up to limit unreferenced images created before the cutoff,
// oldest first.
func (r *imageRepository) ListOrphans(ctx context.Context, createdBefore time.Time, limit int) ([]domain.Image, error) {
	var images []domain.Image
	err := r.db.WithContext(ctx).
		Where("created_at < ?", createdBefore).
		Where("id NOT IN (?)", r.db.Table("blog_images").Select("image_id")).
		Where("id NOT IN (?)", r.db.Table("package_images").Select("image_id")).
		Where("id NOT IN (?)", r.db.Model(&domain.UserDetail{}).Select("avatar_image_id").Where("avatar_image_id IS NOT NULL")).
		Order("created_at asc").
		Limit(limit).
		Find(&images).Error
	if err != nil {
		return nil, pkg.MapDBError(err)
	}
	return images, nil
}

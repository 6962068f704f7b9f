package blog

import (
	"context"
	"strings"

	"github.com/simp-lee/koiconsult/internal/domain"
	"github.com/simp-lee/koiconsult/internal/pkg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Allowed fields for sorting and filtering in List queries.
var (
	allowedSortFields   = []string{"id", "title", "created_at", "image_count"}
	allowedFilterFields = []string{"title", "status", "user_id"}
)

const imageCountColumn = "(SELECT COUNT(*) FROM blog_images bi WHERE bi.blog_id = blogs.id) AS image_count"

// blogRepository implements domain.BlogRepository using GORM.
type blogRepository struct {
	db *gorm.DB
}

// NewBlogRepository creates a new BlogRepository backed by the given GORM database.
func NewBlogRepository(db *gorm.DB) domain.BlogRepository {
	return &blogRepository{db: db}
}

// Create inserts the blog and attaches imageIDs in one transaction.
func (r *blogRepository) Create(ctx context.Context, blog *domain.Blog, imageIDs []uint) error {
	return pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(blog).Error; err != nil {
			return pkg.MapDBError(err)
		}
		return pkg.ReplaceImages(tx, blog, imageIDs)
	})
}

// Update saves the blog and replaces its image list in one transaction.
func (r *blogRepository) Update(ctx context.Context, blog *domain.Blog, imageIDs []uint) error {
	return pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(blog).Error; err != nil {
			return pkg.MapDBError(err)
		}
		return pkg.ReplaceImages(tx, blog, imageIDs)
	})
}

func (r *blogRepository) GetByID(ctx context.Context, id uint) (*domain.Blog, error) {
	var blog domain.Blog
	if err := r.db.WithContext(ctx).Preload("Images", orderImages).First(&blog, id).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &blog, nil
}

// List returns a filtered, sorted page of blogs with their images.
func (r *blogRepository) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.Blog], error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&domain.Blog{}).
		Scopes(pkg.Filter(req, allowedFilterFields))

	if err := base.Count(&total).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}

	query := base.Session(&gorm.Session{})
	if strings.Contains(req.Sort, "image_count") {
		query = query.Select("blogs.*, " + imageCountColumn)
	}

	var blogs []domain.Blog
	if err := query.Scopes(
		pkg.Sort(req, allowedSortFields),
		pkg.Paginate(req),
		pkg.Tiebreak("blogs.id desc"),
	).Preload("Images", orderImages).Find(&blogs).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}

	return pkg.NewPage(blogs, total, req), nil
}

func (r *blogRepository) UpdateStatus(ctx context.Context, id uint, status domain.Status) error {
	result := r.db.WithContext(ctx).Model(&domain.Blog{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return pkg.MapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func orderImages(db *gorm.DB) *gorm.DB {
	return db.Order("images.id")
}

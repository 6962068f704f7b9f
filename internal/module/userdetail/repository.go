package userdetail

import (
	"context"
	"errors"

	"github.com/simp-lee/koiconsult/internal/domain"
	"github.com/simp-lee/koiconsult/internal/pkg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	allowedSortFields   = []string{"id", "user_name", "full_name", "created_at"}
	allowedFilterFields = []string{"user_id", "user_name", "full_name"}
)

// userDetailRepository implements domain.UserDetailRepository using GORM.
type userDetailRepository struct {
	db *gorm.DB
}

// NewUserDetailRepository creates a new UserDetailRepository backed by the given GORM database.
func NewUserDetailRepository(db *gorm.DB) domain.UserDetailRepository {
	return &userDetailRepository{db: db}
}

// Upsert writes the profile of detail.UserID, creating it on first save.
// On return detail carries the stored ID and timestamps.
func (r *userDetailRepository) Upsert(ctx context.Context, detail *domain.UserDetail) error {
	return pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		var existing domain.UserDetail
		err := tx.Where("user_id = ?", detail.UserID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return pkg.MapDBError(tx.Omit(clause.Associations).Create(detail).Error)
		case err != nil:
			return pkg.MapDBError(err)
		}
		detail.ID = existing.ID
		detail.CreatedAt = existing.CreatedAt
		return pkg.MapDBError(tx.Omit(clause.Associations).Save(detail).Error)
	})
}

func (r *userDetailRepository) GetByUserID(ctx context.Context, userID uint) (*domain.UserDetail, error) {
	return r.first(ctx, "user_id = ?", userID)
}

func (r *userDetailRepository) GetByUserName(ctx context.Context, userName string) (*domain.UserDetail, error) {
	return r.first(ctx, "user_name = ?", userName)
}

func (r *userDetailRepository) first(ctx context.Context, query string, arg any) (*domain.UserDetail, error) {
	var d domain.UserDetail
	if err := r.db.WithContext(ctx).Preload("Avatar").Where(query, arg).First(&d).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &d, nil
}

// List returns a filtered, sorted page of profiles with their avatars.
func (r *userDetailRepository) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.UserDetail], error) {
	var total int64
	query := r.db.WithContext(ctx).Model(&domain.UserDetail{}).
		Scopes(pkg.Filter(req, allowedFilterFields))

	if err := query.Count(&total).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}

	var details []domain.UserDetail
	if err := query.Scopes(
		pkg.Sort(req, allowedSortFields),
		pkg.Paginate(req),
		pkg.Tiebreak("id desc"),
	).Preload("Avatar").Find(&details).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}

	return pkg.NewPage(details, total, req), nil
}

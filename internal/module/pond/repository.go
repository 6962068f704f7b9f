package pond

import (
	"context"

	"github.com/simp-lee/koiconsult/internal/domain"
	"github.com/simp-lee/koiconsult/internal/pkg"
	"gorm.io/gorm"
)

// pondRepository implements domain.PondRepository using GORM.
type pondRepository struct {
	db *gorm.DB
}

// NewPondRepository creates a new PondRepository backed by the given GORM database.
func NewPondRepository(db *gorm.DB) domain.PondRepository {
	return &pondRepository{db: db}
}

func (r *pondRepository) Create(ctx context.Context, p *domain.Pond) error {
	return pkg.MapDBError(r.db.WithContext(ctx).Create(p).Error)
}

func (r *pondRepository) GetByID(ctx context.Context, id uint) (*domain.Pond, error) {
	var p domain.Pond
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &p, nil
}

// ListByUser returns the user's ponds, newest first.
func (r *pondRepository) ListByUser(ctx context.Context, userID uint) ([]domain.Pond, error) {
	var ponds []domain.Pond
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&ponds).Error
	if err != nil {
		return nil, pkg.MapDBError(err)
	}
	return ponds, nil
}

func (r *pondRepository) Update(ctx context.Context, p *domain.Pond) error {
	result := r.db.WithContext(ctx).Model(p).
		Select("pond_name", "quantity", "description", "image").
		Updates(p)
	if result.Error != nil {
		return pkg.MapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pondRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Pond{}, id)
	if result.Error != nil {
		return pkg.MapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

package payment

import (
	"context"

	"github.com/simp-lee/koiconsult/internal/domain"
	"github.com/simp-lee/koiconsult/internal/pkg"
	"gorm.io/gorm"
)

// paymentRepository implements domain.PaymentRepository using GORM.
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new PaymentRepository backed by the given GORM database.
func NewPaymentRepository(db *gorm.DB) domain.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	return pkg.MapDBError(r.db.WithContext(ctx).Create(p).Error)
}

func (r *paymentRepository) GetByTxnRef(ctx context.Context, txnRef string) (*domain.Payment, error) {
	var p domain.Payment
	if err := r.db.WithContext(ctx).Where("txn_ref = ?", txnRef).First(&p).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &p, nil
}

// UpdateStatus settles a pending payment. Payments that were already settled
// are left alone and reported as not found.
func (r *paymentRepository) UpdateStatus(ctx context.Context, id uint, status domain.PaymentStatus) error {
	result := r.db.WithContext(ctx).Model(&domain.Payment{}).
		Where("id = ? AND status = ?", id, domain.PaymentPending).
		Update("status", status)
	if result.Error != nil {
		return pkg.MapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

package domain

import "context"

// PaymentStatus tracks a gateway payment from request to settlement.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
	PaymentFailed  PaymentStatus = "Failed"
)

// Payment is a membership purchase routed through the external gateway.
type Payment struct {
	BaseModel
	UserID      uint          `gorm:"index;not null" json:"userId"`
	PackageName string        `gorm:"size:255;not null" json:"packageName"`
	FullName    string        `gorm:"size:255" json:"fullName"`
	Description string        `gorm:"size:512" json:"description"`
	Amount      int64         `gorm:"not null" json:"amount"`
	TxnRef      string        `gorm:"size:64;uniqueIndex;not null" json:"txnRef"`
	Status      PaymentStatus `gorm:"size:16;not null;default:Pending" json:"status"`
}

// PaymentRepository defines the data access interface for payments.
type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	GetByTxnRef(ctx context.Context, txnRef string) (*Payment, error)
	UpdateStatus(ctx context.Context, id uint, status PaymentStatus) error
}

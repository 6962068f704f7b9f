package payment

import (
	"encoding/json"
	"time"

	"github.com/simp-lee/koiconsult/internal/domain"
	"github.com/simp-lee/koiconsult/internal/pkg"
)

// RequestPaymentRequest is the body of request-payment. userId and
// createdDate are accepted but the server uses the caller and its own clock.
type RequestPaymentRequest struct {
	UserID      json.RawMessage `json:"userId"`
	PackageName string          `json:"packageName" binding:"required,max=255"`
	FullName    string          `json:"fullName" binding:"max=255"`
	Description string          `json:"description"`
	Amount      float64         `json:"amount" binding:"required,gt=0"`
	CreatedDate string          `json:"createdDate"`
}

// RequestPaymentResponse is the envelope with the redirect URL also at the
// top level, where browser clients read it.
type RequestPaymentResponse struct {
	pkg.Response
	URL string `json:"url"`
}

// PaymentResponse is the wire form of a settled payment.
type PaymentResponse struct {
	TxnRef      string               `json:"txnRef"`
	PackageName string               `json:"packageName"`
	Amount      int64                `json:"amount"`
	Status      domain.PaymentStatus `json:"status"`
	CreatedDate time.Time            `json:"createdDate"`
}

func newPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		TxnRef:      p.TxnRef,
		PackageName: p.PackageName,
		Amount:      p.Amount,
		Status:      p.Status,
		CreatedDate: p.CreatedAt,
	}
}

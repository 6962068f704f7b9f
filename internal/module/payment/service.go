package payment

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/simp-lee/koiconsult/internal/domain"
	"github.com/simp-lee/koiconsult/internal/pkg"
)

// Service defines the payment operations.
type Service interface {
	Request(ctx context.Context, member domain.Principal, in RequestInput) (string, error)
	Return(ctx context.Context, query url.Values) (*domain.Payment, error)
}

// RequestInput carries a membership purchase.
type RequestInput struct {
	PackageName string
	FullName    string
	Description string
	Amount      float64
	ClientIP    string
}

// paymentService implements Service.
type paymentService struct {
	repo    domain.PaymentRepository
	gateway *Gateway
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a new payment Service.
func NewService(repo domain.PaymentRepository, gateway *Gateway, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &paymentService{repo: repo, gateway: gateway, logger: logger, now: time.Now}
}

// Request records a pending payment for the member and returns the gateway
// URL to redirect them to.
func (s *paymentService) Request(ctx context.Context, member domain.Principal, in RequestInput) (string, error) {
	packageName := pkg.StripHTML(in.PackageName)
	if packageName == "" {
		return "", domain.Validationf("Package name is required")
	}
	amount := int64(math.Round(in.Amount))
	if amount <= 0 {
		return "", domain.Validationf("Amount must be positive")
	}

	p := &domain.Payment{
		UserID:      member.UserID,
		PackageName: packageName,
		FullName:    pkg.StripHTML(in.FullName),
		Description: truncate(pkg.StripHTML(in.Description), 512),
		Amount:      amount,
		TxnRef:      strings.ReplaceAll(uuid.NewString(), "-", ""),
		Status:      domain.PaymentPending,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return "", err
	}

	return s.gateway.RedirectURL(Checkout{
		TxnRef:    p.TxnRef,
		Amount:    p.Amount,
		OrderInfo: "Thanh toan goi " + packageName,
		ClientIP:  in.ClientIP,
		CreatedAt: s.now(),
	}), nil
}

// Return settles the payment named by a verified gateway callback. A
// callback for an already settled payment returns it unchanged.
func (s *paymentService) Return(ctx context.Context, query url.Values) (*domain.Payment, error) {
	cb, err := s.gateway.Verify(query)
	if errors.Is(err, ErrBadSignature) {
		s.logger.WarnContext(ctx, "payment callback rejected", slog.String("txn_ref", query.Get(paramTxnRef)))
		return nil, domain.Validationf("Invalid payment signature")
	}
	if err != nil {
		return nil, domain.Validationf(err.Error())
	}

	p, err := s.repo.GetByTxnRef(ctx, cb.TxnRef)
	if err != nil {
		return nil, err
	}
	if p.Status != domain.PaymentPending {
		return p, nil
	}

	status := domain.PaymentFailed
	switch {
	case cb.Paid && cb.Amount == p.Amount:
		status = domain.PaymentPaid
	case cb.Paid:
		s.logger.ErrorContext(ctx, "payment amount mismatch",
			slog.String("txn_ref", p.TxnRef),
			slog.Int64("expected", p.Amount),
			slog.Int64("received", cb.Amount),
		)
	}

	err = s.repo.UpdateStatus(ctx, p.ID, status)
	if domain.IsNotFound(err) {
		// Settled concurrently by another callback.
		return s.repo.GetByTxnRef(ctx, cb.TxnRef)
	}
	if err != nil {
		return nil, err
	}
	p.Status = status
	s.logger.InfoContext(ctx, "payment settled", slog.String("txn_ref", p.TxnRef), slog.String("status", string(status)))
	return p, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

package payment

import "github.com/simp-lee/koiconsult/internal/pkg"

// PaymentModule implements the app.Module interface for payments.
type PaymentModule struct {
	handler *PaymentHandler
}

// NewModule creates a new PaymentModule. Panics if h is nil.
func NewModule(h *PaymentHandler) *PaymentModule {
	if h == nil {
		panic("payment.NewModule: handler must not be nil")
	}
	return &PaymentModule{handler: h}
}

// RegisterRoutes registers the payment routes. The return endpoint is public
// because the gateway redirects the browser there without a bearer token.
func (m *PaymentModule) RegisterRoutes(g pkg.RouteGroups) {
	g.Member.POST("/Payments/request-payment", m.handler.Request)
	g.Public.GET("/Payments/payment-return", m.handler.Return)
}

package payment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/koiconsult/internal/domain"
	"github.com/simp-lee/koiconsult/internal/middleware"
	"github.com/simp-lee/koiconsult/internal/pkg"
)

// PaymentHandler handles REST API requests for payments.
type PaymentHandler struct {
	svc Service
}

// NewHandler creates a new PaymentHandler with the given service.
func NewHandler(svc Service) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// Request handles POST /api/Payments/request-payment.
func (h *PaymentHandler) Request(c *gin.Context) {
	member, ok := middleware.GetPrincipal(c)
	if !ok {
		pkg.Error(c, domain.ErrUnauthorized)
		return
	}
	var req RequestPaymentRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	url, err := h.svc.Request(c.Request.Context(), member, RequestInput{
		PackageName: req.PackageName,
		FullName:    req.FullName,
		Description: req.Description,
		Amount:      req.Amount,
		ClientIP:    c.ClientIP(),
	})
	if err != nil {
		pkg.Error(c, err)
		return
	}

	result := gin.H{"url": url}
	c.JSON(http.StatusOK, RequestPaymentResponse{
		Response: pkg.Response{
			StatusCode: http.StatusOK,
			IsSuccess:  true,
			Message:    pkg.MessageSuccess,
			Result:     result,
		},
		URL: url,
	})
}

// Return handles GET /api/Payments/payment-return, where the gateway sends
// the member back after paying.
func (h *PaymentHandler) Return(c *gin.Context) {
	p, err := h.svc.Return(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, newPaymentResponse(p))
}

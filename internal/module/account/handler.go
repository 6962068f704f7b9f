package account

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/koiconsult/internal/pkg"
)

// forgotPasswordMessage is answered whether or not the email is known.
const forgotPasswordMessage = "If the email is registered, a reset link has been sent"

// AccountHandler handles REST API requests for accounts.
type AccountHandler struct {
	svc Service
}

// NewHandler creates a new AccountHandler with the given service.
func NewHandler(svc Service) *AccountHandler {
	return &AccountHandler{svc: svc}
}

// Register handles POST /api/Accounts/register.
func (h *AccountHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	user, err := h.svc.Register(c.Request.Context(), RegisterInput{
		UserName: req.UserName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		pkg.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, pkg.Response{
		StatusCode: http.StatusCreated,
		IsSuccess:  true,
		Message:    "Account registered",
		Result:     newAccountResponse(user),
	})
}

// Login handles POST /api/Accounts/login.
func (h *AccountHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req.login(), req.Password)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, resp)
}

// ForgotPassword handles POST /api/Accounts/forgot-password.
func (h *AccountHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	if err := h.svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.SuccessMessage(c, forgotPasswordMessage)
}

// ResetPassword handles POST /api/Accounts/reset-password.
func (h *AccountHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	err := h.svc.ResetPassword(c.Request.Context(), ResetPasswordInput{
		Email:           req.Email,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmedNewPassword,
		Token:           req.Token,
	})
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.SuccessMessage(c, "Password has been reset")
}

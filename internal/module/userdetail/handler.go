package userdetail

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/koiconsult/internal/domain"
	"github.com/simp-lee/koiconsult/internal/middleware"
	"github.com/simp-lee/koiconsult/internal/pkg"
)

// UserDetailHandler handles REST API requests for member profiles.
type UserDetailHandler struct {
	svc domain.UserDetailService
}

// NewUserDetailHandler creates a new UserDetailHandler with the given service.
func NewUserDetailHandler(svc domain.UserDetailService) *UserDetailHandler {
	return &UserDetailHandler{svc: svc}
}

// Save handles POST /api/UserDetails/create-update-user-detail.
func (h *UserDetailHandler) Save(c *gin.Context) {
	owner, ok := middleware.GetPrincipal(c)
	if !ok {
		pkg.Error(c, domain.ErrUnauthorized)
		return
	}
	var req SaveUserDetailRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	d, err := h.svc.Save(c.Request.Context(), owner, req.input())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, newUserDetailResponse(*d))
}

// GetForUser handles GET /api/UserDetails/get-user-detail-for-user.
func (h *UserDetailHandler) GetForUser(c *gin.Context) {
	owner, ok := middleware.GetPrincipal(c)
	if !ok {
		pkg.Error(c, domain.ErrUnauthorized)
		return
	}
	d, err := h.svc.GetForUser(c.Request.Context(), owner)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, newUserDetailResponse(*d))
}

// List handles POST /api/UserDetails/get-all-details.
func (h *UserDetailHandler) List(c *gin.Context) {
	var req ListUserDetailsRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	page, err := h.svc.List(c.Request.Context(), req.PageRequest())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, pkg.MapPage(page, newUserDetailResponse))
}

// Avatar handles GET /api/UserDetails/get-user-avatar-by-userName/:userName.
func (h *UserDetailHandler) Avatar(c *gin.Context) {
	url, err := h.svc.AvatarByUserName(c.Request.Context(), c.Param("userName"))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, url)
}

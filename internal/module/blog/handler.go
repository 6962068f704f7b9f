package blog

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/koiconsult/internal/domain"
	"github.com/simp-lee/koiconsult/internal/middleware"
	"github.com/simp-lee/koiconsult/internal/pkg"
)

// BlogHandler handles REST API requests for blogs.
type BlogHandler struct {
	svc domain.BlogService
}

// NewBlogHandler creates a new BlogHandler with the given service.
func NewBlogHandler(svc domain.BlogService) *BlogHandler {
	return &BlogHandler{svc: svc}
}

// ListPublic handles POST /api/Blogs/get-all-blogs.
func (h *BlogHandler) ListPublic(c *gin.Context) {
	var req ListBlogsRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	page, err := h.svc.ListPublic(c.Request.Context(), req.PageRequest())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, page)
}

// ListForUser handles POST /api/Blogs/get-all-blogs-for-user.
func (h *BlogHandler) ListForUser(c *gin.Context) {
	author, ok := middleware.GetPrincipal(c)
	if !ok {
		pkg.Error(c, domain.ErrUnauthorized)
		return
	}
	var req ListBlogsRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	page, err := h.svc.ListForUser(c.Request.Context(), author, req.PageRequest())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, page)
}

// ListForAdmin handles POST /api/Blogs/get-all-blogs-for-admin.
func (h *BlogHandler) ListForAdmin(c *gin.Context) {
	var req ListBlogsRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	page, err := h.svc.ListForAdmin(c.Request.Context(), req.PageRequest())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, page)
}

// Save handles POST /api/Blogs/create-update-blogs.
func (h *BlogHandler) Save(c *gin.Context) {
	author, ok := middleware.GetPrincipal(c)
	if !ok {
		pkg.Error(c, domain.ErrUnauthorized)
		return
	}
	var req SaveBlogRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	blog, err := h.svc.Save(c.Request.Context(), author, domain.SaveBlogInput{
		ID:       req.ID,
		Title:    req.Title,
		Content:  req.Content,
		ImageIDs: req.ImageIDs,
	})
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, newBlogResponse(blog))
}

// UpdateStatus handles POST /api/Blogs/update-status-blogs.
func (h *BlogHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	if err := h.svc.UpdateStatus(c.Request.Context(), req.ID, req.Status); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.SuccessMessage(c, "Blog status updated")
}

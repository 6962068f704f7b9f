package blog

import (
	"strconv"
	"strings"

	"github.com/simp-lee/koiconsult/internal/domain"
	"github.com/simp-lee/koiconsult/internal/pkg"
)

// Values of orderBlog.
const (
	OrderNewest = 1
	OrderOldest = 2
)

// ListBlogsRequest is the body shared by the three blog list endpoints.
// orderComment is accepted for compatibility and ignored: blogs carry no
// comments.
type ListBlogsRequest struct {
	pkg.PageBody
	Title        *string `json:"title"`
	BlogStatus   *int    `json:"blogStatus" binding:"omitempty,oneof=1 2 3"`
	OrderBlog    *int    `json:"orderBlog" binding:"omitempty,oneof=1 2"`
	OrderComment *string `json:"orderComment"`
	OrderImage   *string `json:"orderImage" binding:"omitempty,oneof=asc desc"`
}

// PageRequest converts the body into repository paging parameters. An
// image-count order takes precedence over the date order, which then breaks
// ties.
func (r ListBlogsRequest) PageRequest() domain.PageRequest {
	filter := map[string]string{}
	if r.Title != nil && strings.TrimSpace(*r.Title) != "" {
		filter["title__like"] = strings.TrimSpace(*r.Title)
	}
	if r.BlogStatus != nil {
		filter["status"] = strconv.Itoa(*r.BlogStatus)
	}

	dateOrder := "created_at:desc"
	if r.OrderBlog != nil && *r.OrderBlog == OrderOldest {
		dateOrder = "created_at:asc"
	}
	sort := dateOrder
	if r.OrderImage != nil && *r.OrderImage != "" {
		sort = "image_count:" + *r.OrderImage + "," + dateOrder
	}
	return pkg.NewPageRequest(r.PageBody, sort, filter)
}

// SaveBlogRequest is the body of create-update-blogs. ID 0 creates.
type SaveBlogRequest struct {
	ID       uint   `json:"id"`
	Title    string `json:"title" binding:"required,max=255"`
	Content  string `json:"content" binding:"required"`
	ImageIDs []uint `json:"imageIds"`
}

// UpdateStatusRequest is the body of update-status-blogs.
type UpdateStatusRequest struct {
	ID     uint          `json:"id" binding:"required"`
	Status domain.Status `json:"status" binding:"required"`
}

// BlogResponse is a blog with its image ids listed alongside the images.
type BlogResponse struct {
	domain.Blog
	ImageIDs []uint `json:"imageIds"`
}

func newBlogResponse(b *domain.Blog) BlogResponse {
	return BlogResponse{Blog: *b, ImageIDs: domain.ImageIDs(b.Images)}
}

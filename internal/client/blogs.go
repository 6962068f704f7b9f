package client

import (
	"context"
	"net/http"

	"github.com/simp-lee/koiconsult/internal/domain"
)

// BlogScope selects which blog list endpoint is queried.
type BlogScope int

const (
	// BlogsPublic lists approved blogs.
	BlogsPublic BlogScope = iota
	// BlogsMine lists the caller's own blogs.
	BlogsMine
	// BlogsAdmin lists every blog for moderation.
	BlogsAdmin
)

var blogListPaths = map[BlogScope]string{
	BlogsPublic: "/api/Blogs/get-all-blogs",
	BlogsMine:   "/api/Blogs/get-all-blogs-for-user",
	BlogsAdmin:  "/api/Blogs/get-all-blogs-for-admin",
}

// ListBlogs fetches one page of blogs. Recognised filters are title,
// blogStatus, orderBlog, orderComment and orderImage.
func (c *Client) ListBlogs(ctx context.Context, scope BlogScope, q PageQuery) (Page[Blog], error) {
	path, ok := blogListPaths[scope]
	if !ok {
		return Page[Blog]{}, Precondition("Unknown blog list")
	}
	var page Page[Blog]
	err := c.call(ctx, http.MethodPost, path, q, &page)
	return page, err
}

// SaveBlog creates or updates a blog and returns the stored version.
func (c *Client) SaveBlog(ctx context.Context, req SaveBlog) (*Blog, error) {
	if req.ImageIDs == nil {
		req.ImageIDs = []uint{}
	}
	var b Blog
	if err := c.call(ctx, http.MethodPost, "/api/Blogs/create-update-blogs", req, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateBlogStatus moves a blog to status. Admin only.
func (c *Client) UpdateBlogStatus(ctx context.Context, id uint, status domain.Status) error {
	body := struct {
		ID     uint `json:"id"`
		Status int  `json:"status"`
	}{ID: id, Status: int(status)}
	return c.call(ctx, http.MethodPost, "/api/Blogs/update-status-blogs", body, nil)
}

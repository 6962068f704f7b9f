package client

import (
	"context"
	"io"
	"net/http"
	"strings"
)

// UploadImage stores one file in the caller's image library.
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (*Image, error) {
	if strings.TrimSpace(filename) == "" || r == nil {
		return nil, Precondition("Please choose a file to upload")
	}
	var img Image
	if err := c.upload(ctx, "/api/Images/upload-image", "file", filename, r, &img); err != nil {
		return nil, err
	}
	return &img, nil
}

// ListImages fetches one page of the caller's library. Recognised filters
// are name and orderDate.
func (c *Client) ListImages(ctx context.Context, q PageQuery) (Page[Image], error) {
	var page Page[Image]
	err := c.call(ctx, http.MethodPost, "/api/Images/get-images-for-member", q, &page)
	return page, err
}

func (c *Client) DeleteImage(ctx context.Context, id uint) error {
	return c.call(ctx, http.MethodDelete, "/api/Images/delete-image/"+idPath(id), nil, nil)
}

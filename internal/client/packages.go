package client

import (
	"context"
	"net/http"
)

// ListPackages fetches one page of advertisement packages. Recognised
// filters are name, priceFilter and orderImage.
func (c *Client) ListPackages(ctx context.Context, q PageQuery) (Page[Package], error) {
	var page Page[Package]
	err := c.call(ctx, http.MethodPost, "/api/AdvertisementPackages/get-all-packages", q, &page)
	return page, err
}

func (c *Client) GetPackage(ctx context.Context, id uint) (*Package, error) {
	var p Package
	path := "/api/AdvertisementPackages/get-package-by-id/" + idPath(id)
	if err := c.call(ctx, http.MethodGet, path, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SavePackage creates or updates a package. Admin only.
func (c *Client) SavePackage(ctx context.Context, req SavePackage) (*Package, error) {
	if req.ImageIDs == nil {
		req.ImageIDs = []uint{}
	}
	var p Package
	if err := c.call(ctx, http.MethodPost, "/api/AdvertisementPackages/create-update-advertisement-package", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// AddPackageImages attaches library images to a package.
func (c *Client) AddPackageImages(ctx context.Context, packageID uint, imageIDs []uint) error {
	body := struct {
		PackageID uint   `json:"advertisementPackageId"`
		ImageIDs  []uint `json:"imagesId"`
	}{packageID, imageIDs}
	return c.call(ctx, http.MethodPost, "/api/AdvertisementPackages/add-images-to-packages", body, nil)
}

// RemovePackageImages detaches images from a package. The images stay in
// the library.
func (c *Client) RemovePackageImages(ctx context.Context, packageID uint, imageIDs []uint) error {
	body := struct {
		PackageID uint   `json:"advertisementPackageId"`
		ImageIDs  []uint `json:"imageIds"`
	}{packageID, imageIDs}
	return c.call(ctx, http.MethodPost, "/api/AdvertisementPackages/delete-images-from-packages", body, nil)
}

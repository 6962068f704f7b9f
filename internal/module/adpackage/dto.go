package adpackage

import (
	"strconv"
	"strings"

	"github.com/simp-lee/koiconsult/internal/domain"
	"github.com/simp-lee/koiconsult/internal/pkg"
)

// Values of orderImage. They mirror orderBlog: 1 puts the most illustrated
// packages first.
const (
	OrderMostImages   = 1
	OrderFewestImages = 2
)

// ListPackagesRequest is the body of get-all-packages. priceFilter is an
// upper bound on the price.
type ListPackagesRequest struct {
	pkg.PageBody
	Name        *string  `json:"name"`
	PriceFilter *float64 `json:"priceFilter" binding:"omitempty,gte=0"`
	OrderImage  *int     `json:"orderImage" binding:"omitempty,oneof=1 2"`
}

// PageRequest converts the body into repository paging parameters.
func (r ListPackagesRequest) PageRequest() domain.PageRequest {
	filter := map[string]string{}
	if r.Name != nil && strings.TrimSpace(*r.Name) != "" {
		filter["name__like"] = strings.TrimSpace(*r.Name)
	}
	if r.PriceFilter != nil {
		filter["price__lte"] = strconv.FormatFloat(*r.PriceFilter, 'f', -1, 64)
	}

	sort := "created_at:desc"
	if r.OrderImage != nil {
		dir := "desc"
		if *r.OrderImage == OrderFewestImages {
			dir = "asc"
		}
		sort = "image_count:" + dir + "," + sort
	}
	return pkg.NewPageRequest(r.PageBody, sort, filter)
}

// SavePackageRequest is the body of create-update-advertisement-package.
// ID 0 creates. isActive is optional; new packages start active.
type SavePackageRequest struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name" binding:"required,max=255"`
	Price        float64 `json:"price" binding:"gte=0"`
	Description  string  `json:"description"`
	LimitAd      int     `json:"limitAd" binding:"gte=0"`
	LimitContent int     `json:"limitContent" binding:"gte=0"`
	LimitImage   int     `json:"limitImage" binding:"gte=0"`
	ImageIDs     []uint  `json:"imageIds"`
	IsActive     *bool   `json:"isActive"`
}

func (r SavePackageRequest) input() domain.SavePackageInput {
	in := domain.SavePackageInput{
		ID:           r.ID,
		Name:         r.Name,
		Price:        r.Price,
		Description:  r.Description,
		LimitAd:      r.LimitAd,
		LimitContent: r.LimitContent,
		LimitImage:   r.LimitImage,
		ImageIDs:     r.ImageIDs,
	}
	if r.IsActive != nil {
		in.Status = domain.StatusInactive
		if *r.IsActive {
			in.Status = domain.StatusActive
		}
	}
	return in
}

// AddImagesRequest is the body of add-images-to-packages.
type AddImagesRequest struct {
	AdvertisementPackageID uint   `json:"advertisementPackageId" binding:"required"`
	ImagesID               []uint `json:"imagesId" binding:"required,min=1"`
}

// RemoveImagesRequest is the body of delete-images-from-packages.
type RemoveImagesRequest struct {
	AdvertisementPackageID uint   `json:"advertisementPackageId" binding:"required"`
	ImageIDs               []uint `json:"imageIds" binding:"required,min=1"`
}

// PackageResponse is the wire form of a package.
type PackageResponse struct {
	domain.AdvertisementPackage
	IsActive bool               `json:"isActive"`
	Images   []domain.ImageView `json:"imageViewDTOs"`
	ImageIDs []uint             `json:"imageIds"`
}

func newPackageResponse(p domain.AdvertisementPackage) PackageResponse {
	return PackageResponse{
		AdvertisementPackage: p,
		IsActive:             p.Status == domain.StatusActive,
		Images:               domain.ImageViews(p.Images),
		ImageIDs:             domain.ImageIDs(p.Images),
	}
}

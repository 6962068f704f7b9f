package adpackage

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/koiconsult/internal/domain"
	"github.com/simp-lee/koiconsult/internal/middleware"
	"github.com/simp-lee/koiconsult/internal/pkg"
)

// PackageHandler handles REST API requests for advertisement packages.
type PackageHandler struct {
	svc domain.PackageService
}

// NewPackageHandler creates a new PackageHandler with the given service.
func NewPackageHandler(svc domain.PackageService) *PackageHandler {
	return &PackageHandler{svc: svc}
}

// List handles POST /api/AdvertisementPackages/get-all-packages.
func (h *PackageHandler) List(c *gin.Context) {
	var req ListPackagesRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	page, err := h.svc.List(c.Request.Context(), req.PageRequest())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, pkg.MapPage(page, newPackageResponse))
}

// Get handles GET /api/AdvertisementPackages/get-package-by-id/:id.
func (h *PackageHandler) Get(c *gin.Context) {
	id, err := pkg.ParamID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	p, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, newPackageResponse(*p))
}

// Save handles POST /api/AdvertisementPackages/create-update-advertisement-package.
func (h *PackageHandler) Save(c *gin.Context) {
	admin, ok := middleware.GetPrincipal(c)
	if !ok {
		pkg.Error(c, domain.ErrUnauthorized)
		return
	}
	var req SavePackageRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	p, err := h.svc.Save(c.Request.Context(), admin, req.input())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, newPackageResponse(*p))
}

// AddImages handles POST /api/AdvertisementPackages/add-images-to-packages.
func (h *PackageHandler) AddImages(c *gin.Context) {
	var req AddImagesRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	if err := h.svc.AddImages(c.Request.Context(), req.AdvertisementPackageID, req.ImagesID); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.SuccessMessage(c, "Images added to package")
}

// RemoveImages handles POST /api/AdvertisementPackages/delete-images-from-packages.
func (h *PackageHandler) RemoveImages(c *gin.Context) {
	var req RemoveImagesRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	if err := h.svc.RemoveImages(c.Request.Context(), req.AdvertisementPackageID, req.ImageIDs); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.SuccessMessage(c, "Images removed from package")
}

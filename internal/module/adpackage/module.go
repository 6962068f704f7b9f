package adpackage

import "github.com/simp-lee/koiconsult/internal/pkg"

// PackageModule implements the app.Module interface for advertisement packages.
type PackageModule struct {
	handler *PackageHandler
}

// NewModule creates a new PackageModule. Panics if h is nil.
func NewModule(h *PackageHandler) *PackageModule {
	if h == nil {
		panic("adpackage.NewModule: handler must not be nil")
	}
	return &PackageModule{handler: h}
}

// RegisterRoutes registers the package routes. Browsing is public; changes
// are admin only.
func (m *PackageModule) RegisterRoutes(g pkg.RouteGroups) {
	g.Public.POST("/AdvertisementPackages/get-all-packages", m.handler.List)
	g.Public.GET("/AdvertisementPackages/get-package-by-id/:id", m.handler.Get)

	admin := g.Admin.Group("/AdvertisementPackages")
	admin.POST("/create-update-advertisement-package", m.handler.Save)
	admin.POST("/add-images-to-packages", m.handler.AddImages)
	admin.POST("/delete-images-from-packages", m.handler.RemoveImages)
}

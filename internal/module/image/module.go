package image

import "github.com/simp-lee/koiconsult/internal/pkg"

// ImageModule implements the app.Module interface for the image library.
type ImageModule struct {
	handler *ImageHandler
}

// NewModule creates a new ImageModule. Panics if h is nil.
func NewModule(h *ImageHandler) *ImageModule {
	if h == nil {
		panic("image.NewModule: handler must not be nil")
	}
	return &ImageModule{handler: h}
}

// RegisterRoutes registers the image library routes. All of them need a member.
func (m *ImageModule) RegisterRoutes(g pkg.RouteGroups) {
	images := g.Member.Group("/Images")
	images.POST("/upload-image", m.handler.Upload)
	images.POST("/get-images-for-member", m.handler.ListForMember)
	images.DELETE("/delete-image/:id", m.handler.Delete)
}

package userdetail

import "github.com/simp-lee/koiconsult/internal/pkg"

// UserDetailModule implements the app.Module interface for member profiles.
type UserDetailModule struct {
	handler *UserDetailHandler
}

// NewModule creates a new UserDetailModule. Panics if h is nil.
func NewModule(h *UserDetailHandler) *UserDetailModule {
	if h == nil {
		panic("userdetail.NewModule: handler must not be nil")
	}
	return &UserDetailModule{handler: h}
}

func (m *UserDetailModule) RegisterRoutes(g pkg.RouteGroups) {
	g.Public.GET("/UserDetails/get-user-avatar-by-userName/:userName", m.handler.Avatar)

	g.Member.POST("/UserDetails/create-update-user-detail", m.handler.Save)
	g.Member.GET("/UserDetails/get-user-detail-for-user", m.handler.GetForUser)

	g.Admin.POST("/UserDetails/get-all-details", m.handler.List)
}

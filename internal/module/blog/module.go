package blog

import "github.com/simp-lee/koiconsult/internal/pkg"

// BlogModule implements the app.Module interface for blogs.
type BlogModule struct {
	handler *BlogHandler
}

// NewModule creates a new BlogModule. Panics if h is nil.
func NewModule(h *BlogHandler) *BlogModule {
	if h == nil {
		panic("blog.NewModule: handler must not be nil")
	}
	return &BlogModule{handler: h}
}

// RegisterRoutes registers the blog routes on the public, member and admin groups.
func (m *BlogModule) RegisterRoutes(g pkg.RouteGroups) {
	g.Public.POST("/Blogs/get-all-blogs", m.handler.ListPublic)

	g.Member.POST("/Blogs/get-all-blogs-for-user", m.handler.ListForUser)
	g.Member.POST("/Blogs/create-update-blogs", m.handler.Save)

	g.Admin.POST("/Blogs/get-all-blogs-for-admin", m.handler.ListForAdmin)
	g.Admin.POST("/Blogs/update-status-blogs", m.handler.UpdateStatus)
}

package pond

import "github.com/simp-lee/koiconsult/internal/pkg"

// PondModule implements the app.Module interface for member ponds.
type PondModule struct {
	handler *PondHandler
}

// NewModule creates a new PondModule. Panics if h is nil.
func NewModule(h *PondHandler) *PondModule {
	if h == nil {
		panic("pond.NewModule: handler must not be nil")
	}
	return &PondModule{handler: h}
}

func (m *PondModule) RegisterRoutes(g pkg.RouteGroups) {
	g.Member.GET("/UserPond/getall", m.handler.List)
	g.Member.POST("/UserPond/add", m.handler.Add)
	g.Member.PUT("/UserPond/update/:id", m.handler.Update)
	g.Member.DELETE("/UserPond/delete/:id", m.handler.Delete)
	g.Member.GET("/UserPond/viewdetails/:id", m.handler.Get)
}

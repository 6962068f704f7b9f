package blog

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/koiconsult/internal/pkg"
)

func TestBlogModuleRegisterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewModule(&BlogHandler{}).RegisterRoutes(pkg.RouteGroups{
		Public: r.Group("/api"),
		Member: r.Group("/api"),
		Admin:  r.Group("/api"),
	})

	expected := []string{
		"/api/Blogs/get-all-blogs",
		"/api/Blogs/get-all-blogs-for-user",
		"/api/Blogs/create-update-blogs",
		"/api/Blogs/get-all-blogs-for-admin",
		"/api/Blogs/update-status-blogs",
	}
	registered := make(map[string]bool)
	for _, ri := range r.Routes() {
		registered[ri.Method+" "+ri.Path] = true
	}
	for _, path := range expected {
		if !registered[http.MethodPost+" "+path] {
			t.Errorf("route POST %s not registered", path)
		}
	}
}

func TestNewModule_PanicsOnNilHandler(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewModule(nil)
}

package adpackage

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/koiconsult/internal/pkg"
)

func TestPackageModuleRegisterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewModule(&PackageHandler{}).RegisterRoutes(pkg.RouteGroups{
		Public: r.Group("/api"),
		Member: r.Group("/api"),
		Admin:  r.Group("/api"),
	})

	expected := []struct{ method, path string }{
		{http.MethodPost, "/api/AdvertisementPackages/get-all-packages"},
		{http.MethodGet, "/api/AdvertisementPackages/get-package-by-id/:id"},
		{http.MethodPost, "/api/AdvertisementPackages/create-update-advertisement-package"},
		{http.MethodPost, "/api/AdvertisementPackages/add-images-to-packages"},
		{http.MethodPost, "/api/AdvertisementPackages/delete-images-from-packages"},
	}
	registered := make(map[string]bool)
	for _, ri := range r.Routes() {
		registered[ri.Method+" "+ri.Path] = true
	}
	for _, e := range expected {
		if !registered[e.method+" "+e.path] {
			t.Errorf("route %s %s not registered", e.method, e.path)
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

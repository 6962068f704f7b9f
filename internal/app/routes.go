package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/koiconsult/internal/domain"
	"github.com/simp-lee/koiconsult/internal/middleware"
	"github.com/simp-lee/koiconsult/internal/pkg"
)

// RouteDeps holds all dependencies needed to register routes.
type RouteDeps struct {
	Modules  []Module
	DB       *gorm.DB
	Verifier middleware.TokenVerifier
	// UploadDir is served read-only under PublicPath.
	UploadDir  string
	PublicPath string
}

// RegisterRoutes registers all application routes on the given gin.Engine.
func RegisterRoutes(r *gin.Engine, deps *RouteDeps) error {
	if r == nil {
		return errors.New("router is nil")
	}
	if deps == nil {
		return errors.New("route dependencies are nil")
	}
	if len(deps.Modules) == 0 {
		return errors.New("at least one module is required")
	}
	if deps.Verifier == nil {
		return errors.New("token verifier is required")
	}

	// Health check
	r.GET("/health", healthHandler(deps.DB))

	// Uploaded images
	if deps.UploadDir != "" && deps.PublicPath != "" {
		registerUploadRoutes(r, "/"+strings.Trim(deps.PublicPath, "/"), deps.UploadDir)
	}

	api := r.Group("/api")
	groups := pkg.RouteGroups{
		Public: api,
		Member: api.Group("", middleware.Authenticate(deps.Verifier)),
		Admin:  api.Group("", middleware.Authenticate(deps.Verifier), middleware.RequireRole(domain.RoleAdmin)),
	}

	for i, m := range deps.Modules {
		if m == nil {
			return fmt.Errorf("module at index %d is nil", i)
		}
		m.RegisterRoutes(groups)
	}

	r.HandleMethodNotAllowed = true
	r.NoRoute(noRouteHandler())
	r.NoMethod(noMethodHandler())

	return nil
}

// healthHandler returns a handler that pings the database and reports status.
func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "ok"
		if err := pingDB(c.Request.Context(), db); err != nil {
			dbStatus = "error"
		}

		status, code := "ok", http.StatusOK
		if dbStatus != "ok" {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status": status,
			"components": gin.H{
				"database": dbStatus,
			},
		})
	}
}

func pingDB(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("database is nil")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// registerUploadRoutes serves stored images and thumbnails with long-lived
// cache headers. Stored paths embed a uuid directory so they never change.
func registerUploadRoutes(r *gin.Engine, publicPath, dir string) {
	fileServer := http.StripPrefix(publicPath, http.FileServer(http.Dir(dir)))
	r.GET(publicPath+"/*filepath", func(c *gin.Context) {
		if strings.HasSuffix(c.Param("filepath"), "/") {
			c.Status(http.StatusNotFound)
			return
		}
		c.Header("Cache-Control", "public, max-age=86400")
		fileServer.ServeHTTP(c.Writer, c.Request)
	})
}

package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/koiconsult/internal/pkg"
)

// noRouteHandler answers unknown paths with the JSON envelope.
func noRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		pkg.Fail(c, http.StatusNotFound, "Resource not found")
	}
}

// noMethodHandler answers a known path called with the wrong method.
func noMethodHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		pkg.Fail(c, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

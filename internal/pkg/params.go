package pkg

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/koiconsult/internal/domain"
)

// ParamID parses the named path parameter as a positive id.
func ParamID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 || id > uint64(^uint(0)) {
		return 0, domain.Validationf("invalid " + name + ": " + raw)
	}
	return uint(id), nil
}

// RouteGroups are the router groups a module mounts its endpoints on.
// Member requires a valid bearer token; Admin additionally requires the
// admin role.
type RouteGroups struct {
	Public *gin.RouterGroup
	Member *gin.RouterGroup
	Admin  *gin.RouterGroup
}

package app

import "github.com/simp-lee/koiconsult/internal/pkg"

// Module defines the contract for a self-registering business module.
// Each module mounts its endpoints on the public, member and admin groups.
type Module interface {
	RegisterRoutes(g pkg.RouteGroups)
}

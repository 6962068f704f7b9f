package account

import "github.com/simp-lee/koiconsult/internal/pkg"

// AccountModule implements the app.Module interface for accounts.
type AccountModule struct {
	handler *AccountHandler
}

// NewModule creates a new AccountModule with the given handler.
// Panics if h is nil.
func NewModule(h *AccountHandler) *AccountModule {
	if h == nil {
		panic("account.NewModule: handler must not be nil")
	}
	return &AccountModule{handler: h}
}

// RegisterRoutes registers the account routes. All of them are public.
func (m *AccountModule) RegisterRoutes(g pkg.RouteGroups) {
	accounts := g.Public.Group("/Accounts")
	accounts.POST("/register", m.handler.Register)
	accounts.POST("/login", m.handler.Login)
	accounts.POST("/forgot-password", m.handler.ForgotPassword)
	accounts.POST("/reset-password", m.handler.ResetPassword)
}

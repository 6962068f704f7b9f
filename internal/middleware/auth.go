package middleware

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"

	"github.com/simp-lee/koiconsult/internal/domain"
	"github.com/simp-lee/koiconsult/internal/pkg"
)

const principalContextKey = "principal"

// TokenVerifier turns a bearer token into the principal it was issued for.
type TokenVerifier interface {
	Verify(token string) (domain.Principal, error)
}

// Authenticate requires a valid "Authorization: Bearer <token>" header. The
// resolved principal is stored in the gin.Context and its user id is added
// to the logging context.
func Authenticate(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			pkg.AbortFail(c, http.StatusUnauthorized, "Missing bearer token")
			return
		}

		principal, err := verifier.Verify(token)
		if err != nil {
			pkg.AbortFail(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(principalContextKey, principal)
		ctx := logger.WithContextAttrs(c.Request.Context(), slog.Uint64("user_id", uint64(principal.UserID)))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRole admits only principals holding one of roles. It must run after
// Authenticate.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			pkg.AbortFail(c, http.StatusUnauthorized, "Missing bearer token")
			return
		}
		if !slices.Contains(roles, principal.Role) {
			pkg.AbortFail(c, http.StatusForbidden, "You do not have permission to perform this action")
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the authenticated caller, if any.
func GetPrincipal(c *gin.Context) (domain.Principal, bool) {
	v, exists := c.Get(principalContextKey)
	if !exists {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok
}

// SetPrincipal stores p as the authenticated caller. Handler tests use it to
// skip token issuance.
func SetPrincipal(c *gin.Context, p domain.Principal) {
	c.Set(principalContextKey, p)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

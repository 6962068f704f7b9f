package middleware

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"

	"github.com/simp-lee/koiconsult/internal/domain"
)

type mockVerifier struct {
	tokens map[string]domain.Principal
}

func (m *mockVerifier) Verify(token string) (domain.Principal, error) {
	p, ok := m.tokens[token]
	if !ok {
		return domain.Principal{}, errors.New("bad token")
	}
	return p, nil
}

func setupAuthRouter() *gin.Engine {
	verifier := &mockVerifier{tokens: map[string]domain.Principal{
		"member-token": {UserID: 7, UserName: "hana", Role: domain.RoleMember},
		"admin-token":  {UserID: 1, UserName: "admin", Role: domain.RoleAdmin},
	}}

	r := gin.New()
	member := r.Group("/member", Authenticate(verifier))
	member.GET("/me", func(c *gin.Context) {
		p, _ := GetPrincipal(c)
		c.String(http.StatusOK, p.UserName)
	})
	admin := r.Group("/admin", Authenticate(verifier), RequireRole(domain.RoleAdmin))
	admin.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return r
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"missing header", "/member/me", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "/member/me", "Basic member-token", http.StatusUnauthorized, ""},
		{"empty token", "/member/me", "Bearer   ", http.StatusUnauthorized, ""},
		{"invalid token", "/member/me", "Bearer nope", http.StatusUnauthorized, ""},
		{"valid member", "/member/me", "Bearer member-token", http.StatusOK, "hana"},
		{"lowercase scheme", "/member/me", "bearer member-token", http.StatusOK, "hana"},
		{"member on admin route", "/admin/ping", "Bearer member-token", http.StatusForbidden, ""},
		{"admin on admin route", "/admin/ping", "Bearer admin-token", http.StatusOK, "pong"},
	}

	r := setupAuthRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d (%s)", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Errorf("expected body %q, got %q", tt.wantBody, w.Body.String())
			}
			if tt.wantStatus >= 400 && !strings.Contains(w.Body.String(), `"isSuccess":false`) {
				t.Errorf("expected failure envelope, got %s", w.Body.String())
			}
		})
	}
}

func TestRequireRole_WithoutPrincipal(t *testing.T) {
	r := gin.New()
	r.GET("/admin", RequireRole(domain.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthenticate_AddsUserIDToLogContext(t *testing.T) {
	var logBuf bytes.Buffer
	log, err := logger.New(
		logger.WithConsoleWriter(&logBuf),
		logger.WithConsoleFormat(logger.FormatText),
		logger.WithConsoleColor(false),
		logger.WithLevel(slog.LevelDebug),
		logger.WithMiddleware(logger.ContextMiddleware()),
	)
	if err != nil {
		t.Fatalf("logger.New error: %v", err)
	}
	defer log.Close()

	verifier := &mockVerifier{tokens: map[string]domain.Principal{"t": {UserID: 42, Role: domain.RoleMember}}}
	r := gin.New()
	r.Use(Logger(log.Logger), Authenticate(verifier))
	r.GET("/me", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer t")
	r.ServeHTTP(httptest.NewRecorder(), req)

	if !strings.Contains(logBuf.String(), "42") {
		t.Errorf("expected user_id 42 in request log, got:\n%s", logBuf.String())
	}
}

func TestSetPrincipal(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, ok := GetPrincipal(c); ok {
		t.Fatal("expected no principal on a fresh context")
	}
	SetPrincipal(c, domain.Principal{UserID: 3})
	if p, ok := GetPrincipal(c); !ok || p.UserID != 3 {
		t.Errorf("GetPrincipal = %+v, %v", p, ok)
	}
}

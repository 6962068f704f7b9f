package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func setupRecoveryRouter(logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(logger))
	r.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})
	r.GET("/partial", func(c *gin.Context) {
		c.String(http.StatusOK, "partial")
		panic("late panic")
	})
	r.GET("/ok", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func TestRecovery_NoPanic_PassesThrough(t *testing.T) {
	var logBuf bytes.Buffer
	r := setupRecoveryRouter(newTestLogger(&logBuf))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("unexpected response %d %q", w.Code, w.Body.String())
	}
	if logBuf.Len() != 0 {
		t.Errorf("expected no log output, got %q", logBuf.String())
	}
}

func TestRecovery_Panic_Envelope(t *testing.T) {
	var logBuf bytes.Buffer
	r := setupRecoveryRouter(newTestLogger(&logBuf))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse JSON response: %v", err)
	}
	if body["isSuccess"] != false {
		t.Errorf("expected isSuccess=false, got %v", body["isSuccess"])
	}
	if body["message"] != "An error occurred" {
		t.Errorf("unexpected message %v", body["message"])
	}
	if code, _ := body["statusCode"].(float64); int(code) != 500 {
		t.Errorf("expected statusCode 500, got %v", body["statusCode"])
	}

	logs := logBuf.String()
	for _, want := range []string{"panic recovered", "test panic", "path=/panic", "stack="} {
		if !strings.Contains(logs, want) {
			t.Errorf("expected log to contain %q, got:\n%s", want, logs)
		}
	}
}

func TestRecovery_PanicAfterWrite_KeepsResponse(t *testing.T) {
	var logBuf bytes.Buffer
	r := setupRecoveryRouter(newTestLogger(&logBuf))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/partial", nil))

	if w.Body.String() != "partial" {
		t.Errorf("expected original body to be kept, got %q", w.Body.String())
	}
	if !strings.Contains(logBuf.String(), "late panic") {
		t.Errorf("expected panic to be logged, got:\n%s", logBuf.String())
	}
}

func TestRecovery_NilLoggerUsesDefault(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(nil))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testYAML = `server:
  host: "127.0.0.1"
  port: 3000
  mode: "release"
  cache:
    enabled: true
    driver: "redis"
    ttl: "5m"
    redis_url: "redis://localhost:6379/0"
database:
  driver: "postgres"
  postgres:
    host: "db.example.com"
    port: 5433
    user: "koi"
    password: "secret"
    dbname: "koiconsult"
    sslmode: "require"
  pool:
    max_idle_conns: 5
    max_open_conns: 50
    conn_max_lifetime: "30m"
log:
  level: "info"
  format: "json"
auth:
  jwt_secret: "Release-Grade-Secret-0123456789abcdef"
  token_expiry: "24h"
  reset_token_expiry: "30m"
  reset_url: "https://koi.example/reset-password"
  admin:
    user_name: "admin"
    email: "admin@koi.example"
    password: "changeme123"
storage:
  upload_dir: "data/uploads"
  public_path: "/uploads/"
  max_upload_mb: 5
  thumbnail_width: 320
payment:
  enabled: true
  gateway_url: "https://sandbox.pay.example/paymentv2/vpcpay.html"
  merchant_code: "KOI01"
  hash_secret: "0123456789ABCDEF0123"
  return_url: "https://koi.example/api/Payments/payment-return"
  expiry: "15m"
scheduler:
  enabled: true
  orphan_sweep: "0 3 * * *"
  orphan_max_age: "24h"
`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

// validConfig returns a minimal debug-mode config that passes Validate.
func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Host: "localhost", Port: 8080, Mode: "debug"},
		Database: DatabaseConfig{Driver: "sqlite", SQLite: SQLiteConfig{Path: "data/app.db"}},
		Log:      LogConfig{Level: "info", Format: "text"},
		Auth: AuthConfig{
			JWTSecret:        strings.Repeat("k", 32),
			TokenExpiry:      "1h",
			ResetTokenExpiry: "15m",
		},
		Storage: StorageConfig{UploadDir: "data/uploads", PublicPath: "uploads", MaxUploadMB: 5},
	}
}

func TestLoad_FullYAML(t *testing.T) {
	cfg, err := Load(writeTestConfig(t, testYAML))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 3000 || cfg.Server.Mode != "release" {
		t.Errorf("unexpected server config %+v", cfg.Server)
	}
	if cfg.Server.Cache.Driver != "redis" || cfg.Server.Cache.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("unexpected cache config %+v", cfg.Server.Cache)
	}
	if cfg.Database.Postgres.DBName != "koiconsult" || cfg.Database.Pool.MaxOpenConns != 50 {
		t.Errorf("unexpected database config %+v", cfg.Database)
	}
	if cfg.Auth.Admin.Email != "admin@koi.example" || cfg.Auth.ResetURL != "https://koi.example/reset-password" {
		t.Errorf("unexpected auth config %+v", cfg.Auth)
	}
	if cfg.Storage.PublicPath != "/uploads" {
		t.Errorf("Storage.PublicPath = %q, want normalized %q", cfg.Storage.PublicPath, "/uploads")
	}
	if cfg.Payment.MerchantCode != "KOI01" {
		t.Errorf("Payment.MerchantCode = %q", cfg.Payment.MerchantCode)
	}
	if cfg.Scheduler.OrphanSweep != "0 3 * * *" {
		t.Errorf("Scheduler.OrphanSweep = %q", cfg.Scheduler.OrphanSweep)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeTestConfig(t, testYAML)

	t.Setenv("APP__SERVER__PORT", "9090")
	t.Setenv("APP__LOG__LEVEL", "error")
	t.Setenv("APP__DATABASE__POOL__MAX_IDLE_CONNS", "20")
	t.Setenv("APP__AUTH__ADMIN__USER_NAME", "root")
	t.Setenv("APP__STORAGE__MAX_UPLOAD_MB", "12")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want error", cfg.Log.Level)
	}
	if cfg.Database.Pool.MaxIdleConns != 20 {
		t.Errorf("Pool.MaxIdleConns = %d, want 20", cfg.Database.Pool.MaxIdleConns)
	}
	if cfg.Auth.Admin.UserName != "root" {
		t.Errorf("Auth.Admin.UserName = %q, want root", cfg.Auth.Admin.UserName)
	}
	if cfg.Storage.MaxUploadMB != 12 {
		t.Errorf("Storage.MaxUploadMB = %d, want 12", cfg.Storage.MaxUploadMB)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "failed to load config file") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestEnvKeyMapper(t *testing.T) {
	mapper := EnvKeyMapper("APP__")
	tests := map[string]string{
		"APP__SERVER__PORT":                  "server.port",
		"APP__DATABASE__POOL__MAX_IDLE_CONNS": "database.pool.max_idle_conns",
		"APP__SCHEDULER__ORPHAN_MAX_AGE":     "scheduler.orphan_max_age",
	}
	for in, want := range tests {
		if got := mapper(in); got != want {
			t.Errorf("mapper(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if cfg.Storage.PublicPath != "/uploads" {
		t.Errorf("PublicPath = %q, want /uploads", cfg.Storage.PublicPath)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"bad mode", func(c *Config) { c.Server.Mode = "prod" }, "invalid server.mode"},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "invalid server.port"},
		{"empty host", func(c *Config) { c.Server.Host = "  " }, "server.host is required"},
		{"bad timeout", func(c *Config) { c.Server.Timeout = "soon" }, "invalid server.timeout"},
		{"rate limit rps", func(c *Config) { c.Server.RateLimit = RateLimitConfig{Enabled: true, Burst: 1} }, "rate_limit.rps"},
		{"rate limit burst", func(c *Config) { c.Server.RateLimit = RateLimitConfig{Enabled: true, RPS: 1} }, "rate_limit.burst"},
		{"cache ttl", func(c *Config) { c.Server.Cache = CacheConfig{Enabled: true, MaxSize: 10} }, "server.cache.ttl is required"},
		{"memory cache size", func(c *Config) { c.Server.Cache = CacheConfig{Enabled: true, TTL: "1m"} }, "server.cache.max_size"},
		{"redis url", func(c *Config) { c.Server.Cache = CacheConfig{Enabled: true, TTL: "1m", Driver: "redis"} }, "redis_url is required"},
		{"cache driver", func(c *Config) { c.Server.Cache = CacheConfig{Enabled: true, TTL: "1m", Driver: "memcached"} }, "invalid server.cache.driver"},
		{"db driver", func(c *Config) { c.Database.Driver = "mysql" }, "invalid database.driver"},
		{"sqlite path", func(c *Config) { c.Database.SQLite.Path = "" }, "database.sqlite.path is required"},
		{"postgres host", func(c *Config) { c.Database.Driver = "postgres" }, "database.postgres.host is required"},
		{"release sslmode", func(c *Config) {
			c.Server.Mode = "release"
			c.Auth.JWTSecret = "Abcdefghijklmnopqrstuvwxyz0123456789"
			c.Database.Driver = "postgres"
			c.Database.Postgres = PostgresConfig{Host: "db", Port: 5432, User: "u", DBName: "d", SSLMode: "disable"}
		}, "for server.mode"},
		{"pool lifetime", func(c *Config) { c.Database.Pool.ConnMaxLifetime = "-1m" }, "must be greater than 0"},
		{"missing secret", func(c *Config) { c.Auth.JWTSecret = "" }, "auth.jwt_secret is required"},
		{"short secret", func(c *Config) { c.Auth.JWTSecret = "short" }, "at least 32 characters"},
		{"weak release secret", func(c *Config) {
			c.Server.Mode = "release"
			c.Auth.JWTSecret = strings.Repeat("a", 40)
		}, "character classes"},
		{"token expiry", func(c *Config) { c.Auth.TokenExpiry = "" }, "auth.token_expiry is required"},
		{"reset expiry", func(c *Config) { c.Auth.ResetTokenExpiry = "0s" }, "auth.reset_token_expiry"},
		{"reset url", func(c *Config) { c.Auth.ResetURL = "/reset" }, "auth.reset_url"},
		{"admin email", func(c *Config) { c.Auth.Admin = AdminConfig{UserName: "admin", Password: "longenough"} }, "auth.admin.email"},
		{"admin password", func(c *Config) {
			c.Auth.Admin = AdminConfig{UserName: "admin", Email: "a@b.c", Password: "short"}
		}, "auth.admin.password"},
		{"upload dir", func(c *Config) { c.Storage.UploadDir = "" }, "storage.upload_dir is required"},
		{"public path root", func(c *Config) { c.Storage.PublicPath = "/" }, "must not be the site root"},
		{"max upload", func(c *Config) { c.Storage.MaxUploadMB = 0 }, "storage.max_upload_mb"},
		{"payment gateway", func(c *Config) {
			c.Payment = PaymentConfig{Enabled: true, GatewayURL: "not a url"}
		}, "payment.gateway_url"},
		{"payment merchant", func(c *Config) {
			c.Payment = PaymentConfig{Enabled: true, GatewayURL: "https://pay.example", ReturnURL: "https://koi.example/r"}
		}, "payment.merchant_code"},
		{"payment secret", func(c *Config) {
			c.Payment = PaymentConfig{Enabled: true, GatewayURL: "https://pay.example", ReturnURL: "https://koi.example/r", MerchantCode: "M", HashSecret: "x"}
		}, "payment.hash_secret"},
		{"cron spec", func(c *Config) { c.Scheduler = SchedulerConfig{Enabled: true, OrphanSweep: "every day", OrphanMaxAge: "1h"} }, "scheduler.orphan_sweep"},
		{"orphan age", func(c *Config) { c.Scheduler = SchedulerConfig{Enabled: true, OrphanSweep: "@daily"} }, "scheduler.orphan_max_age"},
		{"log level", func(c *Config) { c.Log.Level = "trace" }, "invalid log.level"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "invalid log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidate_Normalizes(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Mode = " debug "
	cfg.Log.Level = "WARN"
	cfg.Log.Format = " JSON "
	cfg.Server.Cache = CacheConfig{Enabled: true, TTL: " 2m ", MaxSize: 100}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if cfg.Server.Mode != "debug" || cfg.Log.Level != "warn" || cfg.Log.Format != "json" {
		t.Errorf("fields not normalized: mode=%q level=%q format=%q", cfg.Server.Mode, cfg.Log.Level, cfg.Log.Format)
	}
	if cfg.Server.Cache.Driver != "memory" || cfg.Server.Cache.TTL != "2m" {
		t.Errorf("cache not normalized: %+v", cfg.Server.Cache)
	}
}

func TestDuration(t *testing.T) {
	if got := Duration("90s", time.Minute); got != 90*time.Second {
		t.Errorf("Duration(90s) = %v", got)
	}
	if got := Duration("", time.Minute); got != time.Minute {
		t.Errorf("Duration(empty) = %v, want fallback", got)
	}
	if got := Duration("garbage", time.Hour); got != time.Hour {
		t.Errorf("Duration(garbage) = %v, want fallback", got)
	}
}

func TestCountSecretClasses(t *testing.T) {
	tests := []struct {
		secret string
		want   int
	}{
		{"", 0},
		{"abc", 1},
		{"abcABC", 2},
		{"abcABC123", 3},
		{"abcABC123!", 4},
	}
	for _, tt := range tests {
		if got := CountSecretClasses(tt.secret); got != tt.want {
			t.Errorf("CountSecretClasses(%q) = %d, want %d", tt.secret, got, tt.want)
		}
	}
}

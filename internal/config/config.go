package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/robfig/cron/v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Log       LogConfig       `koanf:"log"`
	Auth      AuthConfig      `koanf:"auth"`
	Storage   StorageConfig   `koanf:"storage"`
	Payment   PaymentConfig   `koanf:"payment"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host      string          `koanf:"host"`
	Port      int             `koanf:"port"`
	Mode      string          `koanf:"mode"`
	Timeout   string          `koanf:"timeout"`
	CORS      CORSConfig      `koanf:"cors"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Cache     CacheConfig     `koanf:"cache"`
}

// CORSConfig holds CORS middleware settings.
type CORSConfig struct {
	AllowOrigins     []string `koanf:"allow_origins"`
	AllowMethods     []string `koanf:"allow_methods"`
	AllowHeaders     []string `koanf:"allow_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           string   `koanf:"max_age"`
}

// RateLimitConfig holds per-client rate limiting settings.
type RateLimitConfig struct {
	Enabled bool    `koanf:"enabled"`
	RPS     float64 `koanf:"rps"`
	Burst   int     `koanf:"burst"`
}

// CacheConfig selects and tunes the read-through cache for hot lookups.
type CacheConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Driver   string `koanf:"driver"`
	TTL      string `koanf:"ttl"`
	MaxSize  int    `koanf:"max_size"`
	RedisURL string `koanf:"redis_url"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver      string         `koanf:"driver"`
	AutoMigrate *bool          `koanf:"auto_migrate"`
	SQLite      SQLiteConfig   `koanf:"sqlite"`
	Postgres    PostgresConfig `koanf:"postgres"`
	Pool        PoolConfig     `koanf:"pool"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DBName   string `koanf:"dbname"`
	SSLMode  string `koanf:"sslmode"`
}

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	ConnMaxLifetime string `koanf:"conn_max_lifetime"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level           string `koanf:"level"`
	Format          string `koanf:"format"`
	Color           *bool  `koanf:"color"`
	FilePath        string `koanf:"file_path"`
	MaxSizeMB       int    `koanf:"max_size_mb"`
	RetentionDays   int    `koanf:"retention_days"`
	MaxBackups      int    `koanf:"max_backups"`
	CompressRotated *bool  `koanf:"compress_rotated"`
}

// AuthConfig holds token and account settings.
type AuthConfig struct {
	JWTSecret        string      `koanf:"jwt_secret"`
	Issuer           string      `koanf:"issuer"`
	TokenExpiry      string      `koanf:"token_expiry"`
	ResetTokenExpiry string      `koanf:"reset_token_expiry"`
	ResetURL         string      `koanf:"reset_url"`
	Admin            AdminConfig `koanf:"admin"`
}

// AdminConfig describes the bootstrap administrator created at startup when
// no account with that user name exists yet.
type AdminConfig struct {
	UserName string `koanf:"user_name"`
	Email    string `koanf:"email"`
	Password string `koanf:"password"`
}

// StorageConfig holds upload storage settings.
type StorageConfig struct {
	UploadDir      string `koanf:"upload_dir"`
	PublicPath     string `koanf:"public_path"`
	MaxUploadMB    int    `koanf:"max_upload_mb"`
	ThumbnailWidth int    `koanf:"thumbnail_width"`
}

// PaymentConfig holds settings for the external payment gateway.
type PaymentConfig struct {
	Enabled      bool   `koanf:"enabled"`
	GatewayURL   string `koanf:"gateway_url"`
	MerchantCode string `koanf:"merchant_code"`
	HashSecret   string `koanf:"hash_secret"`
	ReturnURL    string `koanf:"return_url"`
	Expiry       string `koanf:"expiry"`
}

// SchedulerConfig holds background job settings.
type SchedulerConfig struct {
	Enabled      bool   `koanf:"enabled"`
	OrphanSweep  string `koanf:"orphan_sweep"`
	OrphanMaxAge string `koanf:"orphan_max_age"`
}

// Load reads configuration from a YAML file and overlays environment variables.
// Environment variables use the prefix "APP__" and double-underscore as the
// hierarchy separator. Single underscores are preserved as part of the key name.
// For example, APP__SERVER__PORT=9090 overrides server.port and
// APP__AUTH__ADMIN__PASSWORD=s3cret overrides auth.admin.password.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}

	if err := k.Load(env.Provider("APP__", ".", EnvKeyMapper("APP__")), nil); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// EnvKeyMapper returns a koanf env key transformer for the given prefix:
// PREFIX__SERVER__PORT becomes server.port.
func EnvKeyMapper(prefix string) func(string) string {
	return func(s string) string {
		key := strings.TrimPrefix(s, prefix)
		key = strings.ToLower(key)
		return strings.ReplaceAll(key, "__", ".")
	}
}

// Validate checks cross-field constraints and supported values, normalizing
// whitespace as it goes.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateAuth,
		c.validateStorage,
		c.validatePayment,
		c.validateScheduler,
		c.validateLog,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	mode := strings.TrimSpace(c.Server.Mode)
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		c.Server.Mode = mode
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", c.Server.Mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", c.Server.Port)
	}

	host := strings.TrimSpace(c.Server.Host)
	if host == "" {
		return fmt.Errorf("server.host is required")
	}
	c.Server.Host = host

	if err := optionalDuration("server.timeout", &c.Server.Timeout); err != nil {
		return err
	}
	if err := optionalDuration("server.cors.max_age", &c.Server.CORS.MaxAge); err != nil {
		return err
	}

	if c.Server.RateLimit.Enabled {
		if c.Server.RateLimit.RPS <= 0 {
			return fmt.Errorf("invalid server.rate_limit.rps %v: must be positive when rate limiting is enabled", c.Server.RateLimit.RPS)
		}
		if c.Server.RateLimit.Burst <= 0 {
			return fmt.Errorf("invalid server.rate_limit.burst %d: must be positive when rate limiting is enabled", c.Server.RateLimit.Burst)
		}
	}

	cache := &c.Server.Cache
	if !cache.Enabled {
		return nil
	}
	if err := requiredDuration("server.cache.ttl", &cache.TTL); err != nil {
		return err
	}
	switch cache.Driver = strings.ToLower(strings.TrimSpace(cache.Driver)); cache.Driver {
	case "", "memory":
		cache.Driver = "memory"
		if cache.MaxSize <= 0 {
			return fmt.Errorf("invalid server.cache.max_size %d: must be positive for the memory cache", cache.MaxSize)
		}
	case "redis":
		cache.RedisURL = strings.TrimSpace(cache.RedisURL)
		if cache.RedisURL == "" {
			return fmt.Errorf("server.cache.redis_url is required when cache driver is redis")
		}
	default:
		return fmt.Errorf("invalid server.cache.driver %q: must be one of %q, %q", cache.Driver, "memory", "redis")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case "sqlite":
		sqlitePath := strings.TrimSpace(c.Database.SQLite.Path)
		if sqlitePath == "" {
			return fmt.Errorf("database.sqlite.path is required when driver is sqlite")
		}
		c.Database.SQLite.Path = sqlitePath
	case "postgres":
		if err := c.validatePostgres(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid database.driver %q: must be one of %q, %q", c.Database.Driver, "sqlite", "postgres")
	}

	return optionalDuration("database.pool.conn_max_lifetime", &c.Database.Pool.ConnMaxLifetime)
}

func (c *Config) validatePostgres() error {
	pg := &c.Database.Postgres
	pg.Host = strings.TrimSpace(pg.Host)
	pg.User = strings.TrimSpace(pg.User)
	pg.DBName = strings.TrimSpace(pg.DBName)
	pg.SSLMode = strings.TrimSpace(pg.SSLMode)

	if pg.Host == "" {
		return fmt.Errorf("database.postgres.host is required when driver is postgres")
	}
	if pg.Port < 1 || pg.Port > 65535 {
		return fmt.Errorf("invalid database.postgres.port %d: must be between 1 and 65535", pg.Port)
	}
	if pg.User == "" {
		return fmt.Errorf("database.postgres.user is required when driver is postgres")
	}
	if pg.DBName == "" {
		return fmt.Errorf("database.postgres.dbname is required when driver is postgres")
	}

	switch pg.SSLMode {
	case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
	default:
		return fmt.Errorf("invalid database.postgres.sslmode %q", pg.SSLMode)
	}
	if c.Server.Mode == gin.ReleaseMode {
		switch pg.SSLMode {
		case "require", "verify-ca", "verify-full":
		default:
			return fmt.Errorf("invalid database.postgres.sslmode %q for server.mode %q: must be one of %q, %q, %q", pg.SSLMode, gin.ReleaseMode, "require", "verify-ca", "verify-full")
		}
	}
	return nil
}

func (c *Config) validateAuth() error {
	secret := strings.TrimSpace(c.Auth.JWTSecret)
	if secret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if len(secret) < 32 {
		return fmt.Errorf("invalid auth.jwt_secret: must be at least 32 characters")
	}
	if c.Server.Mode == gin.ReleaseMode && CountSecretClasses(secret) < 3 {
		return fmt.Errorf("auth.jwt_secret must include at least 3 character classes (lowercase, uppercase, digit, symbol) in release mode")
	}
	c.Auth.JWTSecret = secret
	c.Auth.Issuer = strings.TrimSpace(c.Auth.Issuer)

	if err := requiredDuration("auth.token_expiry", &c.Auth.TokenExpiry); err != nil {
		return err
	}
	if err := requiredDuration("auth.reset_token_expiry", &c.Auth.ResetTokenExpiry); err != nil {
		return err
	}
	c.Auth.ResetURL = strings.TrimSpace(c.Auth.ResetURL)
	if c.Auth.ResetURL != "" {
		if u, err := url.Parse(c.Auth.ResetURL); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid auth.reset_url %q: must be an absolute URL", c.Auth.ResetURL)
		}
	}

	admin := &c.Auth.Admin
	admin.UserName = strings.TrimSpace(admin.UserName)
	admin.Email = strings.TrimSpace(admin.Email)
	if admin.UserName == "" {
		return nil
	}
	if admin.Email == "" || !strings.Contains(admin.Email, "@") {
		return fmt.Errorf("invalid auth.admin.email %q: a valid address is required when auth.admin.user_name is set", admin.Email)
	}
	if len(admin.Password) < 8 {
		return fmt.Errorf("invalid auth.admin.password: must be at least 8 characters")
	}
	return nil
}

func (c *Config) validateStorage() error {
	s := &c.Storage
	s.UploadDir = strings.TrimSpace(s.UploadDir)
	if s.UploadDir == "" {
		return fmt.Errorf("storage.upload_dir is required")
	}
	s.PublicPath = "/" + strings.Trim(strings.TrimSpace(s.PublicPath), "/")
	if s.PublicPath == "/" {
		return fmt.Errorf("storage.public_path must not be the site root")
	}
	if s.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid storage.max_upload_mb %d: must be positive", s.MaxUploadMB)
	}
	if s.ThumbnailWidth < 0 {
		return fmt.Errorf("invalid storage.thumbnail_width %d: must not be negative", s.ThumbnailWidth)
	}
	return nil
}

func (c *Config) validatePayment() error {
	p := &c.Payment
	if !p.Enabled {
		return nil
	}
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"payment.gateway_url", &p.GatewayURL},
		{"payment.return_url", &p.ReturnURL},
	} {
		*f.value = strings.TrimSpace(*f.value)
		u, err := url.Parse(*f.value)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid %s %q: must be an absolute URL", f.name, *f.value)
		}
	}
	p.MerchantCode = strings.TrimSpace(p.MerchantCode)
	if p.MerchantCode == "" {
		return fmt.Errorf("payment.merchant_code is required when payment is enabled")
	}
	if len(strings.TrimSpace(p.HashSecret)) < 16 {
		return fmt.Errorf("invalid payment.hash_secret: must be at least 16 characters")
	}
	return requiredDuration("payment.expiry", &p.Expiry)
}

func (c *Config) validateScheduler() error {
	s := &c.Scheduler
	if !s.Enabled {
		return nil
	}
	s.OrphanSweep = strings.TrimSpace(s.OrphanSweep)
	if _, err := cron.ParseStandard(s.OrphanSweep); err != nil {
		return fmt.Errorf("invalid scheduler.orphan_sweep %q: %w", s.OrphanSweep, err)
	}
	return requiredDuration("scheduler.orphan_max_age", &s.OrphanMaxAge)
}

func (c *Config) validateLog() error {
	return validateLogConfig(&c.Log)
}

func validateLogConfig(l *LogConfig) error {
	level := strings.ToLower(strings.TrimSpace(l.Level))
	switch level {
	case "debug", "info", "warn", "error":
		l.Level = level
	default:
		return fmt.Errorf("invalid log.level %q: must be one of %q, %q, %q, %q", l.Level, "debug", "info", "warn", "error")
	}

	format := strings.ToLower(strings.TrimSpace(l.Format))
	switch format {
	case "text", "json":
		l.Format = format
	default:
		return fmt.Errorf("invalid log.format %q: must be one of %q, %q", l.Format, "text", "json")
	}
	return nil
}

// optionalDuration trims *v and, when set, requires a positive Go duration.
func optionalDuration(name string, v *string) error {
	*v = strings.TrimSpace(*v)
	if *v == "" {
		return nil
	}
	return requiredDuration(name, v)
}

func requiredDuration(name string, v *string) error {
	*v = strings.TrimSpace(*v)
	if *v == "" {
		return fmt.Errorf("%s is required", name)
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, *v, err)
	}
	if d <= 0 {
		return fmt.Errorf("invalid %s %q: must be greater than 0", name, *v)
	}
	return nil
}

// Duration parses a validated duration field, returning fallback when empty.
func Duration(v string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil && d > 0 {
		return d
	}
	return fallback
}

// CountSecretClasses counts how many character classes (lowercase, uppercase,
// digit, symbol) are present in the given secret string.
func CountSecretClasses(secret string) int {
	var lower, upper, digit, symbol bool
	for _, r := range secret {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}

	classes := 0
	for _, present := range []bool{lower, upper, digit, symbol} {
		if present {
			classes++
		}
	}
	return classes
}

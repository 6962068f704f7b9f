package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/simp-lee/koiconsult/internal/cache"
	"github.com/simp-lee/koiconsult/internal/config"
	"github.com/simp-lee/koiconsult/internal/middleware"
	"github.com/simp-lee/koiconsult/internal/module/account"
	"github.com/simp-lee/koiconsult/internal/module/adpackage"
	"github.com/simp-lee/koiconsult/internal/module/blog"
	"github.com/simp-lee/koiconsult/internal/module/image"
	"github.com/simp-lee/koiconsult/internal/module/payment"
	"github.com/simp-lee/koiconsult/internal/module/pond"
	"github.com/simp-lee/koiconsult/internal/module/userdetail"
	"github.com/simp-lee/koiconsult/internal/scheduler"
	"github.com/simp-lee/koiconsult/internal/storage"
	"github.com/simp-lee/koiconsult/internal/token"
)

const (
	defaultWriteTimeout = 60 * time.Second
	shutdownTimeout     = 5 * time.Second
	cacheKeyPrefix      = "koi:"
)

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine    *gin.Engine
	db        *gorm.DB
	logger    *logger.Logger
	cfg       *config.Config
	cache     cache.Cache
	scheduler *scheduler.Scheduler
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler, writeTimeout time.Duration) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// New creates and wires a fully configured App from the given Config.
//
// It sets up logging, the database, the cache, every module's repository,
// service and handler, the middleware chain, routes, and the scheduler.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}

	success := false
	a := &App{cfg: cfg}
	defer func() {
		if !success {
			a.close()
		}
	}()

	// 1. Logger.
	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	a.logger = log
	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 may expose debug behavior and permissive CORS")
	}

	// 2. Database and schema.
	db, err := config.SetupDatabase(&cfg.Database, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	a.db = db
	if shouldMigrate(cfg) {
		if err := config.Migrate(db); err != nil {
			return nil, err
		}
		log.Info("auto migration completed")
	}

	// 3. Cache for package and avatar lookups.
	cacheTTL := config.Duration(cfg.Server.Cache.TTL, 5*time.Minute)
	if cfg.Server.Cache.Enabled {
		c, err := cache.New(context.Background(), cache.Options{
			Driver:   cfg.Server.Cache.Driver,
			TTL:      cacheTTL,
			MaxSize:  cfg.Server.Cache.MaxSize,
			RedisURL: cfg.Server.Cache.RedisURL,
			Prefix:   cacheKeyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("setup cache: %w", err)
		}
		a.cache = c
		log.Info("cache enabled", slog.String("driver", cfg.Server.Cache.Driver))
	}

	tokens, err := token.NewService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, config.Duration(cfg.Auth.TokenExpiry, 24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("setup token service: %w", err)
	}

	// 4. Manual dependency injection: repository → service → handler.
	modules, images, err := buildModules(a, tokens)
	if err != nil {
		return nil, err
	}

	// 5. Gin engine with custom middleware (not gin.Default()).
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()
	engine.Use(
		middleware.Recovery(log.Logger),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{TrustUpstream: false}),
		middleware.Logger(log.Logger, "/health"),
		middleware.CORSWithConfig(resolveCORSConfig(cfg.Server.Mode, &cfg.Server.CORS)),
	)
	if rl := cfg.Server.RateLimit; rl.Enabled {
		engine.Use(middleware.RateLimit(rl.RPS, rl.Burst))
	}

	if err := RegisterRoutes(engine, &RouteDeps{
		Modules:    modules,
		DB:         db,
		Verifier:   tokens,
		UploadDir:  cfg.Storage.UploadDir,
		PublicPath: cfg.Storage.PublicPath,
	}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}
	a.engine = engine

	// 6. Background jobs.
	if cfg.Scheduler.Enabled {
		a.scheduler = scheduler.New(log.Logger, time.Minute)
		if err := a.scheduler.AddOrphanSweep(cfg.Scheduler.OrphanSweep, images, config.Duration(cfg.Scheduler.OrphanMaxAge, 24*time.Hour)); err != nil {
			return nil, fmt.Errorf("setup scheduler: %w", err)
		}
	}

	success = true
	return a, nil
}

// buildModules wires every business module and bootstraps the admin
// account. The image service is returned for the orphan sweep job.
func buildModules(a *App, tokens *token.Service) ([]Module, scheduler.OrphanSweeper, error) {
	cfg, db, log := a.cfg, a.db, a.logger.Logger
	cacheTTL := config.Duration(cfg.Server.Cache.TTL, 5*time.Minute)

	imageRepo := image.NewImageRepository(db)
	store := storage.NewImageStore(cfg.Storage.UploadDir, cfg.Storage.PublicPath, int64(cfg.Storage.MaxUploadMB)<<20, cfg.Storage.ThumbnailWidth)
	imageSvc := image.NewImageService(imageRepo, store, cfg.Storage.MaxUploadMB)

	accountSvc := account.NewService(account.NewUserRepository(db), tokens, account.NewLogMailer(log), account.Options{
		ResetTokenTTL: config.Duration(cfg.Auth.ResetTokenExpiry, 30*time.Minute),
		ResetURL:      cfg.Auth.ResetURL,
	}, log)
	admin := cfg.Auth.Admin
	created, err := accountSvc.EnsureAdmin(context.Background(), admin.UserName, admin.Email, admin.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("bootstrap admin: %w", err)
	}
	if created {
		log.Info("admin account created", slog.String("user_name", admin.UserName))
	}

	modules := []Module{
		account.NewModule(account.NewHandler(accountSvc)),
		blog.NewModule(blog.NewBlogHandler(blog.NewBlogService(blog.NewBlogRepository(db), imageRepo))),
		adpackage.NewModule(adpackage.NewPackageHandler(adpackage.NewPackageService(adpackage.NewPackageRepository(db), a.cache, cacheTTL))),
		image.NewModule(image.NewImageHandler(imageSvc)),
		userdetail.NewModule(userdetail.NewUserDetailHandler(userdetail.NewUserDetailService(userdetail.NewUserDetailRepository(db), imageRepo, a.cache, cacheTTL))),
		pond.NewModule(pond.NewPondHandler(pond.NewPondService(pond.NewPondRepository(db)))),
	}

	if cfg.Payment.Enabled {
		gateway, err := payment.NewGateway(payment.GatewayConfig{
			URL:          cfg.Payment.GatewayURL,
			MerchantCode: cfg.Payment.MerchantCode,
			HashSecret:   cfg.Payment.HashSecret,
			ReturnURL:    cfg.Payment.ReturnURL,
			Expiry:       config.Duration(cfg.Payment.Expiry, 15*time.Minute),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("setup payment gateway: %w", err)
		}
		modules = append(modules, payment.NewModule(payment.NewHandler(payment.NewService(payment.NewPaymentRepository(db), gateway, log))))
	}

	return modules, imageSvc, nil
}

// shouldMigrate reports whether the schema is migrated at startup. An unset
// database.auto_migrate migrates in debug mode only.
func shouldMigrate(cfg *config.Config) bool {
	if cfg.Database.AutoMigrate != nil {
		return *cfg.Database.AutoMigrate
	}
	return cfg.Server.Mode == gin.DebugMode
}

func resolveCORSConfig(mode string, cors *config.CORSConfig) middleware.CORSConfig {
	return middleware.NewCORSConfig(
		cors.AllowOrigins,
		cors.AllowMethods,
		cors.AllowHeaders,
		cors.AllowCredentials,
		cors.MaxAge,
		mode == gin.ReleaseMode,
	)
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

// Run starts the HTTP server and the scheduler, then blocks until a shutdown
// signal is received. It shuts the server down gracefully and releases the
// scheduler, cache, database and logger.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine, config.Duration(a.cfg.Server.Timeout, defaultWriteTimeout))
	log := a.log()

	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.scheduler != nil {
		a.scheduler.Start()
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if runErr == nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", slog.Any("error", err))
		}
	}

	log.Info("server stopped")
	a.close()
	return runErr
}

func (a *App) log() *slog.Logger {
	if a.logger != nil {
		return a.logger.Logger
	}
	return slog.Default()
}

// close releases everything New acquired. It is safe on a partially built App.
func (a *App) close() {
	log := a.log()

	if a.scheduler != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := a.scheduler.Stop(ctx); err != nil {
			log.Error("scheduler stop error", slog.Any("error", err))
		}
		cancel()
		a.scheduler = nil
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			log.Error("cache close error", slog.Any("error", err))
		}
		a.cache = nil
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Error("database close error", slog.Any("error", err))
			} else {
				log.Info("database connection closed")
			}
		}
		a.db = nil
	}
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
		a.logger = nil
	}
}

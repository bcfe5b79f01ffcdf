package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BradenHooton/dancingpony/internal/auth"
	"github.com/BradenHooton/dancingpony/internal/background"
	"github.com/BradenHooton/dancingpony/internal/config"
	"github.com/BradenHooton/dancingpony/internal/database"
	"github.com/BradenHooton/dancingpony/internal/handlers"
	"github.com/BradenHooton/dancingpony/internal/metrics"
	middlewareCustom "github.com/BradenHooton/dancingpony/internal/middleware"
	"github.com/BradenHooton/dancingpony/internal/models"
	"github.com/BradenHooton/dancingpony/internal/repositories"
	"github.com/BradenHooton/dancingpony/internal/routes"
	"github.com/BradenHooton/dancingpony/internal/services"
	pkgauth "github.com/BradenHooton/dancingpony/pkg/auth"
	pkghttp "github.com/BradenHooton/dancingpony/pkg/http"
	pkglogger "github.com/BradenHooton/dancingpony/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.Server.LogLevel)}))
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		slog.String("env", cfg.Server.Env),
		slog.String("attempt_store", cfg.Auth.AttemptStore))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := db.Migrate(ctx)
		cancel()
		if err != nil {
			logger.Error("failed to run migrations", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	dishRepo := repositories.NewDishRepository(db)

	var attemptStore auth.AttemptStore
	switch cfg.Auth.AttemptStore {
	case config.AttemptStorePostgres:
		attemptStore = repositories.NewFailedLoginRepository(db)
	default:
		attemptStore = auth.NewMemoryAttemptStore()
	}

	// Metrics
	registry := metrics.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)
	dishMetrics := metrics.NewDishMetrics(registry)
	guardMetrics := metrics.NewGuardMetrics(registry)

	auditLogger := pkglogger.NewAuditLogger(logger)

	// Login guard and token manager
	guard := auth.NewGuard(
		userRepo,
		pkgauth.BcryptVerifier{},
		attemptStore,
		auth.GuardConfig{
			MaxFailedAttempts: cfg.Auth.MaxFailedAttempts,
			BlockTime:         cfg.Auth.BlockTime,
		},
		logger,
		auth.WithAuditLogger(auditLogger),
		auth.WithOutcomeRecorder(guardMetrics),
	)
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenExpiry)

	// Initialize services
	userService := services.NewUserService(userRepo, cfg.Auth.BcryptCost, logger)
	dishService := services.NewDishService(dishRepo, dishMetrics, logger)

	ipConfig := pkghttp.ParseTrustedProxies(cfg.Server.TrustedProxies)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, auditLogger, ipConfig, logger)
	dishHandler := handlers.NewDishHandler(dishService, logger)
	authHandler := handlers.NewAuthHandler(guard, tokenManager, logger)

	// Bootstrap the first superuser if configured
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureSuperuser(ctx, userRepo, cfg.Auth.BcryptCost, logger); err != nil {
		logger.Error("failed to ensure superuser", slog.Any("error", err))
	}
	cancel()

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger, ipConfig))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	if cfg.Metrics.Enabled {
		router.Use(httpMetrics.Middleware)
	}

	// Register routes
	routes.RegisterRoutes(router, routes.Dependencies{
		UserHandler:  userHandler,
		DishHandler:  dishHandler,
		AuthHandler:  authHandler,
		Guard:        guard,
		TokenManager: tokenManager,
		Users:        userRepo,
		RateLimit: middlewareCustom.RateLimitConfig{
			RequestsPerMinute: cfg.Auth.RequestsPerMinute,
			IPConfig:          ipConfig,
		},
		Logger: logger,
	})

	router.Get("/health", handlers.Health(db))
	if cfg.Metrics.Enabled {
		router.Method(http.MethodGet, cfg.Metrics.Path, metrics.Handler(registry))
	}

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start lockout sweeper
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	var cleanupManager *background.CleanupManager
	if cfg.Auth.LockoutSweepPeriod > 0 {
		cleanupManager = background.NewCleanupManager(guard, guardMetrics, logger, cfg.Auth.LockoutSweepPeriod)
		go cleanupManager.Start(cleanupCtx)
	}

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	if cleanupManager != nil {
		cleanupManager.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ensureSuperuser creates the first superuser if ADMIN_EMAIL and ADMIN_PASSWORD are set
func ensureSuperuser(ctx context.Context, userRepo *repositories.UserRepository, bcryptCost int, logger *slog.Logger) error {
	adminEmail := auth.NormalizeIdentity(os.Getenv("ADMIN_EMAIL"))
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		logger.Info("no ADMIN_EMAIL or ADMIN_PASSWORD set, skipping superuser creation")
		return nil
	}

	_, err := userRepo.GetByEmail(ctx, adminEmail)
	if err == nil {
		logger.Info("superuser already exists")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check if superuser exists: %w", err)
	}

	hashedPassword, err := pkgauth.HashPassword(adminPassword, bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash superuser password: %w", err)
	}

	_, err = userRepo.Create(ctx, &models.User{
		Email:        adminEmail,
		PasswordHash: hashedPassword,
		Name:         "Admin",
		IsActive:     true,
		IsSuperuser:  true,
	})
	if err != nil {
		return fmt.Errorf("failed to create superuser: %w", err)
	}

	logger.Info("superuser created", slog.String("email", pkglogger.SanitizedEmail(adminEmail)))
	return nil
}

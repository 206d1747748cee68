package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"expensely/internal/config"
	"expensely/internal/database"
	"expensely/internal/kvstore"
	"expensely/internal/logger"
	"expensely/internal/middleware"
	"expensely/internal/profile"
	"expensely/internal/server"
	"expensely/internal/services"
	"expensely/internal/transactions"

	"github.com/gin-gonic/gin"
)

// @title           Expensely API
// @version         1.0
// @description     Expensely is a personal expense tracker: transactions, budgets, preferences and theme, one isolated profile per user.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token. Browsers use the access_token cookie instead.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db, services.WithLoginPolicy(services.LoginPolicy{
		MaxFailures:   appConfig.LoginMaxFailures,
		LockoutWindow: appConfig.LoginLockoutWindow,
	}))
	tokens := middleware.NewTokenManager(appConfig.JWTSecret, appConfig.JWTExpirationDur, appConfig.RefreshExpiration)

	profiles := profile.NewRegistry(kvstore.NewGormBackend(db), profile.Config{
		Latency:         transactions.LatencyProfile(appConfig.LatencyProfile),
		NotificationTTL: appConfig.NotificationTTL,
		SeedDemoData:    appConfig.SeedDemoData,
		IdleTimeout:     appConfig.ProfileIdle,
	})
	defer profiles.Close()

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go profiles.RunSweeper(sweepCtx, time.Minute)

	srv := &http.Server{
		Addr: ":" + appConfig.Port,
		Handler: server.New(server.Deps{
			Users:         userService,
			Audit:         services.NewAuditService(db),
			Tokens:        tokens,
			Profiles:      profiles,
			CORSOrigins:   server.SplitOrigins(appConfig.CORSOrigin),
			SecureCookies: appConfig.CookieSecure,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting Expensely backend server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		log.Infow("Shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exited")
	return nil
}

package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront_backend/database"
	"storefront_backend/internal/auth"
	"storefront_backend/internal/config"
	"storefront_backend/internal/email"
	"storefront_backend/internal/handlers"
	"storefront_backend/internal/logger"
	"storefront_backend/internal/middleware"
	"storefront_backend/internal/models"
	"storefront_backend/internal/repositories"
	"storefront_backend/internal/routes"
	"storefront_backend/internal/services"
	"storefront_backend/internal/services/dto"
	"storefront_backend/internal/validator"
	"storefront_backend/internal/workers"
	"storefront_backend/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Run wires the application and serves until interrupted.
func Run() error {
	config.LoadConfig()
	cfg := config.GetConfig()

	logger.Init(cfg.Server.Env)

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if err := seedFirstAdmin(db); err != nil {
		return fmt.Errorf("admin seed failed: %w", err)
	}

	router, hub, notificationRepo := SetupRouter(db, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	retention := workers.NewRetentionWorker(notificationRepo, cfg.Realtime.RetentionDays)
	go retention.Run(ctx)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "addr", addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	// Tell connected panels the server is going away so they surface a
	// reconnect banner instead of a silent drop.
	if event, err := dto.NewEvent(dto.EventSystemMessage, dto.SystemMessagePayload{
		Message:   "Server is restarting",
		Type:      "warning",
		Timestamp: time.Now(),
	}); err == nil {
		hub.Broadcast(event)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

// SetupRouter builds the gin engine with every dependency wired. Also
// returns the hub and notification repository for the pieces the caller
// manages itself (broadcast on shutdown, retention worker).
func SetupRouter(db *gorm.DB, cfg *config.Config) (*gin.Engine, *ws.Hub, repositories.NotificationRepository) {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	userRepo := repositories.NewUserRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)

	hub := ws.NewHub()

	var mailer email.Provider
	if cfg.Realtime.EscalateCritical {
		provider, err := email.NewSMTPProvider(cfg)
		if err != nil {
			logger.Warn("critical escalation disabled", "error", err)
		} else {
			mailer = provider
		}
	}

	dispatcher := services.NewEventDispatcher(hub, userRepo, mailer)
	notificationService := services.NewNotificationService(notificationRepo, dispatcher)

	v := validator.New()
	base := handlers.NewBaseHandler(v)
	authHandler := handlers.NewAuthHandler(base, userRepo)
	notificationHandler := handlers.NewNotificationHandler(base, notificationService)
	wsHandler := ws.NewHandler(hub, notificationService)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	routes.Register(router, authHandler, notificationHandler, wsHandler)

	return router, hub, notificationRepo
}

// seedFirstAdmin creates the bootstrap admin account when the users
// table is empty. Credentials come from the environment so nothing
// secret lands in the config file.
func seedFirstAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		logger.Warn("no users exist and ADMIN_EMAIL/ADMIN_PASSWORD are unset, skipping admin seed")
		return nil
	}

	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:    adminEmail,
		Name:     "Administrator",
		Password: hash,
		Role:     auth.RoleAdmin,
		IsActive: true,
	}
	if err := db.Create(admin).Error; err != nil {
		return err
	}

	logger.Info("seeded first admin account", "email", adminEmail)
	return nil
}

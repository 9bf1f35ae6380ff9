package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"idle-resource-hub/internal/adapters/http/middleware"
	"idle-resource-hub/internal/adapters/http/routes"
	"idle-resource-hub/internal/adapters/persistence/models"
	"idle-resource-hub/internal/config"
	"idle-resource-hub/internal/core/services"
	"idle-resource-hub/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	_ "idle-resource-hub/docs" // Swagger docs
)

// @title Idle Resource Hub API
// @version 1.0
// @description Tracks idle employees, their skills and availability, and allocates them to projects.

// @contact.name API Support

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(logger.Config{Level: cfg.Log.Level, Dev: cfg.IsDev()})
	if err != nil {
		log.Fatalf("❌ Failed to build logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	if !cfg.EnvLoaded {
		zlog.Warn("⚠️ No .env file found, using environment variables")
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		zlog.Fatal("❌ Failed to connect to database", zap.Error(err))
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		zlog.Fatal("❌ Failed to auto migrate", zap.Error(err))
	}
	zlog.Info("✅ Database migration completed")

	if err := config.NewSeeder(db, cfg.Admin, zlog.Named("seeder")).Run(); err != nil {
		zlog.Warn("⚠️ Failed to seed database", zap.Error(err))
	}

	svc := routes.BuildServices(db, cfg, zlog)

	// Session cleanup and export purge jobs
	cronService := services.NewCronService(svc.Auth, svc.Exports, services.CronSchedules{
		SessionCleanup: cfg.Session.CleanupSchedule,
		ExportPurge:    cfg.Export.PurgeSchedule,
		RetentionDays:  cfg.Session.RetentionDays,
	}, zlog)
	if err := cronService.Start(); err != nil {
		zlog.Fatal("❌ Failed to start cron service", zap.Error(err))
	}
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Idle Resource Hub API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
		BodyLimit:    12 * 1024 * 1024,
	})

	// Setup middlewares
	middleware.Setup(app, cfg, zlog)

	// Setup routes
	routes.Setup(app, svc, cfg)

	// Graceful shutdown
	go gracefulShutdown(app, zlog)

	// Start server
	zlog.Info("🚀 Server starting", zap.String("port", cfg.Port), zap.String("mode", cfg.AppMode))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zlog.Fatal("❌ Failed to start server", zap.Error(err))
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App, zlog *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		zlog.Error("❌ Error during shutdown", zap.Error(err))
	}
	zlog.Info("✅ Server stopped gracefully")
}

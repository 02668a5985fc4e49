package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Corvynix/PromptLibrary-sub000/internal/config"
	"github.com/Corvynix/PromptLibrary-sub000/internal/database"
	"github.com/Corvynix/PromptLibrary-sub000/internal/handlers"
	"github.com/Corvynix/PromptLibrary-sub000/internal/middleware"
	"github.com/Corvynix/PromptLibrary-sub000/internal/models"
	"github.com/Corvynix/PromptLibrary-sub000/internal/routes"
	"github.com/Corvynix/PromptLibrary-sub000/internal/scheduler"
	"github.com/Corvynix/PromptLibrary-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// 0. Load Config & Initialize Logger
	config.LoadConfig()

	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}
	logger.Init(env)

	logger.Info().Str("environment", env).Msg("Starting PromptLibrary Backend...")

	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 1. Connect Database & Redis
	db := database.Connect()
	database.InitRedis()

	// --- Database Migration Stage ---
	logger.Info().Msg("🔄 Running Database Migrations (Stage 1: Tables)...")

	// Disable FK constraints first to handle circular references
	db.Config.DisableForeignKeyConstraintWhenMigrating = true

	tableModels := []interface{}{
		&models.User{},
		&models.Prompt{},
		&models.PromptVersion{},
		&models.QualityScore{},
		&models.Remix{},
		&models.Vote{},
		&models.UserFollow{},
		&models.Referral{},
		&models.Badge{},
		&models.UserBadge{},
		&models.Notification{},
	}

	for _, m := range tableModels {
		if err := db.AutoMigrate(m); err != nil {
			logger.Fatal().Err(err).Msgf("Failed to migrate table for %T", m)
		}
	}

	logger.Info().Msg("🔄 Running Database Migrations (Stage 2: Constraints)...")
	db.Config.DisableForeignKeyConstraintWhenMigrating = false
	if err := db.AutoMigrate(tableModels...); err != nil {
		logger.Fatal().Err(err).Msg("Failed to add database constraints")
	}
	logger.Info().Msg("✅ Database Migrations Complete")

	// 2. Wire the reputation core to storage
	karmaSvc, badgeSvc, leaderboardSvc := handlers.InitServices(db)

	// Badge catalogue is reference data; seeding on boot is idempotent.
	if err := badgeSvc.SeedBadges(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to seed badge catalogue")
	}

	// 3. Nightly karma batch
	sched := scheduler.New(karmaSvc, leaderboardSvc)
	if err := sched.Start(config.AppConfig.KarmaCronSpec); err != nil {
		logger.Fatal().Err(err).Msg("Failed to schedule karma batch")
	}
	defer sched.Stop()

	// 4. Setup Router
	r := gin.New()

	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.ErrorHandlerMiddleware())
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.GeneralRateLimit())

	// 5. Register Routes
	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		routes.RegisterAuthRoutes(auth)

		public := api.Group("")
		public.Use(middleware.OptionalAuthMiddleware())

		routes.RegisterPromptRoutes(public)
		routes.RegisterUserRoutes(public)
		routes.RegisterNotificationRoutes(public)
		routes.RegisterAdminRoutes(api)
	}

	// Health check with DB and Redis status
	r.GET("/health", func(c *gin.Context) {
		dbStatus := "ok"
		redisStatus := "ok"

		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			dbStatus = "error"
		}

		if database.Redis != nil {
			if _, err := database.Redis.Ping(context.Background()).Result(); err != nil {
				redisStatus = "error"
			}
		} else {
			redisStatus = "not configured"
		}

		status := "ok"
		if dbStatus != "ok" || (redisStatus != "ok" && redisStatus != "not configured") {
			status = "degraded"
		}

		c.JSON(200, gin.H{
			"status":  status,
			"message": "PromptLibrary Backend is running 🚀",
			"checks": gin.H{
				"database": dbStatus,
				"redis":    redisStatus,
			},
		})
	})

	// 6. Start Server with graceful shutdown
	port := config.AppConfig.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", port).Str("env", env).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("🛑 Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("✅ Server exited gracefully")
}

// main.go
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"poorito-booking/cmd"
	"poorito-booking/internal/data/repository"
	"poorito-booking/internal/wire"
	"poorito-booking/pkg/cache"
	"poorito-booking/pkg/database"
	"poorito-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("env", config.App.Env),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	if config.JWT.Secret == "" {
		logger.Fatal("JWT_SECRET is required")
	}

	// Apply schema before the pool starts serving
	if config.Database.AutoMigrate {
		if err := database.Migrate(config.Database.DSN(), logger); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Mountain cache is optional; run uncached when redis is absent or down
	rdb, err := cache.InitRedis(config.Redis, logger)
	if err != nil {
		logger.Warn("Redis unavailable, mountain cache disabled", zap.Error(err))
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// Initialize all repositories
	repos := repository.NewRepository(db, rdb, config.Redis.TTL, logger)

	// Wire all dependencies
	app := wire.Wiring(db, repos, config, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.Start(ctx)
	defer app.Stop()

	// Start server
	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Error("HTTP server stopped with error", zap.Error(err))
	}

	logger.Info("Application stopped")
}

// main.go
package main

import (
	"context"
	"log"
	"time"

	"movie-ticketing/cmd"
	"movie-ticketing/internal/data/repository"
	"movie-ticketing/internal/wire"
	"movie-ticketing/pkg/database"
	"movie-ticketing/pkg/idempotency"
	"movie-ticketing/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
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
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Bootstrap schema
	schemaCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := database.InitSchema(schemaCtx, db); err != nil {
		logger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	// Idempotency store: Redis when configured, in-memory otherwise
	idemStore := newIdempotencyStore(config, logger)

	// Initialize repositories
	repos := repository.NewRepository(db, logger)

	// Wire all dependencies
	app := wire.Wiring(repos, idemStore, config, logger)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port, logger)
}

func newIdempotencyStore(config *utils.Config, logger *zap.Logger) idempotency.Store {
	ttl := time.Duration(config.Idempotency.TTLMinutes) * time.Minute

	if config.Redis.Addr == "" {
		logger.Info("Idempotency store: in-memory", zap.Duration("ttl", ttl))
		return idempotency.NewMemoryStore(ttl)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}

	logger.Info("Idempotency store: redis",
		zap.String("addr", config.Redis.Addr),
		zap.Duration("ttl", ttl),
	)
	return idempotency.NewRedisStore(client, ttl)
}

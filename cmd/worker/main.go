package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/propale/propale/internal/app"
	"github.com/propale/propale/internal/database"
	"github.com/propale/propale/internal/tasks"
	"github.com/propale/propale/pkg/config"
	"github.com/propale/propale/pkg/queue"
	"github.com/propale/propale/pkg/util"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	logger.Info("starting Propale worker")

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	core, err := app.New(context.Background(), cfg, db, logger)
	if err != nil {
		logger.Error("failed to initialize services", "error", err)
		os.Exit(1)
	}

	srv := queue.NewServer(&cfg.Redis, 10, logger)

	handler := tasks.NewHandler(core.Proposals, logger)
	mux := asynq.NewServeMux()
	handler.RegisterHandlers(mux)

	logger.Info("worker started, waiting for tasks...")

	// Run blocks until SIGINT or SIGTERM, then drains in-flight tasks.
	if err := srv.Run(mux); err != nil {
		logger.Error("worker error", "error", err)
	}

	if err := core.Close(); err != nil {
		logger.Error("failed to flush events", "error", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("worker stopped")
}

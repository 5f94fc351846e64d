// Package main implements the entry point for the CodeQuest API server,
// which hosts coding-practice tasks, their review workflow, and the
// discussion threads attached to them.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/codequest/codequest-api/internal/config"
	"github.com/codequest/codequest-api/internal/platform/logger"
	"github.com/codequest/codequest-api/internal/platform/mongodb"
)

// main loads configuration, sets up logging and the database connection,
// wires the application dependencies, and runs the HTTP server until a
// shutdown signal arrives.
func main() {
	ctx := context.Background()

	cfg, appLogger, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	client, err := mongodb.Connect(ctx, cfg.Database.URI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	db := client.Database(cfg.Database.Name)

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("Failed to ensure database indexes: %v", err)
	}

	app, err := newApplication(ctx, cfg, appLogger, client, db)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration and sets up structured logging.
// Returns the loaded config, the root logger, and any initialization error.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database", cfg.Database.Name)

	return cfg, appLogger, nil
}

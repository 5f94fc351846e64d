package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/codequest/codequest-api/internal/config"
	"github.com/codequest/codequest-api/internal/platform/mongodb"
	"github.com/codequest/codequest-api/internal/platform/s3"
	"github.com/codequest/codequest-api/internal/service"
	"github.com/codequest/codequest-api/internal/service/auth"
	"github.com/codequest/codequest-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	client *mongo.Client

	// Stores (using interfaces for proper abstraction)
	taskStore store.TaskStore
	userStore store.UserStore
	fileStore store.FileStore

	// Service interfaces
	jwtService     auth.JWTService
	taskService    service.TaskService
	commentService service.CommentService
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// the database connection that must be established before application
// initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	client *mongo.Client,
	db *mongo.Database,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		client: client,
	}

	// Initialize JWT service
	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	// Initialize stores
	app.taskStore = mongodb.NewMongoTaskStore(db, logger)
	app.userStore = mongodb.NewMongoUserStore(db, logger)

	sess, err := session.NewSession(aws.NewConfig().WithRegion(cfg.Storage.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	app.fileStore = s3.NewS3FileStore(awss3.New(sess), cfg.Storage.Bucket, logger)

	// Initialize service collaborators
	enricher, err := service.NewAuthorEnricher(app.userStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create author enricher: %w", err)
	}

	deleter, err := service.NewDeletionCoordinator(app.taskStore, app.fileStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create deletion coordinator: %w", err)
	}

	// Initialize task service
	app.taskService, err = service.NewTaskService(app.taskStore, enricher, deleter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	// Initialize comment service
	app.commentService, err = service.NewCommentService(app.taskStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
		defer cancel()
		if err := app.client.Disconnect(ctx); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}

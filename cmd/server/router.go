package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/codequest/codequest-api/internal/api"
	apiMiddleware "github.com/codequest/codequest-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware. It accepts the application dependencies to create handlers
// and register routes. Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware) // Add trace IDs for improved error handling

	// Create API handlers using the application's services
	authHandler := api.NewAuthHandler(app.userStore, app.jwtService, app.logger)
	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	commentHandler := api.NewCommentHandler(app.commentService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Task read endpoints (public)
		r.Get("/tasks", taskHandler.ListTasks)
		r.Get("/tasks/feed", taskHandler.ListFeedTasks)
		r.Get("/tasks/{id}", taskHandler.GetTask)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Task lifecycle endpoints
			r.Post("/tasks", taskHandler.CreateTask)
			r.Put("/tasks/{id}", taskHandler.UpdateTask)
			r.Patch("/tasks/{id}/audit", taskHandler.AuditTask)
			r.Patch("/tasks/{id}/draft", taskHandler.SetDraft)
			r.Delete("/tasks/{id}", taskHandler.DeleteTask)

			// Comment endpoints
			r.Post("/tasks/{id}/comments", commentHandler.CreateComment)
			r.Put("/tasks/{id}/comments/{commentID}", commentHandler.UpdateComment)
			r.Delete("/tasks/{id}/comments/{commentID}", commentHandler.DeleteComment)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}

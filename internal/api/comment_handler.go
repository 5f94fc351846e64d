package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/codequest/codequest-api/internal/api/shared"
	"github.com/codequest/codequest-api/internal/platform/logger"
	"github.com/codequest/codequest-api/internal/service"
)

// CommentHandler handles comment-related HTTP requests
type CommentHandler struct {
	commentService service.CommentService
	logger         *slog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentService service.CommentService, logger *slog.Logger) *CommentHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CommentHandler")
	}

	return &CommentHandler{
		commentService: commentService,
		logger:         logger.With(slog.String("component", "comment_handler")),
	}
}

// CreateComment handles POST /tasks/{id}/comments requests.
func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	taskID, ok := h.taskIDParam(w, r)
	if !ok {
		return
	}

	caller, ok := shared.CallerFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "", "Caller not found in request context")
		return
	}

	var req CreateCommentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "", "Invalid request format")
		return
	}
	if err := shared.Validate.Struct(req); err != nil {
		log.Warn("validation error", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "", "Validation error")
		return
	}

	task, err := h.commentService.CreateComment(r.Context(), taskID, req.Message, caller)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// UpdateComment handles PUT /tasks/{id}/comments/{commentID} requests.
func (h *CommentHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.taskIDParam(w, r)
	if !ok {
		return
	}

	commentID := chi.URLParam(r, "commentID")
	if commentID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "", "Comment ID is required")
		return
	}

	caller, ok := shared.CallerFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "", "Caller not found in request context")
		return
	}

	var req UpdateCommentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "", "Invalid request format")
		return
	}
	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "", "Validation error")
		return
	}

	task, err := h.commentService.UpdateComment(r.Context(), taskID, commentID, req.Message, caller)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// DeleteComment handles DELETE /tasks/{id}/comments/{commentID} requests.
// Completion is reported with 200 OK and the deletion ack.
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.taskIDParam(w, r)
	if !ok {
		return
	}

	commentID := chi.URLParam(r, "commentID")
	if commentID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "", "Comment ID is required")
		return
	}

	caller, ok := shared.CallerFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "", "Caller not found in request context")
		return
	}

	ack, err := h.commentService.DeleteComment(r.Context(), taskID, commentID, caller)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ack)
}

func (h *CommentHandler) taskIDParam(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "", "Task ID is required")
		return primitive.NilObjectID, false
	}

	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "", "Invalid task ID format")
		return primitive.NilObjectID, false
	}

	return id, true
}

func (h *CommentHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(
		w, r,
		MapErrorToStatusCode(err),
		service.ErrorCode(err),
		GetSafeErrorMessage(err),
		err,
	)
}

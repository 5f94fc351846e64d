// Package api provides HTTP handlers for the API.
package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/codequest/codequest-api/internal/api/shared"
	"github.com/codequest/codequest-api/internal/platform/logger"
	"github.com/codequest/codequest-api/internal/service"
)

// Listing defaults applied when the query carries no paging parameters.
const (
	defaultPage  = 1
	defaultLimit = 25
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskService service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		taskService: taskService,
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// CreateTask handles POST /tasks requests.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	caller, ok := shared.CallerFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "", "Caller not found in request context")
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "", "Invalid request format")
		return
	}
	if err := shared.Validate.Struct(req); err != nil {
		log.Warn("validation error", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "", "Validation error")
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), service.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Files:        req.Files,
		Testcases:    req.Testcases,
		Level:        req.Level,
		SolutionCode: req.SolutionCode,
		Draft:        req.Draft,
	}, caller)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// ListTasks handles GET /tasks requests.
// Every returned task carries fully resolved author views, comments
// included.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	page, limit := pagingParams(r)

	result, err := h.taskService.ListTasks(r.Context(), page, limit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// ListFeedTasks handles GET /tasks/feed requests.
// Only published tasks appear, stripped of comments, solution code,
// status and the draft flag.
func (h *TaskHandler) ListFeedTasks(w http.ResponseWriter, r *http.Request) {
	page, limit := pagingParams(r)

	result, err := h.taskService.ListFeedTasks(r.Context(), page, limit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// GetTask handles GET /tasks/{id} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskIDParam(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// UpdateTask handles PUT /tasks/{id} requests.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := h.taskIDParam(w, r)
	if !ok {
		return
	}

	caller, ok := shared.CallerFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "", "Caller not found in request context")
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "", "Invalid request format")
		return
	}
	if err := shared.Validate.Struct(req); err != nil {
		log.Warn("validation error", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "", "Validation error")
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), id, service.UpdateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Files:        req.Files,
		Testcases:    req.Testcases,
		Level:        req.Level,
		SolutionCode: req.SolutionCode,
	}, caller)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// AuditTask handles PATCH /tasks/{id}/audit requests.
func (h *TaskHandler) AuditTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskIDParam(w, r)
	if !ok {
		return
	}

	caller, ok := shared.CallerFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "", "Caller not found in request context")
		return
	}

	var req AuditTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "", "Invalid request format")
		return
	}
	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "", "Validation error")
		return
	}

	task, err := h.taskService.AuditTask(r.Context(), id, service.AuditInput{Status: req.Status}, caller)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// SetDraft handles PATCH /tasks/{id}/draft requests.
func (h *TaskHandler) SetDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskIDParam(w, r)
	if !ok {
		return
	}

	var req DraftTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "", "Invalid request format")
		return
	}
	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "", "Validation error")
		return
	}

	task, err := h.taskService.SetDraft(r.Context(), id, *req.Draft)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/{id} requests.
// Completion is reported with 200 OK and the TASK_DELETED ack.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskIDParam(w, r)
	if !ok {
		return
	}

	caller, ok := shared.CallerFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "", "Caller not found in request context")
		return
	}

	ack, err := h.taskService.DeleteTask(r.Context(), id, caller)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ack)
}

// taskIDParam extracts and parses the {id} URL parameter. On failure it
// writes a 400 response and returns ok=false.
func (h *TaskHandler) taskIDParam(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
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

// respondError translates a service error into the wire status, code and
// sanitized message.
func (h *TaskHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(
		w, r,
		MapErrorToStatusCode(err),
		service.ErrorCode(err),
		GetSafeErrorMessage(err),
		err,
	)
}

// pagingParams reads the page and limit query parameters, falling back to
// the defaults for absent or malformed values.
func pagingParams(r *http.Request) (page, limit int) {
	page = defaultPage
	limit = defaultLimit

	if raw := r.URL.Query().Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	return page, limit
}

package service

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/codequest/codequest-api/internal/domain"
	"github.com/codequest/codequest-api/internal/platform/logger"
	"github.com/codequest/codequest-api/internal/store"
)

// CreateTaskInput holds the caller-supplied fields of a new task. The
// draft flag is explicit; creation does not default it.
type CreateTaskInput struct {
	Title        string
	Description  string
	Files        []domain.FileRef
	Testcases    []domain.Testcase
	Level        int
	SolutionCode string
	Draft        bool
}

// UpdateTaskInput holds the optional general-edit fields of a task.
// Status and draft are governed by their own operations.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Files        *[]domain.FileRef
	Testcases    *[]domain.Testcase
	Level        *int
	SolutionCode *string
}

// AuditInput holds the review fields an auditor may set.
type AuditInput struct {
	Status string
}

// TaskService provides the task lifecycle operations: creation with title
// uniqueness, authorized edits, separation-of-duties audits, the draft
// toggle, listings, and coordinated deletion.
type TaskService interface {
	// CreateTask persists a new task owned by the caller.
	// Returns ErrTaskExists if a task with the same title exists.
	CreateTask(ctx context.Context, input CreateTaskInput, caller domain.Caller) (*domain.Task, error)

	// GetTask retrieves a task with its authors resolved for display.
	GetTask(ctx context.Context, id primitive.ObjectID) (*EnrichedTask, error)

	// ListTasks returns a page over all tasks, fully enriched.
	ListTasks(ctx context.Context, page, limit int) (*Page[*EnrichedTask], error)

	// ListFeedTasks returns a page over published (non-draft) tasks in the
	// stripped feed shape.
	ListFeedTasks(ctx context.Context, page, limit int) (*Page[*FeedTask], error)

	// UpdateTask applies a general field edit. Only the task's author or an
	// admin may edit; everyone else gets ErrUnauthorized.
	UpdateTask(ctx context.Context, id primitive.ObjectID, input UpdateTaskInput, caller domain.Caller) (*domain.Task, error)

	// AuditTask applies review fields. The task's author may never audit
	// their own task, regardless of role; that fails with ErrSelfAudit.
	AuditTask(ctx context.Context, id primitive.ObjectID, input AuditInput, caller domain.Caller) (*domain.Task, error)

	// SetDraft updates the draft flag. No ownership or role check applies.
	SetDraft(ctx context.Context, id primitive.ObjectID, draft bool) (*domain.Task, error)

	// DeleteTask removes the task and its stored files. Only the task's
	// author or an admin may delete. Completion is reported as an Ack.
	DeleteTask(ctx context.Context, id primitive.ObjectID, caller domain.Caller) (Ack, error)
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	tasks    store.TaskStore
	enricher *AuthorEnricher
	deleter  *DeletionCoordinator
	logger   *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	tasks store.TaskStore,
	enricher *AuthorEnricher,
	deleter *DeletionCoordinator,
	logger *slog.Logger,
) (TaskService, error) {
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if enricher == nil {
		return nil, domain.NewValidationError("enricher", "cannot be nil", domain.ErrValidation)
	}
	if deleter == nil {
		return nil, domain.NewValidationError("deleter", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		tasks:    tasks,
		enricher: enricher,
		deleter:  deleter,
		logger:   logger.With(slog.String("component", "task_service")),
	}, nil
}

// CreateTask implements TaskService.CreateTask
// The uniqueness pre-check and the insert are two separate calls; the
// unique title index backstops the race between them.
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	input CreateTaskInput,
	caller domain.Caller,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.tasks.GetByTitle(ctx, input.Title)
	if err == nil {
		log.Debug("task title already taken", slog.String("title", input.Title))
		return nil, ErrTaskExists
	}
	if !store.IsNotFoundError(err) {
		return nil, NewTaskServiceError("create_task", "failed to check title uniqueness", err)
	}

	task, err := domain.NewTask(
		caller.ID,
		input.Title,
		input.Description,
		input.Files,
		input.Testcases,
		input.Level,
		input.SolutionCode,
		input.Draft,
	)
	if err != nil {
		return nil, NewTaskServiceError("create_task", "failed to build task", err)
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("title", input.Title))
		return nil, NewTaskServiceError("create_task", "failed to save task", err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.Hex()),
		slog.String("author_id", caller.ID.Hex()))
	return task, nil
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, id primitive.ObjectID) (*EnrichedTask, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, NewTaskServiceError("get_task", "failed to retrieve task", err)
	}

	return s.enricher.EnrichTask(ctx, task)
}

// ListTasks implements TaskService.ListTasks
func (s *taskServiceImpl) ListTasks(ctx context.Context, page, limit int) (*Page[*EnrichedTask], error) {
	filter := store.TaskFilter{}

	tasks, err := s.tasks.List(ctx, filter, int64(PageOffset(page, limit)), int64(limit), store.ViewFull)
	if err != nil {
		return nil, NewTaskServiceError("list_tasks", "failed to list tasks", err)
	}

	count, err := s.tasks.Count(ctx, filter)
	if err != nil {
		return nil, NewTaskServiceError("list_tasks", "failed to count tasks", err)
	}

	enriched := make([]*EnrichedTask, 0, len(tasks))
	for _, task := range tasks {
		et, err := s.enricher.EnrichTask(ctx, task)
		if err != nil {
			return nil, err
		}
		enriched = append(enriched, et)
	}

	return NewPage(page, count, limit, enriched), nil
}

// ListFeedTasks implements TaskService.ListFeedTasks
func (s *taskServiceImpl) ListFeedTasks(ctx context.Context, page, limit int) (*Page[*FeedTask], error) {
	published := false
	filter := store.TaskFilter{Draft: &published}

	tasks, err := s.tasks.List(ctx, filter, int64(PageOffset(page, limit)), int64(limit), store.ViewFeed)
	if err != nil {
		return nil, NewTaskServiceError("list_feed_tasks", "failed to list feed tasks", err)
	}

	count, err := s.tasks.Count(ctx, filter)
	if err != nil {
		return nil, NewTaskServiceError("list_feed_tasks", "failed to count feed tasks", err)
	}

	enriched := make([]*FeedTask, 0, len(tasks))
	for _, task := range tasks {
		ft, err := s.enricher.EnrichFeedTask(ctx, task)
		if err != nil {
			return nil, err
		}
		enriched = append(enriched, ft)
	}

	return NewPage(page, count, limit, enriched), nil
}

// UpdateTask implements TaskService.UpdateTask
// The ownership read and the write are two separate calls; a concurrent
// delete between them surfaces as ErrTaskNotFound from the write.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	id primitive.ObjectID,
	input UpdateTaskInput,
	caller domain.Caller,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, NewTaskServiceError("update_task", "failed to retrieve task", err)
	}

	if task.Author != caller.ID && !caller.IsAdmin() {
		log.Debug("update denied",
			slog.String("task_id", id.Hex()),
			slog.String("caller_id", caller.ID.Hex()))
		return nil, ErrUnauthorized
	}

	updated, err := s.tasks.UpdateFields(ctx, id, store.TaskPatch{
		Title:        input.Title,
		Description:  input.Description,
		Files:        input.Files,
		Testcases:    input.Testcases,
		Level:        input.Level,
		SolutionCode: input.SolutionCode,
	})
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.Hex()))
		return nil, NewTaskServiceError("update_task", "failed to update task", err)
	}

	return updated, nil
}

// AuditTask implements TaskService.AuditTask
func (s *taskServiceImpl) AuditTask(
	ctx context.Context,
	id primitive.ObjectID,
	input AuditInput,
	caller domain.Caller,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, NewTaskServiceError("audit_task", "failed to retrieve task", err)
	}

	// Separation of duties: the author may never sign off on their own
	// task, admin or not.
	if task.Author == caller.ID {
		log.Debug("self-audit rejected",
			slog.String("task_id", id.Hex()),
			slog.String("caller_id", caller.ID.Hex()))
		return nil, ErrSelfAudit
	}

	updated, err := s.tasks.UpdateFields(ctx, id, store.TaskPatch{Status: &input.Status})
	if err != nil {
		log.Error("failed to audit task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.Hex()))
		return nil, NewTaskServiceError("audit_task", "failed to update task status", err)
	}

	log.Info("task audited",
		slog.String("task_id", id.Hex()),
		slog.String("status", input.Status),
		slog.String("auditor_id", caller.ID.Hex()))
	return updated, nil
}

// SetDraft implements TaskService.SetDraft
// No ownership or role gate applies here; any authenticated caller with a
// valid task id may toggle the flag.
func (s *taskServiceImpl) SetDraft(
	ctx context.Context,
	id primitive.ObjectID,
	draft bool,
) (*domain.Task, error) {
	_, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, NewTaskServiceError("set_draft", "failed to retrieve task", err)
	}

	updated, err := s.tasks.UpdateFields(ctx, id, store.TaskPatch{Draft: &draft})
	if err != nil {
		return nil, NewTaskServiceError("set_draft", "failed to update draft flag", err)
	}

	return updated, nil
}

// DeleteTask implements TaskService.DeleteTask
func (s *taskServiceImpl) DeleteTask(
	ctx context.Context,
	id primitive.ObjectID,
	caller domain.Caller,
) (Ack, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return Ack{}, NewTaskServiceError("delete_task", "failed to retrieve task", err)
	}

	if task.Author != caller.ID && !caller.IsAdmin() {
		log.Debug("delete denied",
			slog.String("task_id", id.Hex()),
			slog.String("caller_id", caller.ID.Hex()))
		return Ack{}, ErrUnauthorized
	}

	if err := s.deleter.Delete(ctx, task); err != nil {
		return Ack{}, err
	}

	return AckTaskDeleted, nil
}

package service

import (
	"context"
	"log/slog"

	"github.com/codequest/codequest-api/internal/domain"
	"github.com/codequest/codequest-api/internal/store"
)

// DeletionCoordinator orchestrates the cross-store removal of a task:
// object storage first, document record second. The two calls hit
// different stores and are not transactional — a failure after the file
// delete leaves a fileless task record behind, and nothing compensates
// for it. A failure during the file delete aborts before the record is
// touched.
type DeletionCoordinator struct {
	tasks  store.TaskStore
	files  store.FileStore
	logger *slog.Logger
}

// NewDeletionCoordinator creates a new DeletionCoordinator.
// It returns an error if any of the required dependencies are nil.
func NewDeletionCoordinator(
	tasks store.TaskStore,
	files store.FileStore,
	logger *slog.Logger,
) (*DeletionCoordinator, error) {
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if files == nil {
		return nil, domain.NewValidationError("files", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &DeletionCoordinator{
		tasks:  tasks,
		files:  files,
		logger: logger.With(slog.String("component", "deletion_coordinator")),
	}, nil
}

// Delete removes the task's referenced files from object storage, then
// deletes the task record.
func (c *DeletionCoordinator) Delete(ctx context.Context, task *domain.Task) error {
	keys := task.FileKeys()

	if err := c.files.DeleteFiles(ctx, keys); err != nil {
		c.logger.Error("failed to delete task files",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.Hex()),
			slog.Int("file_count", len(keys)))
		return NewTaskServiceError("delete_task", "failed to delete task files", err)
	}

	if err := c.tasks.Delete(ctx, task.ID); err != nil {
		// Files are already gone at this point; the record stays behind
		// until the caller retries.
		c.logger.Error("failed to delete task record after file cleanup",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.Hex()))
		return NewTaskServiceError("delete_task", "failed to delete task record", err)
	}

	c.logger.Info("task deleted",
		slog.String("task_id", task.ID.Hex()),
		slog.Int("file_count", len(keys)))
	return nil
}

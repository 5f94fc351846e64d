package service

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/codequest/codequest-api/internal/domain"
	"github.com/codequest/codequest-api/internal/platform/logger"
	"github.com/codequest/codequest-api/internal/store"
)

// CommentService manages the embedded comments of a task. Every mutation
// targets a single comment element by its generated id; ownership is
// checked against the comment's author, never the task's.
type CommentService interface {
	// CreateComment appends a new comment authored by the caller and
	// returns the updated task.
	CreateComment(ctx context.Context, taskID primitive.ObjectID, message string, caller domain.Caller) (*domain.Task, error)

	// UpdateComment replaces the message of the caller's comment and
	// refreshes its updatedAt, returning the updated task. Only the
	// comment's author may edit it.
	UpdateComment(ctx context.Context, taskID primitive.ObjectID, commentID, message string, caller domain.Caller) (*domain.Task, error)

	// DeleteComment removes the caller's comment by id. Only the comment's
	// author may delete it. Completion is reported as an Ack.
	DeleteComment(ctx context.Context, taskID primitive.ObjectID, commentID string, caller domain.Caller) (Ack, error)
}

// commentServiceImpl implements the CommentService interface
type commentServiceImpl struct {
	tasks  store.TaskStore
	logger *slog.Logger
}

// NewCommentService creates a new CommentService.
// It returns an error if the task store is nil.
func NewCommentService(tasks store.TaskStore, logger *slog.Logger) (CommentService, error) {
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &commentServiceImpl{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "comment_service")),
	}, nil
}

// CreateComment implements CommentService.CreateComment
func (s *commentServiceImpl) CreateComment(
	ctx context.Context,
	taskID primitive.ObjectID,
	message string,
	caller domain.Caller,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, NewTaskServiceError("create_comment", "failed to retrieve task", err)
	}

	comment, err := domain.NewComment(caller.ID, message)
	if err != nil {
		return nil, NewTaskServiceError("create_comment", "failed to build comment", err)
	}

	updated, err := s.tasks.PushComment(ctx, taskID, *comment)
	if err != nil {
		log.Error("failed to push comment",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.Hex()))
		return nil, NewTaskServiceError("create_comment", "failed to save comment", err)
	}

	log.Info("comment created",
		slog.String("task_id", taskID.Hex()),
		slog.String("comment_id", comment.ID),
		slog.String("author_id", caller.ID.Hex()))
	return updated, nil
}

// UpdateComment implements CommentService.UpdateComment
// The existence/ownership read and the array-filtered write are separate
// calls; a task deleted in between surfaces as ErrTaskNotFound from the
// write.
func (s *commentServiceImpl) UpdateComment(
	ctx context.Context,
	taskID primitive.ObjectID,
	commentID, message string,
	caller domain.Caller,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, NewTaskServiceError("update_comment", "failed to retrieve task", err)
	}

	comment := task.FindComment(commentID)
	if comment == nil {
		return nil, ErrCommentNotFound
	}

	// Only the comment's author may edit it; owning the task grants
	// nothing here.
	if comment.Author != caller.ID {
		log.Debug("comment update denied",
			slog.String("task_id", taskID.Hex()),
			slog.String("comment_id", commentID),
			slog.String("caller_id", caller.ID.Hex()))
		return nil, ErrUnauthorized
	}

	updated, err := s.tasks.SetCommentFields(ctx, taskID, commentID, message)
	if err != nil {
		log.Error("failed to update comment",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.Hex()),
			slog.String("comment_id", commentID))
		return nil, NewTaskServiceError("update_comment", "failed to update comment", err)
	}

	return updated, nil
}

// DeleteComment implements CommentService.DeleteComment
func (s *commentServiceImpl) DeleteComment(
	ctx context.Context,
	taskID primitive.ObjectID,
	commentID string,
	caller domain.Caller,
) (Ack, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return Ack{}, NewTaskServiceError("delete_comment", "failed to retrieve task", err)
	}

	comment := task.FindComment(commentID)
	if comment == nil {
		return Ack{}, ErrCommentNotFound
	}

	if comment.Author != caller.ID {
		log.Debug("comment delete denied",
			slog.String("task_id", taskID.Hex()),
			slog.String("comment_id", commentID),
			slog.String("caller_id", caller.ID.Hex()))
		return Ack{}, ErrUnauthorized
	}

	if _, err := s.tasks.PullComment(ctx, taskID, commentID); err != nil {
		log.Error("failed to pull comment",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.Hex()),
			slog.String("comment_id", commentID))
		return Ack{}, NewTaskServiceError("delete_comment", "failed to delete comment", err)
	}

	log.Info("comment deleted",
		slog.String("task_id", taskID.Hex()),
		slog.String("comment_id", commentID))
	return AckTaskDeleted, nil
}

package service

import (
	"errors"
	"fmt"

	"github.com/codequest/codequest-api/internal/store"
)

// Wire codes forming the error/success contract consumed by the HTTP
// layer. Codes are stable; do not rename.
const (
	CodeTaskNotFound    = "TASK_NOT_FOUND"
	CodeCommentNotFound = "COMMENT_NOT_FOUND"
	CodeUserNotFound    = "USER_NOT_FOUND"
	CodeTaskExisted     = "TASK_EXISTED"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeSelfAudit       = "CAN_NOT_AUDIT_YOUR_OWN_TASK"
	CodeTaskDeleted     = "TASK_DELETED"
)

// Common sentinel errors for the task and comment services.
var (
	// ErrTaskNotFound indicates that the task does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrCommentNotFound indicates that the comment does not exist inside
	// its parent task.
	ErrCommentNotFound = errors.New("comment not found")

	// ErrAuthorNotFound indicates that an author reference points at a user
	// that no longer exists. There is no placeholder fallback; enrichment
	// fails loudly.
	ErrAuthorNotFound = errors.New("author not found")

	// ErrTaskExists indicates that a task with the same title already exists.
	ErrTaskExists = errors.New("task already exists")

	// ErrUnauthorized indicates an ownership or role violation.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSelfAudit indicates a task author attempting to audit their own
	// task. This applies to every role, admins included.
	ErrSelfAudit = errors.New("cannot audit your own task")
)

// Ack is the discriminated success result for delete-style operations.
// The original API reported these completions through its error channel
// with an OK status; here they are a distinct result type carrying the
// same wire code.
type Ack struct {
	OK   bool   `json:"ok"`
	Code string `json:"code"`
}

// AckTaskDeleted is the completion signal for task and comment deletion.
// Comment deletion deliberately reuses the TASK_DELETED code: that is the
// wire contract clients already depend on.
var AckTaskDeleted = Ack{OK: true, Code: CodeTaskDeleted}

// ErrorCode returns the wire code for a service error, or the empty string
// for errors outside the contract.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrTaskNotFound):
		return CodeTaskNotFound
	case errors.Is(err, ErrCommentNotFound):
		return CodeCommentNotFound
	case errors.Is(err, ErrAuthorNotFound):
		return CodeUserNotFound
	case errors.Is(err, ErrTaskExists):
		return CodeTaskExisted
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrSelfAudit):
		return CodeSelfAudit
	default:
		return ""
	}
}

// TaskServiceError wraps errors from the task and comment services with
// context.
type TaskServiceError struct {
	// Operation is the operation that failed (e.g., "create_task", "update_comment")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
// It returns known sentinel errors directly without wrapping, and maps
// store-level sentinels to their service-level counterparts.
func NewTaskServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrTaskNotFound),
		errors.Is(err, ErrCommentNotFound),
		errors.Is(err, ErrAuthorNotFound),
		errors.Is(err, ErrTaskExists),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrSelfAudit):
		return err
	case errors.Is(err, store.ErrTaskNotFound):
		return ErrTaskNotFound
	case errors.Is(err, store.ErrCommentNotFound):
		return ErrCommentNotFound
	case errors.Is(err, store.ErrUserNotFound):
		return ErrAuthorNotFound
	case errors.Is(err, store.ErrTitleExists):
		return ErrTaskExists
	}

	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

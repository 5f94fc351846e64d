package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/codequest/codequest-api/internal/domain"
)

// TaskView selects which fields a listing returns.
type TaskView int

const (
	// ViewFull returns every task field.
	ViewFull TaskView = iota

	// ViewFeed strips comments, solution_code, status and draft from the
	// returned documents.
	ViewFeed
)

// TaskFilter narrows listing and counting operations. Zero value matches
// every task.
type TaskFilter struct {
	// Draft, when set, matches only tasks whose draft flag equals the value.
	Draft *bool
}

// TaskPatch holds optional field updates for a task. Only non-nil fields
// are written. The author reference is immutable and deliberately absent.
type TaskPatch struct {
	Title        *string
	Description  *string
	Files        *[]domain.FileRef
	Testcases    *[]domain.Testcase
	Level        *int
	SolutionCode *string
	Status       *string
	Draft        *bool
}

// IsEmpty reports whether the patch carries no field updates.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Files == nil &&
		p.Testcases == nil && p.Level == nil && p.SolutionCode == nil &&
		p.Status == nil && p.Draft == nil
}

// TaskStore defines the interface for task persistence. Each mutation is a
// single atomic document operation; the store does not serialize the
// read-check-then-write sequences the service layer performs around it.
type TaskStore interface {
	// Create saves a new task. Returns ErrTitleExists if a task with the
	// same title already exists (backed by a unique index on title).
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Task, error)

	// GetByTitle retrieves a task by its title.
	// Returns ErrTaskNotFound if no task carries the title.
	GetByTitle(ctx context.Context, title string) (*domain.Task, error)

	// List returns a page of tasks matching the filter, in insertion order,
	// shaped by the requested view.
	List(ctx context.Context, filter TaskFilter, offset, limit int64, view TaskView) ([]*domain.Task, error)

	// Count returns the number of tasks matching the filter.
	Count(ctx context.Context, filter TaskFilter) (int64, error)

	// UpdateFields applies the non-nil patch fields to the task and returns
	// the updated document. Returns ErrTaskNotFound if the task does not
	// exist at write time.
	UpdateFields(ctx context.Context, id primitive.ObjectID, patch TaskPatch) (*domain.Task, error)

	// PushComment appends a comment to the task's comment array and returns
	// the updated document. Returns ErrTaskNotFound if the task does not
	// exist at write time.
	PushComment(ctx context.Context, id primitive.ObjectID, comment domain.Comment) (*domain.Task, error)

	// PullComment removes the comment with the given ID from the task's
	// comment array and returns the updated document. Returns
	// ErrTaskNotFound if the task does not exist at write time. A comment ID
	// that matches nothing leaves the document unchanged.
	PullComment(ctx context.Context, id primitive.ObjectID, commentID string) (*domain.Task, error)

	// SetCommentFields overwrites the message and updatedAt of the single
	// comment matching commentID, leaving all other elements untouched, and
	// returns the updated document. Returns ErrTaskNotFound if the task does
	// not exist at write time.
	SetCommentFields(ctx context.Context, id primitive.ObjectID, commentID, message string) (*domain.Task, error)

	// Delete removes the task record. Returns ErrTaskNotFound if the task
	// does not exist.
	Delete(ctx context.Context, id primitive.ObjectID) error
}

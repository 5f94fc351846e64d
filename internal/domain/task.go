package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Task-specific validation errors
var (
	// ErrTaskTitleEmpty is returned when a task title is empty.
	ErrTaskTitleEmpty = errors.New("task title cannot be empty")

	// ErrTaskDescriptionEmpty is returned when a task description is empty.
	ErrTaskDescriptionEmpty = errors.New("task description cannot be empty")

	// ErrTaskAuthorEmpty is returned when a task's author ID is zero.
	ErrTaskAuthorEmpty = errors.New("task author cannot be empty")

	// ErrCommentMessageEmpty is returned when a comment message is empty.
	ErrCommentMessageEmpty = errors.New("comment message cannot be empty")

	// ErrCommentAuthorEmpty is returned when a comment's author ID is zero.
	ErrCommentAuthorEmpty = errors.New("comment author cannot be empty")
)

// Task statuses assigned by auditors.
const (
	TaskStatusPending  = "pending"
	TaskStatusApproved = "approved"
	TaskStatusRejected = "rejected"
)

// Task represents a coding challenge with an owner, content, lifecycle
// flags, and an embedded ordered list of comments. The author field holds
// the canonical user reference; it is resolved to an AuthorView at read
// time and never written back.
type Task struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"      json:"id"`
	Title        string             `bson:"title"              json:"title"`
	Description  string             `bson:"description"        json:"description"`
	Author       primitive.ObjectID `bson:"author"             json:"author"`
	Files        []FileRef          `bson:"files"              json:"files"`
	Testcases    []Testcase         `bson:"testcases"          json:"testcases"`
	Level        int                `bson:"level"              json:"level"`
	SolutionCode string             `bson:"solution_code"      json:"solution_code"`
	Status       string             `bson:"status"             json:"status"`
	Draft        bool               `bson:"draft"              json:"draft"`
	Comments     []Comment          `bson:"comments"           json:"comments"`
	CreatedAt    time.Time          `bson:"created_at"         json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"         json:"updated_at"`
}

// Comment is a sub-entity owned exclusively by its parent task. Its ID is
// generated at creation and is unique within the task, not globally.
type Comment struct {
	ID        string             `bson:"id"        json:"id"`
	Author    primitive.ObjectID `bson:"author"    json:"author"`
	Message   string             `bson:"message"   json:"message"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// FileRef points at an object in external storage by its storage key.
type FileRef struct {
	Key string `bson:"key" json:"key"`
	URL string `bson:"url" json:"url"`
}

// Testcase is a single input/output pair used to check solutions.
type Testcase struct {
	Input  string `bson:"input"  json:"input"`
	Output string `bson:"output" json:"output"`
}

// AuthorView is the display projection of an author reference. It is
// derived at read time and never persisted.
type AuthorView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// NewTask creates a new Task owned by the given author. The caller decides
// the draft flag explicitly; it is not defaulted here.
// Returns an error if validation fails.
func NewTask(
	author primitive.ObjectID,
	title, description string,
	files []FileRef,
	testcases []Testcase,
	level int,
	solutionCode string,
	draft bool,
) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:           primitive.NewObjectID(),
		Title:        title,
		Description:  description,
		Author:       author,
		Files:        files,
		Testcases:    testcases,
		Level:        level,
		SolutionCode: solutionCode,
		Status:       TaskStatusPending,
		Draft:        draft,
		Comments:     []Comment{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID.IsZero() {
		return ErrInvalidID
	}

	if t.Title == "" {
		return ErrTaskTitleEmpty
	}

	if t.Description == "" {
		return ErrTaskDescriptionEmpty
	}

	if t.Author.IsZero() {
		return ErrTaskAuthorEmpty
	}

	switch t.Status {
	case TaskStatusPending, TaskStatusApproved, TaskStatusRejected:
	default:
		return ErrInvalidStatus
	}

	return nil
}

// FileKeys returns the storage keys of all file references, in order.
func (t *Task) FileKeys() []string {
	keys := make([]string, 0, len(t.Files))
	for _, f := range t.Files {
		keys = append(keys, f.Key)
	}
	return keys
}

// FindComment returns the comment with the given ID, or nil if the task
// has no such comment.
func (t *Task) FindComment(commentID string) *Comment {
	for i := range t.Comments {
		if t.Comments[i].ID == commentID {
			return &t.Comments[i]
		}
	}
	return nil
}

// NewComment creates a new Comment authored by the given user with a
// freshly generated ID and both timestamps set to now.
// Returns an error if validation fails.
func NewComment(author primitive.ObjectID, message string) (*Comment, error) {
	now := time.Now().UTC()
	comment := &Comment{
		ID:        uuid.NewString(),
		Author:    author,
		Message:   message,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := comment.Validate(); err != nil {
		return nil, err
	}

	return comment, nil
}

// Validate checks if the Comment has valid data.
func (c *Comment) Validate() error {
	if c.ID == "" {
		return ErrInvalidID
	}

	if c.Author.IsZero() {
		return ErrCommentAuthorEmpty
	}

	if c.Message == "" {
		return ErrCommentMessageEmpty
	}

	return nil
}

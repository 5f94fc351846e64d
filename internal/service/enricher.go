package service

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/codequest/codequest-api/internal/domain"
	"github.com/codequest/codequest-api/internal/store"
)

// EnrichedComment is a comment with its author reference resolved to a
// display view.
type EnrichedComment struct {
	ID        string            `json:"id"`
	Author    domain.AuthorView `json:"author"`
	Message   string            `json:"message"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// EnrichedTask is a task with its author reference, and every comment's
// author reference, resolved to display views. The stored document keeps
// the canonical references; this shape exists only on read paths.
type EnrichedTask struct {
	ID           string             `json:"id"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Author       domain.AuthorView  `json:"author"`
	Files        []domain.FileRef   `json:"files"`
	Testcases    []domain.Testcase  `json:"testcases"`
	Level        int                `json:"level"`
	SolutionCode string             `json:"solution_code"`
	Status       string             `json:"status"`
	Draft        bool               `json:"draft"`
	Comments     []EnrichedComment  `json:"comments"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// FeedTask is the public feed projection of a task: no comments, no
// solution code, no status, no draft flag.
type FeedTask struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Author      domain.AuthorView `json:"author"`
	Files       []domain.FileRef  `json:"files"`
	Testcases   []domain.Testcase `json:"testcases"`
	Level       int               `json:"level"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// AuthorEnricher resolves stored author references into display views at
// read time. Resolved views are never written back to storage.
type AuthorEnricher struct {
	users  store.UserStore
	logger *slog.Logger
}

// NewAuthorEnricher creates a new AuthorEnricher.
// It returns an error if the user store is nil.
func NewAuthorEnricher(users store.UserStore, logger *slog.Logger) (*AuthorEnricher, error) {
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &AuthorEnricher{
		users:  users,
		logger: logger.With(slog.String("component", "author_enricher")),
	}, nil
}

// Resolve looks up the referenced user and projects it into an AuthorView.
// Returns ErrAuthorNotFound if the user no longer exists; there is no
// placeholder fallback.
func (e *AuthorEnricher) Resolve(ctx context.Context, authorID primitive.ObjectID) (domain.AuthorView, error) {
	user, err := e.users.GetByID(ctx, authorID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return domain.AuthorView{}, ErrAuthorNotFound
		}
		return domain.AuthorView{}, NewTaskServiceError(
			"resolve_author",
			"failed to resolve author",
			err,
		)
	}

	return user.AuthorView(), nil
}

// EnrichTask resolves the task's author and each comment's author,
// individually, into display views.
func (e *AuthorEnricher) EnrichTask(ctx context.Context, task *domain.Task) (*EnrichedTask, error) {
	author, err := e.Resolve(ctx, task.Author)
	if err != nil {
		return nil, err
	}

	comments := make([]EnrichedComment, 0, len(task.Comments))
	for _, c := range task.Comments {
		commentAuthor, err := e.Resolve(ctx, c.Author)
		if err != nil {
			return nil, err
		}
		comments = append(comments, EnrichedComment{
			ID:        c.ID,
			Author:    commentAuthor,
			Message:   c.Message,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}

	return &EnrichedTask{
		ID:           task.ID.Hex(),
		Title:        task.Title,
		Description:  task.Description,
		Author:       author,
		Files:        task.Files,
		Testcases:    task.Testcases,
		Level:        task.Level,
		SolutionCode: task.SolutionCode,
		Status:       task.Status,
		Draft:        task.Draft,
		Comments:     comments,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}, nil
}

// EnrichFeedTask resolves only the task author; feed items carry no
// comments.
func (e *AuthorEnricher) EnrichFeedTask(ctx context.Context, task *domain.Task) (*FeedTask, error) {
	author, err := e.Resolve(ctx, task.Author)
	if err != nil {
		return nil, err
	}

	return &FeedTask{
		ID:          task.ID.Hex(),
		Title:       task.Title,
		Description: task.Description,
		Author:      author,
		Files:       task.Files,
		Testcases:   task.Testcases,
		Level:       task.Level,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}, nil
}

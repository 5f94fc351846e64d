package api

import "github.com/codequest/codequest-api/internal/domain"

// CreateTaskRequest is the payload for creating a task. The draft flag is
// explicit; the API does not default it.
type CreateTaskRequest struct {
	Title        string             `json:"title"         validate:"required,max=200"`
	Description  string             `json:"description"   validate:"required"`
	Files        []domain.FileRef   `json:"files"`
	Testcases    []domain.Testcase  `json:"testcases"`
	Level        int                `json:"level"         validate:"gte=0,lte=5"`
	SolutionCode string             `json:"solution_code"`
	Draft        bool               `json:"draft"`
}

// UpdateTaskRequest is the payload for a general field edit. Absent fields
// are left untouched.
type UpdateTaskRequest struct {
	Title        *string            `json:"title,omitempty"         validate:"omitempty,max=200"`
	Description  *string            `json:"description,omitempty"`
	Files        *[]domain.FileRef  `json:"files,omitempty"`
	Testcases    *[]domain.Testcase `json:"testcases,omitempty"`
	Level        *int               `json:"level,omitempty"         validate:"omitempty,gte=0,lte=5"`
	SolutionCode *string            `json:"solution_code,omitempty"`
}

// AuditTaskRequest is the payload for a review decision.
type AuditTaskRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}

// DraftTaskRequest is the payload for the draft toggle.
type DraftTaskRequest struct {
	Draft *bool `json:"draft" validate:"required"`
}

// CreateCommentRequest is the payload for adding a comment to a task.
type CreateCommentRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// UpdateCommentRequest is the payload for editing a comment's message.
type UpdateCommentRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest is the payload for logging in.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the issued token and the authenticated user's
// public profile.
type AuthResponse struct {
	Token string            `json:"token"`
	User  domain.AuthorView `json:"user"`
}

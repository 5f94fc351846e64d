package api

import (
	"errors"
	"net/http"

	"github.com/codequest/codequest-api/internal/service"
	"github.com/codequest/codequest-api/internal/service/auth"
	"github.com/codequest/codequest-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This prevents leaking internal error
// types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Ownership/role violations
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrCommentNotFound),
		errors.Is(err, service.ErrAuthorNotFound):
		return http.StatusNotFound

	// Business rule violations; both report 400 on the wire
	case errors.Is(err, service.ErrTaskExists),
		errors.Is(err, service.ErrSelfAudit):
		return http.StatusBadRequest

	// Registration conflicts
	case errors.Is(err, store.ErrUsernameExists):
		return http.StatusConflict

	case errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, service.ErrUnauthorized):
		return "You are not allowed to perform this action"

	case errors.Is(err, service.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, service.ErrCommentNotFound):
		return "Comment not found"

	case errors.Is(err, service.ErrAuthorNotFound):
		return "User not found"

	case errors.Is(err, service.ErrTaskExists):
		return "A task with this title already exists"

	case errors.Is(err, service.ErrSelfAudit):
		return "You cannot audit your own task"

	case errors.Is(err, store.ErrUsernameExists):
		return "Username already exists"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

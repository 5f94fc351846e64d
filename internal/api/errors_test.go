package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codequest/codequest-api/internal/service"
	"github.com/codequest/codequest-api/internal/service/auth"
	"github.com/codequest/codequest-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "invalid token", err: auth.ErrInvalidToken, expected: http.StatusUnauthorized},
		{name: "expired token", err: auth.ErrExpiredToken, expected: http.StatusUnauthorized},
		{name: "invalid credentials", err: auth.ErrInvalidCredentials, expected: http.StatusUnauthorized},
		{name: "ownership violation", err: service.ErrUnauthorized, expected: http.StatusUnauthorized},
		{name: "task not found", err: service.ErrTaskNotFound, expected: http.StatusNotFound},
		{name: "comment not found", err: service.ErrCommentNotFound, expected: http.StatusNotFound},
		{name: "author not found", err: service.ErrAuthorNotFound, expected: http.StatusNotFound},
		{name: "duplicate title", err: service.ErrTaskExists, expected: http.StatusBadRequest},
		{name: "self audit", err: service.ErrSelfAudit, expected: http.StatusBadRequest},
		{name: "username taken", err: store.ErrUsernameExists, expected: http.StatusConflict},
		{name: "invalid entity", err: store.ErrInvalidEntity, expected: http.StatusBadRequest},
		{name: "unknown error", err: errors.New("boom"), expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestMapErrorToStatusCode_WrappedErrors(t *testing.T) {
	// Service wrappers must not hide the sentinel from the mapping.
	wrapped := service.NewTaskServiceError("get_task", "failed to retrieve task", service.ErrTaskNotFound)
	assert.Equal(t, http.StatusNotFound, MapErrorToStatusCode(wrapped))
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "task not found", err: service.ErrTaskNotFound, expected: "Task not found"},
		{name: "comment not found", err: service.ErrCommentNotFound, expected: "Comment not found"},
		{name: "author not found", err: service.ErrAuthorNotFound, expected: "User not found"},
		{name: "duplicate title", err: service.ErrTaskExists, expected: "A task with this title already exists"},
		{name: "self audit", err: service.ErrSelfAudit, expected: "You cannot audit your own task"},
		{name: "ownership violation", err: service.ErrUnauthorized, expected: "You are not allowed to perform this action"},
		{name: "nil error", err: nil, expected: "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetSafeErrorMessage(tt.err))
		})
	}

	t.Run("internal details never leak", func(t *testing.T) {
		err := errors.New("pq: connection to 10.0.0.5 refused")
		assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(err))
	})
}

package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/codequest/codequest-api/internal/api/shared"
	"github.com/codequest/codequest-api/internal/domain"
	"github.com/codequest/codequest-api/internal/platform/logger"
	"github.com/codequest/codequest-api/internal/service/auth"
	"github.com/codequest/codequest-api/internal/store"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userStore  store.UserStore
	jwtService auth.JWTService
	logger     *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies
func NewAuthHandler(userStore store.UserStore, jwtService auth.JWTService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AuthHandler")
	}

	return &AuthHandler{
		userStore:  userStore,
		jwtService: jwtService,
		logger:     logger.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /auth/register requests.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "", "Invalid request format")
		return
	}
	if err := shared.Validate.Struct(req); err != nil {
		log.Warn("validation error", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "", "Validation error")
		return
	}

	user, err := domain.NewUser(req.Username, req.Password)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "", err.Error())
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "", "Failed to create account")
		return
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := h.userStore.Create(r.Context(), user); err != nil {
		shared.RespondWithErrorAndLog(
			w, r,
			MapErrorToStatusCode(err),
			"",
			GetSafeErrorMessage(err),
			err,
		)
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user)
	if err != nil {
		log.Error("failed to generate token", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "", "Failed to create account")
		return
	}

	log.Info("user registered", slog.String("user_id", user.ID.Hex()))
	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{
		Token: token,
		User:  user.AuthorView(),
	})
}

// Login handles POST /auth/login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "", "Invalid request format")
		return
	}
	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "", "Validation error")
		return
	}

	user, err := h.userStore.GetByUsername(r.Context(), req.Username)
	if err != nil {
		// A missing user and a wrong password are indistinguishable to
		// the client.
		if errors.Is(err, store.ErrUserNotFound) {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "", "Invalid credentials")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "", "Login failed", err)
		return
	}

	if err := auth.VerifyPassword(user.HashedPassword, req.Password); err != nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "", "Invalid credentials")
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user)
	if err != nil {
		log.Error("failed to generate token", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "", "Login failed")
		return
	}

	log.Info("user logged in", slog.String("user_id", user.ID.Hex()))
	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		Token: token,
		User:  user.AuthorView(),
	})
}

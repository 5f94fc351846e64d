// Package auth implements the authentication collaborator: JWT issuing
// and verification plus password hashing.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/codequest/codequest-api/internal/config"
	"github.com/codequest/codequest-api/internal/domain"
)

// Claims carries the authenticated caller identity inside a token.
type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService issues and validates bearer tokens.
type JWTService interface {
	// GenerateToken creates a signed token for the given user.
	GenerateToken(ctx context.Context, user *domain.User) (string, error)

	// ValidateToken verifies the token and returns the caller it identifies.
	// Returns ErrExpiredToken or ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, tokenString string) (domain.Caller, error)
}

// jwtServiceImpl implements JWTService with HMAC-SHA256 signing.
type jwtServiceImpl struct {
	secret   []byte
	lifetime time.Duration
}

// NewJWTService creates a new JWTService from the auth configuration.
func NewJWTService(cfg config.AuthConfig) (JWTService, error) {
	if cfg.JWTSecret == "" {
		return nil, domain.NewValidationError("jwt_secret", "cannot be empty", domain.ErrValidation)
	}
	if cfg.TokenLifetimeMinutes <= 0 {
		return nil, domain.NewValidationError(
			"token_lifetime_minutes",
			"must be positive",
			domain.ErrValidation,
		)
	}

	return &jwtServiceImpl{
		secret:   []byte(cfg.JWTSecret),
		lifetime: time.Duration(cfg.TokenLifetimeMinutes) * time.Minute,
	}, nil
}

// GenerateToken implements JWTService.GenerateToken
func (s *jwtServiceImpl) GenerateToken(ctx context.Context, user *domain.User) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// ValidateToken implements JWTService.ValidateToken
func (s *jwtServiceImpl) ValidateToken(ctx context.Context, tokenString string) (domain.Caller, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(
		tokenString,
		&claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.secret, nil
		},
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Caller{}, ErrExpiredToken
		}
		return domain.Caller{}, ErrInvalidToken
	}
	if !token.Valid {
		return domain.Caller{}, ErrInvalidToken
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return domain.Caller{}, ErrInvalidToken
	}

	return domain.Caller{ID: userID, Role: claims.Role}, nil
}

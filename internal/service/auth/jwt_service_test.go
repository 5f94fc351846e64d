package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/codequest/codequest-api/internal/config"
	"github.com/codequest/codequest-api/internal/domain"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:            "0123456789abcdef0123456789abcdef",
		TokenLifetimeMinutes: 60,
	}
}

func testSubject(t *testing.T, role string) *domain.User {
	t.Helper()
	return &domain.User{
		ID:             primitive.NewObjectID(),
		Username:       "alice",
		HashedPassword: "hashed",
		Role:           role,
	}
}

func TestNewJWTService(t *testing.T) {
	t.Run("empty secret", func(t *testing.T) {
		cfg := testAuthConfig()
		cfg.JWTSecret = ""

		svc, err := NewJWTService(cfg)
		assert.Error(t, err)
		assert.Nil(t, svc)
	})

	t.Run("non-positive lifetime", func(t *testing.T) {
		cfg := testAuthConfig()
		cfg.TokenLifetimeMinutes = 0

		svc, err := NewJWTService(cfg)
		assert.Error(t, err)
		assert.Nil(t, svc)
	})

	t.Run("valid config", func(t *testing.T) {
		svc, err := NewJWTService(testAuthConfig())
		assert.NoError(t, err)
		assert.NotNil(t, svc)
	})
}

func TestJWTService_RoundTrip(t *testing.T) {
	ctx := context.Background()

	svc, err := NewJWTService(testAuthConfig())
	require.NoError(t, err)

	t.Run("issued token identifies the caller", func(t *testing.T) {
		user := testSubject(t, domain.RoleAdmin)

		token, err := svc.GenerateToken(ctx, user)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		caller, err := svc.ValidateToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, caller.ID)
		assert.Equal(t, domain.RoleAdmin, caller.Role)
		assert.True(t, caller.IsAdmin())
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ValidateToken(ctx, "not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token signed with a different secret", func(t *testing.T) {
		otherCfg := testAuthConfig()
		otherCfg.JWTSecret = "ffffffffffffffffffffffffffffffff"
		other, err := NewJWTService(otherCfg)
		require.NoError(t, err)

		token, err := other.GenerateToken(ctx, testSubject(t, domain.RoleMember))
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		impl := &jwtServiceImpl{
			secret:   []byte(testAuthConfig().JWTSecret),
			lifetime: -time.Minute,
		}

		token, err := impl.GenerateToken(ctx, testSubject(t, domain.RoleMember))
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cretpass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cretpass", hash)

	t.Run("correct password verifies", func(t *testing.T) {
		assert.NoError(t, VerifyPassword(hash, "s3cretpass"))
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		assert.ErrorIs(t, VerifyPassword(hash, "wrongpass"), ErrInvalidCredentials)
	})

	t.Run("hashes are salted", func(t *testing.T) {
		second, err := HashPassword("s3cretpass")
		require.NoError(t, err)
		assert.NotEqual(t, hash, second)
	})
}

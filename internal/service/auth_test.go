package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rocketscienceinc/three-backend/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService(t *testing.T) {
	t.Run("Token round trip", func(t *testing.T) {
		// Given: an auth service
		auth, err := NewAuthService("secret", time.Hour)
		require.NoError(t, err)

		// When: a token is issued and parsed back
		token, err := auth.GenerateToken("player-1")
		require.NoError(t, err)

		playerID, err := auth.ParseToken(token)

		// Then: it names the same player
		require.NoError(t, err)
		assert.Equal(t, "player-1", playerID)
	})

	t.Run("Token signed with another key", func(t *testing.T) {
		issuer, err := NewAuthService("other", time.Hour)
		require.NoError(t, err)
		auth, err := NewAuthService("secret", time.Hour)
		require.NoError(t, err)

		token, err := issuer.GenerateToken("player-1")
		require.NoError(t, err)

		_, err = auth.ParseToken(token)

		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("Expired token", func(t *testing.T) {
		auth, err := NewAuthService("secret", -time.Minute)
		require.NoError(t, err)

		token, err := auth.GenerateToken("player-1")
		require.NoError(t, err)

		_, err = auth.ParseToken(token)

		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("Garbage token", func(t *testing.T) {
		auth, err := NewAuthService("secret", time.Hour)
		require.NoError(t, err)

		_, err = auth.ParseToken("not-a-token")

		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("Empty secret", func(t *testing.T) {
		_, err := NewAuthService("", time.Hour)

		assert.ErrorIs(t, err, ErrEmptySecretKey)
	})
}

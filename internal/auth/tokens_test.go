package auth

import (
	"testing"
	"time"

	"taskboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokens(t *testing.T) {
	tokens := NewTokens("0123456789abcdef0123", time.Hour)
	user := &models.User{PasswordHash: "hash-1"}
	user.ID = 42

	token, err := tokens.Make(user, PurposeActivate)
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, tokens.Check(user, PurposeActivate, token))
	})

	t.Run("wrong purpose", func(t *testing.T) {
		assert.ErrorIs(t, tokens.Check(user, PurposeReset, token), ErrInvalidToken)
	})

	t.Run("other user", func(t *testing.T) {
		other := *user
		other.ID = 43
		assert.ErrorIs(t, tokens.Check(&other, PurposeActivate, token), ErrInvalidToken)
	})

	t.Run("used once", func(t *testing.T) {
		activated := *user
		activated.IsActive = true
		assert.ErrorIs(t, tokens.Check(&activated, PurposeActivate, token), ErrInvalidToken)
	})

	t.Run("password changed", func(t *testing.T) {
		changed := *user
		changed.PasswordHash = "hash-2"
		assert.ErrorIs(t, tokens.Check(&changed, PurposeActivate, token), ErrInvalidToken)
	})

	t.Run("tampered", func(t *testing.T) {
		assert.ErrorIs(t, tokens.Check(user, PurposeActivate, token+"x"), ErrInvalidToken)
	})

	t.Run("other secret", func(t *testing.T) {
		foreign := NewTokens("fedcba9876543210fedc", time.Hour)
		assert.ErrorIs(t, foreign.Check(user, PurposeActivate, token), ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		late := NewTokens("0123456789abcdef0123", time.Hour)
		late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		assert.ErrorIs(t, late.Check(user, PurposeActivate, token), ErrInvalidToken)
	})
}

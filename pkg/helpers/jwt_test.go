package helpers_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora/marketplace-api/pkg/helpers"
)

func newManager() *helpers.JWTManager {
	return helpers.NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newManager()

	token, exp, err := m.IssueAccessToken("user-1", "a@example.com", "buyer")
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := m.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, "buyer", claims.Role)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	m := newManager()

	token, _, err := m.IssueRefreshToken("user-1")
	require.NoError(t, err)

	claims, err := m.VerifyRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)

	// Tokens minted back to back must still be distinct.
	other, _, err := m.IssueRefreshToken("user-1")
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestTokenFamiliesDoNotCross(t *testing.T) {
	m := newManager()

	t.Run("refresh token is not an access token", func(t *testing.T) {
		refresh, _, err := m.IssueRefreshToken("user-1")
		require.NoError(t, err)
		_, err = m.VerifyAccessToken(refresh)
		assert.ErrorIs(t, err, helpers.ErrInvalidToken)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		access, _, err := m.IssueAccessToken("user-1", "a@example.com", "buyer")
		require.NoError(t, err)
		_, err = m.VerifyRefreshToken(access)
		assert.ErrorIs(t, err, helpers.ErrInvalidToken)
	})

	t.Run("purpose token is not an access token", func(t *testing.T) {
		reset, err := m.IssuePurposeToken("user-1", helpers.PurposePasswordReset, time.Hour)
		require.NoError(t, err)
		_, err = m.VerifyAccessToken(reset)
		assert.ErrorIs(t, err, helpers.ErrInvalidToken)
	})

	t.Run("purpose mismatch", func(t *testing.T) {
		reset, err := m.IssuePurposeToken("user-1", helpers.PurposePasswordReset, time.Hour)
		require.NoError(t, err)
		_, err = m.VerifyPurposeToken(reset, helpers.PurposeEmailVerification)
		assert.ErrorIs(t, err, helpers.ErrInvalidToken)

		claims, err := m.VerifyPurposeToken(reset, helpers.PurposePasswordReset)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
	})
}

func TestExpiredToken(t *testing.T) {
	m := helpers.NewJWTManager("access-secret", "refresh-secret", -time.Minute, -time.Minute)

	access, _, err := m.IssueAccessToken("user-1", "a@example.com", "buyer")
	require.NoError(t, err)
	_, err = m.VerifyAccessToken(access)
	assert.ErrorIs(t, err, helpers.ErrExpiredToken)

	refresh, _, err := m.IssueRefreshToken("user-1")
	require.NoError(t, err)
	_, err = m.VerifyRefreshToken(refresh)
	assert.ErrorIs(t, err, helpers.ErrExpiredToken)
}

func TestWrongSecret(t *testing.T) {
	m := newManager()
	foreign := helpers.NewJWTManager("other-access", "other-refresh", time.Hour, time.Hour)

	token, _, err := foreign.IssueAccessToken("user-1", "a@example.com", "buyer")
	require.NoError(t, err)
	_, err = m.VerifyAccessToken(token)
	assert.ErrorIs(t, err, helpers.ErrInvalidToken)

	_, err = m.VerifyAccessToken("garbage")
	assert.ErrorIs(t, err, helpers.ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := helpers.HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)
	assert.True(t, helpers.CompareHashAndPassword(hash, "password123"))
	assert.False(t, helpers.CompareHashAndPassword(hash, "password124"))
}

package jwtutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{SigningKey: "k1", ExpirationHours: 1})

	token, err := util.GenerateToken("ada@example.com", 42)
	require.NoError(t, err)

	claims, err := util.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "42", claims.Subject)
}

func TestValidate_WrongKey(t *testing.T) {
	token, err := NewJWTUtil(&JWTConfig{SigningKey: "k1", ExpirationHours: 1}).GenerateToken("a@b.c", 1)
	require.NoError(t, err)

	_, err = NewJWTUtil(&JWTConfig{SigningKey: "k2", ExpirationHours: 1}).ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestValidate_Expired(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{SigningKey: "k1", ExpirationHours: 1})
	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	util.now = func() time.Time { return issued }

	token, err := util.GenerateToken("a@b.c", 1)
	require.NoError(t, err)

	util.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = util.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidate_RejectsMissingUser(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{SigningKey: "k1", ExpirationHours: 1})
	token, err := util.GenerateToken("anon@example.com", 0)
	require.NoError(t, err)

	_, err = util.ValidateToken(token)
	assert.ErrorContains(t, err, "user_id")
}

func TestNotConfigured(t *testing.T) {
	_, err := NewJWTUtil(nil).GenerateToken("a@b.c", 1)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewJWTUtil(&JWTConfig{}).ValidateToken("x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

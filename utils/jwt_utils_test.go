package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yeniliko/api/models"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	user := &models.User{
		ID:    "u1",
		Email: "ayse@example.com",
		Role:  "admin",
	}

	tokenString, err := GenerateJWT(user)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := ValidateJWT(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "ayse@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "u1", claims.Subject)
}

func TestValidateJWTRejectsTamperedToken(t *testing.T) {
	user := &models.User{ID: "u1", Email: "ayse@example.com", Role: "customer"}

	tokenString, err := GenerateJWT(user)
	require.NoError(t, err)

	_, err = ValidateJWT(tokenString + "x")
	assert.Error(t, err)
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	_, err := ValidateJWT("not-a-token")
	assert.Error(t, err)
}

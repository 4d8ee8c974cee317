package security

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTokenRoundTrip(t *testing.T) {
	auth := NewTokenAuth("secret")
	userID := uuid.New()

	tokenString, err := GenerateToken(auth, userID, time.Hour)
	require.NoError(t, err)

	token, err := auth.Decode(tokenString)
	require.NoError(t, err)

	claims, err := token.AsMap(context.Background())
	require.NoError(t, err)

	got, err := GetUserIDFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestGetUserIDFromClaimsRejectsBadClaims(t *testing.T) {
	_, err := GetUserIDFromClaims(map[string]interface{}{})
	assert.Error(t, err)

	_, err = GetUserIDFromClaims(map[string]interface{}{UserIDClaim: 42})
	assert.Error(t, err)

	_, err = GetUserIDFromClaims(map[string]interface{}{UserIDClaim: "not-a-uuid"})
	assert.Error(t, err)
}

package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowdfund/crowdfund-gobackend/internal/models"
)

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret")

	token, err := svc.Generate("507f1f77bcf86cd799439011", models.RoleUser, "jane@example.com", "Jane", "555")
	require.NoError(t, err)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "507f1f77bcf86cd799439011", claims.UserID)
	assert.Equal(t, models.RoleUser, claims.Role)
	assert.Equal(t, "555", claims.Phone)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestTokenService_Rejects(t *testing.T) {
	svc := NewTokenService("test-secret")

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewTokenService("other").Generate("id", models.RoleAdmin, "a@b.c", "A", "")
		require.NoError(t, err)
		_, err = svc.Parse(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		old := NewTokenService("test-secret")
		old.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
		token, err := old.Generate("id", models.RoleUser, "a@b.c", "A", "")
		require.NoError(t, err)
		_, err = svc.Parse(token)
		assert.Error(t, err)
	})

	t.Run("unsigned", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "id"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = svc.Parse(token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Parse("not.a.token")
		assert.Error(t, err)
	})
}

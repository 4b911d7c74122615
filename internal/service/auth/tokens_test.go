package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SmoothTransact/smooth-transact-api/internal/models"
)

func newTestIssuer(t *testing.T, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	t.Helper()

	issuer, err := NewTokenIssuer(TokenIssuerConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
	})
	require.NoError(t, err, "token issuer should be created without errors")

	return issuer
}

func Test_TokenIssuer(t *testing.T) {
	t.Parallel()

	testUser := models.User{
		ID:    uuid.New(),
		Email: "user@example.com",
		Role:  models.RoleUser,
	}

	t.Run("requires both secrets", func(t *testing.T) {
		_, err := NewTokenIssuer(TokenIssuerConfig{AccessSecret: "only-access"})
		require.Error(t, err)

		_, err = NewTokenIssuer(TokenIssuerConfig{RefreshSecret: "only-refresh"})
		require.Error(t, err)
	})

	t.Run("defaults applied", func(t *testing.T) {
		issuer, err := NewTokenIssuer(TokenIssuerConfig{
			AccessSecret:  "a",
			RefreshSecret: "r",
		})
		require.NoError(t, err)

		assert.Equal(t, time.Hour, issuer.accessTTL)
		assert.Equal(t, 7*24*time.Hour, issuer.refreshTTL)
		assert.Equal(t, "HS256", issuer.alg.Alg())
	})

	t.Run("generate pair ok", func(t *testing.T) {
		issuer := newTestIssuer(t, time.Hour, 7*24*time.Hour)

		pair, err := issuer.GeneratePair(testUser)

		require.NoError(t, err)
		assert.NotEmpty(t, pair.Access.Value, "access token should not be empty")
		assert.NotEmpty(t, pair.Refresh.Value, "refresh token should not be empty")
		assert.NotEqual(t, pair.Access.Value, pair.Refresh.Value)
		assert.WithinDuration(t, time.Now().Add(time.Hour), pair.Access.ExpiresAt, time.Second)
		assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), pair.Refresh.ExpiresAt, time.Second)
	})

	t.Run("access token has correct claims", func(t *testing.T) {
		issuer := newTestIssuer(t, time.Hour, 7*24*time.Hour)

		pair, err := issuer.GeneratePair(testUser)
		require.NoError(t, err)

		// Parse and verify the access token
		token, err := jwt.ParseWithClaims(pair.Access.Value, &TokenClaims{}, func(token *jwt.Token) (any, error) {
			return []byte("access-secret"), nil
		})
		require.NoError(t, err)
		require.True(t, token.Valid, "access token should be valid")

		claims, ok := token.Claims.(*TokenClaims)
		require.True(t, ok, "claims should be of type TokenClaims")
		assert.Equal(t, testUser.ID.String(), claims.Subject, "subject should be the user id")
		assert.Equal(t, models.RoleUser, claims.Role, "role claim should match")
		assert.NotEmpty(t, claims.ID, "token has to has jti")
		assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Second, "issued at should be close to now")
		assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Second)
	})

	t.Run("tokens signed with distinct secrets", func(t *testing.T) {
		issuer := newTestIssuer(t, time.Hour, 7*24*time.Hour)

		pair, err := issuer.GeneratePair(testUser)
		require.NoError(t, err)

		_, err = issuer.ParseAccess(pair.Refresh.Value)
		require.Error(t, err, "refresh token should not verify against access secret")

		_, err = issuer.ParseRefresh(pair.Access.Value)
		require.Error(t, err, "access token should not verify against refresh secret")
	})

	t.Run("parse rejects expired token", func(t *testing.T) {
		issuer := newTestIssuer(t, -time.Minute, -time.Minute)

		pair, err := issuer.GeneratePair(testUser)
		require.NoError(t, err)

		_, err = issuer.ParseAccess(pair.Access.Value)
		require.Error(t, err, "expired access token should be rejected")

		_, err = issuer.ParseRefresh(pair.Refresh.Value)
		require.Error(t, err, "expired refresh token should be rejected")
	})

	t.Run("parse rejects tampered token", func(t *testing.T) {
		issuer := newTestIssuer(t, time.Hour, 7*24*time.Hour)

		pair, err := issuer.GeneratePair(testUser)
		require.NoError(t, err)

		_, err = issuer.ParseAccess(pair.Access.Value + "x")
		require.Error(t, err)
	})

	t.Run("several tokens different", func(t *testing.T) {
		issuer := newTestIssuer(t, time.Hour, 7*24*time.Hour)

		pair1, err := issuer.GeneratePair(testUser)
		require.NoError(t, err)

		pair2, err := issuer.GeneratePair(testUser)
		require.NoError(t, err)

		assert.NotEqual(t, pair1.Refresh.Value, pair2.Refresh.Value, "refresh tokens should be different")
		assert.NotEqual(t, pair1.Access.Value, pair2.Access.Value, "access tokens should be different")
	})
}

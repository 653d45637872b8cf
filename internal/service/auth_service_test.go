package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-pos/internal/testutil/memstore"
)

func TestLogin(t *testing.T) {
	f := newFixture(t)
	auth := NewAuthService(f.store, "test-secret", 3*time.Hour)
	require.NoError(t, auth.EnsureAdmin(f.ctx, "admin", "s3cret"))

	resp, err := auth.Login(f.ctx, Credentials{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	claims := &JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(resp.Message, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)
	assert.Equal(t, "admin", claims.Username)
	assert.WithinDuration(t, time.Now().Add(3*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	auth := NewAuthService(f.store, "test-secret", time.Hour)
	require.NoError(t, auth.EnsureAdmin(f.ctx, "admin", "s3cret"))

	_, err := auth.Login(f.ctx, Credentials{Username: "admin", Password: "wrong"})
	requireServiceError(t, err, http.StatusUnauthorized, "User not found.")

	_, err = auth.Login(f.ctx, Credentials{Username: "ghost", Password: "s3cret"})
	requireServiceError(t, err, http.StatusUnauthorized, "User not found.")
}

func TestEnsureAdminKeepsExistingPassword(t *testing.T) {
	store := memstore.New()
	auth := NewAuthService(store, "secret", time.Hour)
	ctx := context.Background()

	require.NoError(t, auth.EnsureAdmin(ctx, "admin", "first"))
	require.NoError(t, auth.EnsureAdmin(ctx, "admin", "second"))
	require.NoError(t, auth.EnsureAdmin(ctx, "", ""))

	_, err := auth.Login(ctx, Credentials{Username: "admin", Password: "first"})
	require.NoError(t, err)
	_, err = auth.Login(ctx, Credentials{Username: "admin", Password: "second"})
	requireServiceError(t, err, http.StatusUnauthorized, "")
}

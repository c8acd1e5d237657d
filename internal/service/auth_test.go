package service

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadkeep/threadkeep-server/internal/auth"
	"github.com/threadkeep/threadkeep-server/internal/errors"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func newAuthService(t *testing.T, e *testEnv) *AuthService {
	t.Helper()

	tokens, err := auth.NewTokenService(testKeyHex, 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)
	return NewAuthService(e.store, tokens, slog.Default())
}

func TestAuth_RegisterLoginRoundTrip(t *testing.T) {
	e := newTestEnv(t)
	svc := newAuthService(t, e)
	ctx := context.Background()

	user, err := svc.Register(ctx, "mun@example.com", "correct horse battery", "Mun")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "correct horse battery", user.PasswordHash)

	// Email comparison is case-insensitive on login.
	loggedIn, pair, err := svc.Login(ctx, "MUN@Example.COM", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, int64((15 * time.Minute).Seconds()), pair.ExpiresIn)

	claims, err := svc.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestAuth_RegisterDuplicateEmail(t *testing.T) {
	e := newTestEnv(t)
	svc := newAuthService(t, e)
	ctx := context.Background()

	_, err := svc.Register(ctx, "dup@example.com", "password one", "First")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "DUP@example.com", "password two", "Second")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConflict))
}

func TestAuth_InvalidCredentialsParity(t *testing.T) {
	e := newTestEnv(t)
	svc := newAuthService(t, e)
	ctx := context.Background()

	_, err := svc.Register(ctx, "real@example.com", "right password", "Real")
	require.NoError(t, err)

	// Unknown email and wrong password are indistinguishable.
	_, _, errUnknown := svc.Login(ctx, "ghost@example.com", "whatever")
	_, _, errWrong := svc.Login(ctx, "real@example.com", "wrong password")

	require.Error(t, errUnknown)
	require.Error(t, errWrong)
	assert.True(t, errors.Is(errUnknown, errors.ErrInvalidCredentials))
	assert.True(t, errors.Is(errWrong, errors.ErrInvalidCredentials))
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
}

func TestAuth_RefreshRotatesToken(t *testing.T) {
	e := newTestEnv(t)
	svc := newAuthService(t, e)
	ctx := context.Background()

	user, err := svc.Register(ctx, "rotate@example.com", "a fine password", "Rotate")
	require.NoError(t, err)
	_, pair, err := svc.Login(ctx, "rotate@example.com", "a fine password")
	require.NoError(t, err)

	refreshed, newPair, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, refreshed.ID)
	assert.NotEqual(t, pair.RefreshToken, newPair.RefreshToken)

	// The pre-rotation token is dead.
	_, _, err = svc.Refresh(ctx, pair.RefreshToken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))

	// The rotated token still works.
	_, _, err = svc.Refresh(ctx, newPair.RefreshToken)
	require.NoError(t, err)
}

func TestAuth_Logout(t *testing.T) {
	e := newTestEnv(t)
	svc := newAuthService(t, e)
	ctx := context.Background()

	_, err := svc.Register(ctx, "leave@example.com", "see you later", "Leave")
	require.NoError(t, err)
	_, pair, err := svc.Login(ctx, "leave@example.com", "see you later")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, pair.RefreshToken))

	// A revoked session can no longer refresh.
	_, _, err = svc.Refresh(ctx, pair.RefreshToken)
	require.Error(t, err)

	// Logging out an unknown token is a silent no-op.
	require.NoError(t, svc.Logout(ctx, strings.Repeat("A", 43)+"="))
}

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/threadkeep/threadkeep-server/internal/auth"
	"github.com/threadkeep/threadkeep-server/internal/domain"
	"github.com/threadkeep/threadkeep-server/internal/errors"
	"github.com/threadkeep/threadkeep-server/internal/id"
	"github.com/threadkeep/threadkeep-server/internal/store"
	"github.com/threadkeep/threadkeep-server/internal/store/sqlite"
)

// AuthService handles registration, login, refresh token rotation, and
// logout. Access tokens are PASETO v4.local; refresh tokens are opaque
// random strings stored hashed in the sessions table and rotated on use.
type AuthService struct {
	store  *sqlite.Store
	tokens *auth.TokenService
	logger *slog.Logger
}

// NewAuthService creates an auth service.
func NewAuthService(store *sqlite.Store, tokens *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:  store,
		tokens: tokens,
		logger: logger,
	}
}

// TokenPair is what a successful login or refresh hands back.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // access token lifetime in seconds
}

// Register creates a new account. Email uniqueness is case-insensitive.
func (s *AuthService) Register(ctx context.Context, email, password, displayName string) (*domain.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, errors.Validation("password is invalid")
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "generate user id")
	}

	now := time.Now()
	user := &domain.User{
		ID:           userID,
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, errors.Conflict("email already registered")
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "create user")
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies credentials and opens a new session. Unknown email and
// wrong password return the same INVALID_CREDENTIALS error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, errors.InvalidCredentials("invalid email or password")
		}
		return nil, nil, errors.Wrap(err, errors.CodeInternal, "get user")
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, password)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeInternal, "verify password")
	}
	if !ok {
		return nil, nil, errors.InvalidCredentials("invalid email or password")
	}

	pair, err := s.openSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	user.LastLoginAt = &now
	user.UpdatedAt = now
	if err := s.store.UpdateUser(ctx, user); err != nil {
		s.logger.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a new access token, rotating
// the refresh token in place. Expired and revoked sessions both come back
// TOKEN_EXPIRED.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.User, *TokenPair, error) {
	sess, err := s.store.GetSessionByTokenHash(ctx, auth.HashRefreshToken(refreshToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, errors.Unauthorized("invalid refresh token")
		}
		return nil, nil, errors.Wrap(err, errors.CodeInternal, "get session")
	}

	if !sess.IsActive(time.Now()) {
		return nil, nil, errors.TokenExpired("session expired")
	}

	user, err := s.store.GetUser(ctx, sess.UserID)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeInternal, "get user")
	}

	accessToken, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeInternal, "generate access token")
	}

	newRefresh, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeInternal, "generate refresh token")
	}

	expiresAt := time.Now().Add(s.tokens.RefreshTokenDuration())
	if err := s.store.RotateSession(ctx, sess.ID, auth.HashRefreshToken(newRefresh), expiresAt); err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeInternal, "rotate session")
	}

	return user, &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		ExpiresIn:    int64(s.tokens.AccessTokenDuration().Seconds()),
	}, nil
}

// Logout revokes the session holding the refresh token. Logging out with an
// unknown token succeeds silently; there is nothing useful to report.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	sess, err := s.store.GetSessionByTokenHash(ctx, auth.HashRefreshToken(refreshToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return errors.Wrap(err, errors.CodeInternal, "get session")
	}

	if err := s.store.RevokeSession(ctx, sess.ID, time.Now()); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "revoke session")
	}

	s.logger.Info("user logged out", "user_id", sess.UserID)
	return nil
}

// VerifyAccessToken validates a bearer token and returns its claims. Used by
// the API layer to resolve the acting user on every authenticated request.
func (s *AuthService) VerifyAccessToken(token string) (*auth.AccessClaims, error) {
	claims, err := s.tokens.VerifyAccessToken(token)
	if err != nil {
		return nil, errors.Unauthorized("invalid or expired token")
	}
	return claims, nil
}

// openSession creates a session row and mints the token pair.
func (s *AuthService) openSession(ctx context.Context, user *domain.User) (*TokenPair, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "generate access token")
	}

	refreshToken, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "generate refresh token")
	}

	now := time.Now()
	sess := &domain.Session{
		ID:               uuid.NewString(),
		UserID:           user.ID,
		RefreshTokenHash: auth.HashRefreshToken(refreshToken),
		CreatedAt:        now,
		ExpiresAt:        now.Add(s.tokens.RefreshTokenDuration()),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "create session")
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.tokens.AccessTokenDuration().Seconds()),
	}, nil
}

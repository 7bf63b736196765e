package services

import (
	"context"
	"errors"
	"time"

	"github.com/hellosocial/backend/internal/apperrors"
	"github.com/hellosocial/backend/internal/repositories"
	"github.com/hellosocial/backend/internal/session"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// LoginService owns login and logout semantics: at most one live session per
// user, credentials checked strictly before the registry is consulted.
type LoginService struct {
	users    repositories.UserRepository
	registry session.Registry
	ttl      time.Duration // zero means sessions never expire
}

// NewLoginService creates a new LoginService
func NewLoginService(users repositories.UserRepository, registry session.Registry, ttl time.Duration) *LoginService {
	return &LoginService{
		users:    users,
		registry: registry,
		ttl:      ttl,
	}
}

// Login verifies the credentials and, only then, tries to open a session.
// A failed credential check must never create, replace, or disturb an
// existing session, so the registry is not touched until the password
// matches. Returns the session token on success.
func (s *LoginService) Login(ctx context.Context, userID, password string) (string, error) {
	user, err := s.users.GetUserByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return "", apperrors.ErrIncorrectCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", apperrors.ErrIncorrectCredentials
	}

	token, err := session.GenerateToken()
	if err != nil {
		return "", err
	}

	sess := session.Session{
		Token:     token,
		UserID:    user.UserID,
		CreatedAt: time.Now(),
	}
	if s.ttl > 0 {
		sess.ExpiresAt = sess.CreatedAt.Add(s.ttl)
	}

	if err := s.registry.PutIfAbsent(ctx, sess); err != nil {
		return "", err
	}

	logrus.WithField("user_id", user.UserID).Info("session opened")
	return token, nil
}

// Logout removes the session bound to token. Unknown or already-removed
// tokens succeed silently.
func (s *LoginService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.registry.DeleteByToken(ctx, token)
}

// LogoutUser removes the user's live session, if any. Used when a password
// change invalidates the current login.
func (s *LoginService) LogoutUser(ctx context.Context, userID string) error {
	return s.registry.DeleteByUser(ctx, userID)
}

// ResolveCurrentUser returns the user id bound to token, or
// ErrUnauthenticated when no live session matches.
func (s *LoginService) ResolveCurrentUser(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", apperrors.ErrUnauthenticated
	}
	sess, err := s.registry.GetByToken(ctx, token)
	if err != nil {
		return "", err
	}
	if sess == nil {
		return "", apperrors.ErrUnauthenticated
	}
	return sess.UserID, nil
}

// Package session implements the registry that holds at most one live
// session per user. The registry is an injectable component constructed at
// process start; nothing in it is package-global state.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

// Session represents one user's authenticated presence.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty"` // zero means no expiry
}

// Expired reports whether the session has a TTL and it has passed.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Registry stores live sessions keyed both by token and by user.
//
// PutIfAbsent must be atomic per user id: of two concurrent calls for the
// same user, exactly one succeeds and the other fails with
// apperrors.ErrDuplicateSession, leaving the winner's session untouched.
// GetByToken returns (nil, nil) when no live session matches. The delete
// operations are idempotent.
type Registry interface {
	PutIfAbsent(ctx context.Context, s Session) error
	GetByToken(ctx context.Context, token string) (*Session, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// GenerateToken returns a session token with 256 bits of entropy,
// base64url encoded.
func GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session: failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

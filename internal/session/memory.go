package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hellosocial/backend/internal/apperrors"
)

// MemoryRegistry is the in-process Registry. Entries live for the process
// lifetime unless removed by logout or expired by TTL; nothing is persisted
// across restarts.
type MemoryRegistry struct {
	mu      sync.Mutex
	byToken map[string]Session
	byUser  map[string]string // user id -> token
	now     func() time.Time
}

// NewMemoryRegistry creates an empty in-memory session registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		byToken: make(map[string]Session),
		byUser:  make(map[string]string),
		now:     time.Now,
	}
}

// PutIfAbsent registers the session unless the user already has a live one.
// The check and the insert happen under one lock, so concurrent logins for
// the same user resolve to exactly one winner.
func (m *MemoryRegistry) PutIfAbsent(_ context.Context, s Session) error {
	if s.Token == "" || s.UserID == "" {
		return fmt.Errorf("session: missing token or user id")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if token, ok := m.byUser[s.UserID]; ok {
		if existing, live := m.byToken[token]; live && !existing.Expired(m.now()) {
			return apperrors.ErrDuplicateSession
		}
		// expired leftover, drop it
		delete(m.byToken, token)
		delete(m.byUser, s.UserID)
	}

	m.byToken[s.Token] = s
	m.byUser[s.UserID] = s.Token
	return nil
}

// GetByToken returns the live session for token, or nil when none matches.
func (m *MemoryRegistry) GetByToken(_ context.Context, token string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.byToken[token]
	if !ok {
		return nil, nil
	}
	if s.Expired(m.now()) {
		delete(m.byToken, token)
		delete(m.byUser, s.UserID)
		return nil, nil
	}
	return &s, nil
}

// DeleteByToken removes the session bound to token. Unknown tokens are a no-op.
func (m *MemoryRegistry) DeleteByToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.byToken[token]
	if !ok {
		return nil
	}
	delete(m.byToken, token)
	if m.byUser[s.UserID] == token {
		delete(m.byUser, s.UserID)
	}
	return nil
}

// DeleteByUser removes the user's live session, if any.
func (m *MemoryRegistry) DeleteByUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, ok := m.byUser[userID]
	if !ok {
		return nil
	}
	delete(m.byUser, userID)
	delete(m.byToken, token)
	return nil
}

package services

import (
	"context"
	"sync"
	"testing"

	"github.com/hellosocial/backend/internal/apperrors"
	"github.com/hellosocial/backend/internal/models"
	"github.com/hellosocial/backend/internal/repositories"
	"github.com/hellosocial/backend/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newLoginService(t *testing.T) (*LoginService, repositories.UserRepository) {
	t.Helper()
	users := repositories.NewPostgresUserRepository(newTestDB(t))
	return NewLoginService(users, session.NewMemoryRegistry(), 0), users
}

func createUser(t *testing.T, users repositories.UserRepository, userID, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, users.CreateUser(context.Background(), &models.User{
		UserID:   userID,
		Password: string(hash),
		Email:    userID + "@example.com",
	}))
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _ := newLoginService(t)

	_, err := svc.Login(context.Background(), "ghost", "whatever1")
	assert.ErrorIs(t, err, apperrors.ErrIncorrectCredentials)
}

func TestLoginWrongPasswordDoesNotTouchExistingSession(t *testing.T) {
	svc, users := newLoginService(t)
	ctx := context.Background()
	createUser(t, users, "alice", "password1")

	token, err := svc.Login(ctx, "alice", "password1")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, apperrors.ErrIncorrectCredentials)

	// the live session survived the failed attempt
	userID, err := svc.ResolveCurrentUser(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", userID)
}

func TestLoginRejectsSecondSession(t *testing.T) {
	svc, users := newLoginService(t)
	ctx := context.Background()
	createUser(t, users, "alice", "password1")

	t1, err := svc.Login(ctx, "alice", "password1")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice", "password1")
	assert.ErrorIs(t, err, apperrors.ErrDuplicateSession)

	require.NoError(t, svc.Logout(ctx, t1))

	t2, err := svc.Login(ctx, "alice", "password1")
	require.NoError(t, err)
	assert.NotEqual(t, t1, t2)
}

func TestConcurrentLoginsExactlyOneWins(t *testing.T) {
	svc, users := newLoginService(t)
	ctx := context.Background()
	createUser(t, users, "alice", "password1")

	const attempts = 8
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Login(ctx, "alice", "password1")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins, duplicates := 0, 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case err == apperrors.ErrDuplicateSession:
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, attempts-1, duplicates)
}

func TestLogoutIsIdempotent(t *testing.T) {
	svc, users := newLoginService(t)
	ctx := context.Background()
	createUser(t, users, "alice", "password1")

	require.NoError(t, svc.Logout(ctx, "never-issued"))
	require.NoError(t, svc.Logout(ctx, ""))

	token, err := svc.Login(ctx, "alice", "password1")
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, token))
	require.NoError(t, svc.Logout(ctx, token))
}

func TestResolveCurrentUser(t *testing.T) {
	svc, users := newLoginService(t)
	ctx := context.Background()
	createUser(t, users, "alice", "password1")

	_, err := svc.ResolveCurrentUser(ctx, "")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	_, err = svc.ResolveCurrentUser(ctx, "bogus")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	token, err := svc.Login(ctx, "alice", "password1")
	require.NoError(t, err)

	userID, err := svc.ResolveCurrentUser(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", userID)

	require.NoError(t, svc.Logout(ctx, token))

	_, err = svc.ResolveCurrentUser(ctx, token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestLogoutUserInvalidatesToken(t *testing.T) {
	svc, users := newLoginService(t)
	ctx := context.Background()
	createUser(t, users, "alice", "password1")

	token, err := svc.Login(ctx, "alice", "password1")
	require.NoError(t, err)

	require.NoError(t, svc.LogoutUser(ctx, "alice"))

	_, err = svc.ResolveCurrentUser(ctx, token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

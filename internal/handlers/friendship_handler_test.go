package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/hellosocial/backend/internal/middleware"
	"github.com/hellosocial/backend/internal/models"
	"github.com/hellosocial/backend/internal/repositories"
	"github.com/hellosocial/backend/internal/services"
	"github.com/hellosocial/backend/internal/session"
	"github.com/hellosocial/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// fakeFileStore keeps uploaded assets in a map, standing in for GridFS.
type fakeFileStore struct {
	files map[string][]byte
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{files: make(map[string][]byte)}
}

func (f *fakeFileStore) Save(_ context.Context, name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.files[name] = data
	return name, nil
}

func (f *fakeFileStore) Delete(_ context.Context, id string) error {
	delete(f.files, id)
	return nil
}

func newTestServer(t *testing.T) (*echo.Echo, *fakeFileStore) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Relationship{}))

	userRepo := repositories.NewPostgresUserRepository(db)
	relationshipRepo := repositories.NewPostgresRelationshipRepository(db)
	registry := session.NewMemoryRegistry()
	loginService := services.NewLoginService(userRepo, registry, 0)
	friendshipService := services.NewFriendshipService(relationshipRepo)
	fileStore := newFakeFileStore()

	e := echo.New()
	e.Validator = validators.NewValidator()

	sessionAuth := middleware.SessionAuthMiddleware(loginService)

	users := e.Group("/users")
	userHandler := NewUserHandler(userRepo, loginService, fileStore)
	userHandler.RegisterUserRoutes(users)

	account := users.Group("/account")
	account.Use(sessionAuth)
	userHandler.RegisterAccountRoutes(account)

	myFriends := e.Group("/my-friends")
	myFriends.Use(sessionAuth)
	friendshipHandler := NewFriendshipHandler(friendshipService, userRepo)
	friendshipHandler.RegisterFriendshipRoutes(myFriends)

	// seed accounts the tests log in with
	for _, id := range []string{"alice", "bob", "carol"} {
		hash, err := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.MinCost)
		require.NoError(t, err)
		require.NoError(t, userRepo.CreateUser(context.Background(), &models.User{
			UserID:   id,
			Password: string(hash),
			Email:    id + "@example.com",
		}))
	}

	return e, fileStore
}

func doJSON(e *echo.Echo, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func loginAs(t *testing.T, e *echo.Echo, userID string) string {
	t.Helper()
	rec := doJSON(e, http.MethodPost, "/users/login", "", models.LoginRequest{UserID: userID, Password: "password1"})
	require.Equal(t, http.StatusOK, rec.Code, "login failed: %s", rec.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["token"])
	return resp["token"]
}

func TestFriendRoutesRequireSession(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/my-friends/friend-requests/to/bob", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(e, http.MethodDelete, "/my-friends/bob", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSendRequestValidation(t *testing.T) {
	e, _ := newTestServer(t)
	alice := loginAs(t, e, "alice")

	rec := doJSON(e, http.MethodPost, "/my-friends/friend-requests/to/alice", alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodPost, "/my-friends/friend-requests/to/nobody", alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAcceptAndUnfriendScenario(t *testing.T) {
	e, _ := newTestServer(t)
	alice := loginAs(t, e, "alice")
	bob := loginAs(t, e, "bob")

	// alice sends to bob
	rec := doJSON(e, http.MethodPost, "/my-friends/friend-requests/to/bob", alice, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	// bob accepts
	rec = doJSON(e, http.MethodPut, "/my-friends/friend-requests/from/alice/acceptance", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// alice unfriends bob
	rec = doJSON(e, http.MethodDelete, "/my-friends/bob", alice, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// bob can send to alice again
	rec = doJSON(e, http.MethodPost, "/my-friends/friend-requests/to/alice", bob, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestDuplicateThenRejectScenario(t *testing.T) {
	e, _ := newTestServer(t)
	alice := loginAs(t, e, "alice")
	bob := loginAs(t, e, "bob")

	rec := doJSON(e, http.MethodPost, "/my-friends/friend-requests/to/bob", alice, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	// a second send fails in both directions
	rec = doJSON(e, http.MethodPost, "/my-friends/friend-requests/to/bob", alice, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = doJSON(e, http.MethodPost, "/my-friends/friend-requests/to/alice", bob, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// bob rejects, pair returns to none
	rec = doJSON(e, http.MethodDelete, "/my-friends/friend-requests/from/alice/rejection", bob, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(e, http.MethodPost, "/my-friends/friend-requests/to/bob", alice, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCancelScenario(t *testing.T) {
	e, _ := newTestServer(t)
	alice := loginAs(t, e, "alice")
	bob := loginAs(t, e, "bob")

	rec := doJSON(e, http.MethodPost, "/my-friends/friend-requests/to/bob", alice, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	// the target cannot cancel, only reject
	rec = doJSON(e, http.MethodDelete, "/my-friends/friend-requests/to/alice", bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(e, http.MethodDelete, "/my-friends/friend-requests/to/bob", alice, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// nothing left to cancel
	rec = doJSON(e, http.MethodDelete, "/my-friends/friend-requests/to/bob", alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRejectWithoutRequest(t *testing.T) {
	e, _ := newTestServer(t)
	bob := loginAs(t, e, "bob")

	rec := doJSON(e, http.MethodDelete, "/my-friends/friend-requests/from/alice/rejection", bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(e, http.MethodPut, "/my-friends/friend-requests/from/alice/acceptance", bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnfriendRequiresAcceptedFriendship(t *testing.T) {
	e, _ := newTestServer(t)
	alice := loginAs(t, e, "alice")
	carol := loginAs(t, e, "carol")

	rec := doJSON(e, http.MethodDelete, "/my-friends/carol", alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(e, http.MethodPost, "/my-friends/friend-requests/to/carol", alice, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	// still only pending
	rec = doJSON(e, http.MethodDelete, "/my-friends/carol", alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(e, http.MethodPut, "/my-friends/friend-requests/from/alice/acceptance", carol, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// direction independent: carol unfriends
	rec = doJSON(e, http.MethodDelete, "/my-friends/alice", carol, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSendRequestTokenViaCookie(t *testing.T) {
	e, _ := newTestServer(t)
	alice := loginAs(t, e, "alice")

	req := httptest.NewRequest(http.MethodPost, "/my-friends/friend-requests/to/bob", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: alice})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code, fmt.Sprintf("body: %s", rec.Body.String()))
}

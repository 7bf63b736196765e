package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/hellosocial/backend/internal/apperrors"
	"github.com/hellosocial/backend/internal/middleware"
	"github.com/hellosocial/backend/internal/models"
	"github.com/hellosocial/backend/internal/repositories"
	"github.com/hellosocial/backend/internal/services"
	"github.com/hellosocial/backend/pkg/filestore"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// UserHandler handles account and session HTTP requests
type UserHandler struct {
	userRepository repositories.UserRepository
	loginService   *services.LoginService
	fileStore      filestore.Store
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, loginService *services.LoginService, fileStore filestore.Store) *UserHandler {
	return &UserHandler{
		userRepository: userRepo,
		loginService:   loginService,
		fileStore:      fileStore,
	}
}

// RegisterUserRoutes registers the unprotected account routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.POST("/signup", h.SignUp)
	g.GET("/idcheck", h.IDCheck)
	g.POST("/login", h.Login)
	g.GET("/logout", h.Logout)
}

// RegisterAccountRoutes registers routes that require a live session
func (h *UserHandler) RegisterAccountRoutes(g *echo.Group) {
	g.PUT("/password", h.UpdatePassword)
	g.PUT("", h.UpdateProfile)
}

// SignUp handles account registration
func (h *UserHandler) SignUp(c echo.Context) error {
	var req models.SignUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := &models.User{
		UserID:   req.UserID,
		Password: string(hashedPassword),
		Email:    req.Email,
		Country:  req.Country,
	}

	if err := h.userRepository.CreateUser(c.Request().Context(), user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateUserID) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusCreated)
}

// IDCheck reports whether a user id is still available
func (h *UserHandler) IDCheck(c echo.Context) error {
	userID := c.QueryParam("userId")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Query parameter 'userId' is required")
	}

	taken, err := h.userRepository.IsUserIDTaken(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if taken {
		return c.NoContent(http.StatusConflict)
	}
	return c.NoContent(http.StatusOK)
}

// Login verifies credentials and opens a session. Incorrect credentials map
// to 404 and a duplicate live session to 401, so clients can tell the cases
// apart without parsing messages.
func (h *UserHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, err := h.loginService.Login(c.Request().Context(), req.UserID, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrIncorrectCredentials):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, apperrors.ErrDuplicateSession):
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})

	return c.JSON(http.StatusOK, echo.Map{"token": token})
}

// Logout closes the current session. Always succeeds, even for tokens that
// never resolved to a session.
func (h *UserHandler) Logout(c echo.Context) error {
	token := middleware.TokenFromRequest(c)

	if err := h.loginService.Logout(c.Request().Context(), token); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	return c.NoContent(http.StatusNoContent)
}

// UpdatePassword changes the current user's password and logs them out, so
// the next request has to authenticate with the new password.
func (h *UserHandler) UpdatePassword(c echo.Context) error {
	userID := c.Get(middleware.ContextUserIDKey).(string)

	var req models.PasswordUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByUserID(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Authenticated user not found in database")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Current password does not match")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	if err := h.userRepository.UpdatePassword(c.Request().Context(), userID, string(hashedPassword)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.loginService.LogoutUser(c.Request().Context(), userID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusOK)
}

// UpdateProfile updates profile fields and, when a profileImage part is
// present, replaces the stored image through the file store.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID := c.Get(middleware.ContextUserIDKey).(string)

	var req models.ProfileUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByUserID(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Authenticated user not found in database")
	}

	if fileHeader, err := c.FormFile("profileImage"); err == nil {
		src, err := fileHeader.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Failed to read profile image")
		}
		defer src.Close()

		storedName := userID + "-" + time.Now().UTC().Format("20060102150405") + "-" + fileHeader.Filename
		fileID, err := h.fileStore.Save(c.Request().Context(), storedName, src)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Failed to upload profile image")
		}

		if user.ProfileImageID != "" {
			// best effort: an orphaned old image must not fail the update
			_ = h.fileStore.Delete(c.Request().Context(), user.ProfileImageID)
		}
		user.ProfileImageID = fileID
		user.ProfileImageName = fileHeader.Filename
	}

	if req.AboutMe != "" {
		user.AboutMe = req.AboutMe
	}
	if req.Country != "" {
		user.Country = req.Country
	}

	if err := h.userRepository.UpdateUser(c.Request().Context(), user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, user)
}

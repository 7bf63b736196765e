package handlers

import (
	"errors"
	"net/http"

	"github.com/hellosocial/backend/internal/apperrors"
	"github.com/hellosocial/backend/internal/middleware"
	"github.com/hellosocial/backend/internal/repositories"
	"github.com/hellosocial/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FriendshipHandler handles HTTP requests for the friend relationship
// transitions
type FriendshipHandler struct {
	friendshipService *services.FriendshipService
	userRepository    repositories.UserRepository // to verify the target account exists
}

// NewFriendshipHandler creates a new FriendshipHandler
func NewFriendshipHandler(friendshipService *services.FriendshipService, userRepo repositories.UserRepository) *FriendshipHandler {
	return &FriendshipHandler{
		friendshipService: friendshipService,
		userRepository:    userRepo,
	}
}

// RegisterFriendshipRoutes registers friendship routes on the /my-friends group
func (h *FriendshipHandler) RegisterFriendshipRoutes(g *echo.Group) {
	g.POST("/friend-requests/to/:targetId", h.SendFriendRequest)
	g.DELETE("/friend-requests/to/:targetId", h.CancelFriendRequest)
	g.PUT("/friend-requests/from/:targetId/acceptance", h.AcceptFriendRequest)
	g.DELETE("/friend-requests/from/:targetId/rejection", h.RejectFriendRequest)
	g.DELETE("/:targetId", h.Unfriend) // unfriend
}

// SendFriendRequest handles sending a friend request to the path target
func (h *FriendshipHandler) SendFriendRequest(c echo.Context) error {
	userID := c.Get(middleware.ContextUserIDKey).(string)
	targetID := c.Param("targetId")

	// Check if the target account exists
	if _, err := h.userRepository.GetUserByUserID(c.Request().Context(), targetID); err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Target user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.friendshipService.SendRequest(c.Request().Context(), userID, targetID); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrSelfReference):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, apperrors.ErrDuplicateRequest):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.NoContent(http.StatusCreated)
}

// CancelFriendRequest withdraws a request the current user sent
func (h *FriendshipHandler) CancelFriendRequest(c echo.Context) error {
	userID := c.Get(middleware.ContextUserIDKey).(string)
	targetID := c.Param("targetId")

	if err := h.friendshipService.CancelRequest(c.Request().Context(), userID, targetID); err != nil {
		if errors.Is(err, apperrors.ErrRelationshipNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}

// AcceptFriendRequest accepts a request sent to the current user
func (h *FriendshipHandler) AcceptFriendRequest(c echo.Context) error {
	userID := c.Get(middleware.ContextUserIDKey).(string)
	targetID := c.Param("targetId")

	if err := h.friendshipService.AcceptRequest(c.Request().Context(), userID, targetID); err != nil {
		if errors.Is(err, apperrors.ErrRelationshipNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusOK)
}

// RejectFriendRequest declines a request sent to the current user
func (h *FriendshipHandler) RejectFriendRequest(c echo.Context) error {
	userID := c.Get(middleware.ContextUserIDKey).(string)
	targetID := c.Param("targetId")

	if err := h.friendshipService.RejectRequest(c.Request().Context(), userID, targetID); err != nil {
		if errors.Is(err, apperrors.ErrRelationshipNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}

// Unfriend dissolves an accepted friendship with the path target
func (h *FriendshipHandler) Unfriend(c echo.Context) error {
	userID := c.Get(middleware.ContextUserIDKey).(string)
	targetID := c.Param("targetId")

	if err := h.friendshipService.Unfriend(c.Request().Context(), userID, targetID); err != nil {
		if errors.Is(err, apperrors.ErrRelationshipNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Friendship not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}

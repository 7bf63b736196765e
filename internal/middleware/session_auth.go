package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/hellosocial/backend/internal/apperrors"
	"github.com/hellosocial/backend/internal/services"
	"github.com/labstack/echo/v4"
)

const (
	// SessionCookieName is the cookie carrying the session token.
	SessionCookieName = "session_token"

	// ContextUserIDKey is the echo context key the resolved user id is
	// stored under for protected handlers.
	ContextUserIDKey = "userID"
)

// SessionAuthMiddleware resolves the request's session token to a user
// identity and stores it in the context. Requests without a live session are
// rejected with 401 before any protected handler runs.
func SessionAuthMiddleware(login *services.LoginService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := TokenFromRequest(c)

			userID, err := login.ResolveCurrentUser(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, apperrors.ErrUnauthenticated) {
					return echo.NewHTTPError(http.StatusUnauthorized, "No live session")
				}
				return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
			}

			c.Set(ContextUserIDKey, userID)
			return next(c)
		}
	}
}

// TokenFromRequest extracts the session token from the session cookie or,
// failing that, from a bearer Authorization header.
func TokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := c.Request().Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

package auth

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bookcross/bookcross/pkg/errcodes"
	"github.com/bookcross/bookcross/pkg/models"
	"github.com/labstack/echo/v4"
)

type Middleware struct {
	authService *Service
}

func NewMiddleware(authService *Service) *Middleware {
	return &Middleware{authService}
}

// Authenticate requires a valid session cookie belonging to an active user.
// Users that must change their password can only reach their own password
// reset route.
func (m *Middleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := sessionUser(c, m.authService)
		if err != nil {
			return err
		}

		if user.MustChangePassword && !isSelfPasswordResetRequest(c, user.ID) {
			return errcodes.PasswordResetRequired()
		}

		setUser(c, user)
		return next(c)
	}
}

// AuthenticateOptional sets the user when the request carries a valid session
// and lets anonymous requests through untouched.
func (m *Middleware) AuthenticateOptional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if user, err := sessionUser(c, m.authService); err == nil {
			setUser(c, user)
		}
		return next(c)
	}
}

// RequirePermission has to run after Authenticate.
func (m *Middleware) RequirePermission(resource, operation string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := UserFromContext(c)
			if !ok {
				return errcodes.Unauthorized("Authentication required")
			}

			if !user.HasPermission(resource, operation) {
				return errcodes.Forbidden(strings.ToUpper(operation[:1]) + operation[1:] + " access to " + resource)
			}

			return next(c)
		}
	}
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(c echo.Context) (*models.User, bool) {
	user, ok := c.Get("user").(*models.User)
	return user, ok && user != nil
}

// sessionUser resolves the active user behind the session cookie.
func sessionUser(c echo.Context, authService *Service) (*models.User, error) {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, errcodes.Unauthorized("Authentication required")
	}

	claims, err := authService.ValidateToken(cookie.Value)
	if err != nil {
		return nil, errcodes.Unauthorized("Invalid or expired token")
	}

	user, err := authService.GetUserByID(c.Request().Context(), claims.UserID)
	if err != nil {
		return nil, errcodes.Unauthorized("User not found or inactive")
	}

	return user, nil
}

func setUser(c echo.Context, user *models.User) {
	c.Set("user_id", user.ID)
	c.Set("username", user.Username)
	c.Set("user", user)
}

func isSelfPasswordResetRequest(c echo.Context, userID int) bool {
	if c.Request().Method != http.MethodPost {
		return false
	}

	path := c.Path()
	if path == "" {
		path = c.Request().URL.Path
	}
	if path != "/users/:id/reset-password" {
		return false
	}

	id, err := strconv.Atoi(c.Param("id"))
	return err == nil && id == userID
}

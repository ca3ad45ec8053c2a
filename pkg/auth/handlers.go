package auth

import (
	"net/http"

	"github.com/bookcross/bookcross/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

const (
	CookieName   = "bookcross_session"
	CookieMaxAge = TokenExpiry
)

type handler struct {
	authService *Service
}

func buildMeResponse(user *models.User) MeResponse {
	resp := MeResponse{
		ID:                 user.ID,
		Username:           user.Username,
		Email:              user.Email,
		RoleID:             user.RoleID,
		Permissions:        []string{},
		MustChangePassword: user.MustChangePassword,
	}
	if user.Role != nil {
		resp.RoleName = user.Role.Name
		for _, p := range user.Role.Permissions {
			resp.Permissions = append(resp.Permissions, p.Resource+":"+p.Operation)
		}
	}
	return resp
}

// setSessionCookie stores token in the HTTP-only session cookie. An empty
// token clears it.
func setSessionCookie(c echo.Context, token string) {
	maxAge := int(CookieMaxAge.Seconds())
	if token == "" {
		maxAge = -1
	}

	req := c.Request()
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   req.TLS != nil || req.Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteLaxMode,
	})
}

// startSession issues a token for user and responds with the user.
func (h *handler) startSession(c echo.Context, code int, user *models.User) error {
	token, err := h.authService.GenerateToken(user)
	if err != nil {
		return errors.WithStack(err)
	}
	setSessionCookie(c, token)

	return errors.WithStack(c.JSON(code, buildMeResponse(user)))
}

func (h *handler) login(c echo.Context) error {
	ctx := c.Request().Context()

	params := LoginPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.authService.Authenticate(ctx, params.Username, params.Password)
	if err != nil {
		return errors.WithStack(err)
	}

	return h.startSession(c, http.StatusOK, user)
}

func (h *handler) logout(c echo.Context) error {
	setSessionCookie(c, "")
	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

// me works for users that still have to change their password, which is why
// it doesn't sit behind Authenticate.
func (h *handler) me(c echo.Context) error {
	user, err := sessionUser(c, h.authService)
	if err != nil {
		return err
	}
	return errors.WithStack(c.JSON(http.StatusOK, buildMeResponse(user)))
}

func (h *handler) status(c echo.Context) error {
	ctx := c.Request().Context()

	count, err := h.authService.CountUsers(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, StatusResponse{
		NeedsSetup: count == 0,
	}))
}

func (h *handler) setup(c echo.Context) error {
	ctx := c.Request().Context()

	params := SetupPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.authService.CreateFirstAdmin(ctx, params.Username, params.Email, params.Password)
	if err != nil {
		return errors.WithStack(err)
	}

	logger.FromContext(ctx).Info("initial admin created", logger.Data{"user_id": user.ID})

	return h.startSession(c, http.StatusCreated, user)
}

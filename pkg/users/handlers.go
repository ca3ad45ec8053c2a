package users

import (
	"net/http"
	"strconv"

	"github.com/bookcross/bookcross/pkg/errcodes"
	"github.com/bookcross/bookcross/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

type handler struct {
	userService *Service
}

type listResponse struct {
	Users []*models.User `json:"users"`
	Total int            `json:"total"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// targetID reads the :id path param. Anything that isn't a number can't name
// a user.
func targetID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, errcodes.NotFound("User")
	}
	return id, nil
}

func currentUser(c echo.Context) (*models.User, error) {
	user, ok := c.Get("user").(*models.User)
	if !ok {
		return nil, errcodes.Unauthorized("Authentication required")
	}
	return user, nil
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListUsersQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	users, total, err := h.userService.List(ctx, ListOptions(params))
	if err != nil {
		return err
	}
	return errors.WithStack(c.JSON(http.StatusOK, listResponse{users, total}))
}

func (h *handler) retrieve(c echo.Context) error {
	id, err := targetID(c)
	if err != nil {
		return err
	}
	user, err := h.userService.Retrieve(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return errors.WithStack(c.JSON(http.StatusOK, user))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateUserPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.userService.Create(ctx, CreateUserOptions(params))
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Info("user created", logger.Data{"user_id": user.ID, "role_id": user.RoleID})
	return errors.WithStack(c.JSON(http.StatusCreated, user))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := targetID(c)
	if err != nil {
		return err
	}
	params := UpdateUserPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	user, err := h.userService.Retrieve(ctx, id)
	if err != nil {
		return err
	}

	columns := params.apply(user)
	if err := h.userService.Update(ctx, user, UpdateOptions{Columns: columns}); err != nil {
		return err
	}

	user, err = h.userService.Retrieve(ctx, id)
	if err != nil {
		return err
	}
	return errors.WithStack(c.JSON(http.StatusOK, user))
}

// resetPassword lets anyone change their own password and admins change
// anybody's. A self reset needs the current password unless the account is
// in the forced-reset state, which the login already vouched for.
func (h *handler) resetPassword(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := targetID(c)
	if err != nil {
		return err
	}
	params := ResetPasswordPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	current, err := currentUser(c)
	if err != nil {
		return err
	}

	requireReset := params.RequirePasswordReset
	switch {
	case current.ID == id:
		if !current.MustChangePassword {
			if err := h.checkCurrentPassword(c, id, params.CurrentPassword); err != nil {
				return err
			}
		}
		requireReset = false
	case !current.IsAdmin():
		return errcodes.Forbidden("Resetting other users' passwords")
	default:
		if _, err := h.userService.Retrieve(ctx, id); err != nil {
			return err
		}
	}

	if err := h.userService.ResetPassword(ctx, id, params.NewPassword, requireReset); err != nil {
		return err
	}
	return errors.WithStack(c.JSON(http.StatusOK, messageResponse{"Password reset successfully"}))
}

func (h *handler) checkCurrentPassword(c echo.Context, id int, password *string) error {
	if password == nil || *password == "" {
		return errcodes.ValidationError("Current password is required when resetting your own password")
	}
	valid, err := h.userService.VerifyPassword(c.Request().Context(), id, *password)
	if err != nil {
		return err
	}
	if !valid {
		return errcodes.ValidationError("Current password is incorrect")
	}
	return nil
}

func (h *handler) deactivate(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := h.otherUserID(c, "deactivate")
	if err != nil {
		return err
	}
	if _, err := h.userService.Retrieve(ctx, id); err != nil {
		return err
	}
	if err := h.userService.Deactivate(ctx, id); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("user deactivated", logger.Data{"user_id": id})
	return errors.WithStack(c.JSON(http.StatusOK, messageResponse{"User deactivated successfully"}))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := h.otherUserID(c, "delete")
	if err != nil {
		return err
	}
	if err := h.userService.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("user deleted", logger.Data{"user_id": id})
	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

// otherUserID returns the :id param, refusing when it names the caller.
func (h *handler) otherUserID(c echo.Context, verb string) (int, error) {
	id, err := targetID(c)
	if err != nil {
		return 0, err
	}
	if currentID, _ := c.Get("user_id").(int); currentID == id {
		return 0, errcodes.ValidationError("You cannot " + verb + " your own account")
	}
	return id, nil
}

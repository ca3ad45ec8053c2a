package roles

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
	roleService *Service
}

func roleID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, errcodes.NotFound("Role")
	}
	return id, nil
}

func (h *handler) list(c echo.Context) error {
	params := ListRolesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	roles, total, err := h.roleService.ListRolesWithTotal(c.Request().Context(), ListRolesOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
	})
	if err != nil {
		return err
	}
	return errors.WithStack(c.JSON(http.StatusOK, map[string]interface{}{
		"roles": roles,
		"total": total,
	}))
}

func (h *handler) retrieve(c echo.Context) error {
	id, err := roleID(c)
	if err != nil {
		return err
	}
	role, err := h.roleService.RetrieveRole(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return errors.WithStack(c.JSON(http.StatusOK, role))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateRolePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	role, err := h.roleService.CreateRole(ctx, params.Name, params.Permissions)
	if err != nil {
		return err
	}
	h.logChange(c, "role created", role)
	return errors.WithStack(c.JSON(http.StatusCreated, role))
}

func (h *handler) update(c echo.Context) error {
	id, err := roleID(c)
	if err != nil {
		return err
	}
	params := UpdateRolePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	role, err := h.roleService.UpdateRole(c.Request().Context(), id, params.Name, params.Permissions)
	if err != nil {
		return err
	}
	h.logChange(c, "role updated", role)
	return errors.WithStack(c.JSON(http.StatusOK, role))
}

func (h *handler) delete(c echo.Context) error {
	id, err := roleID(c)
	if err != nil {
		return err
	}
	if err := h.roleService.DeleteRole(c.Request().Context(), id); err != nil {
		return err
	}
	logger.FromContext(c.Request().Context()).Info("role deleted", logger.Data{"role_id": id})
	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

func (h *handler) logChange(c echo.Context, msg string, role *models.Role) {
	logger.FromContext(c.Request().Context()).Info(msg, logger.Data{
		"role_id":     role.ID,
		"name":        role.Name,
		"permissions": len(role.Permissions),
	})
}

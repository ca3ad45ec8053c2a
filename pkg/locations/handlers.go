package locations

import (
	"net/http"
	"strconv"

	"github.com/bookcross/bookcross/pkg/errcodes"
	"github.com/bookcross/bookcross/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	locationService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListLocationsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	locations, total, err := h.locationService.ListLocationsWithTotal(ctx, ListLocationsOptions{
		Limit:   &params.Limit,
		Offset:  &params.Offset,
		OwnerID: params.OwnerID,
		IsLeaf:  params.IsLeaf,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Locations []*models.Location `json:"locations"`
		Total     int                `json:"total"`
	}{locations, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Location")
	}

	location, err := h.locationService.RetrieveLocation(ctx, RetrieveLocationOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, location))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()
	user := c.Get("user").(*models.User)

	params := CreateLocationPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	ownerID := user.ID
	if params.OwnerID != nil && *params.OwnerID != user.ID {
		if !user.IsAdmin() {
			return errcodes.Forbidden("Creating locations for other users")
		}
		ownerID = *params.OwnerID
	}

	location := &models.Location{
		OwnerID:  ownerID,
		Title:    params.Title,
		ParentID: params.ParentID,
		IsLeaf:   params.IsLeaf,
	}
	if err := h.locationService.CreateLocation(ctx, location); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, location))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	user := c.Get("user").(*models.User)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Location")
	}

	params := UpdateLocationPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	location, err := h.locationService.RetrieveLocation(ctx, RetrieveLocationOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}
	if location.OwnerID != user.ID && !user.IsAdmin() {
		return errcodes.Forbidden("Editing another user's location")
	}

	opts := UpdateLocationOptions{Columns: []string{}}

	if params.Title != nil && *params.Title != location.Title {
		location.Title = *params.Title
		opts.Columns = append(opts.Columns, "title")
	}
	if params.IsLeaf != nil && *params.IsLeaf != location.IsLeaf {
		location.IsLeaf = *params.IsLeaf
		opts.Columns = append(opts.Columns, "is_leaf")
	}
	if params.ParentID != nil {
		switch {
		case *params.ParentID == 0 && location.ParentID != nil:
			location.ParentID = nil
			opts.Columns = append(opts.Columns, "parent_id")
		case *params.ParentID != 0 && (location.ParentID == nil || *location.ParentID != *params.ParentID):
			parentID := *params.ParentID
			location.ParentID = &parentID
			opts.Columns = append(opts.Columns, "parent_id")
		}
	}

	if err := h.locationService.UpdateLocation(ctx, location, opts); err != nil {
		return errors.WithStack(err)
	}

	location, err = h.locationService.RetrieveLocation(ctx, RetrieveLocationOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, location))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	user := c.Get("user").(*models.User)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Location")
	}

	location, err := h.locationService.RetrieveLocation(ctx, RetrieveLocationOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}
	if location.OwnerID != user.ID && !user.IsAdmin() {
		return errcodes.Forbidden("Deleting another user's location")
	}

	if err := h.locationService.DeleteLocation(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

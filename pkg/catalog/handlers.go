package catalog

import (
	"net/http"

	"github.com/bookcross/bookcross/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const defaultPageSize = 50

type handler struct {
	catalogService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListEntriesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	entries, total, err := h.catalogService.ListAvailable(ctx, ListEntriesOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Books []*Entry `json:"books"`
		Total int      `json:"total"`
	}{entries, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

// listPage renders the available books. Visitors without an active account
// get the page with an empty list.
func (h *handler) listPage(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListPageQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	entries := []*Entry{}
	totalPages := 0
	if _, ok := auth.UserFromContext(c); ok {
		limit := defaultPageSize
		offset := (params.Page - 1) * defaultPageSize
		var total int
		var err error
		entries, total, err = h.catalogService.ListAvailable(ctx, ListEntriesOptions{Limit: &limit, Offset: &offset})
		if err != nil {
			return errors.WithStack(err)
		}
		totalPages = (total + defaultPageSize - 1) / defaultPageSize
	}

	return errors.WithStack(c.HTML(http.StatusOK, listPage(entries, params.Page, totalPages)))
}

func (h *handler) detailPage(c echo.Context) error {
	ctx := c.Request().Context()

	entry, err := h.catalogService.RetrieveEntry(ctx, c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.HTML(http.StatusOK, detailPage(entry)))
}

package ratings

import (
	"net/http"

	"github.com/bookcross/bookcross/pkg/errcodes"
	"github.com/bookcross/bookcross/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	ratingService *Service
}

type ratingResponse struct {
	AverageRating float64 `json:"average_rating"`
	MyRating      *int    `json:"my_rating"`
	IsFavorite    bool    `json:"is_favorite"`
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	bookID := c.Param("id")
	user := c.Get("user").(*models.User)

	if err := h.ratingService.bookExists(ctx, bookID); err != nil {
		return errors.WithStack(err)
	}

	avg, err := h.ratingService.AverageRating(ctx, bookID)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := ratingResponse{AverageRating: avg}

	rating, err := h.ratingService.RetrieveRating(ctx, bookID, user.ID)
	switch {
	case err == nil:
		resp.MyRating = &rating.Value
	case !errors.Is(err, errcodes.NotFound("Rating")):
		return err
	}

	resp.IsFavorite, err = h.ratingService.IsFavorite(ctx, bookID, user.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) rate(c echo.Context) error {
	ctx := c.Request().Context()
	bookID := c.Param("id")
	user := c.Get("user").(*models.User)

	// An empty body rates with the default value.
	c.Set("disallow_empty_body", false)
	params := RatePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	if err := h.ratingService.bookExists(ctx, bookID); err != nil {
		return errors.WithStack(err)
	}

	rating, err := h.ratingService.Rate(ctx, bookID, user.ID, params.Value)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, rating))
}

func (h *handler) addFavorite(c echo.Context) error {
	ctx := c.Request().Context()
	bookID := c.Param("id")
	user := c.Get("user").(*models.User)

	if err := h.ratingService.bookExists(ctx, bookID); err != nil {
		return errors.WithStack(err)
	}

	if err := h.ratingService.AddFavorite(ctx, bookID, user.ID); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

func (h *handler) removeFavorite(c echo.Context) error {
	ctx := c.Request().Context()
	user := c.Get("user").(*models.User)

	if err := h.ratingService.RemoveFavorite(ctx, c.Param("id"), user.ID); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

func (h *handler) countFavorites(c echo.Context) error {
	ctx := c.Request().Context()

	count, err := h.ratingService.CountFavorites(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Count int `json:"count"`
	}{count}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

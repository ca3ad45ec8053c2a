package genres

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
	genreService *Service
}

func genreID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, errcodes.NotFound("Genre")
	}
	return id, nil
}

func (h *handler) list(c echo.Context) error {
	params := ListGenresQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	genres, total, err := h.genreService.ListGenresWithTotal(c.Request().Context(), ListGenresOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
		Search: params.Search,
	})
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, struct {
		Genres []*models.Genre `json:"genres"`
		Total  int             `json:"total"`
	}{genres, total}))
}

func (h *handler) retrieve(c echo.Context) error {
	id, err := genreID(c)
	if err != nil {
		return err
	}
	genre, err := h.genreService.RetrieveGenre(c.Request().Context(), RetrieveGenreOptions{ID: &id})
	if err != nil {
		return err
	}
	return errors.WithStack(c.JSON(http.StatusOK, genre))
}

func (h *handler) create(c echo.Context) error {
	params := CreateGenrePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	genre := &models.Genre{Name: params.Name}
	if err := h.genreService.CreateGenre(c.Request().Context(), genre); err != nil {
		return err
	}
	return errors.WithStack(c.JSON(http.StatusCreated, genre))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := genreID(c)
	if err != nil {
		return err
	}
	params := UpdateGenrePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	if params.Name == nil {
		genre, err := h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{ID: &id})
		if err != nil {
			return err
		}
		return errors.WithStack(c.JSON(http.StatusOK, genre))
	}

	genre, merged, err := h.genreService.RenameGenre(ctx, id, *params.Name)
	if err != nil {
		return err
	}
	if merged {
		logger.FromContext(ctx).Info("merged genre on rename", logger.Data{"genre_id": id, "target_id": genre.ID})
	}
	return errors.WithStack(c.JSON(http.StatusOK, genre))
}

func (h *handler) bookCopies(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := genreID(c)
	if err != nil {
		return err
	}
	if _, err := h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{ID: &id}); err != nil {
		return err
	}

	books, err := h.genreService.ListBookCopies(ctx, id)
	if err != nil {
		return err
	}
	return errors.WithStack(c.JSON(http.StatusOK, books))
}

// merge folds source_id into the genre in the path.
func (h *handler) merge(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := genreID(c)
	if err != nil {
		return err
	}
	params := MergeGenresPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	for _, gid := range []int{id, params.SourceID} {
		gid := gid
		if _, err := h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{ID: &gid}); err != nil {
			return err
		}
	}

	if err := h.genreService.MergeGenres(ctx, id, params.SourceID); err != nil {
		return err
	}
	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

func (h *handler) deleteGenre(c echo.Context) error {
	id, err := genreID(c)
	if err != nil {
		return err
	}
	if err := h.genreService.DeleteGenre(c.Request().Context(), id); err != nil {
		return err
	}
	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

package books

import (
	"context"
	"net/http"
	"time"

	"github.com/bookcross/bookcross/pkg/errcodes"
	"github.com/bookcross/bookcross/pkg/history"
	"github.com/bookcross/bookcross/pkg/locations"
	"github.com/bookcross/bookcross/pkg/mediastore"
	"github.com/bookcross/bookcross/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

const dateLayout = "2006-01-02"

type handler struct {
	bookService        *Service
	historyService     *history.Service
	locationService    *locations.Service
	labeler            Labeler
	media              mediastore.Resolver
	reservationTimeout time.Duration
}

// respond builds the responses for books. paths caches resolved location
// paths across the books of one request.
func (h *handler) respond(ctx context.Context, books []*models.BookCopy) ([]BookCopyResponse, error) {
	now := time.Now()
	paths := map[int]string{}
	resp := make([]BookCopyResponse, 0, len(books))

	for _, book := range books {
		r := BookCopyResponse{
			BookCopy:      book,
			StatusLabel:   h.labeler.StatusLabel(book.Status),
			TimeRemaining: h.labeler.ReservationLabel(ComputeReservationState(book, now, h.reservationTimeout)),
			Genres:        book.GenreNames(),
		}

		if book.LocationID != nil {
			path, ok := paths[*book.LocationID]
			if !ok {
				var err error
				path, err = h.locationService.FullPath(ctx, *book.LocationID)
				if err != nil {
					return nil, err
				}
				paths[*book.LocationID] = path
			}
			r.LocationPath = &path
		}

		if book.CoverImage != nil && *book.CoverImage != "" {
			url, err := h.media.URL(ctx, *book.CoverImage)
			if err != nil {
				return nil, errors.WithStack(err)
			}
			r.CoverURL = &url
		}

		resp = append(resp, r)
	}

	return resp, nil
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListBookCopiesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	books, total, err := h.bookService.ListBookCopiesWithTotal(ctx, ListBookCopiesOptions{
		Limit:      &params.Limit,
		Offset:     &params.Offset,
		OwnerID:    params.OwnerID,
		LoanerID:   params.LoanerID,
		AuthorID:   params.AuthorID,
		LocationID: params.LocationID,
		GenreID:    params.GenreID,
		Status:     params.Status,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	bookCopies, err := h.respond(ctx, books)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		BookCopies []BookCopyResponse `json:"book_copies"`
		Total      int                `json:"total"`
	}{bookCopies, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	book, err := h.bookService.RetrieveBookCopy(ctx, RetrieveBookCopyOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	resp, err := h.respond(ctx, []*models.BookCopy{book})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, resp[0]))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()
	user := c.Get("user").(*models.User)

	params := CreateBookCopyPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	ownerID := user.ID
	if params.OwnerID != nil && *params.OwnerID != user.ID {
		if !user.IsAdmin() {
			return errcodes.Forbidden("Creating book copies for other users")
		}
		ownerID = *params.OwnerID
	}

	loanerID, err := ValidateLoanerForStatus(params.Status, params.LoanerID)
	if err != nil {
		return err
	}

	book := &models.BookCopy{
		Title:      params.Title,
		AuthorID:   params.AuthorID,
		Summary:    params.Summary,
		ISBN:       params.ISBN,
		OwnerID:    ownerID,
		LoanerID:   loanerID,
		LocationID: params.LocationID,
		CoverImage: params.CoverImage,
		Status:     params.Status,
	}
	if book.LoanStartDate, err = parseDate("loan_start_date", params.LoanStartDate); err != nil {
		return err
	}

	if err := h.bookService.CreateBookCopy(ctx, book, params.GenreIDs); err != nil {
		return errors.WithStack(err)
	}

	logger.FromContext(ctx).Info("book copy created", logger.Data{"book_copy_id": book.ID, "status": book.Status})

	return h.respondOne(c, http.StatusCreated, book.ID)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	user := c.Get("user").(*models.User)
	id := c.Param("id")

	params := UpdateBookCopyPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	book, err := h.bookService.RetrieveBookCopy(ctx, RetrieveBookCopyOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}
	if book.OwnerID != user.ID && !user.IsAdmin() {
		return errcodes.Forbidden("Editing another user's book copy")
	}
	before := SnapshotOf(book)

	opts := UpdateBookCopyOptions{Columns: []string{}}

	if params.Title != nil && *params.Title != book.Title {
		book.Title = *params.Title
		opts.Columns = append(opts.Columns, "title")
	}
	if params.Summary != nil && *params.Summary != book.Summary {
		book.Summary = *params.Summary
		opts.Columns = append(opts.Columns, "summary")
	}
	if params.AuthorID != nil {
		book.AuthorID = zeroToNil(*params.AuthorID)
		opts.Columns = append(opts.Columns, "author_id")
	}
	if params.LocationID != nil {
		book.LocationID = zeroToNil(*params.LocationID)
		opts.Columns = append(opts.Columns, "location_id")
	}
	if params.ISBN != nil {
		book.ISBN = emptyToNil(*params.ISBN)
		opts.Columns = append(opts.Columns, "isbn")
	}
	if params.CoverImage != nil {
		book.CoverImage = emptyToNil(*params.CoverImage)
		opts.Columns = append(opts.Columns, "cover_image")
	}
	if params.LoanStartDate != nil {
		if book.LoanStartDate, err = parseDate("loan_start_date", params.LoanStartDate); err != nil {
			return err
		}
		opts.Columns = append(opts.Columns, "loan_start_date")
	}
	if params.Status != nil && *params.Status != book.Status {
		book.Status = *params.Status
		opts.Columns = append(opts.Columns, "status")
	}

	loanerID := book.LoanerID
	if params.LoanerID != nil {
		loanerID = zeroToNil(*params.LoanerID)
	}
	if book.LoanerID, err = ValidateLoanerForStatus(book.Status, loanerID); err != nil {
		return err
	}
	opts.Columns = append(opts.Columns, "loaner_id")

	if params.GenreIDs != nil {
		opts.UpdateGenres = true
		opts.GenreIDs = *params.GenreIDs
	}

	transition, err := h.bookService.UpdateBookCopy(ctx, before, book, opts)
	if err != nil {
		return errors.WithStack(err)
	}
	if transition.StatusChanged() {
		logger.FromContext(ctx).Info("book copy status changed", logger.Data{
			"book_copy_id": book.ID,
			"from":         before.Status,
			"to":           book.Status,
		})
	}

	return h.respondOne(c, http.StatusOK, book.ID)
}

func (h *handler) deleteBookCopy(c echo.Context) error {
	ctx := c.Request().Context()
	user := c.Get("user").(*models.User)
	id := c.Param("id")

	book, err := h.bookService.RetrieveBookCopy(ctx, RetrieveBookCopyOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}
	if book.OwnerID != user.ID && !user.IsAdmin() {
		return errcodes.Forbidden("Deleting another user's book copy")
	}

	if err := h.bookService.DeleteBookCopy(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

func (h *handler) listHistory(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	params := ListHistoryQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	if _, err := h.bookService.RetrieveBookCopy(ctx, RetrieveBookCopyOptions{ID: &id}); err != nil {
		return errors.WithStack(err)
	}

	entries, total, err := h.historyService.ListEntriesWithTotal(ctx, history.ListEntriesOptions{
		Limit:      &params.Limit,
		Offset:     &params.Offset,
		BookCopyID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Entries []*models.HistoryEntry `json:"entries"`
		Total   int                    `json:"total"`
	}{entries, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

// respondOne reloads the copy with its relations and renders it.
func (h *handler) respondOne(c echo.Context, code int, id string) error {
	ctx := c.Request().Context()

	book, err := h.bookService.RetrieveBookCopy(ctx, RetrieveBookCopyOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	resp, err := h.respond(ctx, []*models.BookCopy{book})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(code, resp[0]))
}

func parseDate(field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *value)
	if err != nil {
		return nil, errcodes.FieldValidationError(field, `"`+field+`" should be in the format of YYYY-MM-DD`)
	}
	return &t, nil
}

func zeroToNil(id int) *int {
	if id == 0 {
		return nil
	}
	return &id
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package books

import (
	"context"
	"database/sql"
	"time"

	"github.com/bookcross/bookcross/pkg/errcodes"
	"github.com/bookcross/bookcross/pkg/history"
	"github.com/bookcross/bookcross/pkg/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveBookCopyOptions struct {
	ID *string
}

type ListBookCopiesOptions struct {
	Limit      *int
	Offset     *int
	OwnerID    *int
	LoanerID   *int
	AuthorID   *int
	LocationID *int
	GenreID    *int
	Status     *string

	includeTotal bool
}

type UpdateBookCopyOptions struct {
	Columns      []string
	UpdateGenres bool
	GenreIDs     []int
}

type Service struct {
	db      *bun.DB
	labeler Labeler
}

func NewService(db *bun.DB, labeler Labeler) *Service {
	return &Service{db, labeler}
}

// CreateBookCopy inserts a new copy. Creating a copy in a status other than
// the default counts as a transition from the default and is logged. book is
// only filled in once the insert succeeds.
func (svc *Service) CreateBookCopy(ctx context.Context, book *models.BookCopy, genreIDs []int) error {
	now := time.Now()
	next := *book
	if next.CreatedAt.IsZero() {
		next.CreatedAt = now
	}
	next.UpdatedAt = next.CreatedAt

	if next.ID == "" {
		id, err := uuid.NewRandom()
		if err != nil {
			return errors.WithStack(err)
		}
		next.ID = id.String()
	}
	if next.Status == "" {
		next.Status = models.DefaultBookStatus
	}

	transition := ApplyTransition(Snapshot{Status: models.DefaultBookStatus}, &next, now, svc.labeler)
	if err := svc.validateReferences(ctx, &next); err != nil {
		return err
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewInsert().
			Model(&next).
			Returning("*").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		if err := replaceGenres(ctx, tx, next.ID, genreIDs); err != nil {
			return err
		}

		if transition.StatusChanged() {
			return history.Append(ctx, tx, transition.Entry)
		}
		return nil
	})
	if err != nil {
		return errors.WithStack(err)
	}

	*book = next
	return nil
}

func (svc *Service) RetrieveBookCopy(ctx context.Context, opts RetrieveBookCopyOptions) (*models.BookCopy, error) {
	book := &models.BookCopy{}

	q := svc.db.
		NewSelect().
		Model(book).
		Relation("Author").
		Relation("Owner").
		Relation("Loaner").
		Relation("Location").
		Relation("BookCopyGenres.Genre")

	if opts.ID != nil {
		q = q.Where("bc.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book copy")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

func (svc *Service) ListBookCopies(ctx context.Context, opts ListBookCopiesOptions) ([]*models.BookCopy, error) {
	b, _, err := svc.listBookCopiesWithTotal(ctx, opts)
	return b, errors.WithStack(err)
}

func (svc *Service) ListBookCopiesWithTotal(ctx context.Context, opts ListBookCopiesOptions) ([]*models.BookCopy, int, error) {
	opts.includeTotal = true
	return svc.listBookCopiesWithTotal(ctx, opts)
}

func (svc *Service) listBookCopiesWithTotal(ctx context.Context, opts ListBookCopiesOptions) ([]*models.BookCopy, int, error) {
	books := []*models.BookCopy{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&books).
		Relation("Author").
		Relation("Owner").
		Relation("Loaner").
		Relation("Location").
		Relation("BookCopyGenres.Genre").
		// Copies without an author sort first, then by author name and title.
		OrderExpr("author.last_name ASC, author.first_name ASC, bc.title ASC, bc.id ASC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if opts.OwnerID != nil {
		q = q.Where("bc.owner_id = ?", *opts.OwnerID)
	}
	if opts.LoanerID != nil {
		q = q.Where("bc.loaner_id = ?", *opts.LoanerID)
	}
	if opts.AuthorID != nil {
		q = q.Where("bc.author_id = ?", *opts.AuthorID)
	}
	if opts.LocationID != nil {
		q = q.Where("bc.location_id = ?", *opts.LocationID)
	}
	if opts.Status != nil {
		q = q.Where("bc.status = ?", *opts.Status)
	}
	if opts.GenreID != nil {
		q = q.Where("bc.id IN (SELECT book_copy_id FROM book_copy_genres WHERE genre_id = ?)", *opts.GenreID)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return books, total, nil
}

// UpdateBookCopy persists book, which was loaded in the state captured by
// before. Status side effects and the history entry are written in the same
// transaction as the update. The copy is saved even if only updated_at moves.
func (svc *Service) UpdateBookCopy(ctx context.Context, before Snapshot, book *models.BookCopy, opts UpdateBookCopyOptions) (Transition, error) {
	now := time.Now()
	next := *book
	transition := ApplyTransition(before, &next, now, svc.labeler)

	next.UpdatedAt = now
	columns := uniqueColumns(append(append(opts.Columns, transition.Columns...), "updated_at"))
	if err := svc.validateReferences(ctx, &next); err != nil {
		return Transition{}, err
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.
			NewUpdate().
			Model(&next).
			Column(columns...).
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return errcodes.NotFound("Book copy")
		}

		if opts.UpdateGenres {
			_, err := tx.
				NewDelete().
				Model((*models.BookCopyGenre)(nil)).
				Where("book_copy_id = ?", next.ID).
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
			if err := replaceGenres(ctx, tx, next.ID, opts.GenreIDs); err != nil {
				return err
			}
		}

		if transition.StatusChanged() {
			return history.Append(ctx, tx, transition.Entry)
		}
		return nil
	})
	if err != nil {
		return Transition{}, errors.WithStack(err)
	}

	*book = next
	return transition, nil
}

// DeleteBookCopy removes the copy along with its genre links, ratings and
// favorites. History entries are kept with their book reference nulled.
func (svc *Service) DeleteBookCopy(ctx context.Context, id string) error {
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return DeleteBookCopies(ctx, tx, []string{id})
	})
	return errors.WithStack(err)
}

// DeleteBookCopies runs the book copy delete cascade on idb. It's shared with
// the user delete cascade.
func DeleteBookCopies(ctx context.Context, idb bun.IDB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	for _, model := range []interface{}{
		(*models.BookCopyGenre)(nil),
		(*models.Rating)(nil),
		(*models.Favorite)(nil),
	} {
		_, err := idb.NewDelete().
			Model(model).
			Where("book_copy_id IN (?)", bun.In(ids)).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
	}

	_, err := idb.NewUpdate().
		Model((*models.HistoryEntry)(nil)).
		Set("book_copy_id = NULL").
		Where("book_copy_id IN (?)", bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	res, err := idb.NewDelete().
		Model((*models.BookCopy)(nil)).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errcodes.NotFound("Book copy")
	}

	return nil
}

// validateReferences checks that everything the copy points at exists. The
// location has to belong to the copy's owner.
func (svc *Service) validateReferences(ctx context.Context, book *models.BookCopy) error {
	exists := func(model interface{}, where string, args ...interface{}) (bool, error) {
		ok, err := svc.db.NewSelect().Model(model).Where(where, args...).Exists(ctx)
		return ok, errors.WithStack(err)
	}

	ok, err := exists((*models.User)(nil), "id = ?", book.OwnerID)
	if err != nil {
		return err
	}
	if !ok {
		return errcodes.FieldValidationError("owner_id", `"owner_id" doesn't match an existing user`)
	}

	if book.AuthorID != nil {
		ok, err := exists((*models.Author)(nil), "id = ?", *book.AuthorID)
		if err != nil {
			return err
		}
		if !ok {
			return errcodes.FieldValidationError("author_id", `"author_id" doesn't match an existing author`)
		}
	}

	if book.LoanerID != nil {
		ok, err := exists((*models.User)(nil), "id = ? AND is_active = ?", *book.LoanerID, true)
		if err != nil {
			return err
		}
		if !ok {
			return errcodes.FieldValidationError("loaner_id", `"loaner_id" doesn't match an active user`)
		}
	}

	if book.LocationID != nil {
		ok, err := exists((*models.Location)(nil), "id = ? AND owner_id = ?", *book.LocationID, book.OwnerID)
		if err != nil {
			return err
		}
		if !ok {
			return errcodes.FieldValidationError("location_id", `"location_id" doesn't match a location of the owner`)
		}
	}

	return nil
}

func replaceGenres(ctx context.Context, tx bun.Tx, bookID string, genreIDs []int) error {
	if len(genreIDs) == 0 {
		return nil
	}

	links := make([]*models.BookCopyGenre, 0, len(genreIDs))
	seen := map[int]bool{}
	for _, genreID := range genreIDs {
		if seen[genreID] {
			continue
		}
		seen[genreID] = true
		links = append(links, &models.BookCopyGenre{BookCopyID: bookID, GenreID: genreID})
	}

	count, err := tx.NewSelect().
		Model((*models.Genre)(nil)).
		Where("id IN (?)", bun.In(genreIDs)).
		Count(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if count != len(links) {
		return errcodes.FieldValidationError("genre_ids", `"genre_ids" contains an unknown genre`)
	}

	_, err = tx.NewInsert().Model(&links).Exec(ctx)
	return errors.WithStack(err)
}

func uniqueColumns(columns []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

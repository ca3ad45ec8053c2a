package genres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/bookcross/bookcross/pkg/errcodes"
	"github.com/bookcross/bookcross/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveGenreOptions struct {
	ID   *int
	Name *string
}

type ListGenresOptions struct {
	Limit  *int
	Offset *int
	Search *string

	includeTotal bool
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// selectGenres starts a genre query that fills BookCount.
func (svc *Service) selectGenres(model interface{}) *bun.SelectQuery {
	return svc.db.NewSelect().
		Model(model).
		ColumnExpr("g.*").
		ColumnExpr("(SELECT COUNT(*) FROM book_copy_genres bcg WHERE bcg.genre_id = g.id) AS book_count")
}

// CreateGenre trims the name and rejects it when another genre has the same
// name ignoring case.
func (svc *Service) CreateGenre(ctx context.Context, genre *models.Genre) error {
	name, err := svc.availableName(ctx, genre.Name)
	if err != nil {
		return err
	}
	genre.Name = name
	if genre.CreatedAt.IsZero() {
		genre.CreatedAt = time.Now()
	}
	genre.UpdatedAt = genre.CreatedAt

	_, err = svc.db.NewInsert().Model(genre).Returning("*").Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) availableName(ctx context.Context, raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", errcodes.FieldValidationError("name", "Genre name cannot be empty")
	}
	_, err := svc.RetrieveGenre(ctx, RetrieveGenreOptions{Name: &name})
	switch {
	case err == nil:
		return "", errcodes.FieldValidationError("name", "A genre with this name already exists")
	case errors.Is(err, errcodes.NotFound("Genre")):
		return name, nil
	default:
		return "", err
	}
}

func (svc *Service) RetrieveGenre(ctx context.Context, opts RetrieveGenreOptions) (*models.Genre, error) {
	genre := &models.Genre{}
	q := svc.selectGenres(genre)
	if opts.ID != nil {
		q = q.Where("g.id = ?", *opts.ID)
	}
	if opts.Name != nil {
		q = q.Where("g.name = ? COLLATE NOCASE", *opts.Name)
	}

	err := q.Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errcodes.NotFound("Genre")
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return genre, nil
}

func (svc *Service) ListGenres(ctx context.Context, opts ListGenresOptions) ([]*models.Genre, error) {
	g, _, err := svc.listGenresWithTotal(ctx, opts)
	return g, err
}

func (svc *Service) ListGenresWithTotal(ctx context.Context, opts ListGenresOptions) ([]*models.Genre, int, error) {
	opts.includeTotal = true
	return svc.listGenresWithTotal(ctx, opts)
}

func (svc *Service) listGenresWithTotal(ctx context.Context, opts ListGenresOptions) ([]*models.Genre, int, error) {
	var genres []*models.Genre
	q := svc.selectGenres(&genres).Order("g.name ASC")

	if opts.Search != nil {
		if term := strings.TrimSpace(*opts.Search); term != "" {
			q = q.Where(`g.name LIKE ? ESCAPE '\'`, "%"+escapeLike(term)+"%")
		}
	}
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	var total int
	var err error
	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}
	return genres, total, nil
}

// RenameGenre gives the genre a new name. When another genre already has that
// name the two are merged and the surviving genre is returned with merged set.
func (svc *Service) RenameGenre(ctx context.Context, id int, name string) (genre *models.Genre, merged bool, err error) {
	genre, err = svc.RetrieveGenre(ctx, RetrieveGenreOptions{ID: &id})
	if err != nil {
		return nil, false, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, errcodes.FieldValidationError("name", "Genre name cannot be empty")
	}
	if name == genre.Name {
		return genre, false, nil
	}

	existing, err := svc.RetrieveGenre(ctx, RetrieveGenreOptions{Name: &name})
	switch {
	case err == nil && existing.ID != id:
		if err := svc.MergeGenres(ctx, existing.ID, id); err != nil {
			return nil, false, err
		}
		genre, err = svc.RetrieveGenre(ctx, RetrieveGenreOptions{ID: &existing.ID})
		return genre, true, err
	case err != nil && !errors.Is(err, errcodes.NotFound("Genre")):
		return nil, false, err
	}

	genre.Name = name
	genre.UpdatedAt = time.Now()
	_, err = svc.db.NewUpdate().
		Model(genre).
		Column("name", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, false, errors.WithStack(err)
	}
	return genre, false, nil
}

// DeleteGenre removes the genre and untags every copy that had it.
func (svc *Service) DeleteGenre(ctx context.Context, genreID int) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := untag(ctx, tx, genreID); err != nil {
			return err
		}
		res, err := tx.NewDelete().
			Model((*models.Genre)(nil)).
			Where("id = ?", genreID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return errcodes.NotFound("Genre")
		}
		return nil
	})
}

func (svc *Service) ListBookCopies(ctx context.Context, genreID int) ([]*models.BookCopy, error) {
	var books []*models.BookCopy
	err := svc.db.NewSelect().
		Model(&books).
		Relation("Author").
		Join("INNER JOIN book_copy_genres bcg ON bcg.book_copy_id = bc.id").
		Where("bcg.genre_id = ?", genreID).
		Order("bc.title ASC", "bc.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return books, nil
}

// MergeGenres retags every copy of source with target, then drops source.
func (svc *Service) MergeGenres(ctx context.Context, targetID, sourceID int) error {
	if targetID == sourceID {
		return errcodes.FieldValidationError("source_id", "A genre can't be merged into itself")
	}

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewUpdate().
			Model((*models.BookCopyGenre)(nil)).
			Set("genre_id = ?", targetID).
			Where("genre_id = ?", sourceID).
			Where("book_copy_id NOT IN (SELECT book_copy_id FROM book_copy_genres WHERE genre_id = ?)", targetID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if err := untag(ctx, tx, sourceID); err != nil {
			return err
		}
		_, err = tx.NewDelete().
			Model((*models.Genre)(nil)).
			Where("id = ?", sourceID).
			Exec(ctx)
		return errors.WithStack(err)
	})
}

func untag(ctx context.Context, tx bun.Tx, genreID int) error {
	_, err := tx.NewDelete().
		Model((*models.BookCopyGenre)(nil)).
		Where("genre_id = ?", genreID).
		Exec(ctx)
	return errors.WithStack(err)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

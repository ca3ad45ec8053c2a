// Package ratings derives per-book rating averages and favorite counts. Both
// are computed on demand from the rows.
package ratings

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bookcross/bookcross/pkg/errcodes"
	"github.com/bookcross/bookcross/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// Rate stores userID's rating of the book, replacing an earlier one. A nil
// value means DefaultRatingValue.
func (svc *Service) Rate(ctx context.Context, bookID string, userID int, value *int) (*models.Rating, error) {
	v := models.DefaultRatingValue
	if value != nil {
		v = *value
	}
	if v < models.MinRatingValue || v > models.MaxRatingValue {
		return nil, errcodes.FieldValidationError("value", fmt.Sprintf("%q must be between %d and %d", "value", models.MinRatingValue, models.MaxRatingValue))
	}

	now := time.Now()
	rating := &models.Rating{
		CreatedAt:  now,
		UpdatedAt:  now,
		BookCopyID: bookID,
		UserID:     userID,
		Value:      v,
	}

	_, err := svc.db.NewInsert().
		Model(rating).
		On("CONFLICT (book_copy_id, user_id) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return rating, nil
}

func (svc *Service) RetrieveRating(ctx context.Context, bookID string, userID int) (*models.Rating, error) {
	rating := &models.Rating{}
	err := svc.db.NewSelect().
		Model(rating).
		Where("ra.book_copy_id = ?", bookID).
		Where("ra.user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Rating")
		}
		return nil, errors.WithStack(err)
	}
	return rating, nil
}

// AverageRating is the mean of all ratings for the book, or 0 without any.
func (svc *Service) AverageRating(ctx context.Context, bookID string) (float64, error) {
	averages, err := svc.AverageRatings(ctx, []string{bookID})
	if err != nil {
		return 0, err
	}
	return averages[bookID], nil
}

// AverageRatings is the batch form of AverageRating. Books without ratings
// are missing from the map, which reads as 0.
func (svc *Service) AverageRatings(ctx context.Context, bookIDs []string) (map[string]float64, error) {
	averages := map[string]float64{}
	if len(bookIDs) == 0 {
		return averages, nil
	}

	var rows []struct {
		BookCopyID string  `bun:"book_copy_id"`
		Average    float64 `bun:"average"`
	}
	err := svc.db.NewSelect().
		Model((*models.Rating)(nil)).
		Column("book_copy_id").
		ColumnExpr("AVG(value) AS average").
		Where("book_copy_id IN (?)", bun.In(bookIDs)).
		Group("book_copy_id").
		Scan(ctx, &rows)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	for _, row := range rows {
		averages[row.BookCopyID] = row.Average
	}
	return averages, nil
}

// AddFavorite is idempotent.
func (svc *Service) AddFavorite(ctx context.Context, bookID string, userID int) error {
	favorite := &models.Favorite{
		CreatedAt:  time.Now(),
		BookCopyID: bookID,
		UserID:     userID,
	}
	_, err := svc.db.NewInsert().
		Model(favorite).
		On("CONFLICT (book_copy_id, user_id) DO NOTHING").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RemoveFavorite(ctx context.Context, bookID string, userID int) error {
	_, err := svc.db.NewDelete().
		Model((*models.Favorite)(nil)).
		Where("book_copy_id = ?", bookID).
		Where("user_id = ?", userID).
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) IsFavorite(ctx context.Context, bookID string, userID int) (bool, error) {
	exists, err := svc.db.NewSelect().
		Model((*models.Favorite)(nil)).
		Where("book_copy_id = ?", bookID).
		Where("user_id = ?", userID).
		Exists(ctx)
	return exists, errors.WithStack(err)
}

// CountFavorites counts every favorite in the system, across all books and
// users.
func (svc *Service) CountFavorites(ctx context.Context) (int, error) {
	count, err := svc.db.NewSelect().Model((*models.Favorite)(nil)).Count(ctx)
	return count, errors.WithStack(err)
}

func (svc *Service) bookExists(ctx context.Context, bookID string) error {
	exists, err := svc.db.NewSelect().
		Model((*models.BookCopy)(nil)).
		Where("id = ?", bookID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if !exists {
		return errcodes.NotFound("Book copy")
	}
	return nil
}

// DeleteForUser removes every rating and favorite the user made. It's part of
// the user delete cascade.
func DeleteForUser(ctx context.Context, idb bun.IDB, userID int) error {
	for _, model := range []interface{}{(*models.Rating)(nil), (*models.Favorite)(nil)} {
		_, err := idb.NewDelete().
			Model(model).
			Where("user_id = ?", userID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

// Package history is the append-only log of book copy status transitions.
// Entries are written by the books package inside its update transaction and
// can only be listed afterwards.
package history

import (
	"context"
	"time"

	"github.com/bookcross/bookcross/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type ListEntriesOptions struct {
	Limit      *int
	Offset     *int
	BookCopyID *string

	includeTotal bool
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// Append inserts a new entry using idb, which is usually the transaction that
// is persisting the status change.
func Append(ctx context.Context, idb bun.IDB, entry *models.HistoryEntry) error {
	if entry.ID != 0 {
		return errors.New("history entries can't be rewritten")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := idb.NewInsert().
		Model(entry).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) ListEntries(ctx context.Context, opts ListEntriesOptions) ([]*models.HistoryEntry, error) {
	e, _, err := svc.listEntriesWithTotal(ctx, opts)
	return e, errors.WithStack(err)
}

func (svc *Service) ListEntriesWithTotal(ctx context.Context, opts ListEntriesOptions) ([]*models.HistoryEntry, int, error) {
	opts.includeTotal = true
	return svc.listEntriesWithTotal(ctx, opts)
}

func (svc *Service) listEntriesWithTotal(ctx context.Context, opts ListEntriesOptions) ([]*models.HistoryEntry, int, error) {
	entries := []*models.HistoryEntry{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&entries).
		Relation("BookCopy", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Column("id", "title")
		}).
		Order("he.book_copy_id ASC", "he.created_at ASC", "he.id ASC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if opts.BookCopyID != nil {
		q = q.Where("he.book_copy_id = ?", *opts.BookCopyID)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return entries, total, nil
}

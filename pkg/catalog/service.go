// Package catalog is the read-only view of the shared shelf: the copies that
// are currently available to borrow.
package catalog

import (
	"context"

	"github.com/bookcross/bookcross/pkg/books"
	"github.com/bookcross/bookcross/pkg/mediastore"
	"github.com/bookcross/bookcross/pkg/models"
	"github.com/bookcross/bookcross/pkg/ratings"
	"github.com/pkg/errors"
)

// Entry is a book copy as the catalog shows it.
type Entry struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Summary       string   `json:"summary"`
	ISBN          *string  `json:"isbn"`
	Genres        []string `json:"genres"`
	Owner         string   `json:"owner"`
	AverageRating float64  `json:"average_rating"`
	CoverURL      *string  `json:"cover_url"`

	Status      string `json:"-"`
	StatusLabel string `json:"-"`
}

type ListEntriesOptions struct {
	Limit  *int
	Offset *int
}

type Service struct {
	bookService   *books.Service
	ratingService *ratings.Service
	labeler       books.Labeler
	media         mediastore.Resolver
}

func NewService(bookService *books.Service, ratingService *ratings.Service, labeler books.Labeler, media mediastore.Resolver) *Service {
	return &Service{bookService, ratingService, labeler, media}
}

// ListAvailable returns the copies with status available, in the same order as
// the book copy listing.
func (svc *Service) ListAvailable(ctx context.Context, opts ListEntriesOptions) ([]*Entry, int, error) {
	status := models.BookStatusAvailable
	copies, total, err := svc.bookService.ListBookCopiesWithTotal(ctx, books.ListBookCopiesOptions{
		Limit:  opts.Limit,
		Offset: opts.Offset,
		Status: &status,
	})
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	entries, err := svc.entries(ctx, copies)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// RetrieveEntry returns a single copy regardless of its status.
func (svc *Service) RetrieveEntry(ctx context.Context, id string) (*Entry, error) {
	book, err := svc.bookService.RetrieveBookCopy(ctx, books.RetrieveBookCopyOptions{ID: &id})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	entries, err := svc.entries(ctx, []*models.BookCopy{book})
	if err != nil {
		return nil, err
	}
	return entries[0], nil
}

func (svc *Service) entries(ctx context.Context, copies []*models.BookCopy) ([]*Entry, error) {
	ids := make([]string, 0, len(copies))
	for _, book := range copies {
		ids = append(ids, book.ID)
	}

	averages, err := svc.ratingService.AverageRatings(ctx, ids)
	if err != nil {
		return nil, err
	}

	entries := make([]*Entry, 0, len(copies))
	for _, book := range copies {
		entry := &Entry{
			ID:            book.ID,
			Title:         book.Title,
			Author:        book.AuthorName(),
			Summary:       book.Summary,
			ISBN:          book.ISBN,
			Genres:        book.GenreNames(),
			AverageRating: averages[book.ID],
			Status:        book.Status,
			StatusLabel:   svc.labeler.StatusLabel(book.Status),
		}
		if book.Owner != nil {
			entry.Owner = book.Owner.Username
		}
		if book.CoverImage != nil && *book.CoverImage != "" {
			url, err := svc.media.URL(ctx, *book.CoverImage)
			if err != nil {
				return nil, errors.WithStack(err)
			}
			entry.CoverURL = &url
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

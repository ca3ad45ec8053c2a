package books

import (
	"context"
	"testing"

	"github.com/bookcross/bookcross/pkg/errcodes"
	"github.com/bookcross/bookcross/pkg/history"
	"github.com/bookcross/bookcross/pkg/models"
	"github.com/bookcross/bookcross/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func newTestService(t *testing.T) (*Service, *bun.DB) {
	t.Helper()
	db := testutils.NewTestDB(t)
	return NewService(db, newTestLabels(t, "en")), db
}

func listHistory(t *testing.T, db *bun.DB, bookID string) []*models.HistoryEntry {
	t.Helper()
	entries, err := history.NewService(db).ListEntries(context.Background(), history.ListEntriesOptions{BookCopyID: &bookID})
	require.NoError(t, err)
	return entries
}

func TestCreateBookCopy_DefaultStatusWritesNoHistory(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	owner := testutils.CreateUser(t, db, "owner", models.RoleMember)
	genre := testutils.CreateGenre(t, db, "Fantasy")

	book := &models.BookCopy{Title: "The Hobbit", OwnerID: owner.ID}
	require.NoError(t, svc.CreateBookCopy(ctx, book, []int{genre.ID, genre.ID}))

	assert.NotEmpty(t, book.ID)
	assert.Equal(t, models.BookStatusAvailable, book.Status)
	assert.Empty(t, listHistory(t, db, book.ID))

	stored, err := svc.RetrieveBookCopy(ctx, RetrieveBookCopyOptions{ID: &book.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"Fantasy"}, stored.GenreNames())
}

func TestCreateBookCopy_NonDefaultStatusWritesHistory(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	owner := testutils.CreateUser(t, db, "owner", models.RoleMember)
	loaner := testutils.CreateUser(t, db, "loaner", models.RoleMember)

	book := &models.BookCopy{Title: "Dune", OwnerID: owner.ID, LoanerID: &loaner.ID, Status: models.BookStatusReserved}
	require.NoError(t, svc.CreateBookCopy(ctx, book, nil))

	assert.NotNil(t, book.ReservedAt)
	entries := listHistory(t, db, book.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, `Status changed from "Available" to "Reserved"`, entries[0].Comment)
	assert.Equal(t, &loaner.ID, entries[0].LoanerID)
}

func TestCreateBookCopy_RejectsUnknownReferences(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	owner := testutils.CreateUser(t, db, "owner", models.RoleMember)
	other := testutils.CreateUser(t, db, "other", models.RoleMember)
	foreignLocation := testutils.CreateLocation(t, db, other, "Shelf", nil)
	missing := 999

	tests := []struct {
		field    string
		book     *models.BookCopy
		genreIDs []int
	}{
		{"owner_id", &models.BookCopy{Title: "A", OwnerID: missing}, nil},
		{"author_id", &models.BookCopy{Title: "B", OwnerID: owner.ID, AuthorID: &missing}, nil},
		{"location_id", &models.BookCopy{Title: "C", OwnerID: owner.ID, LocationID: &foreignLocation.ID}, nil},
		{"genre_ids", &models.BookCopy{Title: "D", OwnerID: owner.ID}, []int{missing}},
	}

	for _, tt := range tests {
		err := svc.CreateBookCopy(ctx, tt.book, tt.genreIDs)
		var codeErr *errcodes.Error
		require.ErrorAs(t, err, &codeErr, tt.field)
		assert.Equal(t, tt.field, codeErr.Field)
	}

	count, err := db.NewSelect().Model((*models.BookCopy)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestUpdateBookCopy_RejectedUpdateLeavesBookUntouched(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	owner := testutils.CreateUser(t, db, "owner", models.RoleMember)
	loaner := testutils.CreateUser(t, db, "loaner", models.RoleMember)
	missing := 999

	book := &models.BookCopy{Title: "Persuasion", OwnerID: owner.ID, Status: models.BookStatusReserved, LoanerID: &loaner.ID, AuthorID: &missing}
	err := svc.CreateBookCopy(ctx, book, nil)
	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "author_id", codeErr.Field)
	assert.Empty(t, book.ID)
	assert.Nil(t, book.ReservedAt)

	book = testutils.CreateBookCopy(t, db, owner, "Sanditon", models.BookStatusOnLoan, func(b *models.BookCopy) {
		b.LoanerID = &loaner.ID
	})
	before := SnapshotOf(book)

	book.Status = models.BookStatusAvailable
	book.AuthorID = &missing
	_, err = svc.UpdateBookCopy(ctx, before, book, UpdateBookCopyOptions{Columns: []string{"status", "author_id"}})
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "author_id", codeErr.Field)
	require.NotNil(t, book.LoanerID)
	assert.Equal(t, loaner.ID, *book.LoanerID)
	assert.Empty(t, listHistory(t, db, book.ID))
}

func TestUpdateBookCopy_StatusLifecycle(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	owner := testutils.CreateUser(t, db, "owner", models.RoleMember)
	loaner := testutils.CreateUser(t, db, "loaner", models.RoleMember)
	book := testutils.CreateBookCopy(t, db, owner, "Emma", models.BookStatusAvailable)

	transitionTo := func(status string, loanerID *int) Transition {
		t.Helper()
		current, err := svc.RetrieveBookCopy(ctx, RetrieveBookCopyOptions{ID: &book.ID})
		require.NoError(t, err)
		before := SnapshotOf(current)
		current.Status = status
		current.LoanerID = loanerID
		transition, err := svc.UpdateBookCopy(ctx, before, current, UpdateBookCopyOptions{Columns: []string{"status", "loaner_id"}})
		require.NoError(t, err)
		return transition
	}

	assert.True(t, transitionTo(models.BookStatusReserved, &loaner.ID).StatusChanged())
	reserved, err := svc.RetrieveBookCopy(ctx, RetrieveBookCopyOptions{ID: &book.ID})
	require.NoError(t, err)
	require.NotNil(t, reserved.ReservedAt)

	assert.True(t, transitionTo(models.BookStatusOnLoan, &loaner.ID).StatusChanged())
	assert.False(t, transitionTo(models.BookStatusOnLoan, &loaner.ID).StatusChanged())
	assert.True(t, transitionTo(models.BookStatusAvailable, &loaner.ID).StatusChanged())

	stored, err := svc.RetrieveBookCopy(ctx, RetrieveBookCopyOptions{ID: &book.ID})
	require.NoError(t, err)
	assert.Nil(t, stored.ReservedAt)
	assert.Nil(t, stored.LoanerID)
	assert.Equal(t, models.BookStatusAvailable, stored.Status)

	entries := listHistory(t, db, book.ID)
	require.Len(t, entries, 3)
	assert.Equal(t, `Status changed from "Available" to "Reserved"`, entries[0].Comment)
	assert.Equal(t, `Status changed from "Reserved" to "On loan"`, entries[1].Comment)
	assert.Equal(t, `Status changed from "On loan" to "Available"`, entries[2].Comment)
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].CreatedAt.Before(entries[i-1].CreatedAt))
	}
	assert.Nil(t, entries[2].LoanerID)
}

func TestUpdateBookCopy_ReplacesGenres(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	owner := testutils.CreateUser(t, db, "owner", models.RoleMember)
	horror := testutils.CreateGenre(t, db, "Horror")
	gothic := testutils.CreateGenre(t, db, "Gothic")
	book := testutils.CreateBookCopy(t, db, owner, "Dracula", models.BookStatusAvailable)
	testutils.LinkGenre(t, db, book, horror)

	_, err := svc.UpdateBookCopy(ctx, SnapshotOf(book), book, UpdateBookCopyOptions{UpdateGenres: true, GenreIDs: []int{gothic.ID}})
	require.NoError(t, err)

	stored, err := svc.RetrieveBookCopy(ctx, RetrieveBookCopyOptions{ID: &book.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"Gothic"}, stored.GenreNames())
}

func TestListBookCopies_OrderedByAuthorThenTitle(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	owner := testutils.CreateUser(t, db, "owner", models.RoleMember)
	austen := testutils.CreateAuthor(t, db, "Jane", "Austen")
	bronte := testutils.CreateAuthor(t, db, "Emily", "Bronte")

	testutils.CreateBookCopy(t, db, owner, "Wuthering Heights", models.BookStatusAvailable, func(b *models.BookCopy) { b.AuthorID = &bronte.ID })
	testutils.CreateBookCopy(t, db, owner, "Persuasion", models.BookStatusAvailable, func(b *models.BookCopy) { b.AuthorID = &austen.ID })
	testutils.CreateBookCopy(t, db, owner, "Emma", models.BookStatusOnLoan, func(b *models.BookCopy) { b.AuthorID = &austen.ID })
	testutils.CreateBookCopy(t, db, owner, "Beowulf", models.BookStatusAvailable)

	books, total, err := svc.ListBookCopiesWithTotal(ctx, ListBookCopiesOptions{})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	titles := make([]string, 0, len(books))
	for _, b := range books {
		titles = append(titles, b.Title)
	}
	assert.Equal(t, []string{"Beowulf", "Emma", "Persuasion", "Wuthering Heights"}, titles)

	status := models.BookStatusAvailable
	books, err = svc.ListBookCopies(ctx, ListBookCopiesOptions{AuthorID: &austen.ID, Status: &status})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Persuasion", books[0].Title)
}

func TestDeleteBookCopy_Cascades(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	owner := testutils.CreateUser(t, db, "owner", models.RoleMember)
	genre := testutils.CreateGenre(t, db, "Drama")
	book := &models.BookCopy{Title: "Hamlet", OwnerID: owner.ID, Status: models.BookStatusInRepair}
	require.NoError(t, svc.CreateBookCopy(ctx, book, []int{genre.ID}))

	_, err := db.NewInsert().Model(&models.Rating{BookCopyID: book.ID, UserID: owner.ID, Value: 5}).Exec(ctx)
	require.NoError(t, err)
	_, err = db.NewInsert().Model(&models.Favorite{BookCopyID: book.ID, UserID: owner.ID}).Exec(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBookCopy(ctx, book.ID))

	for _, model := range []interface{}{
		(*models.BookCopy)(nil),
		(*models.BookCopyGenre)(nil),
		(*models.Rating)(nil),
		(*models.Favorite)(nil),
	} {
		count, err := db.NewSelect().Model(model).Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	}

	entries, err := history.NewService(db).ListEntries(ctx, history.ListEntriesOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].BookCopyID)

	err = svc.DeleteBookCopy(ctx, book.ID)
	assert.ErrorIs(t, err, errcodes.NotFound("Book copy"))
}

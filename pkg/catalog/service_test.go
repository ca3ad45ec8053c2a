package catalog

import (
	"context"
	"net/http"
	"testing"

	"github.com/bookcross/bookcross/pkg/auth"
	"github.com/bookcross/bookcross/pkg/books"
	"github.com/bookcross/bookcross/pkg/errcodes"
	"github.com/bookcross/bookcross/pkg/mediastore"
	"github.com/bookcross/bookcross/pkg/models"
	"github.com/bookcross/bookcross/pkg/ratings"
	"github.com/bookcross/bookcross/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func newTestService(t *testing.T) (*Service, *bun.DB) {
	t.Helper()

	db := testutils.NewTestDB(t)
	labels, err := books.NewLabels("en")
	require.NoError(t, err)

	return NewService(books.NewService(db, labels), ratings.NewService(db), labels, mediastore.NewLocalResolver("/media/")), db
}

func TestListAvailable_OnlyAvailableCopies(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()

	owner := testutils.CreateUser(t, db, "owner", models.RoleMember)
	reader := testutils.CreateUser(t, db, "reader", models.RoleMember)
	author := testutils.CreateAuthor(t, db, "Leo", "Tolstoy")
	genre := testutils.CreateGenre(t, db, "Classics")

	available := testutils.CreateBookCopy(t, db, owner, "Anna Karenina", models.BookStatusAvailable, func(b *models.BookCopy) {
		b.AuthorID = &author.ID
		cover := "covers/anna.jpg"
		b.CoverImage = &cover
	})
	testutils.LinkGenre(t, db, available, genre)
	testutils.CreateBookCopy(t, db, owner, "War and Peace", models.BookStatusOnLoan, func(b *models.BookCopy) { b.LoanerID = &reader.ID })
	testutils.CreateBookCopy(t, db, owner, "Resurrection", models.BookStatusWithdrawn)

	ratingService := ratings.NewService(db)
	five, three := 5, 3
	_, err := ratingService.Rate(ctx, available.ID, owner.ID, &five)
	require.NoError(t, err)
	_, err = ratingService.Rate(ctx, available.ID, reader.ID, &three)
	require.NoError(t, err)

	entries, total, err := svc.ListAvailable(ctx, ListEntriesOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "Anna Karenina", entry.Title)
	assert.Equal(t, "Tolstoy, Leo", entry.Author)
	assert.Equal(t, "owner", entry.Owner)
	assert.Equal(t, []string{"Classics"}, entry.Genres)
	assert.InDelta(t, 4.0, entry.AverageRating, 0.001)
	require.NotNil(t, entry.CoverURL)
	assert.Equal(t, "/media/covers/anna.jpg", *entry.CoverURL)
}

func TestHandlerListPage_EmptyForAnonymousVisitors(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	owner := testutils.CreateUser(t, db, "owner", models.RoleMember)
	testutils.CreateBookCopy(t, db, owner, "Oblomov", models.BookStatusAvailable)
	h := &handler{svc}
	e := testutils.NewEcho(t)

	c, rec := testutils.NewContext(e, http.MethodGet, "/books", "")
	require.NoError(t, h.listPage(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No books to show.")
	assert.NotContains(t, rec.Body.String(), "Oblomov")

	c, rec = testutils.NewContext(e, http.MethodGet, "/books", "")
	c.Set("user", owner)
	require.NoError(t, h.listPage(c))
	assert.Contains(t, rec.Body.String(), "Oblomov")
}

func TestHandlerListPage_EmptyForDeactivatedUsers(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	owner := testutils.CreateUser(t, db, "owner", models.RoleMember)
	former := testutils.CreateUser(t, db, "former", models.RoleMember)
	testutils.CreateBookCopy(t, db, owner, "Dead Souls", models.BookStatusAvailable)

	authService := auth.NewService(db, "test-secret")
	page := auth.NewMiddleware(authService).AuthenticateOptional((&handler{svc}).listPage)
	e := testutils.NewEcho(t)

	render := func(user *models.User) string {
		token, err := authService.GenerateToken(user)
		require.NoError(t, err)
		c, rec := testutils.NewContext(e, http.MethodGet, "/books", "")
		c.Request().AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
		require.NoError(t, page(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		return rec.Body.String()
	}

	assert.Contains(t, render(former), "Dead Souls")

	_, err := db.NewUpdate().Model(former).Set("is_active = ?", false).WherePK().Exec(ctx)
	require.NoError(t, err)

	body := render(former)
	assert.Contains(t, body, "No books to show.")
	assert.NotContains(t, body, "Dead Souls")
	assert.Contains(t, render(owner), "Dead Souls")
}

func TestHandlerDetailPage(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	owner := testutils.CreateUser(t, db, "owner", models.RoleMember)
	book := testutils.CreateBookCopy(t, db, owner, "Fathers & Sons", models.BookStatusInRepair)
	h := &handler{svc}
	e := testutils.NewEcho(t)

	c, rec := testutils.NewContext(e, http.MethodGet, "/books/"+book.ID, "", "id", book.ID)
	require.NoError(t, h.detailPage(c))
	assert.Contains(t, rec.Body.String(), "Fathers &amp; Sons")
	assert.Contains(t, rec.Body.String(), "In repair")

	c, _ = testutils.NewContext(e, http.MethodGet, "/books/missing", "", "id", "missing")
	err := h.detailPage(c)
	assert.ErrorIs(t, err, errcodes.NotFound("Book copy"))
}

package authors

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/bookcross/bookcross/pkg/errcodes"
	"github.com/bookcross/bookcross/pkg/models"
	"github.com/bookcross/bookcross/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAuthors_OrderedByLastThenFirstName(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	testutils.CreateAuthor(t, db, "Leo", "Tolstoy")
	testutils.CreateAuthor(t, db, "Aleksey", "Tolstoy")
	testutils.CreateAuthor(t, db, "Anton", "Chekhov")

	authors, total, err := svc.ListAuthorsWithTotal(ctx, ListAuthorsOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	names := make([]string, 0, len(authors))
	for _, a := range authors {
		names = append(names, a.DisplayName())
	}
	assert.Equal(t, []string{"Chekhov, Anton", "Tolstoy, Aleksey", "Tolstoy, Leo"}, names)

	search := "tol"
	authors, err = svc.ListAuthors(ctx, ListAuthorsOptions{Search: &search})
	require.NoError(t, err)
	assert.Len(t, authors, 2)
}

func TestRetrieveAuthor_WithBookCopies(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	owner := testutils.CreateUser(t, db, "owner", models.RoleMember)
	author := testutils.CreateAuthor(t, db, "Fyodor", "Dostoevsky")
	withAuthor := func(b *models.BookCopy) { b.AuthorID = &author.ID }
	testutils.CreateBookCopy(t, db, owner, "The Idiot", models.BookStatusAvailable, withAuthor)
	testutils.CreateBookCopy(t, db, owner, "Demons", models.BookStatusOnLoan, withAuthor)
	testutils.CreateBookCopy(t, db, owner, "Anna Karenina", models.BookStatusAvailable)

	got, err := svc.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &author.ID, WithBookCopies: true})
	require.NoError(t, err)
	require.Len(t, got.BookCopies, 2)
	assert.Equal(t, "Demons", got.BookCopies[0].Title)
	assert.Equal(t, "The Idiot", got.BookCopies[1].Title)
}

func TestDeleteAuthor_NullsBookCopies(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	owner := testutils.CreateUser(t, db, "owner", models.RoleMember)
	author := testutils.CreateAuthor(t, db, "Nikolai", "Gogol")
	book := testutils.CreateBookCopy(t, db, owner, "Dead Souls", models.BookStatusAvailable, func(b *models.BookCopy) {
		b.AuthorID = &author.ID
	})

	require.NoError(t, svc.DeleteAuthor(ctx, author.ID))

	kept := &models.BookCopy{}
	err := db.NewSelect().Model(kept).Where("bc.id = ?", book.ID).Scan(ctx)
	require.NoError(t, err)
	assert.Nil(t, kept.AuthorID)

	_, err = svc.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &author.ID})
	assert.ErrorIs(t, err, errcodes.NotFound("Author"))
	assert.ErrorIs(t, svc.DeleteAuthor(ctx, author.ID), errcodes.NotFound("Author"))
}

func TestHandlerCreate_ParsesDates(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	h := &handler{authorService: NewService(db)}
	e := testutils.NewEcho(t)

	c, rec := testutils.NewContext(e, http.MethodPost, "/authors",
		`{"first_name":"Alexander","last_name":"Pushkin","date_of_birth":"1799-06-06","date_of_death":"1837-02-10"}`)
	require.NoError(t, h.create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var author models.Author
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &author))
	require.NotNil(t, author.DateOfBirth)
	assert.Equal(t, 1799, author.DateOfBirth.Year())
}

func TestHandlerCreate_RejectsDeathBeforeBirth(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	h := &handler{authorService: NewService(db)}
	e := testutils.NewEcho(t)

	c, _ := testutils.NewContext(e, http.MethodPost, "/authors",
		`{"last_name":"Nobody","date_of_birth":"1900-01-01","date_of_death":"1800-01-01"}`)
	err := h.create(c)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "date_of_death", codeErr.Field)
}

func TestHandlerUpdate_ClearsDate(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db)
	h := &handler{authorService: svc}
	e := testutils.NewEcho(t)
	ctx := context.Background()

	author := testutils.CreateAuthor(t, db, "Ivan", "Turgenev")
	id := strconv.Itoa(author.ID)

	c, _ := testutils.NewContext(e, http.MethodPatch, "/authors/"+id, `{"date_of_birth":"1818-11-09"}`, "id", id)
	require.NoError(t, h.update(c))

	got, err := svc.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &author.ID})
	require.NoError(t, err)
	require.NotNil(t, got.DateOfBirth)

	c, _ = testutils.NewContext(e, http.MethodPatch, "/authors/"+id, `{"date_of_birth":""}`, "id", id)
	require.NoError(t, h.update(c))

	got, err = svc.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &author.ID})
	require.NoError(t, err)
	assert.Nil(t, got.DateOfBirth)
}

package books

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/bookcross/bookcross/pkg/errcodes"
	"github.com/bookcross/bookcross/pkg/history"
	"github.com/bookcross/bookcross/pkg/locations"
	"github.com/bookcross/bookcross/pkg/mediastore"
	"github.com/bookcross/bookcross/pkg/models"
	"github.com/bookcross/bookcross/pkg/testutils"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type bookCopyJSON struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Status        string   `json:"status"`
	OwnerID       int      `json:"owner_id"`
	LoanerID      *int     `json:"loaner_id"`
	StatusLabel   string   `json:"status_label"`
	TimeRemaining string   `json:"time_remaining"`
	LocationPath  *string  `json:"location_path"`
	CoverURL      *string  `json:"cover_url"`
	Genres        []string `json:"genres"`
}

func newTestHandler(t *testing.T) (*handler, *bun.DB) {
	t.Helper()

	db := testutils.NewTestDB(t)
	labels := newTestLabels(t, "en")

	return &handler{
		bookService:        NewService(db, labels),
		historyService:     history.NewService(db),
		locationService:    locations.NewService(db, 32),
		labeler:            labels,
		media:              mediastore.NewLocalResolver("/media/"),
		reservationTimeout: 24 * time.Hour,
	}, db
}

func newBookContext(t *testing.T, method, target, body string, user *models.User, params ...string) (echo.Context, func() bookCopyJSON) {
	t.Helper()

	c, rec := testutils.NewContext(testutils.NewEcho(t), method, target, body, params...)
	c.Set("user", user)

	return c, func() bookCopyJSON {
		var resp bookCopyJSON
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp
	}
}

func TestHandlerCreate_DefaultsOwnerAndRendersLabels(t *testing.T) {
	t.Parallel()

	h, db := newTestHandler(t)
	owner := testutils.CreateUser(t, db, "owner", models.RoleMember)
	loaner := testutils.CreateUser(t, db, "loaner", models.RoleMember)
	room := testutils.CreateLocation(t, db, owner, "Living room", nil)
	shelf := testutils.CreateLocation(t, db, owner, "Shelf 2", room)
	genre := testutils.CreateGenre(t, db, "Classics")

	body := `{"title":"Middlemarch","status":"reserved","loaner_id":` + itoa(loaner.ID) +
		`,"location_id":` + itoa(shelf.ID) + `,"cover_image":"covers/middlemarch.jpg","genre_ids":[` + itoa(genre.ID) + `]}`
	c, decode := newBookContext(t, http.MethodPost, "/book-copies", body, owner)

	require.NoError(t, h.create(c))
	assert.Equal(t, http.StatusCreated, c.Response().Status)

	resp := decode()
	assert.Equal(t, owner.ID, resp.OwnerID)
	assert.Equal(t, "Reserved", resp.StatusLabel)
	assert.Contains(t, resp.TimeRemaining, "remaining")
	require.NotNil(t, resp.LocationPath)
	assert.Equal(t, "Living room > Shelf 2", *resp.LocationPath)
	require.NotNil(t, resp.CoverURL)
	assert.Equal(t, "/media/covers/middlemarch.jpg", *resp.CoverURL)
	assert.Equal(t, []string{"Classics"}, resp.Genres)
}

func TestHandlerCreate_OnLoanRequiresLoaner(t *testing.T) {
	t.Parallel()

	h, db := newTestHandler(t)
	owner := testutils.CreateUser(t, db, "owner", models.RoleMember)

	c, _ := newBookContext(t, http.MethodPost, "/book-copies", `{"title":"Ulysses","status":"on_loan"}`, owner)

	err := h.create(c)
	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "loaner_id", codeErr.Field)
	assert.Contains(t, codeErr.Message, "loaner_id")
}

func TestHandlerCreate_ForOtherOwnerRequiresAdmin(t *testing.T) {
	t.Parallel()

	h, db := newTestHandler(t)
	member := testutils.CreateUser(t, db, "member", models.RoleMember)
	admin := testutils.CreateUser(t, db, "admin", models.RoleAdmin)
	body := `{"title":"Walden","owner_id":` + itoa(member.ID) + `}`

	c, _ := newBookContext(t, http.MethodPost, "/book-copies", `{"title":"Walden","owner_id":`+itoa(admin.ID)+`}`, member)
	err := h.create(c)
	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusForbidden, codeErr.HTTPCode)

	c, decode := newBookContext(t, http.MethodPost, "/book-copies", body, admin)
	require.NoError(t, h.create(c))
	assert.Equal(t, member.ID, decode().OwnerID)
}

func TestHandlerUpdate_OwnerOrAdmin(t *testing.T) {
	t.Parallel()

	h, db := newTestHandler(t)
	owner := testutils.CreateUser(t, db, "owner", models.RoleMember)
	stranger := testutils.CreateUser(t, db, "stranger", models.RoleMember)
	admin := testutils.CreateUser(t, db, "admin", models.RoleAdmin)
	book := testutils.CreateBookCopy(t, db, owner, "Rebecca", models.BookStatusAvailable)

	c, _ := newBookContext(t, http.MethodPatch, "/book-copies/"+book.ID, `{"status":"in_repair"}`, stranger, "id", book.ID)
	err := h.update(c)
	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusForbidden, codeErr.HTTPCode)

	c, decode := newBookContext(t, http.MethodPatch, "/book-copies/"+book.ID, `{"status":"in_repair"}`, admin, "id", book.ID)
	require.NoError(t, h.update(c))
	resp := decode()
	assert.Equal(t, models.BookStatusInRepair, resp.Status)
	assert.Equal(t, "In repair", resp.StatusLabel)
	assert.Equal(t, "not reserved", resp.TimeRemaining)
}

func TestHandlerUpdate_LoanAndReturn(t *testing.T) {
	t.Parallel()

	h, db := newTestHandler(t)
	owner := testutils.CreateUser(t, db, "owner", models.RoleMember)
	loaner := testutils.CreateUser(t, db, "loaner", models.RoleMember)
	book := testutils.CreateBookCopy(t, db, owner, "Kim", models.BookStatusAvailable)

	c, _ := newBookContext(t, http.MethodPatch, "/book-copies/"+book.ID, `{"status":"on_loan"}`, owner, "id", book.ID)
	err := h.update(c)
	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "loaner_id", codeErr.Field)

	c, decode := newBookContext(t, http.MethodPatch, "/book-copies/"+book.ID, `{"status":"on_loan","loaner_id":`+itoa(loaner.ID)+`}`, owner, "id", book.ID)
	require.NoError(t, h.update(c))
	resp := decode()
	require.NotNil(t, resp.LoanerID)
	assert.Equal(t, loaner.ID, *resp.LoanerID)

	c, decode = newBookContext(t, http.MethodPatch, "/book-copies/"+book.ID, `{"status":"available"}`, owner, "id", book.ID)
	require.NoError(t, h.update(c))
	assert.Nil(t, decode().LoanerID)

	entries := listHistory(t, db, book.ID)
	require.Len(t, entries, 2)
	assert.Equal(t, `Status changed from "On loan" to "Available"`, entries[1].Comment)
}

func TestHandlerUpdate_TitleOnlyWritesNoHistory(t *testing.T) {
	t.Parallel()

	h, db := newTestHandler(t)
	owner := testutils.CreateUser(t, db, "owner", models.RoleMember)
	book := testutils.CreateBookCopy(t, db, owner, "Nostromo", models.BookStatusAvailable)

	c, decode := newBookContext(t, http.MethodPatch, "/book-copies/"+book.ID, `{"title":"Nostromo (2nd ed.)"}`, owner, "id", book.ID)
	require.NoError(t, h.update(c))
	assert.Equal(t, "Nostromo (2nd ed.)", decode().Title)
	assert.Empty(t, listHistory(t, db, book.ID))
}

func TestHandlerUpdate_BlankTitleIsRejected(t *testing.T) {
	t.Parallel()

	h, db := newTestHandler(t)
	owner := testutils.CreateUser(t, db, "owner", models.RoleMember)
	book := testutils.CreateBookCopy(t, db, owner, "Ulysses", models.BookStatusAvailable)

	c, _ := newBookContext(t, http.MethodPatch, "/book-copies/"+book.ID, `{"title":"   "}`, owner, "id", book.ID)
	err := h.update(c)
	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusUnprocessableEntity, codeErr.HTTPCode)
	assert.Equal(t, "title", codeErr.Field)

	c, _ = newBookContext(t, http.MethodPost, "/book-copies", `{"title":" \t "}`, owner)
	err = h.create(c)
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusUnprocessableEntity, codeErr.HTTPCode)
	assert.Equal(t, "title", codeErr.Field)

	c, decode := newBookContext(t, http.MethodPatch, "/book-copies/"+book.ID, `{"title":"  Ulysses (annotated) "}`, owner, "id", book.ID)
	require.NoError(t, h.update(c))
	assert.Equal(t, "Ulysses (annotated)", decode().Title)
}

func TestHandlerDelete_NonOwnerForbidden(t *testing.T) {
	t.Parallel()

	h, db := newTestHandler(t)
	owner := testutils.CreateUser(t, db, "owner", models.RoleMember)
	stranger := testutils.CreateUser(t, db, "stranger", models.RoleMember)
	book := testutils.CreateBookCopy(t, db, owner, "Lolita", models.BookStatusAvailable)

	c, _ := newBookContext(t, http.MethodDelete, "/book-copies/"+book.ID, "", stranger, "id", book.ID)
	require.Error(t, h.deleteBookCopy(c))

	c, _ = newBookContext(t, http.MethodDelete, "/book-copies/"+book.ID, "", owner, "id", book.ID)
	require.NoError(t, h.deleteBookCopy(c))
	assert.Equal(t, http.StatusNoContent, c.Response().Status)
}

func TestHandlerRetrieve_NotFound(t *testing.T) {
	t.Parallel()

	h, db := newTestHandler(t)
	user := testutils.CreateUser(t, db, "reader", models.RoleMember)

	c, _ := newBookContext(t, http.MethodGet, "/book-copies/missing", "", user, "id", "missing")
	err := h.retrieve(c)
	assert.ErrorIs(t, err, errcodes.NotFound("Book copy"))
}

func itoa(i int) string {
	return strconv.Itoa(i)
}

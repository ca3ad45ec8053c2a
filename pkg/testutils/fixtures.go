package testutils

import (
	"context"
	"testing"
	"time"

	"github.com/bookcross/bookcross/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the password of every user created by CreateUser.
const TestPassword = "password123"

// CreateUser inserts an active user with the given role and returns it with
// the role and its permissions loaded. No profile is created.
func CreateUser(t testing.TB, db *bun.DB, username, roleName string) *models.User {
	t.Helper()
	ctx := context.Background()

	role := &models.Role{}
	err := db.NewSelect().Model(role).Where("name = ?", roleName).Scan(ctx)
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)

	now := time.Now()
	user := &models.User{
		CreatedAt:    now,
		UpdatedAt:    now,
		Username:     username,
		PasswordHash: string(hash),
		RoleID:       role.ID,
		IsActive:     true,
	}
	_, err = db.NewInsert().Model(user).Exec(ctx)
	require.NoError(t, err)

	err = db.NewSelect().
		Model(user).
		Relation("Role").
		Relation("Role.Permissions").
		WherePK().
		Scan(ctx)
	require.NoError(t, err)

	return user
}

// CreateBookCopy inserts a copy directly, bypassing lifecycle side effects.
func CreateBookCopy(t testing.TB, db *bun.DB, owner *models.User, title, status string, mods ...func(*models.BookCopy)) *models.BookCopy {
	t.Helper()

	now := time.Now()
	book := &models.BookCopy{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		Title:     title,
		OwnerID:   owner.ID,
		Status:    status,
	}
	for _, mod := range mods {
		mod(book)
	}

	_, err := db.NewInsert().Model(book).Exec(context.Background())
	require.NoError(t, err)

	return book
}

func CreateAuthor(t testing.TB, db *bun.DB, firstName, lastName string) *models.Author {
	t.Helper()

	now := time.Now()
	author := &models.Author{CreatedAt: now, UpdatedAt: now, FirstName: firstName, LastName: lastName}
	_, err := db.NewInsert().Model(author).Exec(context.Background())
	require.NoError(t, err)

	return author
}

func CreateGenre(t testing.TB, db *bun.DB, name string) *models.Genre {
	t.Helper()

	now := time.Now()
	genre := &models.Genre{CreatedAt: now, UpdatedAt: now, Name: name}
	_, err := db.NewInsert().Model(genre).Exec(context.Background())
	require.NoError(t, err)

	return genre
}

// LinkGenre attaches a genre to a book copy.
func LinkGenre(t testing.TB, db *bun.DB, book *models.BookCopy, genre *models.Genre) {
	t.Helper()

	_, err := db.NewInsert().
		Model(&models.BookCopyGenre{BookCopyID: book.ID, GenreID: genre.ID}).
		Exec(context.Background())
	require.NoError(t, err)
}

func CreateLocation(t testing.TB, db *bun.DB, owner *models.User, title string, parent *models.Location) *models.Location {
	t.Helper()

	now := time.Now()
	location := &models.Location{CreatedAt: now, UpdatedAt: now, OwnerID: owner.ID, Title: title}
	if parent != nil {
		location.ParentID = &parent.ID
	}
	_, err := db.NewInsert().Model(location).Exec(context.Background())
	require.NoError(t, err)

	return location
}

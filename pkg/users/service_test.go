package users

import (
	"context"
	"testing"

	"github.com/bookcross/bookcross/pkg/errcodes"
	"github.com/bookcross/bookcross/pkg/models"
	"github.com/bookcross/bookcross/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func getRoleIDByName(ctx context.Context, t *testing.T, db *bun.DB, roleName string) int {
	t.Helper()

	role := new(models.Role)
	err := db.NewSelect().
		Model(role).
		Where("name = ?", roleName).
		Scan(ctx)
	require.NoError(t, err)

	return role.ID
}

func countProfiles(ctx context.Context, t *testing.T, db *bun.DB, userID int) int {
	t.Helper()

	count, err := db.NewSelect().
		Model((*models.Profile)(nil)).
		Where("pr.user_id = ?", userID).
		Count(ctx)
	require.NoError(t, err)

	return count
}

func TestServiceCreate_CreatesExactlyOneEmptyProfile(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user, err := svc.Create(ctx, CreateUserOptions{
		Username: "newreader",
		Password: "password123",
		RoleID:   getRoleIDByName(ctx, t, db, models.RoleMember),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, countProfiles(ctx, t, db, user.ID))
	require.NotNil(t, user.Profile)
	assert.False(t, user.Profile.HasPhoto())
	assert.Nil(t, user.Profile.DateOfBirth)
}

func TestServiceCreate_RejectsDuplicateUsername(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	testutils.CreateUser(t, db, "taken", models.RoleMember)

	_, err := svc.Create(ctx, CreateUserOptions{
		Username: "TAKEN",
		Password: "password123",
		RoleID:   getRoleIDByName(ctx, t, db, models.RoleMember),
	})

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "username", codeErr.Field)
}

func TestServiceCreate_SetsMustChangePassword(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user, err := svc.Create(ctx, CreateUserOptions{
		Username:             "testuser",
		Password:             "password123",
		RoleID:               getRoleIDByName(ctx, t, db, models.RoleMember),
		RequirePasswordReset: true,
	})
	require.NoError(t, err)

	assert.True(t, user.MustChangePassword)
}

func TestServiceUpdate_ResavesProfile(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	// Accounts without a profile get one on their next save.
	user := testutils.CreateUser(t, db, "legacy", models.RoleMember)
	assert.Equal(t, 0, countProfiles(ctx, t, db, user.ID))

	email := "legacy@example.com"
	user.Email = &email
	err := svc.Update(ctx, user, UpdateOptions{Columns: []string{"email"}})
	require.NoError(t, err)
	assert.Equal(t, 1, countProfiles(ctx, t, db, user.ID))

	err = svc.Update(ctx, user, UpdateOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, countProfiles(ctx, t, db, user.ID))

	updated, err := svc.Retrieve(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.Email)
	assert.Equal(t, email, *updated.Email)
}

func TestServiceResetPassword_UpdatesMustChangePassword(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user, err := svc.Create(ctx, CreateUserOptions{
		Username:             "testuser",
		Password:             "password123",
		RoleID:               getRoleIDByName(ctx, t, db, models.RoleMember),
		RequirePasswordReset: true,
	})
	require.NoError(t, err)

	err = svc.ResetPassword(ctx, user.ID, "newpassword123", false)
	require.NoError(t, err)

	updatedUser, err := svc.Retrieve(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, updatedUser.MustChangePassword)

	passwordValid, err := svc.VerifyPassword(ctx, user.ID, "newpassword123")
	require.NoError(t, err)
	assert.True(t, passwordValid)

	err = svc.ResetPassword(ctx, user.ID, "anotherpassword123", true)
	require.NoError(t, err)

	updatedUser, err = svc.Retrieve(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, updatedUser.MustChangePassword)
	assert.Equal(t, 1, countProfiles(ctx, t, db, user.ID))
}

func TestServiceDeactivate(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user := testutils.CreateUser(t, db, "leaving", models.RoleMember)

	require.NoError(t, svc.Deactivate(ctx, user.ID))

	updated, err := svc.Retrieve(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, 1, countProfiles(ctx, t, db, user.ID))
}

func TestServiceDelete_Cascades(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	owner, err := svc.Create(ctx, CreateUserOptions{
		Username: "owner",
		Password: "password123",
		RoleID:   getRoleIDByName(ctx, t, db, models.RoleMember),
	})
	require.NoError(t, err)
	other := testutils.CreateUser(t, db, "other", models.RoleMember)

	shelf := testutils.CreateLocation(t, db, owner, "Shelf", nil)
	owned := testutils.CreateBookCopy(t, db, owner, "Owned", models.BookStatusAvailable, func(b *models.BookCopy) {
		b.LocationID = &shelf.ID
	})
	borrowed := testutils.CreateBookCopy(t, db, other, "Borrowed", models.BookStatusOnLoan, func(b *models.BookCopy) {
		b.LoanerID = &owner.ID
	})

	_, err = db.NewInsert().Model(&models.Rating{BookCopyID: borrowed.ID, UserID: owner.ID, Value: 4}).Exec(ctx)
	require.NoError(t, err)
	_, err = db.NewInsert().Model(&models.Favorite{BookCopyID: borrowed.ID, UserID: owner.ID}).Exec(ctx)
	require.NoError(t, err)
	_, err = db.NewInsert().Model(&models.HistoryEntry{BookCopyID: &borrowed.ID, LoanerID: &owner.ID, Comment: "lent"}).Exec(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, owner.ID))

	_, err = svc.Retrieve(ctx, owner.ID)
	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "not_found", codeErr.Code)

	exists, err := db.NewSelect().Model((*models.BookCopy)(nil)).Where("id = ?", owned.ID).Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = db.NewSelect().Model((*models.Location)(nil)).Where("id = ?", shelf.ID).Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)

	remaining := &models.BookCopy{}
	err = db.NewSelect().Model(remaining).Where("bc.id = ?", borrowed.ID).Scan(ctx)
	require.NoError(t, err)
	assert.Nil(t, remaining.LoanerID)

	for _, model := range []interface{}{(*models.Rating)(nil), (*models.Favorite)(nil), (*models.Profile)(nil)} {
		count, err := db.NewSelect().Model(model).Where("user_id = ?", owner.ID).Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	}

	entry := &models.HistoryEntry{}
	err = db.NewSelect().Model(entry).Where("he.book_copy_id = ?", borrowed.ID).Scan(ctx)
	require.NoError(t, err)
	assert.Nil(t, entry.LoanerID)
}

func TestServiceDelete_NotFound(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db)

	err := svc.Delete(context.Background(), 9999)
	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "not_found", codeErr.Code)
}

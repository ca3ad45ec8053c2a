package roles

import (
	"context"
	"testing"

	"github.com/bookcross/bookcross/pkg/errcodes"
	"github.com/bookcross/bookcross/pkg/models"
	"github.com/bookcross/bookcross/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListRoles_SeededRoles(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db)

	roles, total, err := svc.ListRolesWithTotal(context.Background(), ListRolesOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, roles, 2)

	admin := roles[0]
	assert.Equal(t, models.RoleAdmin, admin.Name)
	assert.True(t, admin.IsSystem)
	assert.True(t, admin.HasPermission(models.ResourceUsers, models.OperationWrite))
	assert.False(t, admin.HasPermission(models.ResourceHistory, models.OperationWrite))
	assert.False(t, roles[1].HasPermission(models.ResourceUsers, models.OperationRead))
}

func TestCreateRole(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, " Librarian ", []PermissionInput{
		{Resource: models.ResourceBooks, Operation: models.OperationRead},
		{Resource: models.ResourceBooks, Operation: models.OperationRead},
		{Resource: models.ResourceGenres, Operation: models.OperationWrite},
	})
	require.NoError(t, err)
	assert.Equal(t, "Librarian", role.Name)
	assert.False(t, role.IsSystem)
	assert.Len(t, role.Permissions, 2)

	_, err = svc.CreateRole(ctx, "librarian", nil)
	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "name", codeErr.Field)

	_, err = svc.CreateRole(ctx, "Archivist", []PermissionInput{{Resource: models.ResourceHistory, Operation: models.OperationWrite}})
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "permissions", codeErr.Field)

	_, err = svc.CreateRole(ctx, "Archivist", []PermissionInput{{Resource: "libraries", Operation: models.OperationRead}})
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "permissions", codeErr.Field)
}

func TestUpdateRole(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, "Reader", []PermissionInput{{Resource: models.ResourceBooks, Operation: models.OperationRead}})
	require.NoError(t, err)

	name := "Borrower"
	permissions := []PermissionInput{
		{Resource: models.ResourceBooks, Operation: models.OperationRead},
		{Resource: models.ResourceBooks, Operation: models.OperationWrite},
	}
	role, err = svc.UpdateRole(ctx, role.ID, &name, &permissions)
	require.NoError(t, err)
	assert.Equal(t, "Borrower", role.Name)
	assert.True(t, role.HasPermission(models.ResourceBooks, models.OperationWrite))

	role, err = svc.UpdateRole(ctx, role.ID, nil, nil)
	require.NoError(t, err)
	assert.Len(t, role.Permissions, 2)
}

func TestSystemRolesCantBeRenamedOrDeleted(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	roles, err := svc.ListRoles(ctx, ListRolesOptions{})
	require.NoError(t, err)
	admin := roles[0]

	name := "superuser"
	_, err = svc.UpdateRole(ctx, admin.ID, &name, nil)
	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, 403, codeErr.HTTPCode)

	err = svc.DeleteRole(ctx, admin.ID)
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, 403, codeErr.HTTPCode)
}

func TestDeleteRole(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, "Guest", []PermissionInput{{Resource: models.ResourceBooks, Operation: models.OperationRead}})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRole(ctx, role.ID))

	count, err := db.NewSelect().Model((*models.Permission)(nil)).Where("role_id = ?", role.ID).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	err = svc.DeleteRole(ctx, role.ID)
	assert.ErrorIs(t, err, errcodes.NotFound("Role"))
}

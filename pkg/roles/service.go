package roles

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/bookcross/bookcross/pkg/errcodes"
	"github.com/bookcross/bookcross/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// Resources lists every resource a permission can be granted on.
var Resources = []string{
	models.ResourceBooks,
	models.ResourceLocations,
	models.ResourceAuthors,
	models.ResourceGenres,
	models.ResourceHistory,
	models.ResourceUsers,
}

type ListRolesOptions struct {
	Limit  *int
	Offset *int

	includeTotal bool
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// CreateRole inserts a custom role with its permissions.
func (svc *Service) CreateRole(ctx context.Context, name string, permissions []PermissionInput) (*models.Role, error) {
	name = strings.TrimSpace(name)
	if err := svc.checkName(ctx, name, 0); err != nil {
		return nil, err
	}
	if err := validatePermissions(permissions); err != nil {
		return nil, err
	}

	now := time.Now()
	role := &models.Role{
		CreatedAt: now,
		UpdatedAt: now,
		Name:      name,
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(role).Returning("*").Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		return insertPermissions(ctx, tx, role.ID, permissions)
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return svc.RetrieveRole(ctx, role.ID)
}

func (svc *Service) RetrieveRole(ctx context.Context, id int) (*models.Role, error) {
	role := &models.Role{}
	err := svc.db.NewSelect().
		Model(role).
		Relation("Permissions", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("p.resource ASC", "p.operation ASC")
		}).
		Where("r.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Role")
		}
		return nil, errors.WithStack(err)
	}
	return role, nil
}

func (svc *Service) ListRoles(ctx context.Context, opts ListRolesOptions) ([]*models.Role, error) {
	r, _, err := svc.listRolesWithTotal(ctx, opts)
	return r, errors.WithStack(err)
}

func (svc *Service) ListRolesWithTotal(ctx context.Context, opts ListRolesOptions) ([]*models.Role, int, error) {
	opts.includeTotal = true
	return svc.listRolesWithTotal(ctx, opts)
}

func (svc *Service) listRolesWithTotal(ctx context.Context, opts ListRolesOptions) ([]*models.Role, int, error) {
	roles := []*models.Role{}
	var total int
	var err error

	q := svc.db.NewSelect().
		Model(&roles).
		Relation("Permissions").
		Order("r.id ASC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return roles, total, nil
}

// UpdateRole renames the role and, when permissions is non-nil, replaces its
// permissions. System roles keep their name.
func (svc *Service) UpdateRole(ctx context.Context, id int, name *string, permissions *[]PermissionInput) (*models.Role, error) {
	role, err := svc.RetrieveRole(ctx, id)
	if err != nil {
		return nil, err
	}

	columns := []string{"updated_at"}
	if name != nil && strings.TrimSpace(*name) != role.Name {
		if role.IsSystem {
			return nil, errcodes.Forbidden("Renaming system roles")
		}
		role.Name = strings.TrimSpace(*name)
		if err := svc.checkName(ctx, role.Name, id); err != nil {
			return nil, err
		}
		columns = append(columns, "name")
	}
	if permissions != nil {
		if err := validatePermissions(*permissions); err != nil {
			return nil, err
		}
	}

	role.UpdatedAt = time.Now()
	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewUpdate().Model(role).Column(columns...).WherePK().Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if permissions == nil {
			return nil
		}

		_, err = tx.NewDelete().
			Model((*models.Permission)(nil)).
			Where("role_id = ?", id).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		return insertPermissions(ctx, tx, id, *permissions)
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return svc.RetrieveRole(ctx, id)
}

// DeleteRole removes a custom role that no user holds.
func (svc *Service) DeleteRole(ctx context.Context, id int) error {
	role, err := svc.RetrieveRole(ctx, id)
	if err != nil {
		return err
	}
	if role.IsSystem {
		return errcodes.Forbidden("Deleting system roles")
	}

	count, err := svc.db.NewSelect().
		Model((*models.User)(nil)).
		Where("role_id = ?", id).
		Count(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if count > 0 {
		return errcodes.ValidationError(fmt.Sprintf("Role is still assigned to %d user(s)", count))
	}

	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*models.Permission)(nil)).
			Where("role_id = ?", id).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = tx.NewDelete().
			Model((*models.Role)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		return errors.WithStack(err)
	})
	return errors.WithStack(err)
}

func (svc *Service) checkName(ctx context.Context, name string, exceptID int) error {
	if name == "" {
		return errcodes.FieldValidationError("name", `"name" is required`)
	}
	exists, err := svc.db.NewSelect().
		Model((*models.Role)(nil)).
		Where("name = ? COLLATE NOCASE", name).
		Where("id != ?", exceptID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if exists {
		return errcodes.FieldValidationError("name", `"name" is already taken`)
	}
	return nil
}

func validatePermissions(permissions []PermissionInput) error {
	for _, p := range permissions {
		valid := false
		for _, r := range Resources {
			if r == p.Resource {
				valid = true
				break
			}
		}
		if !valid {
			return errcodes.FieldValidationError("permissions", fmt.Sprintf("%q is not a known resource", p.Resource))
		}
		if p.Operation != models.OperationRead && p.Operation != models.OperationWrite {
			return errcodes.FieldValidationError("permissions", fmt.Sprintf("%q is not a known operation", p.Operation))
		}
		// History only grows through book status changes.
		if p.Resource == models.ResourceHistory && p.Operation == models.OperationWrite {
			return errcodes.FieldValidationError("permissions", "history can't be granted write access")
		}
	}
	return nil
}

func insertPermissions(ctx context.Context, tx bun.Tx, roleID int, permissions []PermissionInput) error {
	if len(permissions) == 0 {
		return nil
	}

	seen := map[PermissionInput]bool{}
	rows := make([]*models.Permission, 0, len(permissions))
	for _, p := range permissions {
		if seen[p] {
			continue
		}
		seen[p] = true
		rows = append(rows, &models.Permission{RoleID: roleID, Resource: p.Resource, Operation: p.Operation})
	}

	_, err := tx.NewInsert().Model(&rows).Exec(ctx)
	return errors.WithStack(err)
}

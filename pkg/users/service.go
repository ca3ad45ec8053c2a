package users

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/bookcross/bookcross/pkg/auth"
	"github.com/bookcross/bookcross/pkg/books"
	"github.com/bookcross/bookcross/pkg/errcodes"
	"github.com/bookcross/bookcross/pkg/locations"
	"github.com/bookcross/bookcross/pkg/models"
	"github.com/bookcross/bookcross/pkg/profiles"
	"github.com/bookcross/bookcross/pkg/ratings"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// Service manages accounts. Every write to a user also re-saves that user's
// profile inside the same transaction.
type Service struct {
	db       *bun.DB
	profiles *profiles.Service
}

func NewService(db *bun.DB) *Service {
	return &Service{
		db:       db,
		profiles: profiles.NewService(db),
	}
}

type CreateUserOptions struct {
	Username             string
	Email                *string
	Password             string
	RoleID               int
	RequirePasswordReset bool
}

// Create inserts the user together with an empty profile.
func (svc *Service) Create(ctx context.Context, opts CreateUserOptions) (*models.User, error) {
	if err := svc.checkAvailable(ctx, "username", opts.Username, 0); err != nil {
		return nil, err
	}
	if opts.Email != nil && *opts.Email != "" {
		if err := svc.checkAvailable(ctx, "email", *opts.Email, 0); err != nil {
			return nil, err
		}
	}
	if err := svc.checkRole(ctx, opts.RoleID); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(opts.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		CreatedAt:          now,
		UpdatedAt:          now,
		Username:           opts.Username,
		Email:              opts.Email,
		PasswordHash:       hash,
		RoleID:             opts.RoleID,
		IsActive:           true,
		MustChangePassword: opts.RequirePasswordReset,
	}

	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(user).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
		_, err := svc.profiles.CreateForUser(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return svc.Retrieve(ctx, user.ID)
}

// Retrieve loads the user with role, permissions and profile.
func (svc *Service) Retrieve(ctx context.Context, id int) (*models.User, error) {
	user := &models.User{}
	err := svc.db.NewSelect().
		Model(user).
		Relation("Role").
		Relation("Role.Permissions").
		Relation("Profile").
		Where("u.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errcodes.NotFound("User")
	}
	return user, errors.WithStack(err)
}

type ListOptions struct {
	Limit  int
	Offset int
}

// List pages through users in id order.
func (svc *Service) List(ctx context.Context, opts ListOptions) ([]*models.User, int, error) {
	users := []*models.User{}
	q := svc.db.NewSelect().
		Model(&users).
		Relation("Role").
		Order("u.id ASC")
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}
	return users, total, nil
}

// UpdateOptions names the user columns to write. An empty list still re-saves
// the profile.
type UpdateOptions struct {
	Columns []string
}

func (svc *Service) Update(ctx context.Context, user *models.User, opts UpdateOptions) error {
	for _, col := range opts.Columns {
		var err error
		switch col {
		case "username":
			err = svc.checkAvailable(ctx, "username", user.Username, user.ID)
		case "email":
			if user.Email != nil && *user.Email != "" {
				err = svc.checkAvailable(ctx, "email", *user.Email, user.ID)
			}
		case "role_id":
			err = svc.checkRole(ctx, user.RoleID)
		}
		if err != nil {
			return err
		}
	}

	return svc.save(ctx, user.ID, func(ctx context.Context, tx bun.Tx) error {
		if len(opts.Columns) == 0 {
			return nil
		}
		user.UpdatedAt = time.Now()
		columns := append(append([]string{}, opts.Columns...), "updated_at")
		_, err := tx.NewUpdate().Model(user).Column(columns...).WherePK().Exec(ctx)
		return errors.WithStack(err)
	})
}

// ResetPassword stores a new password and sets whether it has to be changed
// at next login.
func (svc *Service) ResetPassword(ctx context.Context, userID int, password string, requireReset bool) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return svc.set(ctx, userID, map[string]interface{}{
		"password_hash":        hash,
		"must_change_password": requireReset,
	})
}

func (svc *Service) VerifyPassword(ctx context.Context, userID int, password string) (bool, error) {
	var hash string
	err := svc.db.NewSelect().
		Model((*models.User)(nil)).
		Column("password_hash").
		Where("id = ?", userID).
		Scan(ctx, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return false, errcodes.NotFound("User")
	}
	if err != nil {
		return false, errors.WithStack(err)
	}
	return auth.CheckPassword(password, hash), nil
}

// Deactivate blocks the account from logging in while keeping its data.
func (svc *Service) Deactivate(ctx context.Context, userID int) error {
	return svc.set(ctx, userID, map[string]interface{}{"is_active": false})
}

// Delete removes the user for good. Their book copies, locations, ratings,
// favorites and profile go with them; copies and history entries that name
// them as loaner are kept with the loaner cleared.
func (svc *Service) Delete(ctx context.Context, userID int) error {
	if _, err := svc.Retrieve(ctx, userID); err != nil {
		return err
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var owned []string
		err := tx.NewSelect().
			Model((*models.BookCopy)(nil)).
			Column("id").
			Where("owner_id = ?", userID).
			Scan(ctx, &owned)
		if err != nil {
			return errors.WithStack(err)
		}

		steps := []func() error{
			func() error { return books.DeleteBookCopies(ctx, tx, owned) },
			func() error { return locations.DeleteOwnedLocations(ctx, tx, userID) },
			func() error { return ratings.DeleteForUser(ctx, tx, userID) },
			func() error { return profiles.DeleteForUser(ctx, tx, userID) },
			func() error { return clearLoaner(ctx, tx, (*models.BookCopy)(nil), userID) },
			func() error { return clearLoaner(ctx, tx, (*models.HistoryEntry)(nil), userID) },
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}

		_, err = tx.NewDelete().Model((*models.User)(nil)).Where("id = ?", userID).Exec(ctx)
		return errors.WithStack(err)
	})
	return errors.WithStack(err)
}

func clearLoaner(ctx context.Context, tx bun.Tx, model interface{}, userID int) error {
	_, err := tx.NewUpdate().
		Model(model).
		Set("loaner_id = NULL").
		Where("loaner_id = ?", userID).
		Exec(ctx)
	return errors.WithStack(err)
}

// set writes the given columns plus updated_at.
func (svc *Service) set(ctx context.Context, userID int, values map[string]interface{}) error {
	return svc.save(ctx, userID, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewUpdate().Model((*models.User)(nil)).Where("id = ?", userID)
		for col, v := range values {
			q = q.Set("? = ?", bun.Ident(col), v)
		}
		_, err := q.Set("updated_at = ?", time.Now()).Exec(ctx)
		return errors.WithStack(err)
	})
}

// save runs fn and re-saves the user's profile in one transaction.
func (svc *Service) save(ctx context.Context, userID int, fn func(ctx context.Context, tx bun.Tx) error) error {
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := fn(ctx, tx); err != nil {
			return err
		}
		_, err := svc.profiles.SaveForUser(ctx, tx, userID)
		return err
	})
	return errors.WithStack(err)
}

// checkAvailable fails when another user already has value in column,
// ignoring case. exceptID skips the user being updated.
func (svc *Service) checkAvailable(ctx context.Context, column, value string, exceptID int) error {
	q := svc.db.NewSelect().
		Model((*models.User)(nil)).
		Where("? = ? COLLATE NOCASE", bun.Ident(column), value)
	if exceptID != 0 {
		q = q.Where("id != ?", exceptID)
	}
	taken, err := q.Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if taken {
		return errcodes.FieldValidationError(column, strings.ToUpper(column[:1])+column[1:]+" already exists")
	}
	return nil
}

func (svc *Service) checkRole(ctx context.Context, roleID int) error {
	exists, err := svc.db.NewSelect().
		Model((*models.Role)(nil)).
		Where("id = ?", roleID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if !exists {
		return errcodes.FieldValidationError("role_id", "Invalid role ID")
	}
	return nil
}

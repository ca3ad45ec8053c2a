// Package profiles keeps exactly one profile per user account. Account use
// cases call CreateForUser and SaveForUser explicitly, in their own
// transaction.
package profiles

import (
	"context"
	"database/sql"
	"time"

	"github.com/bookcross/bookcross/pkg/errcodes"
	"github.com/bookcross/bookcross/pkg/mediastore"
	"github.com/bookcross/bookcross/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type UpdateProfileOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// CreateForUser creates an empty profile for a freshly inserted user.
func (svc *Service) CreateForUser(ctx context.Context, idb bun.IDB, userID int) (*models.Profile, error) {
	now := time.Now()
	profile := &models.Profile{
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    userID,
	}

	_, err := idb.NewInsert().
		Model(profile).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return profile, nil
}

// SaveForUser re-saves the user's profile after the account was saved,
// creating it if it's missing (e.g. accounts made before profiles existed).
func (svc *Service) SaveForUser(ctx context.Context, idb bun.IDB, userID int) (*models.Profile, error) {
	profile := &models.Profile{}
	err := idb.NewSelect().
		Model(profile).
		Where("pr.user_id = ?", userID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return svc.CreateForUser(ctx, idb, userID)
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}

	profile.UpdatedAt = time.Now()
	_, err = idb.NewUpdate().
		Model(profile).
		Column("updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return profile, nil
}

func (svc *Service) RetrieveProfile(ctx context.Context, userID int) (*models.Profile, error) {
	profile := &models.Profile{}
	err := svc.db.NewSelect().
		Model(profile).
		Where("pr.user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Profile")
		}
		return nil, errors.WithStack(err)
	}
	return profile, nil
}

func (svc *Service) UpdateProfile(ctx context.Context, profile *models.Profile, opts UpdateProfileOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	profile.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.NewUpdate().
		Model(profile).
		Column(columns...).
		WherePK().
		Exec(ctx)
	return errors.WithStack(err)
}

// DeleteForUser is part of the user delete cascade.
func DeleteForUser(ctx context.Context, idb bun.IDB, userID int) error {
	_, err := idb.NewDelete().
		Model((*models.Profile)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	return errors.WithStack(err)
}

// PhotoURL returns the profile photo's URL, or the placeholder image path when
// no photo is set.
func PhotoURL(ctx context.Context, media mediastore.Resolver, profile *models.Profile) (string, error) {
	if !profile.HasPhoto() {
		return models.ProfilePhotoPlaceholder, nil
	}
	url, err := media.URL(ctx, *profile.Photo)
	return url, errors.WithStack(err)
}

package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ProfilePhotoPlaceholder is served for profiles without a photo.
const ProfilePhotoPlaceholder = "media/users/no_image.png"

type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:pr"`

	ID          int        `bun:",pk,nullzero" json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	UserID      int        `bun:",nullzero" json:"user_id"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Photo       *string    `json:"photo"`
}

func (p *Profile) HasPhoto() bool {
	return p.Photo != nil && *p.Photo != ""
}

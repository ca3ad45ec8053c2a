package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Author struct {
	bun.BaseModel `bun:"table:authors,alias:a"`

	ID          int         `bun:",pk,nullzero" json:"id"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	FirstName   string      `json:"first_name"`
	LastName    string      `bun:",nullzero" json:"last_name"`
	DateOfBirth *time.Time  `json:"date_of_birth"`
	DateOfDeath *time.Time  `json:"date_of_death"`
	BookCopies  []*BookCopy `bun:"rel:has-many,join:id=author_id" json:"book_copies,omitempty"`
}

// DisplayName renders the author as "Last, First".
func (a *Author) DisplayName() string {
	if a.FirstName == "" {
		return a.LastName
	}
	return a.LastName + ", " + a.FirstName
}

package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	MinRatingValue     = 1
	MaxRatingValue     = 5
	DefaultRatingValue = MaxRatingValue
)

type Rating struct {
	bun.BaseModel `bun:"table:ratings,alias:ra"`

	ID         int       `bun:",pk,nullzero" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	BookCopyID string    `bun:",nullzero" json:"book_copy_id"`
	UserID     int       `bun:",nullzero" json:"user_id"`
	Value      int       `json:"value"`
}

type Favorite struct {
	bun.BaseModel `bun:"table:favorites,alias:f"`

	ID         int       `bun:",pk,nullzero" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	BookCopyID string    `bun:",nullzero" json:"book_copy_id"`
	UserID     int       `bun:",nullzero" json:"user_id"`
}

package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Genre struct {
	bun.BaseModel `bun:"table:genres,alias:g"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `bun:",nullzero" json:"name"`
	BookCount int       `bun:",scanonly" json:"book_count"`
}

type BookCopyGenre struct {
	bun.BaseModel `bun:"table:book_copy_genres,alias:bcg"`

	ID         int    `bun:",pk,nullzero" json:"id"`
	BookCopyID string `bun:",nullzero" json:"book_copy_id"`
	GenreID    int    `bun:",nullzero" json:"genre_id"`
	Genre      *Genre `bun:"rel:belongs-to,join:genre_id=id" json:"genre,omitempty"`
}

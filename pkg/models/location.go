package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Location struct {
	bun.BaseModel `bun:"table:locations,alias:l"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	OwnerID   int       `json:"owner_id"`
	Title     string    `bun:",nullzero" json:"title"`
	ParentID  *int      `json:"parent_id"`
	IsLeaf    bool      `json:"is_leaf"`
	FullPath  string    `bun:"-" json:"full_path,omitempty"`
}

package models

import (
	"slices"
	"time"

	"github.com/uptrace/bun"
)

// Resources a role can be granted access to.
const (
	ResourceBooks     = "books"
	ResourceLocations = "locations"
	ResourceAuthors   = "authors"
	ResourceGenres    = "genres"
	ResourceHistory   = "history"
	ResourceUsers     = "users"
)

// Permission operations.
const (
	OperationRead  = "read"
	OperationWrite = "write"
)

// Seeded system roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type Role struct {
	bun.BaseModel `bun:"table:roles,alias:r"`

	ID          int           `bun:",pk,nullzero" json:"id"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Name        string        `bun:",nullzero" json:"name"`
	IsSystem    bool          `json:"is_system"`
	Permissions []*Permission `bun:"rel:has-many,join:id=role_id" json:"permissions,omitempty"`
}

type Permission struct {
	bun.BaseModel `bun:"table:permissions,alias:p"`

	ID        int    `bun:",pk,nullzero" json:"id"`
	RoleID    int    `json:"role_id"`
	Resource  string `json:"resource"`
	Operation string `json:"operation"`
}

// HasPermission reports whether the role grants operation on resource.
func (r *Role) HasPermission(resource, operation string) bool {
	return slices.ContainsFunc(r.Permissions, func(p *Permission) bool {
		return p.Resource == resource && p.Operation == operation
	})
}

package roles

import (
	"github.com/bookcross/bookcross/pkg/auth"
	"github.com/bookcross/bookcross/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers the role routes. Roles are part of account
// management, so they're guarded by the users resource.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, authMiddleware *auth.Middleware) *Service {
	roleService := NewService(db)

	h := &handler{roleService}

	write := authMiddleware.RequirePermission(models.ResourceUsers, models.OperationWrite)

	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
	g.POST("", h.create, write)
	g.PATCH("/:id", h.update, write)
	g.DELETE("/:id", h.delete, write)

	return roleService
}

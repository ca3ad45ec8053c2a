package users

import (
	"github.com/bookcross/bookcross/pkg/auth"
	"github.com/bookcross/bookcross/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup mounts user management on g, which must already
// authenticate. Resetting a password is open to every user for their own
// account; the handler checks the rest.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, authMiddleware *auth.Middleware) *Service {
	h := &handler{userService: NewService(db)}

	read := authMiddleware.RequirePermission(models.ResourceUsers, models.OperationRead)
	write := authMiddleware.RequirePermission(models.ResourceUsers, models.OperationWrite)

	g.GET("", h.list, read)
	g.GET("/:id", h.retrieve, read)
	g.POST("", h.create, write)
	g.PATCH("/:id", h.update, write)
	g.DELETE("/:id", h.delete, write)
	g.POST("/:id/deactivate", h.deactivate, write)
	g.POST("/:id/reset-password", h.resetPassword)

	return h.userService
}

package locations

import (
	"github.com/bookcross/bookcross/pkg/auth"
	"github.com/bookcross/bookcross/pkg/config"
	"github.com/bookcross/bookcross/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers location routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, cfg *config.Config, authMiddleware *auth.Middleware) {
	h := &handler{locationService: NewService(db, cfg.LocationMaxDepth)}

	write := authMiddleware.RequirePermission(models.ResourceLocations, models.OperationWrite)

	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
	g.POST("", h.create, write)
	g.PATCH("/:id", h.update, write)
	g.DELETE("/:id", h.delete, write)
}

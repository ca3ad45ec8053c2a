package genres

import (
	"github.com/bookcross/bookcross/pkg/auth"
	"github.com/bookcross/bookcross/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup mounts genre routes on g. Reads rely on the
// group's genres:read check.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, authMiddleware *auth.Middleware) {
	h := &handler{genreService: NewService(db)}
	write := authMiddleware.RequirePermission(models.ResourceGenres, models.OperationWrite)

	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
	g.GET("/:id/book-copies", h.bookCopies)
	g.POST("", h.create, write)
	g.PATCH("/:id", h.update, write)
	g.DELETE("/:id", h.deleteGenre, write)
	g.POST("/:id/merge", h.merge, write)
}

package authors

import (
	"github.com/bookcross/bookcross/pkg/auth"
	"github.com/bookcross/bookcross/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers author routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, authMiddleware *auth.Middleware) {
	authorService := NewService(db)

	h := &handler{
		authorService: authorService,
	}

	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
	g.POST("", h.create, authMiddleware.RequirePermission(models.ResourceAuthors, models.OperationWrite))
	g.PATCH("/:id", h.update, authMiddleware.RequirePermission(models.ResourceAuthors, models.OperationWrite))
	g.DELETE("/:id", h.deleteAuthor, authMiddleware.RequirePermission(models.ResourceAuthors, models.OperationWrite))
}

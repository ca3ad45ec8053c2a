package books

import (
	"github.com/bookcross/bookcross/pkg/auth"
	"github.com/bookcross/bookcross/pkg/config"
	"github.com/bookcross/bookcross/pkg/history"
	"github.com/bookcross/bookcross/pkg/locations"
	"github.com/bookcross/bookcross/pkg/mediastore"
	"github.com/bookcross/bookcross/pkg/models"
	"github.com/bookcross/bookcross/pkg/ratings"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers the book copy routes, including the
// per-copy rating and favorite routes, on a group that already authenticates.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, cfg *config.Config, authMiddleware *auth.Middleware, labeler Labeler, media mediastore.Resolver) *Service {
	bookService := NewService(db, labeler)

	h := &handler{
		bookService:        bookService,
		historyService:     history.NewService(db),
		locationService:    locations.NewService(db, cfg.LocationMaxDepth),
		labeler:            labeler,
		media:              media,
		reservationTimeout: cfg.ReservationTimeout,
	}

	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
	g.GET("/:id/history", h.listHistory, authMiddleware.RequirePermission(models.ResourceHistory, models.OperationRead))
	g.POST("", h.create, authMiddleware.RequirePermission(models.ResourceBooks, models.OperationWrite))
	g.PATCH("/:id", h.update, authMiddleware.RequirePermission(models.ResourceBooks, models.OperationWrite))
	g.DELETE("/:id", h.deleteBookCopy, authMiddleware.RequirePermission(models.ResourceBooks, models.OperationWrite))

	ratings.RegisterBookRoutes(g, db)

	return bookService
}

package ratings

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterBookRoutes adds the rating and favorite routes to the book copies
// group.
func RegisterBookRoutes(g *echo.Group, db *bun.DB) {
	h := &handler{ratingService: NewService(db)}

	g.GET("/:id/rating", h.retrieve)
	g.POST("/:id/rating", h.rate)
	g.POST("/:id/favorite", h.addFavorite)
	g.DELETE("/:id/favorite", h.removeFavorite)
}

// RegisterRoutesWithGroup registers the favorites routes.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	h := &handler{ratingService: NewService(db)}

	g.GET("/count", h.countFavorites)
}

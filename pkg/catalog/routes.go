package catalog

import (
	"github.com/bookcross/bookcross/pkg/auth"
	"github.com/bookcross/bookcross/pkg/books"
	"github.com/bookcross/bookcross/pkg/mediastore"
	"github.com/bookcross/bookcross/pkg/ratings"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes adds the JSON catalog under /api/books and the HTML views
// under /books. Authentication is optional on all of them.
func RegisterRoutes(e *echo.Echo, db *bun.DB, authMiddleware *auth.Middleware, labeler books.Labeler, media mediastore.Resolver) {
	catalogService := NewService(books.NewService(db, labeler), ratings.NewService(db), labeler, media)
	h := &handler{catalogService}

	e.GET("/api/books", h.list, authMiddleware.AuthenticateOptional)
	e.GET("/books", h.listPage, authMiddleware.AuthenticateOptional)
	e.GET("/books/:id", h.detailPage, authMiddleware.AuthenticateOptional)
}

package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bookcross/bookcross/pkg/auth"
	"github.com/bookcross/bookcross/pkg/authors"
	"github.com/bookcross/bookcross/pkg/binder"
	"github.com/bookcross/bookcross/pkg/books"
	"github.com/bookcross/bookcross/pkg/catalog"
	"github.com/bookcross/bookcross/pkg/config"
	"github.com/bookcross/bookcross/pkg/errcodes"
	"github.com/bookcross/bookcross/pkg/genres"
	"github.com/bookcross/bookcross/pkg/history"
	"github.com/bookcross/bookcross/pkg/locations"
	"github.com/bookcross/bookcross/pkg/mediastore"
	"github.com/bookcross/bookcross/pkg/models"
	"github.com/bookcross/bookcross/pkg/profiles"
	"github.com/bookcross/bookcross/pkg/ratings"
	"github.com/bookcross/bookcross/pkg/roles"
	"github.com/bookcross/bookcross/pkg/users"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB, labeler books.Labeler, media mediastore.Resolver) (*http.Server, error) {
	e, err := newEcho(cfg, db, labeler, media)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func newEcho(cfg *config.Config, db *bun.DB, labeler books.Labeler, media mediastore.Resolver) (*echo.Echo, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b
	e.JSONSerializer = binder.JSONSerializer{}

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)
	config.RegisterRoutes(e, cfg)

	authMiddleware := auth.RegisterRoutes(e, db, cfg.JWTSecret)

	catalog.RegisterRoutes(e, db, authMiddleware, labeler, media)

	registerProtectedRoutes(e, db, cfg, authMiddleware, labeler, media)

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	return e, nil
}

// registerProtectedRoutes registers the JSON API groups. Every group requires
// an authenticated, active user; groups backed by a resource also require
// read access to it.
func registerProtectedRoutes(e *echo.Echo, db *bun.DB, cfg *config.Config, authMiddleware *auth.Middleware, labeler books.Labeler, media mediastore.Resolver) {
	group := func(prefix, resource string) *echo.Group {
		g := e.Group(prefix)
		g.Use(authMiddleware.Authenticate)
		if resource != "" {
			g.Use(authMiddleware.RequirePermission(resource, models.OperationRead))
		}
		return g
	}

	locations.RegisterRoutesWithGroup(group("/locations", models.ResourceLocations), db, cfg, authMiddleware)
	authors.RegisterRoutesWithGroup(group("/authors", models.ResourceAuthors), db, authMiddleware)
	genres.RegisterRoutesWithGroup(group("/genres", models.ResourceGenres), db, authMiddleware)
	books.RegisterRoutesWithGroup(group("/book-copies", models.ResourceBooks), db, cfg, authMiddleware, labeler, media)
	history.RegisterRoutesWithGroup(group("/history", models.ResourceHistory), db)
	ratings.RegisterRoutesWithGroup(group("/favorites", models.ResourceBooks), db)
	profiles.RegisterRoutesWithGroup(group("/profile", ""), db, media)
	roles.RegisterRoutesWithGroup(group("/roles", models.ResourceUsers), db, authMiddleware)

	// Users can reach their own password reset without users access, so the
	// users routes check permissions per route.
	users.RegisterRoutesWithGroup(group("/users", ""), db, authMiddleware)
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}

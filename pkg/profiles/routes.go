package profiles

import (
	"github.com/bookcross/bookcross/pkg/mediastore"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers the current user's profile routes.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, media mediastore.Resolver) {
	h := &handler{
		profileService: NewService(db),
		media:          media,
	}

	g.GET("", h.retrieve)
	g.POST("", h.update)
}

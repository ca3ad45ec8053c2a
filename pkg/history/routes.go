package history

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers history routes on a pre-configured group.
// There is intentionally no write route.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	h := &handler{historyService: NewService(db)}

	g.GET("", h.list)
}

package auth

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes adds the session routes under /auth and returns the
// middleware the rest of the API authenticates with.
func RegisterRoutes(e *echo.Echo, db *bun.DB, jwtSecret string) *Middleware {
	authService := NewService(db, jwtSecret)
	h := &handler{authService}

	g := e.Group("/auth")
	g.GET("/status", h.status)
	g.POST("/setup", h.setup)
	g.POST("/login", h.login)
	g.POST("/logout", h.logout)
	g.GET("/me", h.me)

	return NewMiddleware(authService)
}

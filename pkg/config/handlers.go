package config

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	configService *Service
}

// retrieve serves the settings the web client needs to render labels and
// media links. Secrets never leave the Config struct.
func (h *handler) retrieve(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	return errors.WithStack(c.JSON(http.StatusOK, h.configService.RetrievePublicConfig()))
}

package errcodes

import (
	"fmt"
	"net/http"

	"github.com/iancoleman/strcase"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/errutils"
)

// Handler renders errors returned by handlers as
// {"error": {"code", "message", "status_code", "field"}}.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

type errorBody struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
	Field      string `json:"field,omitempty"`
}

// Handle is used as echo's HTTPErrorHandler. Anything that is neither an
// *Error nor an *echo.HTTPError is reported as a 500 without leaking its text.
func (h *Handler) Handle(err error, c echo.Context) {
	log := logger.FromEchoContext(c)
	if errutils.IsIgnorableErr(err) {
		log.Err(err).Warn("client went away")
		return
	}
	if c.Response().Committed {
		log.Err(err).Warn("error after response was written")
		return
	}

	body := describe(err)
	if body.StatusCode == http.StatusInternalServerError {
		log.Err(err).Error("server error")
	}

	if err := c.JSON(body.StatusCode, map[string]errorBody{"error": body}); err != nil {
		log.Err(errors.WithStack(err)).Error("failed to write error response")
	}
}

func describe(err error) errorBody {
	var coded *Error
	if errors.As(err, &coded) {
		return errorBody{
			Code:       coded.Code,
			Message:    coded.Message,
			StatusCode: coded.HTTPCode,
			Field:      coded.Field,
		}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code != http.StatusInternalServerError {
		msg := fmt.Sprint(he.Message)
		return errorBody{
			Code:       strcase.ToSnake(msg),
			Message:    msg,
			StatusCode: he.Code,
		}
	}

	return errorBody{
		Code:       "internal_server_error",
		Message:    "Internal Server Error",
		StatusCode: http.StatusInternalServerError,
	}
}

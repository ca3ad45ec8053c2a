package testutils

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bookcross/bookcross/pkg/binder"
	"github.com/bookcross/bookcross/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

// NewEcho returns an echo instance wired with the same binder, serializer and
// error handler as the server.
func NewEcho(t testing.TB) *echo.Echo {
	t.Helper()

	b, err := binder.New()
	require.NoError(t, err)

	e := echo.New()
	e.Binder = b
	e.JSONSerializer = binder.JSONSerializer{}
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	return e
}

// NewContext builds an echo context for the request, optionally with path
// params given as name/value pairs.
func NewContext(e *echo.Echo, method, target, body string, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, nil)
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if len(params) > 0 {
		names := make([]string, 0, len(params)/2)
		values := make([]string, 0, len(params)/2)
		for i := 0; i+1 < len(params); i += 2 {
			names = append(names, params[i])
			values = append(values, params[i+1])
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}

	return c, rec
}

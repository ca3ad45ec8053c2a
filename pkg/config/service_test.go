package config

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrievePublicConfig(t *testing.T) {
	cfg := NewForTest()
	cfg.ReservationTimeout = 36 * time.Hour
	cfg.Locale = "ru"

	pub := NewService(cfg).RetrievePublicConfig()
	assert.Equal(t, "ru", pub.Locale)
	assert.Equal(t, 36*60, pub.ReservationTimeoutMinutes)
	assert.Equal(t, "dev", pub.Version)
}

func TestHandlerRetrieve_DoesNotExposeSecrets(t *testing.T) {
	e := echo.New()
	RegisterRoutes(e, NewForTest())

	req := httptest.NewRequest(http.MethodGet, "/config", nil)
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"reservation_timeout_minutes":1440`)
	assert.NotContains(t, rr.Body.String(), "test-secret")
	assert.Equal(t, "no-cache", rr.Header().Get(echo.HeaderCacheControl))
}

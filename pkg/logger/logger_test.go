package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromStdContext(t *testing.T) {
	assert.Same(t, GetLogger(), FromStdContext(context.Background()))

	l := zap.NewExample()
	assert.Same(t, l, FromStdContext(WithContext(context.Background(), l)))
}

func TestMiddleware_LogsRealStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	reqLogger := zap.New(core)

	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("logger", reqLogger)
			return next(c)
		}
	})
	e.Use(Middleware())
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, errors.New("short and stout"))
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	entries := logs.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, http.StatusTeapot, entries[0].ContextMap()["status"])
	assert.Equal(t, "/boom", entries[0].ContextMap()["path"])
}

func TestInitLogger(t *testing.T) {
	t.Cleanup(func() { log = zap.NewNop() })

	require.NoError(t, InitLogger(&LogConfig{Level: "warn", Environment: "production", ServiceName: "storefront"}))
	assert.False(t, GetLogger().Core().Enabled(zap.InfoLevel))
	assert.True(t, GetLogger().Core().Enabled(zap.WarnLevel))
}

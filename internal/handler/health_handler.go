package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthCheck returns the health check endpoint for serviceName
func HealthCheck(serviceName string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"status":  "healthy",
			"service": serviceName,
		})
	}
}

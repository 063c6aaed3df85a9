package middleware

import (
	"net/http"
	"strings"

	"storefront-service/pkg/jwtutil"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// OptionalAuthMiddleware authenticates requests that carry a bearer token and
// lets the rest through as anonymous. A token that is present but invalid is
// rejected rather than downgraded to anonymous.
func OptionalAuthMiddleware(jwtUtil *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return next(c)
			}

			log := logger.FromContext(c)

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				prometheus.RecordAuth(false)
				log.Warn("Invalid Authorization header format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
			}

			claims, err := jwtUtil.ValidateToken(parts[1])
			if err != nil {
				prometheus.RecordAuth(false)
				log.Warn("Invalid JWT token", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}
			prometheus.RecordAuth(true)

			c.Set("user_id", claims.UserID)
			c.Set("email", claims.Email)

			// Re-scope the request logger to the user
			userLog := log.With(zap.Uint("user_id", claims.UserID))
			c.Set("logger", userLog)
			c.SetRequest(c.Request().WithContext(logger.WithContext(c.Request().Context(), userLog)))

			return next(c)
		}
	}
}

// GetUserIDFromContext retrieves the authenticated user ID from the context
// Returns 0, false for anonymous requests
func GetUserIDFromContext(c echo.Context) (uint, bool) {
	userID, ok := c.Get("user_id").(uint)
	return userID, ok && userID != 0
}

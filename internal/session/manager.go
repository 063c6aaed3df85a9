package session

import (
	"errors"
	"net/http"
	"time"

	"storefront-service/pkg/config"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// contextKey caches the resolved token for the rest of the request
const contextKey = "session_token"

// Manager ties a Store to the session cookie
type Manager struct {
	store      Store
	cookieName string
	ttl        time.Duration
}

// NewManager creates a Manager for cfg's cookie name and TTL
func NewManager(store Store, cfg *config.SessionConfig) *Manager {
	return &Manager{
		store:      store,
		cookieName: cfg.CookieName,
		ttl:        cfg.TTL,
	}
}

// Current returns the request's valid session token, or ErrNoSession when
// the cookie is absent, malformed or expired. It never creates a session.
func (m *Manager) Current(c echo.Context) (string, error) {
	if token, ok := c.Get(contextKey).(string); ok && token != "" {
		return token, nil
	}

	cookie, err := c.Cookie(m.cookieName)
	if err != nil || !wellFormed(cookie.Value) {
		return "", ErrNoSession
	}

	ok, err := m.store.Exists(c.Request().Context(), cookie.Value)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNoSession
	}

	c.Set(contextKey, cookie.Value)
	return cookie.Value, nil
}

// Ensure returns the request's session token, issuing a new one and setting
// the cookie when there is none.
func (m *Manager) Ensure(c echo.Context) (string, error) {
	token, err := m.Current(c)
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, ErrNoSession) {
		return "", err
	}

	token, err = m.store.Create(c.Request().Context())
	if err != nil {
		return "", err
	}

	c.SetCookie(&http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		Expires:  time.Now().Add(m.ttl),
		HttpOnly: true,
		Secure:   c.Scheme() == "https",
		SameSite: http.SameSiteLaxMode,
	})
	c.Set(contextKey, token)

	prometheus.RecordSessionCreated()
	logger.FromContext(c).Debug("Anonymous session issued", zap.String("session", token[:6]))
	return token, nil
}

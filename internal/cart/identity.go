package cart

import (
	"errors"
	"fmt"

	"storefront-service/internal/model"
)

// ErrNoIdentity is returned when a cart operation runs without a requester
var ErrNoIdentity = errors.New("cart identity has neither user nor session token")

// Identity is who a request acts for: an authenticated user or an anonymous
// session. Build one with User or Anonymous; the zero value is invalid.
type Identity struct {
	userID       uint
	sessionToken string
}

// User returns the identity of an authenticated user
func User(userID uint) Identity {
	return Identity{userID: userID}
}

// Anonymous returns the identity of a visitor holding a session token
func Anonymous(sessionToken string) Identity {
	return Identity{sessionToken: sessionToken}
}

// IsAuthenticated reports whether the identity is a user
func (i Identity) IsAuthenticated() bool {
	return i.userID != 0
}

// UserID is zero for anonymous identities
func (i Identity) UserID() uint {
	return i.userID
}

// SessionToken is empty for authenticated identities
func (i Identity) SessionToken() string {
	return i.sessionToken
}

// Valid reports whether the identity can own a cart
func (i Identity) Valid() bool {
	return i.userID != 0 || i.sessionToken != ""
}

// Kind is "user" or "session", used as a metrics label
func (i Identity) Kind() string {
	if i.IsAuthenticated() {
		return "user"
	}
	return "session"
}

// Owns reports whether c belongs to this identity. An authenticated user never
// owns a session cart, even one created earlier in the same browser.
func (i Identity) Owns(c *model.Cart) bool {
	if c == nil {
		return false
	}
	if i.IsAuthenticated() {
		return c.UserID != nil && *c.UserID == i.userID
	}
	return i.sessionToken != "" && c.SessionToken != nil && *c.SessionToken == i.sessionToken
}

func (i Identity) String() string {
	if i.IsAuthenticated() {
		return fmt.Sprintf("user:%d", i.userID)
	}
	if len(i.sessionToken) > 6 {
		return "session:" + i.sessionToken[:6] + "…"
	}
	return "session:" + i.sessionToken
}

// newCart returns an unsaved cart keyed by this identity
func (i Identity) newCart() model.Cart {
	if i.IsAuthenticated() {
		id := i.userID
		return model.Cart{UserID: &id}
	}
	token := i.sessionToken
	return model.Cart{SessionToken: &token}
}

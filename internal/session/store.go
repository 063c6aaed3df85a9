package session

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrNoSession is returned when a request carries no usable session token
var ErrNoSession = errors.New("no session")

// Store issues and checks anonymous session tokens
type Store interface {
	// Create issues a new token valid for the store's TTL
	Create(ctx context.Context) (string, error)
	// Exists reports whether token was issued and has not expired
	Exists(ctx context.Context, token string) (bool, error)
}

// NewToken returns 32 lowercase hex characters
func NewToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// wellFormed rejects cookie values that NewToken could not have produced
func wellFormed(token string) bool {
	if len(token) != 32 {
		return false
	}
	for _, r := range token {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

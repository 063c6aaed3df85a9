package cart

import (
	"testing"

	"storefront-service/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestIdentity_Owns(t *testing.T) {
	uid := uint(5)
	other := uint(6)
	token := "abc123"
	otherToken := "zzz999"

	userCart := &model.Cart{UserID: &uid}
	sessionCart := &model.Cart{SessionToken: &token}

	assert.True(t, User(5).Owns(userCart))
	assert.False(t, User(5).Owns(&model.Cart{UserID: &other}))
	assert.False(t, User(5).Owns(sessionCart), "users do not own session carts")

	assert.True(t, Anonymous(token).Owns(sessionCart))
	assert.False(t, Anonymous(otherToken).Owns(sessionCart))
	assert.False(t, Anonymous(token).Owns(userCart))
	assert.False(t, Anonymous("").Owns(&model.Cart{}))
	assert.False(t, User(5).Owns(nil))
}

func TestIdentity_Accessors(t *testing.T) {
	u := User(9)
	assert.True(t, u.IsAuthenticated())
	assert.True(t, u.Valid())
	assert.Equal(t, "user", u.Kind())
	assert.Equal(t, "user:9", u.String())

	a := Anonymous("0123456789abcdef")
	assert.False(t, a.IsAuthenticated())
	assert.Equal(t, "session", a.Kind())
	assert.Equal(t, "session:012345…", a.String())

	assert.False(t, Identity{}.Valid())
}

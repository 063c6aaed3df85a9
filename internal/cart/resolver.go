package cart

import (
	"context"

	"storefront-service/internal/model"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"

	"go.uber.org/zap"
)

// Resolver maps an identity to exactly one cart
type Resolver struct {
	repo Repository
}

// NewResolver creates a Resolver over repo
func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// ResolveCart returns the identity's cart with items loaded, creating an
// empty cart on first use. Anonymous carts are never merged into a user's
// cart on login.
func (r *Resolver) ResolveCart(ctx context.Context, identity Identity) (*model.Cart, error) {
	if !identity.Valid() {
		return nil, ErrNoIdentity
	}

	cart, created, err := r.repo.FindOrCreate(ctx, identity)
	if err != nil {
		return nil, err
	}
	if created {
		prometheus.RecordCartCreated(identity.Kind())
		logger.FromStdContext(ctx).Info("Cart created",
			zap.Uint("cart_id", cart.ID),
			zap.String("identity", identity.Kind()))
		// nothing to load yet
		cart.Items = []model.CartItem{}
		return cart, nil
	}

	return r.repo.Load(ctx, cart.ID)
}

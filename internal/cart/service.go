package cart

import (
	"context"
	"errors"

	"storefront-service/internal/catalog"
	"storefront-service/internal/model"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Outcome says what a mutation did
type Outcome string

const (
	OutcomeAdded    Outcome = "added"
	OutcomeUpdated  Outcome = "updated"
	OutcomeRemoved  Outcome = "removed"
	OutcomeNotOwner Outcome = "not_owner"
	OutcomeNotFound Outcome = "not_found"
)

// Summary is a cart's totals after a mutation
type Summary struct {
	CartID     uint
	TotalItems int
	TotalPrice decimal.Decimal
}

// Summarize computes totals over the cart's loaded items
func Summarize(c *model.Cart) *Summary {
	return &Summary{
		CartID:     c.ID,
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice(),
	}
}

// Result describes a remove or update. Summary is nil unless the mutation
// was applied. ItemTotal is the line total after an update, zero otherwise.
type Result struct {
	Outcome   Outcome
	Summary   *Summary
	ItemTotal decimal.Decimal
}

// ProductLookup finds products that may be put in a cart
type ProductLookup interface {
	GetAvailableProduct(ctx context.Context, id uint) (*model.Product, error)
}

// Service applies add, update and remove to cart lines
type Service struct {
	repo     Repository
	products ProductLookup
}

// NewService creates a Service
func NewService(repo Repository, products ProductLookup) *Service {
	return &Service{repo: repo, products: products}
}

// ErrInvalidQuantity is returned for a quantity outside 1..model.MaxItemQuantity
// on add, or above model.MaxItemQuantity on update
var ErrInvalidQuantity = errors.New("quantity out of range")

// AvailableProduct returns the product if it can be put in a cart. Callers
// check it before resolving a cart so an unknown product creates nothing.
func (s *Service) AvailableProduct(ctx context.Context, productID uint) (*model.Product, error) {
	product, err := s.products.GetAvailableProduct(ctx, productID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		prometheus.RecordCartOperation("add", string(OutcomeNotFound))
	}
	if err != nil {
		return nil, err
	}
	return product, nil
}

// AddItem adds quantity of product to the cart. Repeated adds of the same
// product accumulate on one line up to model.MaxItemQuantity. Stock is not
// checked.
func (s *Service) AddItem(ctx context.Context, cart *model.Cart, product *model.Product, quantity int) (*Summary, error) {
	if quantity < 1 || quantity > model.MaxItemQuantity {
		return nil, ErrInvalidQuantity
	}

	item, err := s.repo.UpsertItem(ctx, cart.ID, product.ID, quantity)
	if errors.Is(err, ErrQuantityLimit) {
		prometheus.RecordCartOperation("add", "limit")
		logger.FromStdContext(ctx).Info("Cart line at quantity limit",
			zap.Uint("cart_id", cart.ID),
			zap.Uint("product_id", product.ID),
			zap.Int("requested", quantity))
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	refreshed, err := s.repo.Load(ctx, cart.ID)
	if err != nil {
		return nil, err
	}

	prometheus.RecordCartOperation("add", string(OutcomeAdded))
	logger.FromStdContext(ctx).Info("Item added to cart",
		zap.Uint("cart_id", cart.ID),
		zap.Uint("product_id", product.ID),
		zap.Int("added", quantity),
		zap.Int("line_quantity", item.Quantity))
	return Summarize(refreshed), nil
}

// RemoveItem deletes the line if requester owns its cart
func (s *Service) RemoveItem(ctx context.Context, itemID uint, requester Identity) (*Result, error) {
	item, outcome, err := s.ownedItem(ctx, itemID, requester, "remove")
	if err != nil {
		return nil, err
	}
	if outcome != "" {
		return &Result{Outcome: outcome}, nil
	}

	if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			prometheus.RecordCartOperation("remove", string(OutcomeNotFound))
			return &Result{Outcome: OutcomeNotFound}, nil
		}
		return nil, err
	}

	return s.finish(ctx, item.CartID, "remove", OutcomeRemoved, decimal.Zero)
}

// UpdateQuantity sets the line's quantity, or deletes the line when
// quantity <= 0, if requester owns its cart. Unlike AddItem this is an
// absolute set.
func (s *Service) UpdateQuantity(ctx context.Context, itemID uint, requester Identity, quantity int) (*Result, error) {
	if quantity > model.MaxItemQuantity {
		return nil, ErrInvalidQuantity
	}

	item, outcome, err := s.ownedItem(ctx, itemID, requester, "update")
	if err != nil {
		return nil, err
	}
	if outcome != "" {
		return &Result{Outcome: outcome}, nil
	}

	if quantity <= 0 {
		if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
			if errors.Is(err, ErrItemNotFound) {
				prometheus.RecordCartOperation("update", string(OutcomeNotFound))
				return &Result{Outcome: OutcomeNotFound}, nil
			}
			return nil, err
		}
		return s.finish(ctx, item.CartID, "update", OutcomeRemoved, decimal.Zero)
	}

	if err := s.repo.SetItemQuantity(ctx, item.ID, quantity); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			prometheus.RecordCartOperation("update", string(OutcomeNotFound))
			return &Result{Outcome: OutcomeNotFound}, nil
		}
		return nil, err
	}

	item.Quantity = quantity
	return s.finish(ctx, item.CartID, "update", OutcomeUpdated, item.TotalPrice())
}

// ownedItem loads the item and checks ownership. A non-empty outcome means
// the caller must stop without mutating.
func (s *Service) ownedItem(ctx context.Context, itemID uint, requester Identity, op string) (*model.CartItem, Outcome, error) {
	if !requester.Valid() {
		return nil, "", ErrNoIdentity
	}

	item, err := s.repo.FindItem(ctx, itemID)
	if errors.Is(err, ErrItemNotFound) {
		prometheus.RecordCartOperation(op, string(OutcomeNotFound))
		return nil, OutcomeNotFound, nil
	}
	if err != nil {
		return nil, "", err
	}

	if !requester.Owns(item.Cart) {
		prometheus.RecordCartOperation(op, string(OutcomeNotOwner))
		logger.FromStdContext(ctx).Warn("Cart item belongs to another cart",
			zap.String("operation", op),
			zap.Uint("item_id", itemID),
			zap.Uint("cart_id", item.CartID),
			zap.String("requester", requester.Kind()))
		return nil, OutcomeNotOwner, nil
	}
	return item, "", nil
}

func (s *Service) finish(ctx context.Context, cartID uint, op string, outcome Outcome, itemTotal decimal.Decimal) (*Result, error) {
	refreshed, err := s.repo.Load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	prometheus.RecordCartOperation(op, string(outcome))
	summary := Summarize(refreshed)
	logger.FromStdContext(ctx).Info("Cart updated",
		zap.String("operation", op),
		zap.String("outcome", string(outcome)),
		zap.Uint("cart_id", cartID),
		zap.Int("total_items", summary.TotalItems))
	return &Result{Outcome: outcome, Summary: summary, ItemTotal: itemTotal}, nil
}

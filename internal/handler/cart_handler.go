package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"storefront-service/internal/cart"
	"storefront-service/internal/catalog"
	mid "storefront-service/internal/middleware"
	"storefront-service/internal/model"
	"storefront-service/internal/session"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	msgItemRemoved = "Item removed from cart!"
	msgNotOwner    = "That item is not in your cart."
	msgCartEmpty   = "Your cart is empty!"
)

// QuantityRequest is the optional body of add and update
type QuantityRequest struct {
	Quantity json.Number `json:"quantity" form:"quantity"`
}

// CartHandler serves the cart, its mutations and checkout
type CartHandler struct {
	resolver *cart.Resolver
	service  *cart.Service
	sessions *session.Manager
}

// NewCartHandler creates a CartHandler
func NewCartHandler(resolver *cart.Resolver, service *cart.Service, sessions *session.Manager) *CartHandler {
	return &CartHandler{resolver: resolver, service: service, sessions: sessions}
}

// identity is the authenticated user, else the anonymous session, which is
// created on first use
func (h *CartHandler) identity(c echo.Context) (cart.Identity, error) {
	if userID, ok := mid.GetUserIDFromContext(c); ok {
		return cart.User(userID), nil
	}
	token, err := h.sessions.Ensure(c)
	if err != nil {
		return cart.Identity{}, err
	}
	return cart.Anonymous(token), nil
}

// quantity reads the quantity from the body, falling back to the query string
func quantity(c echo.Context) (int, error) {
	var req QuantityRequest
	if err := c.Bind(&req); err != nil {
		logger.FromContext(c).Debug("Quantity body not bound", zap.Error(err))
		return 0, errQuantityNotInteger
	}
	raw := req.Quantity.String()
	if raw == "" {
		raw = c.QueryParam("quantity")
	}
	return parseQuantity(raw)
}

func badQuantity(c echo.Context, err error) error {
	logger.FromContext(c).Warn("Invalid quantity", zap.Error(err))
	return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
}

func internalError(c echo.Context, msg string, err error) error {
	logger.FromContext(c).Error(msg, zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": msg})
}

// AddToCart adds a product to the requester's cart. Repeated adds accumulate.
func (h *CartHandler) AddToCart(c echo.Context) error {
	log := logger.FromContext(c)

	productID, ok := parseID(c, "product_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	qty, err := quantity(c)
	if err != nil {
		return badQuantity(c, err)
	}
	if qty < 1 {
		qty = 1
	}

	// No session or cart is created for a product that cannot be added
	ctx := c.Request().Context()
	product, err := h.service.AvailableProduct(ctx, productID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		log.Info("Add to cart for unknown product", zap.Uint("product_id", productID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}
	if err != nil {
		return internalError(c, "Failed to retrieve product", err)
	}

	identity, err := h.identity(c)
	if err != nil {
		return internalError(c, "Failed to establish session", err)
	}
	current, err := h.resolver.ResolveCart(ctx, identity)
	if err != nil {
		return internalError(c, "Failed to load cart", err)
	}

	summary, err := h.service.AddItem(ctx, current, product, qty)
	if errors.Is(err, cart.ErrQuantityLimit) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": fmt.Sprintf("a cart line holds at most %d of %s", model.MaxItemQuantity, product.Name),
		})
	}
	if err != nil {
		return internalError(c, "Failed to add item to cart", err)
	}

	message := product.Name + " added to cart!"
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, echo.Map{
			"success":    true,
			"message":    message,
			"cart_total": summary.TotalItems,
		})
	}
	return redirectWithFlash(c, cartPath, flashSuccess, message)
}

// RemoveFromCart deletes a line from the requester's cart
func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	itemID, ok := parseID(c, "item_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}

	identity, err := h.identity(c)
	if err != nil {
		return internalError(c, "Failed to establish session", err)
	}

	result, err := h.service.RemoveItem(c.Request().Context(), itemID, identity)
	if err != nil {
		return internalError(c, "Failed to remove item from cart", err)
	}

	switch result.Outcome {
	case cart.OutcomeNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Cart item not found"})
	case cart.OutcomeNotOwner:
		return h.notOwner(c)
	}

	if wantsJSON(c) {
		return c.JSON(http.StatusOK, echo.Map{
			"success":          true,
			"message":          msgItemRemoved,
			"cart_total":       result.Summary.TotalItems,
			"cart_total_price": money(result.Summary.TotalPrice),
		})
	}
	return redirectWithFlash(c, cartPath, flashSuccess, msgItemRemoved)
}

// UpdateCartQuantity sets a line's quantity; zero or less removes the line
func (h *CartHandler) UpdateCartQuantity(c echo.Context) error {
	itemID, ok := parseID(c, "item_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	qty, err := quantity(c)
	if err != nil {
		return badQuantity(c, err)
	}

	identity, err := h.identity(c)
	if err != nil {
		return internalError(c, "Failed to establish session", err)
	}

	result, err := h.service.UpdateQuantity(c.Request().Context(), itemID, identity, qty)
	if err != nil {
		return internalError(c, "Failed to update cart", err)
	}

	switch result.Outcome {
	case cart.OutcomeNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Cart item not found"})
	case cart.OutcomeNotOwner:
		return h.notOwner(c)
	}

	if wantsJSON(c) {
		return c.JSON(http.StatusOK, echo.Map{
			"success":          true,
			"cart_total":       result.Summary.TotalItems,
			"item_total":       money(result.ItemTotal),
			"cart_total_price": money(result.Summary.TotalPrice),
		})
	}
	return redirectWithFlash(c, cartPath, "", "")
}

func (h *CartHandler) notOwner(c echo.Context) error {
	if wantsJSON(c) {
		return c.JSON(http.StatusForbidden, echo.Map{
			"success": false,
			"error":   msgNotOwner,
		})
	}
	return redirectWithFlash(c, cartPath, flashWarning, msgNotOwner)
}

// ViewCart shows the requester's cart with live line totals
func (h *CartHandler) ViewCart(c echo.Context) error {
	current, err := h.currentCart(c)
	if err != nil {
		return internalError(c, "Failed to load cart", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"cart": newCartView(current)})
}

// Checkout shows the cart for review; an empty cart is turned back
func (h *CartHandler) Checkout(c echo.Context) error {
	current, err := h.currentCart(c)
	if err != nil {
		return internalError(c, "Failed to load cart", err)
	}

	if current.TotalItems() == 0 {
		prometheus.RecordCheckoutBlocked()
		logger.FromContext(c).Info("Checkout with empty cart", zap.Uint("cart_id", current.ID))
		if wantsJSON(c) {
			return c.JSON(http.StatusConflict, echo.Map{
				"success":  false,
				"warning":  msgCartEmpty,
				"redirect": cartPath,
			})
		}
		return redirectWithFlash(c, cartPath, flashWarning, msgCartEmpty)
	}

	return c.JSON(http.StatusOK, echo.Map{"cart": newCartView(current)})
}

func (h *CartHandler) currentCart(c echo.Context) (*model.Cart, error) {
	identity, err := h.identity(c)
	if err != nil {
		return nil, err
	}
	return h.resolver.ResolveCart(c.Request().Context(), identity)
}

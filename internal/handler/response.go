package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"storefront-service/internal/model"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// Headers carrying the user-facing message on redirect responses
const (
	HeaderFlashMessage = "X-Flash-Message"
	HeaderFlashLevel   = "X-Flash-Level"
)

const (
	flashSuccess = "success"
	flashWarning = "warning"
)

const (
	cartPath     = "/api/cart"
	productsPath = "/api/products"
)

// wantsJSON reports whether the caller asked for a structured response
// rather than a redirect
func wantsJSON(c echo.Context) bool {
	return c.QueryParam("format") == "json"
}

// redirectWithFlash sends 303 See Other with an optional message
func redirectWithFlash(c echo.Context, target, level, message string) error {
	if message != "" {
		c.Response().Header().Set(HeaderFlashMessage, message)
		c.Response().Header().Set(HeaderFlashLevel, level)
	}
	return c.Redirect(http.StatusSeeOther, target)
}

// money renders a price with two decimals
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// parseID reads a positive numeric path parameter
func parseID(c echo.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

var (
	errQuantityNotInteger = errors.New("quantity must be a whole number")
	errQuantityTooLarge   = fmt.Errorf("quantity must be at most %d", model.MaxItemQuantity)
)

// parseQuantity treats a missing value as 1 and rejects non-integers and
// values above model.MaxItemQuantity. Zero and negatives pass through.
func parseQuantity(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, nil
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if errors.Is(err, strconv.ErrRange) {
		if strings.HasPrefix(raw, "-") {
			// removes the line on update, coerced to 1 on add
			return 0, nil
		}
		return 0, errQuantityTooLarge
	}
	if err != nil {
		return 0, errQuantityNotInteger
	}
	if n > model.MaxItemQuantity {
		return 0, errQuantityTooLarge
	}
	return int(n), nil
}

// productView adds display-only fields to a product
type productView struct {
	model.Product
	DiscountPercentage int    `json:"discount_percentage"`
	GenderLabel        string `json:"gender_label"`
}

func newProductView(p model.Product) productView {
	return productView{
		Product:            p,
		DiscountPercentage: p.DiscountPercentage(),
		GenderLabel:        p.Gender.Label(),
	}
}

func newProductViews(products []model.Product) []productView {
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, newProductView(p))
	}
	return views
}

type cartLineView struct {
	ID          uint   `json:"id"`
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	ProductSlug string `json:"product_slug"`
	UnitPrice   string `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	TotalPrice  string `json:"total_price"`
}

type cartView struct {
	ID         uint           `json:"id"`
	Items      []cartLineView `json:"items"`
	TotalItems int            `json:"total_items"`
	TotalPrice string         `json:"total_price"`
}

func newCartView(c *model.Cart) cartView {
	view := cartView{
		ID:         c.ID,
		Items:      make([]cartLineView, 0, len(c.Items)),
		TotalItems: c.TotalItems(),
		TotalPrice: money(c.TotalPrice()),
	}
	for i := range c.Items {
		item := &c.Items[i]
		line := cartLineView{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			TotalPrice: money(item.TotalPrice()),
		}
		if item.Product != nil {
			line.ProductName = item.Product.Name
			line.ProductSlug = item.Product.Slug
			line.UnitPrice = money(item.Product.Price)
		}
		view.Items = append(view.Items, line)
	}
	return view
}

// RedirectToProducts answers a read-only request to the add route
func RedirectToProducts(c echo.Context) error {
	return c.Redirect(http.StatusFound, productsPath)
}

// RedirectToCart answers a read-only request to the remove and update routes
func RedirectToCart(c echo.Context) error {
	return c.Redirect(http.StatusFound, cartPath)
}

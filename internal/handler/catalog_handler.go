package handler

import (
	"errors"
	"net/http"

	"storefront-service/internal/catalog"
	"storefront-service/internal/model"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CatalogHandler serves the read-only storefront pages
type CatalogHandler struct {
	store         catalog.Store
	featuredLimit int
}

// NewCatalogHandler creates a CatalogHandler
func NewCatalogHandler(store catalog.Store, featuredLimit int) *CatalogHandler {
	if featuredLimit <= 0 {
		featuredLimit = 8
	}
	return &CatalogHandler{store: store, featuredLimit: featuredLimit}
}

// Home lists the newest available products and all categories
func (h *CatalogHandler) Home(c echo.Context) error {
	log := logger.FromContext(c)
	ctx := c.Request().Context()

	featured, err := h.store.ListFeatured(ctx, h.featuredLimit)
	if err != nil {
		log.Error("Failed to retrieve featured products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve products"})
	}
	categories, err := h.store.ListCategories(ctx)
	if err != nil {
		log.Error("Failed to retrieve categories", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve categories"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"featured_products": newProductViews(featured),
		"categories":        categories,
	})
}

// ListCategories lists all categories
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	categories, err := h.store.ListCategories(c.Request().Context())
	if err != nil {
		logger.FromContext(c).Error("Failed to retrieve categories", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve categories"})
	}
	return c.JSON(http.StatusOK, categories)
}

// ListProducts lists available products with optional category, gender,
// search and sort parameters
func (h *CatalogHandler) ListProducts(c echo.Context) error {
	log := logger.FromContext(c)

	gender := model.Gender(c.QueryParam("gender"))
	if gender != "" && !gender.Valid() {
		log.Warn("Invalid gender filter", zap.String("gender", string(gender)))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "gender must be one of M, W, U"})
	}

	filter := catalog.Filter{
		CategorySlug: c.QueryParam("category"),
		Gender:       gender,
		Search:       c.QueryParam("search"),
		Sort:         catalog.ParseSortKey(c.QueryParam("sort")),
	}

	ctx := c.Request().Context()
	products, err := h.store.ListAvailableProducts(ctx, filter)
	if err != nil {
		log.Error("Failed to retrieve products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve products"})
	}
	categories, err := h.store.ListCategories(ctx)
	if err != nil {
		log.Error("Failed to retrieve categories", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve categories"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"products":         newProductViews(products),
		"count":            len(products),
		"categories":       categories,
		"current_category": filter.CategorySlug,
		"current_gender":   string(filter.Gender),
		"search_query":     filter.Search,
		"sort_by":          string(filter.Sort),
	})
}

// GetProduct shows one available product and related products from its category
func (h *CatalogHandler) GetProduct(c echo.Context) error {
	log := logger.FromContext(c)
	slug := c.Param("slug")

	detail, err := h.store.GetProductDetail(c.Request().Context(), slug)
	if errors.Is(err, catalog.ErrProductNotFound) {
		log.Info("Product not found", zap.String("slug", slug))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}
	if err != nil {
		log.Error("Failed to retrieve product", zap.String("slug", slug), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve product"})
	}

	categorySlug := ""
	if detail.Product.Category != nil {
		categorySlug = detail.Product.Category.Slug
	}
	prometheus.RecordProductView(detail.Product.Slug, categorySlug)

	return c.JSON(http.StatusOK, echo.Map{
		"product":          newProductView(detail.Product),
		"related_products": newProductViews(detail.Related),
	})
}

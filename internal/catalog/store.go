package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-service/internal/model"
	"storefront-service/prometheus"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrProductNotFound is returned when no available product matches
var ErrProductNotFound = errors.New("product not found")

// SortKey selects the listing order
type SortKey string

const (
	SortName      SortKey = "name"
	SortPriceLow  SortKey = "price_low"
	SortPriceHigh SortKey = "price_high"
	SortNewest    SortKey = "newest"
)

// ParseSortKey maps a query value to a SortKey, falling back to name order
func ParseSortKey(s string) SortKey {
	switch k := SortKey(strings.TrimSpace(s)); k {
	case SortPriceLow, SortPriceHigh, SortNewest:
		return k
	default:
		return SortName
	}
}

// Filter narrows a product listing; zero values mean "no filter"
type Filter struct {
	CategorySlug string
	Gender       model.Gender
	Search       string
	Sort         SortKey
}

// Detail is a product page: the product plus a few from the same category
type Detail struct {
	Product model.Product   `json:"product"`
	Related []model.Product `json:"related_products"`
}

// Store answers read-only catalog queries
type Store interface {
	ListAvailableProducts(ctx context.Context, filter Filter) ([]model.Product, error)
	GetProductDetail(ctx context.Context, slug string) (*Detail, error)
	GetAvailableProduct(ctx context.Context, id uint) (*model.Product, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListFeatured(ctx context.Context, limit int) ([]model.Product, error)
}

type gormStore struct {
	db           *gorm.DB
	log          *zap.Logger
	relatedLimit int
}

// NewStore returns a Store backed by db. relatedLimit caps Detail.Related.
func NewStore(db *gorm.DB, log *zap.Logger, relatedLimit int) Store {
	if relatedLimit <= 0 {
		relatedLimit = 4
	}
	return &gormStore{
		db:           db,
		log:          log.Named("catalog"),
		relatedLimit: relatedLimit,
	}
}

func (s *gormStore) available(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&model.Product{}).
		Preload("Category").
		Where("products.available = ?", true)
}

func (s *gormStore) ListAvailableProducts(ctx context.Context, filter Filter) ([]model.Product, error) {
	defer prometheus.TrackDBOperation("catalog_list")(time.Now())

	query := s.available(ctx).
		Joins("JOIN categories ON categories.id = products.category_id")

	if filter.CategorySlug != "" {
		query = query.Where("categories.slug = ?", filter.CategorySlug)
	}
	if filter.Gender != "" {
		query = query.Where("products.gender = ?", string(filter.Gender))
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		pattern := "%" + escapeLike(term) + "%"
		op := s.likeOperator()
		query = query.Where(
			fmt.Sprintf(`(products.name %[1]s ? ESCAPE '\' OR products.description %[1]s ? ESCAPE '\' OR categories.name %[1]s ? ESCAPE '\')`, op),
			pattern, pattern, pattern,
		)
	}

	var products []model.Product
	if err := applySort(query, filter.Sort).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	s.log.Debug("Listed products",
		zap.String("category", filter.CategorySlug),
		zap.String("gender", string(filter.Gender)),
		zap.String("search", filter.Search),
		zap.String("sort", string(filter.Sort)),
		zap.Int("count", len(products)))
	return products, nil
}

// likeOperator picks a case-insensitive match for the dialect. Postgres ILIKE
// folds Unicode; SQLite LIKE folds ASCII only, so on sqlite a non-ASCII
// letter matches its own case only.
func (s *gormStore) likeOperator() string {
	if s.db.Dialector.Name() == "postgres" {
		return "ILIKE"
	}
	return "LIKE"
}

// applySort orders by the requested key with the product id as tie-breaker
func applySort(query *gorm.DB, key SortKey) *gorm.DB {
	switch ParseSortKey(string(key)) {
	case SortPriceLow:
		return query.Order("products.price ASC").Order("products.id ASC")
	case SortPriceHigh:
		return query.Order("products.price DESC").Order("products.id ASC")
	case SortNewest:
		return query.Order("products.created_at DESC").Order("products.id DESC")
	default:
		return query.Order("products.name ASC").Order("products.id ASC")
	}
}

func (s *gormStore) GetProductDetail(ctx context.Context, slug string) (*Detail, error) {
	defer prometheus.TrackDBOperation("catalog_detail")(time.Now())

	var product model.Product
	err := s.available(ctx).Where("products.slug = ?", slug).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product %q: %w", slug, err)
	}

	related := []model.Product{}
	if err := s.available(ctx).
		Where("products.category_id = ? AND products.id <> ?", product.CategoryID, product.ID).
		Order("products.id ASC").
		Limit(s.relatedLimit).
		Find(&related).Error; err != nil {
		return nil, fmt.Errorf("related products for %q: %w", slug, err)
	}

	return &Detail{Product: product, Related: related}, nil
}

func (s *gormStore) GetAvailableProduct(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	err := s.available(ctx).Where("products.id = ?", id).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return &product, nil
}

func (s *gormStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories := []model.Category{}
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *gormStore) ListFeatured(ctx context.Context, limit int) ([]model.Product, error) {
	products := []model.Product{}
	if err := s.available(ctx).
		Order("products.created_at DESC").
		Order("products.id DESC").
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list featured products: %w", err)
	}
	return products, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in user input match literally
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

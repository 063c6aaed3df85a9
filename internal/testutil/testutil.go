package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"storefront-service/internal/model"
	"storefront-service/pkg/config"
	"storefront-service/pkg/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB opens a private in-memory SQLite database with the storefront schema
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	db, err := database.Open(&config.DBConfig{
		Driver:       config.DriverSQLite,
		Path:         fmt.Sprintf("file:%s?mode=memory", uuid.NewString()),
		MaxIdleConns: 1,
		MaxOpenConns: 1,
		LogLevel:     gormLogger.Silent,
	})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}

	tb.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Category inserts a category whose slug is derived from name
func Category(tb testing.TB, db *gorm.DB, name string) *model.Category {
	tb.Helper()
	c := &model.Category{
		Name:        name,
		Slug:        slugify(name),
		Description: name + " collection",
	}
	if err := db.Create(c).Error; err != nil {
		tb.Fatalf("create category %q: %v", name, err)
	}
	return c
}

// ProductOption tweaks a fixture product before insert
type ProductOption func(*model.Product)

// WithGender sets the gender tag
func WithGender(g model.Gender) ProductOption {
	return func(p *model.Product) { p.Gender = g }
}

// WithDescription sets the description
func WithDescription(d string) ProductOption {
	return func(p *model.Product) { p.Description = d }
}

// Unavailable hides the product from the storefront
func Unavailable() ProductOption {
	return func(p *model.Product) { p.Available = false }
}

// WithOriginalPrice sets a pre-discount price
func WithOriginalPrice(s string) ProductOption {
	return func(p *model.Product) {
		d := decimal.RequireFromString(s)
		p.OriginalPrice = &d
	}
}

// CreatedAt pins the creation time
func CreatedAt(ts time.Time) ProductOption {
	return func(p *model.Product) { p.CreatedAt = ts }
}

// Product inserts an available product in category
func Product(tb testing.TB, db *gorm.DB, category *model.Category, name, price string, opts ...ProductOption) *model.Product {
	tb.Helper()
	p := &model.Product{
		Name:        name,
		Slug:        slugify(name),
		Description: name,
		Price:       decimal.RequireFromString(price),
		CategoryID:  category.ID,
		Gender:      model.GenderUnisex,
		Image:       "products/" + slugify(name) + ".jpg",
		Stock:       10,
		Available:   true,
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := db.Create(p).Error; err != nil {
		tb.Fatalf("create product %q: %v", name, err)
	}
	return p
}

func slugify(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}

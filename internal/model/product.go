package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Gender tags a product's target audience
type Gender string

const (
	GenderMen    Gender = "M"
	GenderWomen  Gender = "W"
	GenderUnisex Gender = "U"
)

// Valid reports whether g is one of the known tags
func (g Gender) Valid() bool {
	switch g {
	case GenderMen, GenderWomen, GenderUnisex:
		return true
	}
	return false
}

// Label returns the display name of the tag
func (g Gender) Label() string {
	switch g {
	case GenderMen:
		return "Men"
	case GenderWomen:
		return "Women"
	case GenderUnisex:
		return "Unisex"
	}
	return ""
}

var hundred = decimal.NewFromInt(100)

// Product represents a sellable catalog item
type Product struct {
	ID            uint             `json:"id" gorm:"primarykey"`
	Name          string           `json:"name" gorm:"type:varchar(200);not null"`
	Slug          string           `json:"slug" gorm:"type:varchar(200);uniqueIndex;not null"`
	Description   string           `json:"description" gorm:"type:text"`
	Price         decimal.Decimal  `json:"price" gorm:"type:decimal(10,2);not null"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty" gorm:"type:decimal(10,2)"`
	CategoryID    uint             `json:"category_id" gorm:"index;not null"`
	Category      *Category        `json:"category,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Gender        Gender           `json:"gender" gorm:"type:varchar(1);default:'U';index"`
	Image         string           `json:"image" gorm:"type:varchar(255)"`
	Stock         int              `json:"stock" gorm:"default:0;check:stock >= 0"`
	Available     bool             `json:"available" gorm:"not null;index"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// DiscountPercentage is the whole-percent markdown from OriginalPrice, truncated
// toward zero, or 0 when there is no markdown.
func (p *Product) DiscountPercentage() int {
	if p.OriginalPrice == nil || !p.OriginalPrice.GreaterThan(p.Price) {
		return 0
	}
	// QuoRem with precision 0 truncates instead of rounding
	q, _ := p.OriginalPrice.Sub(p.Price).Mul(hundred).QuoRem(*p.OriginalPrice, 0)
	return int(q.IntPart())
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart belongs to either a user or an anonymous session, never both.
// The unique indexes make get-or-create by either key safe under races.
type Cart struct {
	ID           uint       `json:"id" gorm:"primarykey"`
	UserID       *uint      `json:"user_id,omitempty" gorm:"uniqueIndex"`
	SessionToken *string    `json:"-" gorm:"type:varchar(40);uniqueIndex"`
	Items        []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TotalItems sums the quantities of the loaded items
func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// TotalPrice sums the line totals of the loaded items
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Items {
		total = total.Add(c.Items[i].TotalPrice())
	}
	return total
}

// MaxItemQuantity caps a single cart line
const MaxItemQuantity = 999

// CartItem is one product line in a cart
type CartItem struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CartID    uint      `json:"cart_id" gorm:"not null;uniqueIndex:idx_cart_product"`
	Cart      *Cart     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	ProductID uint      `json:"product_id" gorm:"not null;uniqueIndex:idx_cart_product;index"`
	Product   *Product  `json:"product,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Quantity  int       `json:"quantity" gorm:"not null;default:1;check:quantity > 0 AND quantity <= 999"`
	CreatedAt time.Time `json:"created_at"`
}

// TotalPrice uses the product's current price; nothing is snapshotted at add time
func (i *CartItem) TotalPrice() decimal.Decimal {
	if i.Product == nil {
		return decimal.Zero
	}
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

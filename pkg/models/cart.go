package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	ID        string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"user_id"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (Cart) TableName() string {
	return "carts"
}

// CartItem is ephemeral: created on add-to-cart, deleted on order placement
// or explicit removal. Its unit price is resolved at read time from the
// referenced variant or product, never stored.
type CartItem struct {
	ID               string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CartID           string          `gorm:"type:varchar(36);not null;index" json:"cart_id"`
	ProductID        string          `gorm:"type:varchar(36);not null;index" json:"product_id"`
	Product          *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	ProductVariantID *string         `gorm:"type:varchar(36);index" json:"product_variant_id,omitempty"`
	ProductVariant   *ProductVariant `gorm:"foreignKey:ProductVariantID" json:"product_variant,omitempty"`
	Quantity         int             `gorm:"not null" json:"quantity"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// UnitPrice resolves the effective price for this item: the variant price
// override wins over the product price, sale price wins over list price.
func (ci *CartItem) UnitPrice() decimal.Decimal {
	if ci.ProductVariant != nil && ci.ProductVariant.Price != nil && ci.ProductVariant.Price.IsPositive() {
		return *ci.ProductVariant.Price
	}
	if ci.Product != nil {
		return ci.Product.EffectivePrice()
	}
	return decimal.Zero
}

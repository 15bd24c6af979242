package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Slug        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	Image       string    `gorm:"type:varchar(255)" json:"image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

type Product struct {
	ID          string           `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name        string           `gorm:"type:varchar(200);not null" json:"name"`
	Slug        string           `gorm:"type:varchar(200);uniqueIndex;not null" json:"slug"`
	Description string           `gorm:"type:text" json:"description"`
	SKU         string           `gorm:"column:sku;type:varchar(50);uniqueIndex;not null" json:"sku"`
	Price       decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"price"`
	SalePrice   *decimal.Decimal `gorm:"type:decimal(10,2)" json:"sale_price,omitempty"`
	CategoryID  string           `gorm:"type:varchar(36);not null;index" json:"category_id"`
	Category    *Category        `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	IsActive    bool             `gorm:"default:true" json:"is_active"`
	IsFeatured  bool             `gorm:"default:false" json:"is_featured"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
	Images      []ProductImage   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// EffectivePrice is the price a line item is charged at: sale price when
// set, list price otherwise.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice != nil && p.SalePrice.IsPositive() {
		return *p.SalePrice
	}
	return p.Price
}

// ProductVariant is a purchasable SKU-level specialization (size/color)
// with its own stock and optional price override.
type ProductVariant struct {
	ID        string           `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ProductID string           `gorm:"type:varchar(36);not null;index" json:"product_id"`
	SKU       string           `gorm:"column:sku;type:varchar(50);uniqueIndex;not null" json:"sku"`
	Size      string           `gorm:"type:varchar(20)" json:"size"`
	Color     string           `gorm:"type:varchar(30)" json:"color"`
	Price     *decimal.Decimal `gorm:"type:decimal(10,2)" json:"price,omitempty"`
	Stock     int              `gorm:"not null;default:0" json:"stock"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (ProductVariant) TableName() string {
	return "product_variants"
}

type ProductImage struct {
	ID        string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ProductID string `gorm:"type:varchar(36);not null;index" json:"product_id"`
	URL       string `gorm:"type:varchar(255);not null" json:"url"`
	Alt       string `gorm:"type:varchar(255)" json:"alt"`
	Position  int    `gorm:"default:0" json:"position"`
}

func (ProductImage) TableName() string {
	return "product_images"
}

type Review struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ProductID string    `gorm:"type:varchar(36);not null;index" json:"product_id"`
	UserID    string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Review) TableName() string {
	return "reviews"
}

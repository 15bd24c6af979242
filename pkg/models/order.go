package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	OrderStatusPending    = "PENDING"
	OrderStatusProcessing = "PROCESSING"
	OrderStatusShipped    = "SHIPPED"
	OrderStatusDelivered  = "DELIVERED"
	OrderStatusCancelled  = "CANCELLED"
)

const (
	PaymentStatusPending = "PENDING"
	PaymentStatusPaid    = "PAID"
)

const PaymentMethodBankTransfer = "bank_transfer"

// Order is immutable once created except for Status and the payment status.
// Subtotal/shipping/tax/discount/total are frozen at creation time.
type Order struct {
	ID          string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OrderNumber string          `gorm:"type:varchar(40);uniqueIndex;not null" json:"order_number"`
	UserID      string          `gorm:"type:varchar(36);not null;index" json:"user_id"`
	AddressID   *string         `gorm:"type:varchar(36)" json:"address_id,omitempty"`
	Items       []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Payment     *Payment        `gorm:"foreignKey:OrderID" json:"payment,omitempty"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Shipping    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"shipping"`
	Tax         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"tax"`
	Discount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"discount"`
	Total       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	Status      string          `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	Notes       string          `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem carries the unit price copied from the cart at order-creation
// time. It is never re-derived from the current product price.
type OrderItem struct {
	ID               string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OrderID          string          `gorm:"type:varchar(36);not null;index" json:"order_id"`
	ProductID        string          `gorm:"type:varchar(36);not null" json:"product_id"`
	ProductName      string          `gorm:"type:varchar(200);not null" json:"product_name"`
	ProductVariantID *string         `gorm:"type:varchar(36)" json:"product_variant_id,omitempty"`
	Quantity         int             `gorm:"not null" json:"quantity"`
	Price            decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// Payment is one-to-one with Order. Status goes PENDING -> PAID only
// through the admin verification action.
type Payment struct {
	ID         string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OrderID    string          `gorm:"type:varchar(36);uniqueIndex;not null" json:"order_id"`
	Method     string          `gorm:"type:varchar(30);not null" json:"method"`
	Amount     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status     string          `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	VerifiedAt *time.Time      `json:"verified_at,omitempty"`
	VerifiedBy *string         `gorm:"type:varchar(36)" json:"verified_by,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

package repository

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound               = errors.New("record not found")
	ErrProductNotFound        = errors.New("product not found")
	ErrVariantNotFound        = errors.New("product variant not found")
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrPaymentAlreadyVerified = errors.New("payment already verified")
)

// InsufficientStockError names the item whose requested quantity exceeds
// the variant stock. Raised inside the place-order transaction; the whole
// order is rolled back.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	VariantID   string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

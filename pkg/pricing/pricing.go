// Package pricing computes order totals. It is pure: deterministic given
// its inputs, no I/O, no shared state.
package pricing

import (
	"errors"
	"strings"

	"github.com/example/storefront/pkg/config"
	"github.com/shopspring/decimal"
)

// ErrInvalidQuantity is returned when a line item carries a zero or
// negative quantity.
var ErrInvalidQuantity = errors.New("line item quantity must be positive")

// LineItem is a (effective price, quantity) pair. The effective price is
// resolved by the caller: variant override wins over product price, sale
// price wins over list price.
type LineItem struct {
	ProductID string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Options are the deployment pricing rules. FreeShippingAbove is
// inclusive: an order whose subtotal equals the threshold ships free.
type Options struct {
	TaxRate           decimal.Decimal
	FreeShippingAbove decimal.Decimal
	BaseShippingFee   decimal.Decimal
}

func OptionsFrom(cfg config.PricingConfig) Options {
	return Options{
		TaxRate:           decimal.NewFromFloat(cfg.TaxRate),
		FreeShippingAbove: decimal.NewFromFloat(cfg.FreeShippingAbove),
		BaseShippingFee:   decimal.NewFromFloat(cfg.BaseShippingFee),
	}
}

// Breakdown is the priced result. Total = Subtotal + Shipping + Tax - Discount.
type Breakdown struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Quote prices a set of line items. discountRate is a fraction of the
// subtotal (0 for no promo). An empty item set yields an all-zero
// breakdown; a non-positive quantity yields ErrInvalidQuantity.
func Quote(items []LineItem, opts Options, discountRate decimal.Decimal) (Breakdown, error) {
	if len(items) == 0 {
		return Breakdown{
			Subtotal: decimal.Zero,
			Shipping: decimal.Zero,
			Tax:      decimal.Zero,
			Discount: decimal.Zero,
			Total:    decimal.Zero,
		}, nil
	}

	subtotal := decimal.Zero
	for _, item := range items {
		if item.Quantity <= 0 {
			return Breakdown{}, ErrInvalidQuantity
		}
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	shipping := opts.BaseShippingFee
	if subtotal.GreaterThanOrEqual(opts.FreeShippingAbove) {
		shipping = decimal.Zero
	}

	tax := subtotal.Mul(opts.TaxRate)
	discount := subtotal.Mul(discountRate)
	total := subtotal.Add(shipping).Add(tax).Sub(discount)

	return Breakdown{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Discount: discount,
		Total:    total,
	}, nil
}

// PromoTable maps promo codes (stored upper-cased) to discount rates.
type PromoTable map[string]decimal.Decimal

func NewPromoTable(codes map[string]float64) PromoTable {
	table := make(PromoTable, len(codes))
	for code, rate := range codes {
		table[strings.ToUpper(code)] = decimal.NewFromFloat(rate)
	}
	return table
}

// Lookup matches a code case-insensitively. An unknown code returns a zero
// rate and false; it is an informational condition, not an error.
func (t PromoTable) Lookup(code string) (decimal.Decimal, bool) {
	rate, ok := t[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return decimal.Zero, false
	}
	return rate, true
}

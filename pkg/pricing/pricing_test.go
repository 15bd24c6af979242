package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	return Options{
		TaxRate:           decimal.NewFromFloat(0.15),
		FreeShippingAbove: decimal.NewFromInt(200),
		BaseShippingFee:   decimal.NewFromInt(25),
	}
}

func item(price float64, qty int) LineItem {
	return LineItem{UnitPrice: decimal.NewFromFloat(price), Quantity: qty}
}

func TestQuoteEmptyCart(t *testing.T) {
	breakdown, err := Quote(nil, testOptions(), decimal.Zero)
	require.NoError(t, err)

	assert.True(t, breakdown.Subtotal.IsZero())
	assert.True(t, breakdown.Shipping.IsZero())
	assert.True(t, breakdown.Tax.IsZero())
	assert.True(t, breakdown.Discount.IsZero())
	assert.True(t, breakdown.Total.IsZero())
}

func TestQuoteInvalidQuantity(t *testing.T) {
	for _, qty := range []int{0, -1} {
		_, err := Quote([]LineItem{item(10, qty)}, testOptions(), decimal.Zero)
		require.ErrorIs(t, err, ErrInvalidQuantity)
	}
}

// One full-price item plus one sale-priced item, landing exactly on the
// free-shipping threshold: subtotal 200, shipping 0, tax 30, total 230.
func TestQuoteWorkedExample(t *testing.T) {
	items := []LineItem{
		item(100, 1), // list price
		item(50, 2),  // sale price, down from 80
	}

	breakdown, err := Quote(items, testOptions(), decimal.Zero)
	require.NoError(t, err)

	assert.True(t, breakdown.Subtotal.Equal(decimal.NewFromInt(200)), "subtotal %s", breakdown.Subtotal)
	assert.True(t, breakdown.Shipping.IsZero(), "shipping %s", breakdown.Shipping)
	assert.True(t, breakdown.Tax.Equal(decimal.NewFromInt(30)), "tax %s", breakdown.Tax)
	assert.True(t, breakdown.Discount.IsZero())
	assert.True(t, breakdown.Total.Equal(decimal.NewFromInt(230)), "total %s", breakdown.Total)
}

func TestQuoteShippingBoundary(t *testing.T) {
	tests := []struct {
		name     string
		subtotal float64
		shipping int64
	}{
		{"below threshold", 199.99, 25},
		{"at threshold", 200, 0},
		{"above threshold", 200.01, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			breakdown, err := Quote([]LineItem{item(tt.subtotal, 1)}, testOptions(), decimal.Zero)
			require.NoError(t, err)
			assert.True(t, breakdown.Shipping.Equal(decimal.NewFromInt(tt.shipping)),
				"shipping %s", breakdown.Shipping)
		})
	}
}

func TestQuoteDiscount(t *testing.T) {
	breakdown, err := Quote([]LineItem{item(100, 1)}, testOptions(), decimal.NewFromFloat(0.1))
	require.NoError(t, err)

	// subtotal 100, shipping 25, tax 15, discount 10
	assert.True(t, breakdown.Discount.Equal(decimal.NewFromInt(10)), "discount %s", breakdown.Discount)
	assert.True(t, breakdown.Total.Equal(decimal.NewFromInt(130)), "total %s", breakdown.Total)
}

func TestQuoteTotalIdentity(t *testing.T) {
	carts := [][]LineItem{
		{item(29.99, 3)},
		{item(12.5, 1), item(80, 2), item(5.25, 4)},
		{item(999.99, 1)},
		{item(0.01, 1)},
	}
	rates := []decimal.Decimal{decimal.Zero, decimal.NewFromFloat(0.1), decimal.NewFromFloat(0.2)}

	for _, items := range carts {
		for _, rate := range rates {
			breakdown, err := Quote(items, testOptions(), rate)
			require.NoError(t, err)

			sum := breakdown.Subtotal.Add(breakdown.Shipping).Add(breakdown.Tax).Sub(breakdown.Discount)
			assert.True(t, breakdown.Total.Equal(sum))
			assert.False(t, breakdown.Subtotal.IsNegative())
			assert.False(t, breakdown.Shipping.IsNegative())
			assert.False(t, breakdown.Tax.IsNegative())
			assert.False(t, breakdown.Discount.IsNegative())
		}
	}
}

func TestPromoTableLookup(t *testing.T) {
	table := NewPromoTable(map[string]float64{
		"WELCOME10": 0.10,
		"save20":    0.20,
	})

	rate, ok := table.Lookup("welcome10")
	require.True(t, ok)
	assert.True(t, rate.Equal(decimal.NewFromFloat(0.10)))

	rate, ok = table.Lookup("SAVE20")
	require.True(t, ok)
	assert.True(t, rate.Equal(decimal.NewFromFloat(0.20)))

	// Unknown code: zero rate, no error condition beyond the indicator.
	rate, ok = table.Lookup("NOPE")
	assert.False(t, ok)
	assert.True(t, rate.IsZero())
}

func TestUnknownPromoLeavesDiscountZero(t *testing.T) {
	table := NewPromoTable(map[string]float64{"WELCOME10": 0.10})

	rate, ok := table.Lookup("BOGUS")
	require.False(t, ok)

	breakdown, err := Quote([]LineItem{item(100, 1)}, testOptions(), rate)
	require.NoError(t, err)
	assert.True(t, breakdown.Discount.IsZero())
}

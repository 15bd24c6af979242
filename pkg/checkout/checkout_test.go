package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStore mimics the transactional store: stock decrements, order
// insertion and cart clearing succeed or fail as one unit.
type fakeStore struct {
	mu        sync.Mutex
	cart      *models.Cart
	stock     map[string]int
	placed    []*models.Order
	failPlace error
	// stableCart hands every caller its own cart snapshot and skips the
	// clear on placement, so concurrent submissions are arbitrated by
	// the stock guard alone.
	stableCart bool
}

func (f *fakeStore) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.stableCart {
		return f.cart, nil
	}
	snapshot := *f.cart
	snapshot.Items = append([]models.CartItem(nil), f.cart.Items...)
	return &snapshot, nil
}

func (f *fakeStore) PlaceOrder(ctx context.Context, order *models.Order, cartID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failPlace != nil {
		return f.failPlace
	}

	for _, item := range order.Items {
		if item.ProductVariantID == nil {
			continue
		}
		available := f.stock[*item.ProductVariantID]
		if available < item.Quantity {
			return &repository.InsufficientStockError{
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				VariantID:   *item.ProductVariantID,
				Requested:   item.Quantity,
				Available:   available,
			}
		}
	}
	for _, item := range order.Items {
		if item.ProductVariantID != nil {
			f.stock[*item.ProductVariantID] -= item.Quantity
		}
	}

	f.placed = append(f.placed, order)
	if !f.stableCart {
		f.cart.Items = nil
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Pricing: config.PricingConfig{
			TaxRate:           0.15,
			FreeShippingAbove: 200,
			BaseShippingFee:   25,
			PromoCodes: map[string]float64{
				"WELCOME10": 0.10,
				"SAVE20":    0.20,
			},
		},
		Bank: config.BankConfig{
			BankName:      "Saudi National Bank (SNB)",
			AccountName:   "KSA Fashion Trading Co.",
			AccountNumber: "SA1234567890123456789012",
			IBAN:          "SA65 1234 5678 9012 3456 7890 12",
		},
	}
}

func validShipping() ShippingInfo {
	return ShippingInfo{
		FirstName: "Ahmed",
		LastName:  "Mohammed",
		Phone:     "+966500000001",
		Address:   "12 King Fahd Rd",
		City:      "Riyadh",
		State:     "Riyadh",
		Country:   "Saudi Arabia",
		ZipCode:   "11564",
	}
}

func decPtr(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func strPtr(s string) *string {
	return &s
}

// Two items: full-price at 100, sale-priced from 80 down to 50 with qty 2.
func testCart() *models.Cart {
	return &models.Cart{
		ID:     "cart-1",
		UserID: "user-1",
		Items: []models.CartItem{
			{
				ID:        "ci-1",
				CartID:    "cart-1",
				ProductID: "prod-a",
				Product: &models.Product{
					ID:    "prod-a",
					Name:  "Premium Thobe",
					Price: decimal.NewFromInt(100),
				},
				ProductVariantID: strPtr("var-a"),
				ProductVariant:   &models.ProductVariant{ID: "var-a", ProductID: "prod-a", Stock: 5},
				Quantity:         1,
			},
			{
				ID:        "ci-2",
				CartID:    "cart-1",
				ProductID: "prod-b",
				Product: &models.Product{
					ID:        "prod-b",
					Name:      "Elegant Abaya",
					Price:     decimal.NewFromInt(80),
					SalePrice: decPtr(50),
				},
				ProductVariantID: strPtr("var-b"),
				ProductVariant:   &models.ProductVariant{ID: "var-b", ProductID: "prod-b", Stock: 5},
				Quantity:         2,
			},
		},
	}
}

func newTestStore() *fakeStore {
	return &fakeStore{
		cart:  testCart(),
		stock: map[string]int{"var-a": 5, "var-b": 5},
	}
}

func TestSubmitShippingMissingFields(t *testing.T) {
	fields := []struct {
		name  string
		strip func(*ShippingInfo)
	}{
		{"first_name", func(s *ShippingInfo) { s.FirstName = "" }},
		{"last_name", func(s *ShippingInfo) { s.LastName = "" }},
		{"phone", func(s *ShippingInfo) { s.Phone = "" }},
		{"address", func(s *ShippingInfo) { s.Address = "" }},
		{"city", func(s *ShippingInfo) { s.City = "" }},
		{"state", func(s *ShippingInfo) { s.State = "" }},
		{"country", func(s *ShippingInfo) { s.Country = "" }},
		{"zip_code", func(s *ShippingInfo) { s.ZipCode = "" }},
	}

	for _, tt := range fields {
		t.Run(tt.name, func(t *testing.T) {
			co := New(newTestStore(), testConfig(), zap.NewNop())
			info := validShipping()
			tt.strip(&info)

			err := co.SubmitShipping(info)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.name, vErr.Field)
			assert.Equal(t, StateCollectingShipping, co.State())
		})
	}
}

func TestSubmitShippingAdvances(t *testing.T) {
	co := New(newTestStore(), testConfig(), zap.NewNop())
	require.NoError(t, co.SubmitShipping(validShipping()))
	assert.Equal(t, StateCollectingPayment, co.State())
}

func TestSelectPaymentRejectsUnknownMethod(t *testing.T) {
	co := New(newTestStore(), testConfig(), zap.NewNop())
	require.NoError(t, co.SubmitShipping(validShipping()))

	err := co.SelectPayment("credit_card")
	require.ErrorIs(t, err, ErrUnsupportedPaymentMethod)

	require.NoError(t, co.SelectPayment(models.PaymentMethodBankTransfer))
}

func TestSubmitBeforePaymentSelection(t *testing.T) {
	co := New(newTestStore(), testConfig(), zap.NewNop())
	require.NoError(t, co.SubmitShipping(validShipping()))

	_, err := co.Submit(context.Background(), "user-1", "")
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSubmitEmptyCart(t *testing.T) {
	store := newTestStore()
	store.cart.Items = nil

	co := New(store, testConfig(), zap.NewNop())
	require.NoError(t, co.SubmitShipping(validShipping()))
	require.NoError(t, co.SelectPayment(models.PaymentMethodBankTransfer))

	_, err := co.Submit(context.Background(), "user-1", "")
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, StateFailed, co.State())
	assert.Empty(t, store.placed)
}

func TestSubmitSuccess(t *testing.T) {
	store := newTestStore()
	co := New(store, testConfig(), zap.NewNop())
	require.NoError(t, co.SubmitShipping(validShipping()))
	require.NoError(t, co.SelectPayment(models.PaymentMethodBankTransfer))

	confirmation, err := co.Submit(context.Background(), "user-1", "")
	require.NoError(t, err)
	assert.Equal(t, StateComplete, co.State())

	order := confirmation.Order
	// subtotal 200 lands on the threshold: free shipping, 15% tax
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(200)), "subtotal %s", order.Subtotal)
	assert.True(t, order.Shipping.IsZero(), "shipping %s", order.Shipping)
	assert.True(t, order.Tax.Equal(decimal.NewFromInt(30)), "tax %s", order.Tax)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(230)), "total %s", order.Total)

	// prices frozen from the cart snapshot
	require.Len(t, order.Items, 2)
	assert.True(t, order.Items[0].Price.Equal(decimal.NewFromInt(100)))
	assert.True(t, order.Items[1].Price.Equal(decimal.NewFromInt(50)))

	require.NotNil(t, order.Payment)
	assert.Equal(t, models.PaymentStatusPending, order.Payment.Status)
	assert.Equal(t, models.PaymentMethodBankTransfer, order.Payment.Method)
	assert.True(t, order.Payment.Amount.Equal(order.Total))

	// cart cleared, stock reduced by exactly the purchased quantities
	assert.Empty(t, store.cart.Items)
	assert.Equal(t, 4, store.stock["var-a"])
	assert.Equal(t, 3, store.stock["var-b"])

	// bank instructions passed through verbatim
	assert.Equal(t, "Saudi National Bank (SNB)", confirmation.BankInstructions.BankName)
	assert.Equal(t, "KSA Fashion Trading Co.", confirmation.BankInstructions.AccountName)
	assert.Equal(t, "SA1234567890123456789012", confirmation.BankInstructions.AccountNumber)
	assert.Equal(t, "SA65 1234 5678 9012 3456 7890 12", confirmation.BankInstructions.IBAN)

	// order number matches what the order carries
	assert.Equal(t, order.OrderNumber, confirmation.OrderNumber)
	assert.Contains(t, order.OrderNumber, "ORD-")
}

func TestSubmitPromoCode(t *testing.T) {
	store := newTestStore()
	co := New(store, testConfig(), zap.NewNop())
	require.NoError(t, co.SubmitShipping(validShipping()))
	require.NoError(t, co.SelectPayment(models.PaymentMethodBankTransfer))

	confirmation, err := co.Submit(context.Background(), "user-1", "welcome10")
	require.NoError(t, err)

	assert.True(t, confirmation.PromoApplied)
	assert.False(t, confirmation.PromoInvalid)
	// subtotal 200 => discount 20, total 230 - 20 = 210
	assert.True(t, confirmation.Order.Discount.Equal(decimal.NewFromInt(20)))
	assert.True(t, confirmation.Order.Total.Equal(decimal.NewFromInt(210)))
}

func TestSubmitUnknownPromoCodeIsNonFatal(t *testing.T) {
	store := newTestStore()
	co := New(store, testConfig(), zap.NewNop())
	require.NoError(t, co.SubmitShipping(validShipping()))
	require.NoError(t, co.SelectPayment(models.PaymentMethodBankTransfer))

	confirmation, err := co.Submit(context.Background(), "user-1", "BOGUS")
	require.NoError(t, err)

	assert.False(t, confirmation.PromoApplied)
	assert.True(t, confirmation.PromoInvalid)
	assert.True(t, confirmation.Order.Discount.IsZero())
}

func TestSubmitInsufficientStock(t *testing.T) {
	store := newTestStore()
	store.stock["var-b"] = 1 // cart wants 2

	co := New(store, testConfig(), zap.NewNop())
	require.NoError(t, co.SubmitShipping(validShipping()))
	require.NoError(t, co.SelectPayment(models.PaymentMethodBankTransfer))

	_, err := co.Submit(context.Background(), "user-1", "")
	var stockErr *repository.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "prod-b", stockErr.ProductID)
	assert.Equal(t, 2, stockErr.Requested)
	assert.Equal(t, 1, stockErr.Available)
	assert.Equal(t, StateFailed, co.State())

	// no partial mutation: nothing placed, cart untouched, stock intact
	assert.Empty(t, store.placed)
	assert.Len(t, store.cart.Items, 2)
	assert.Equal(t, 5, store.stock["var-a"])
}

func TestSubmitPersistenceFailure(t *testing.T) {
	store := newTestStore()
	store.failPlace = errors.New("connection reset")

	co := New(store, testConfig(), zap.NewNop())
	require.NoError(t, co.SubmitShipping(validShipping()))
	require.NoError(t, co.SelectPayment(models.PaymentMethodBankTransfer))

	_, err := co.Submit(context.Background(), "user-1", "")
	var persistErr *PersistenceError
	require.ErrorAs(t, err, &persistErr)
	assert.Equal(t, StateFailed, co.State())
	assert.Len(t, store.cart.Items, 2)
}

// Two concurrent checkouts against a single remaining unit: exactly one
// completes, the other fails with insufficient stock.
func TestConcurrentCheckoutLastUnit(t *testing.T) {
	store := &fakeStore{
		cart: &models.Cart{
			ID:     "cart-1",
			UserID: "user-1",
			Items: []models.CartItem{{
				ID:        "ci-1",
				CartID:    "cart-1",
				ProductID: "prod-a",
				Product: &models.Product{
					ID:    "prod-a",
					Name:  "Premium Thobe",
					Price: decimal.NewFromInt(100),
				},
				ProductVariantID: strPtr("var-a"),
				Quantity:         1,
			}},
		},
		stock:      map[string]int{"var-a": 1},
		stableCart: true,
	}

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			co := New(store, testConfig(), zap.NewNop())
			if err := co.SubmitShipping(validShipping()); err != nil {
				results <- err
				return
			}
			if err := co.SelectPayment(models.PaymentMethodBankTransfer); err != nil {
				results <- err
				return
			}
			_, err := co.Submit(context.Background(), "user-1", "")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var completed, stockFailures int
	for err := range results {
		if err == nil {
			completed++
			continue
		}
		var stockErr *repository.InsufficientStockError
		if errors.As(err, &stockErr) {
			stockFailures++
		}
	}

	assert.Equal(t, 1, completed)
	assert.Equal(t, 1, stockFailures)
	assert.Equal(t, 0, store.stock["var-a"])
}

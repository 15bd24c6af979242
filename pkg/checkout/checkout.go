// Package checkout drives the order-placement state machine:
// CollectingShipping -> CollectingPayment -> Submitting -> Complete|Failed.
// A Checkout is short-lived, owned by a single request, and not safe for
// concurrent use; the persistent store is the only shared resource.
package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/pricing"
	"github.com/example/storefront/pkg/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type State string

const (
	StateCollectingShipping State = "COLLECTING_SHIPPING"
	StateCollectingPayment  State = "COLLECTING_PAYMENT"
	StateSubmitting         State = "SUBMITTING"
	StateComplete           State = "COMPLETE"
	StateFailed             State = "FAILED"
)

// Store is the persistence collaborator the orchestrator depends on.
// PlaceOrder must be atomic: order, items, payment, stock decrements and
// cart clearing all commit together or not at all.
type Store interface {
	GetCart(ctx context.Context, userID string) (*models.Cart, error)
	PlaceOrder(ctx context.Context, order *models.Order, cartID string) error
}

// ShippingInfo is the shipping form. Email and notes are optional;
// everything else is required.
type ShippingInfo struct {
	// AddressID optionally references a saved address to attach to the
	// order; the form fields below are still the source of truth.
	AddressID string `json:"address_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Country   string `json:"country"`
	ZipCode   string `json:"zip_code"`
	Notes     string `json:"notes"`
}

// BankInstructions is the static transfer block shown on the confirmation
// screen, copied verbatim from configuration.
type BankInstructions struct {
	BankName      string `json:"bank_name"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	IBAN          string `json:"iban"`
}

// Confirmation is the Complete-state payload.
type Confirmation struct {
	Order            *models.Order    `json:"order"`
	OrderNumber      string           `json:"order_number"`
	PromoApplied     bool             `json:"promo_applied"`
	PromoInvalid     bool             `json:"promo_invalid,omitempty"`
	BankInstructions BankInstructions `json:"bank_instructions"`
}

type Checkout struct {
	store    Store
	opts     pricing.Options
	promos   pricing.PromoTable
	bank     config.BankConfig
	logger   *zap.Logger
	state    State
	shipping ShippingInfo
	method   string
}

func New(store Store, cfg *config.Config, logger *zap.Logger) *Checkout {
	return &Checkout{
		store:  store,
		opts:   pricing.OptionsFrom(cfg.Pricing),
		promos: pricing.NewPromoTable(cfg.Pricing.PromoCodes),
		bank:   cfg.Bank,
		logger: logger,
		state:  StateCollectingShipping,
	}
}

func (c *Checkout) State() State {
	return c.state
}

// SubmitShipping validates the shipping form and advances to payment
// collection. A missing field leaves the state unchanged.
func (c *Checkout) SubmitShipping(info ShippingInfo) error {
	if c.state != StateCollectingShipping {
		return ErrInvalidTransition
	}

	required := []struct {
		name  string
		value string
	}{
		{"first_name", info.FirstName},
		{"last_name", info.LastName},
		{"phone", info.Phone},
		{"address", info.Address},
		{"city", info.City},
		{"state", info.State},
		{"country", info.Country},
		{"zip_code", info.ZipCode},
	}
	for _, field := range required {
		if field.value == "" {
			return &ValidationError{Field: field.name}
		}
	}

	c.shipping = info
	c.state = StateCollectingPayment
	return nil
}

// SelectPayment records the payment method. Only bank transfer is enabled.
func (c *Checkout) SelectPayment(method string) error {
	if c.state != StateCollectingPayment {
		return ErrInvalidTransition
	}
	if method != models.PaymentMethodBankTransfer {
		return ErrUnsupportedPaymentMethod
	}
	c.method = method
	return nil
}

// Submit loads the cart, prices it, and places the order atomically. On
// success the checkout is Complete and the confirmation carries the order
// number and bank-transfer instructions. On failure the checkout is
// Failed and the cart is left untouched.
func (c *Checkout) Submit(ctx context.Context, userID, promoCode string) (*Confirmation, error) {
	if c.state != StateCollectingPayment || c.method == "" {
		return nil, ErrInvalidTransition
	}
	c.state = StateSubmitting

	cart, err := c.store.GetCart(ctx, userID)
	if err != nil {
		c.state = StateFailed
		return nil, &PersistenceError{Err: err}
	}
	if cart == nil || len(cart.Items) == 0 {
		c.state = StateFailed
		return nil, ErrEmptyCart
	}

	items := make([]pricing.LineItem, 0, len(cart.Items))
	for _, ci := range cart.Items {
		items = append(items, pricing.LineItem{
			ProductID: ci.ProductID,
			UnitPrice: ci.UnitPrice(),
			Quantity:  ci.Quantity,
		})
	}

	rate, promoOK := c.promos.Lookup(promoCode)
	promoInvalid := promoCode != "" && !promoOK

	breakdown, err := pricing.Quote(items, c.opts, rate)
	if err != nil {
		c.state = StateFailed
		return nil, err
	}

	order := c.buildOrder(userID, cart, breakdown)
	if err := c.store.PlaceOrder(ctx, order, cart.ID); err != nil {
		c.state = StateFailed
		var stockErr *repository.InsufficientStockError
		if errors.As(err, &stockErr) {
			return nil, stockErr
		}
		c.logger.Error("order placement failed",
			zap.String("user_id", userID),
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
		return nil, &PersistenceError{Err: err}
	}

	c.state = StateComplete
	c.logger.Info("order placed",
		zap.String("user_id", userID),
		zap.String("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("total", order.Total.String()))

	return &Confirmation{
		Order:        order,
		OrderNumber:  order.OrderNumber,
		PromoApplied: promoOK && promoCode != "",
		PromoInvalid: promoInvalid,
		BankInstructions: BankInstructions{
			BankName:      c.bank.BankName,
			AccountName:   c.bank.AccountName,
			AccountNumber: c.bank.AccountNumber,
			IBAN:          c.bank.IBAN,
		},
	}, nil
}

// buildOrder freezes the cart snapshot into an order draft. Unit prices
// are copied from the cart resolution and never re-derived afterwards.
func (c *Checkout) buildOrder(userID string, cart *models.Cart, breakdown pricing.Breakdown) *models.Order {
	now := time.Now()
	orderID := uuid.NewString()

	orderItems := make([]models.OrderItem, 0, len(cart.Items))
	for _, ci := range cart.Items {
		name := ""
		if ci.Product != nil {
			name = ci.Product.Name
		}
		orderItems = append(orderItems, models.OrderItem{
			ID:               uuid.NewString(),
			OrderID:          orderID,
			ProductID:        ci.ProductID,
			ProductName:      name,
			ProductVariantID: ci.ProductVariantID,
			Quantity:         ci.Quantity,
			Price:            ci.UnitPrice(),
		})
	}

	var addressID *string
	if c.shipping.AddressID != "" {
		addressID = &c.shipping.AddressID
	}

	return &models.Order{
		ID:          orderID,
		OrderNumber: NewOrderNumber(),
		UserID:      userID,
		AddressID:   addressID,
		Items:       orderItems,
		Payment: &models.Payment{
			ID:      uuid.NewString(),
			OrderID: orderID,
			Method:  c.method,
			Amount:  breakdown.Total,
			Status:  models.PaymentStatusPending,
		},
		Subtotal:  breakdown.Subtotal,
		Shipping:  breakdown.Shipping,
		Tax:       breakdown.Tax,
		Discount:  breakdown.Discount,
		Total:     breakdown.Total,
		Status:    models.OrderStatusPending,
		Notes:     c.shipping.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

package repository

import (
	"context"
	"errors"

	"github.com/example/storefront/pkg/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CartRepo struct {
	db *gorm.DB
}

func NewCartRepo(db *gorm.DB) *CartRepo {
	return &CartRepo{db: db}
}

// GetOrCreate returns the user's cart with items, products and variants
// preloaded, creating an empty cart on first use.
func (r *CartRepo) GetOrCreate(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Preload("Items.ProductVariant").
		Where("user_id = ?", userID).
		First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = models.Cart{ID: uuid.NewString(), UserID: userID}
	if err := r.db.WithContext(ctx).Create(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddItem merges the quantity into an existing line for the same product
// and variant, or appends a new one. The variant stock is checked at add
// time as a courtesy; the authoritative guard runs at order placement.
func (r *CartRepo) AddItem(ctx context.Context, userID, productID string, variantID *string, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return nil, errors.New("quantity must be positive")
	}

	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		Where("id = ? AND is_active = ?", productID, true).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if variantID != nil {
		var variant *models.ProductVariant
		for i := range product.Variants {
			if product.Variants[i].ID == *variantID {
				variant = &product.Variants[i]
				break
			}
		}
		if variant == nil {
			return nil, ErrVariantNotFound
		}
		if variant.Stock < quantity {
			return nil, &InsufficientStockError{
				ProductID:   productID,
				ProductName: product.Name,
				VariantID:   *variantID,
				Requested:   quantity,
				Available:   variant.Stock,
			}
		}
	}

	cart, err := r.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	var existing models.CartItem
	query := r.db.WithContext(ctx).Where("cart_id = ? AND product_id = ?", cart.ID, productID)
	if variantID != nil {
		query = query.Where("product_variant_id = ?", *variantID)
	} else {
		query = query.Where("product_variant_id IS NULL")
	}

	err = query.First(&existing).Error
	switch {
	case err == nil:
		err = r.db.WithContext(ctx).Model(&existing).
			Update("quantity", existing.Quantity+quantity).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		item := models.CartItem{
			ID:               uuid.NewString(),
			CartID:           cart.ID,
			ProductID:        productID,
			ProductVariantID: variantID,
			Quantity:         quantity,
		}
		err = r.db.WithContext(ctx).Create(&item).Error
	}
	if err != nil {
		return nil, err
	}

	return r.GetOrCreate(ctx, userID)
}

func (r *CartRepo) UpdateItemQuantity(ctx context.Context, userID, itemID string, quantity int) error {
	if quantity <= 0 {
		return errors.New("quantity must be positive")
	}

	cart, err := r.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}

	res := r.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ? AND cart_id = ?", itemID, cart.ID).
		Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CartRepo) RemoveItem(ctx context.Context, userID, itemID string) error {
	cart, err := r.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", itemID, cart.ID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear removes every item from a cart. Order placement clears the cart
// inside its own transaction; this is the explicit customer action.
func (r *CartRepo) Clear(ctx context.Context, cartID string) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{}).Error
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/example/storefront/pkg/models"
	"gorm.io/gorm"
)

type OrderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// PlaceOrder commits the whole order-creation sequence in one
// transaction: guarded stock decrements, order + items + payment rows,
// cart clearing. Any failure rolls the whole sequence back, so two
// concurrent checkouts against the same variant cannot both win the last
// unit and a failed order leaves the cart untouched.
func (r *OrderRepo) PlaceOrder(ctx context.Context, order *models.Order, cartID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			if item.ProductVariantID == nil {
				continue
			}
			res := tx.Model(&models.ProductVariant{}).
				Where("id = ? AND stock >= ?", *item.ProductVariantID, item.Quantity).
				Update("stock", gorm.Expr("stock - ?", item.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				var variant models.ProductVariant
				available := 0
				if err := tx.Select("stock").
					Where("id = ?", *item.ProductVariantID).
					First(&variant).Error; err == nil {
					available = variant.Stock
				}
				return &InsufficientStockError{
					ProductID:   item.ProductID,
					ProductName: item.ProductName,
					VariantID:   *item.ProductVariantID,
					Requested:   item.Quantity,
					Available:   available,
				}
			}
		}

		if err := tx.Create(order).Error; err != nil {
			return err
		}

		return tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
	})
}

func (r *OrderRepo) GetByID(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payment").
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payment").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *OrderRepo) List(ctx context.Context, page, pageSize int) ([]models.Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var orders []models.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Order{})
	query.Count(&total)

	offset := (page - 1) * pageSize
	err := query.
		Preload("Items").
		Preload("Payment").
		Order("created_at DESC").
		Offset(offset).Limit(pageSize).
		Find(&orders).Error
	return orders, total, err
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, orderID, status string) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPaymentStatus applies a payment status transition with its
// verification stamp, without the already-verified guard VerifyPayment
// adds. Exposed for admin tooling and backfills.
func (r *OrderRepo) SetPaymentStatus(ctx context.Context, paymentID, status string, verifiedAt *time.Time) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if verifiedAt != nil {
		updates["verified_at"] = *verifiedAt
	}
	res := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ?", paymentID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

// VerifyPayment is the admin bank-transfer verification action:
// PENDING -> PAID with a verification timestamp and the verifying admin.
// Never triggered automatically.
func (r *OrderRepo) VerifyPayment(ctx context.Context, paymentID, adminID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", paymentID).First(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}
		if payment.Status == models.PaymentStatusPaid {
			return ErrPaymentAlreadyVerified
		}

		now := time.Now()
		payment.Status = models.PaymentStatusPaid
		payment.VerifiedAt = &now
		payment.VerifiedBy = &adminID
		return tx.Save(&payment).Error
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *OrderRepo) ListPendingPayments(ctx context.Context) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("status = ?", models.PaymentStatusPending).
		Order("created_at ASC").
		Find(&payments).Error
	return payments, err
}

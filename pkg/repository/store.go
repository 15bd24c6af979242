package repository

import (
	"context"

	"github.com/example/storefront/pkg/models"
	"gorm.io/gorm"
)

// Store bundles the per-entity repositories and satisfies the narrow
// collaborator interfaces the checkout orchestrator and the HTTP handlers
// depend on.
type Store struct {
	Products  *ProductRepo
	Carts     *CartRepo
	Orders    *OrderRepo
	Addresses *AddressRepo
	Users     *UserRepo
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		Products:  NewProductRepo(db),
		Carts:     NewCartRepo(db),
		Orders:    NewOrderRepo(db),
		Addresses: NewAddressRepo(db),
		Users:     NewUserRepo(db),
	}
}

// GetCart implements checkout.Store.
func (s *Store) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	return s.Carts.GetOrCreate(ctx, userID)
}

// PlaceOrder implements checkout.Store.
func (s *Store) PlaceOrder(ctx context.Context, order *models.Order, cartID string) error {
	return s.Orders.PlaceOrder(ctx, order, cartID)
}

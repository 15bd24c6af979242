package server

import (
	"errors"
	"net/http"

	"github.com/example/storefront/pkg/checkout"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/notify"
	"github.com/example/storefront/pkg/repository"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type checkoutRequest struct {
	Shipping      checkout.ShippingInfo `json:"shipping"`
	PaymentMethod string                `json:"payment_method"`
	PromoCode     string                `json:"promo_code"`
}

// submitCheckout drives the checkout state machine through one request:
// shipping form, payment selection, atomic order placement.
func (s *Server) submitCheckout(c *gin.Context) {
	var req checkoutRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := currentUserID(c)
	co := checkout.New(s.store, s.config, s.logger)

	if err := co.SubmitShipping(req.Shipping); err != nil {
		var vErr *checkout.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error(), "field": vErr.Field})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := co.SelectPayment(req.PaymentMethod); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	confirmation, err := co.Submit(c.Request.Context(), userID, req.PromoCode)
	if err != nil {
		s.renderCheckoutError(c, err)
		return
	}

	order := confirmation.Order
	if err := s.cache.CacheOrder(c.Request.Context(), order); err != nil {
		s.logger.Warn("Failed to cache order", zap.String("order_id", order.ID), zap.Error(err))
	}
	s.auditAsync("order_placed", order.ID, userID, map[string]interface{}{
		"order_number": order.OrderNumber,
		"total":        order.Total.String(),
	})
	s.notifier.OrderPlaced(&notify.OrderPlaced{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      userID,
		Total:       order.Total.String(),
	})

	c.JSON(http.StatusCreated, confirmation)
}

func (s *Server) renderCheckoutError(c *gin.Context, err error) {
	var stockErr *repository.InsufficientStockError
	var persistErr *checkout.PersistenceError
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "cart is empty"})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":     stockErr.Error(),
			"product":   stockErr.ProductName,
			"requested": stockErr.Requested,
			"available": stockErr.Available,
		})
	case errors.As(err, &persistErr):
		s.logger.Error("Checkout persistence failure", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to place order"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func (s *Server) listOrders(c *gin.Context) {
	orders, err := s.store.Orders.ListByUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.logger.Error("Failed to list orders", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (s *Server) getOrder(c *gin.Context) {
	order, err := s.store.Orders.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		s.logger.Error("Failed to get order", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get order"})
		return
	}
	if order.UserID != currentUserID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

// getOrderStatus serves the order-status screen from the slim cached
// read model, falling back to the database and repopulating the cache.
func (s *Server) getOrderStatus(c *gin.Context) {
	orderID := c.Param("id")
	userID := currentUserID(c)
	ctx := c.Request.Context()

	if cached, err := s.cache.GetOrderCache(ctx, orderID); err == nil {
		if cached.UserID != userID {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusOK, cached)
		return
	}

	order, err := s.store.Orders.GetByID(ctx, orderID)
	if err != nil || order.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}

	if err := s.cache.CacheOrder(ctx, order); err != nil {
		s.logger.Warn("Failed to cache order", zap.String("order_id", orderID), zap.Error(err))
	}
	c.JSON(http.StatusOK, &repository.OrderCache{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Status:      order.Status,
		Total:       order.Total.String(),
	})
}

type createAddressRequest struct {
	Type      string `json:"type"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
	Address   string `json:"address" binding:"required"`
	City      string `json:"city" binding:"required"`
	State     string `json:"state" binding:"required"`
	Country   string `json:"country" binding:"required"`
	ZipCode   string `json:"zip_code" binding:"required"`
	IsDefault bool   `json:"is_default"`
}

func (s *Server) listAddresses(c *gin.Context) {
	addresses, err := s.store.Addresses.ListByUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.logger.Error("Failed to list addresses", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list addresses"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"addresses": addresses})
}

func (s *Server) createAddress(c *gin.Context) {
	var req createAddressRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Type == "" {
		req.Type = models.AddressTypeShipping
	}

	address := &models.Address{
		UserID:    currentUserID(c),
		Type:      req.Type,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		Country:   req.Country,
		ZipCode:   req.ZipCode,
		IsDefault: req.IsDefault,
	}
	if err := s.store.Addresses.Create(c.Request.Context(), address); err != nil {
		s.logger.Error("Failed to create address", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create address"})
		return
	}

	c.JSON(http.StatusCreated, address)
}

func (s *Server) deleteAddress(c *gin.Context) {
	err := s.store.Addresses.Delete(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "address not found"})
			return
		}
		s.logger.Error("Failed to delete address", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete address"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

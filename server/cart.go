package server

import (
	"errors"
	"net/http"

	"github.com/example/storefront/pkg/repository"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (s *Server) getCart(c *gin.Context) {
	cart, err := s.store.Carts.GetOrCreate(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.logger.Error("Failed to get cart", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get cart"})
		return
	}

	subtotal := decimal.Zero
	itemCount := 0
	for _, item := range cart.Items {
		subtotal = subtotal.Add(item.UnitPrice().Mul(decimal.NewFromInt(int64(item.Quantity))))
		itemCount += item.Quantity
	}

	c.JSON(http.StatusOK, gin.H{
		"cart":       cart,
		"subtotal":   subtotal,
		"item_count": itemCount,
	})
}

func (s *Server) clearCart(c *gin.Context) {
	cart, err := s.store.Carts.GetOrCreate(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.logger.Error("Failed to get cart", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear cart"})
		return
	}
	if err := s.store.Carts.Clear(c.Request.Context(), cart.ID); err != nil {
		s.logger.Error("Failed to clear cart", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type addCartItemRequest struct {
	ProductID        string  `json:"product_id" binding:"required"`
	ProductVariantID *string `json:"product_variant_id"`
	Quantity         int     `json:"quantity" binding:"required"`
}

func (s *Server) addCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cart, err := s.store.Carts.AddItem(c.Request.Context(), currentUserID(c), req.ProductID, req.ProductVariantID, req.Quantity)
	if err != nil {
		var stockErr *repository.InsufficientStockError
		switch {
		case errors.Is(err, repository.ErrProductNotFound), errors.Is(err, repository.ErrVariantNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.As(err, &stockErr):
			c.JSON(http.StatusConflict, gin.H{
				"error":     stockErr.Error(),
				"product":   stockErr.ProductName,
				"available": stockErr.Available,
			})
		default:
			s.logger.Error("Failed to add cart item", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add cart item"})
		}
		return
	}

	c.JSON(http.StatusCreated, cart)
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

func (s *Server) updateCartItem(c *gin.Context) {
	var req updateCartItemRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := s.store.Carts.UpdateItemQuantity(c.Request.Context(), currentUserID(c), c.Param("id"), req.Quantity)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "cart item not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) removeCartItem(c *gin.Context) {
	err := s.store.Carts.RemoveItem(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "cart item not found"})
			return
		}
		s.logger.Error("Failed to remove cart item", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove cart item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

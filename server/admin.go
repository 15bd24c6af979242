package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/notify"
	"github.com/example/storefront/pkg/repository"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (s *Server) adminListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	orders, total, err := s.store.Orders.List(c.Request.Context(), page, limit)
	if err != nil {
		s.logger.Error("Failed to list orders", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "total": total})
}

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (s *Server) adminUpdateOrderStatus(c *gin.Context) {
	var req updateOrderStatusRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orderID := c.Param("id")
	if err := s.store.Orders.UpdateStatus(c.Request.Context(), orderID, req.Status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		s.logger.Error("Failed to update order status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order status"})
		return
	}

	// Invalidate cached read model
	if err := s.cache.InvalidateOrder(c.Request.Context(), orderID); err != nil {
		s.logger.Warn("Failed to invalidate order cache", zap.String("order_id", orderID), zap.Error(err))
	}
	s.auditAsync("order_status_updated", orderID, currentUserID(c), map[string]interface{}{
		"status": req.Status,
	})

	c.JSON(http.StatusOK, gin.H{"success": true, "status": req.Status})
}

func (s *Server) adminListPendingPayments(c *gin.Context) {
	payments, err := s.store.Orders.ListPendingPayments(c.Request.Context())
	if err != nil {
		s.logger.Error("Failed to list pending payments", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list pending payments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

// adminVerifyPayment is the manual bank-transfer verification: an explicit
// admin action moving the payment PENDING -> PAID with a timestamp. There
// is no automatic path to PAID.
func (s *Server) adminVerifyPayment(c *gin.Context) {
	paymentID := c.Param("id")
	adminID := currentUserID(c)

	payment, err := s.store.Orders.VerifyPayment(c.Request.Context(), paymentID, adminID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrPaymentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		case errors.Is(err, repository.ErrPaymentAlreadyVerified):
			c.JSON(http.StatusConflict, gin.H{"error": "payment already verified"})
		default:
			s.logger.Error("Failed to verify payment", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify payment"})
		}
		return
	}

	order, err := s.store.Orders.GetByID(c.Request.Context(), payment.OrderID)
	if err == nil {
		s.notifier.PaymentVerified(&notify.PaymentVerified{
			PaymentID:   payment.ID,
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			UserID:      order.UserID,
			VerifiedBy:  adminID,
		})
	}
	s.auditAsync("payment_verified", paymentID, adminID, map[string]interface{}{
		"order_id": payment.OrderID,
	})

	c.JSON(http.StatusOK, payment)
}

type variantRequest struct {
	SKU   string           `json:"sku" binding:"required"`
	Size  string           `json:"size"`
	Color string           `json:"color"`
	Price *decimal.Decimal `json:"price"`
	Stock int              `json:"stock"`
}

type productRequest struct {
	Name        string           `json:"name" binding:"required"`
	Slug        string           `json:"slug" binding:"required"`
	Description string           `json:"description"`
	SKU         string           `json:"sku" binding:"required"`
	Price       decimal.Decimal  `json:"price" binding:"required"`
	SalePrice   *decimal.Decimal `json:"sale_price"`
	CategoryID  string           `json:"category_id" binding:"required"`
	IsActive    *bool            `json:"is_active"`
	IsFeatured  bool             `json:"is_featured"`
	Variants    []variantRequest `json:"variants"`
}

func (s *Server) adminCreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product := &models.Product{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		SKU:         req.SKU,
		Price:       req.Price,
		SalePrice:   req.SalePrice,
		CategoryID:  req.CategoryID,
		IsActive:    true,
		IsFeatured:  req.IsFeatured,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	for _, v := range req.Variants {
		product.Variants = append(product.Variants, models.ProductVariant{
			ID:        uuid.NewString(),
			ProductID: product.ID,
			SKU:       v.SKU,
			Size:      v.Size,
			Color:     v.Color,
			Price:     v.Price,
			Stock:     v.Stock,
		})
	}

	if err := s.store.Products.Create(c.Request.Context(), product); err != nil {
		s.logger.Error("Failed to create product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create product"})
		return
	}

	s.auditAsync("product_created", product.ID, currentUserID(c), map[string]interface{}{
		"sku": product.SKU,
	})
	c.JSON(http.StatusCreated, product)
}

func (s *Server) adminUpdateProduct(c *gin.Context) {
	productID := c.Param("id")
	product, err := s.store.Products.GetByID(c.Request.Context(), productID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	var req productRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product.Name = req.Name
	product.Slug = req.Slug
	product.Description = req.Description
	product.SKU = req.SKU
	product.Price = req.Price
	product.SalePrice = req.SalePrice
	product.CategoryID = req.CategoryID
	product.IsFeatured = req.IsFeatured
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.store.Products.Update(c.Request.Context(), product); err != nil {
		s.logger.Error("Failed to update product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update product"})
		return
	}

	if err := s.cache.InvalidateProduct(c.Request.Context(), productID); err != nil {
		s.logger.Warn("Failed to invalidate product cache", zap.String("product_id", productID), zap.Error(err))
	}
	s.auditAsync("product_updated", productID, currentUserID(c), nil)
	c.JSON(http.StatusOK, product)
}

func (s *Server) adminDeleteProduct(c *gin.Context) {
	productID := c.Param("id")
	if err := s.store.Products.Delete(c.Request.Context(), productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		s.logger.Error("Failed to delete product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete product"})
		return
	}

	if err := s.cache.InvalidateProduct(c.Request.Context(), productID); err != nil {
		s.logger.Warn("Failed to invalidate product cache", zap.String("product_id", productID), zap.Error(err))
	}
	s.auditAsync("product_deleted", productID, currentUserID(c), nil)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type setStockRequest struct {
	Stock int `json:"stock"`
}

func (s *Server) adminSetVariantStock(c *gin.Context) {
	var req setStockRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	variantID := c.Param("id")
	if err := s.store.Products.SetVariantStock(c.Request.Context(), variantID, req.Stock); err != nil {
		if errors.Is(err, repository.ErrVariantNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "variant not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.auditAsync("variant_stock_set", variantID, currentUserID(c), map[string]interface{}{
		"stock": req.Stock,
	})
	c.JSON(http.StatusOK, gin.H{"success": true, "stock": req.Stock})
}

// adminListAuditLogs returns the trail for one entity (order, payment,
// product or variant id), newest first.
func (s *Server) adminListAuditLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	logs, err := s.audit.GetAuditLogs(c.Request.Context(), c.Param("id"), int64(limit))
	if err != nil {
		s.logger.Error("Failed to list audit logs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list audit logs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

func (s *Server) adminListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	users, total, err := s.store.Users.List(c.Request.Context(), page, limit)
	if err != nil {
		s.logger.Error("Failed to list users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "total": total})
}

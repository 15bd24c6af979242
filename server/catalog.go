package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *Server) listProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 12
	}

	filter := repository.ProductFilter{
		CategoryID: c.Query("category_id"),
		Search:     c.Query("search"),
		Featured:   c.Query("featured") == "true",
		Page:       page,
		PageSize:   limit,
	}

	products, total, err := s.store.Products.List(c.Request.Context(), filter)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
		return
	}

	pages := total / int64(filter.PageSize)
	if total%int64(filter.PageSize) != 0 {
		pages++
	}
	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"pagination": gin.H{
			"page":  filter.Page,
			"limit": filter.PageSize,
			"total": total,
			"pages": pages,
		},
	})
}

func (s *Server) getProduct(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	if cached, err := s.cache.GetProductCache(ctx, id); err == nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	product, err := s.store.Products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		s.logger.Error("Failed to get product", zap.String("product_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get product"})
		return
	}

	if err := s.cache.CacheProduct(ctx, product); err != nil {
		s.logger.Warn("Failed to cache product", zap.String("product_id", id), zap.Error(err))
	}

	c.JSON(http.StatusOK, product)
}

func (s *Server) listCategories(c *gin.Context) {
	categories, err := s.store.Products.ListCategories(c.Request.Context())
	if err != nil {
		s.logger.Error("Failed to list categories", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (s *Server) listReviews(c *gin.Context) {
	reviews, err := s.store.Products.ListReviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.logger.Error("Failed to list reviews", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reviews"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

type createReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

func (s *Server) createReview(c *gin.Context) {
	var req createReviewRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	productID := c.Param("id")
	if _, err := s.store.Products.GetByID(c.Request.Context(), productID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	review := &models.Review{
		ID:        uuid.NewString(),
		ProductID: productID,
		UserID:    currentUserID(c),
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := s.store.Products.AddReview(c.Request.Context(), review); err != nil {
		s.logger.Error("Failed to create review", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create review"})
		return
	}

	c.JSON(http.StatusCreated, review)
}

func (s *Server) auditAsync(action, entityID, actorID string, data map[string]interface{}) {
	go func() {
		if err := s.audit.CreateAuditLog(context.Background(), &repository.AuditLog{
			Action:   action,
			EntityID: entityID,
			ActorID:  actorID,
			Data:     data,
		}); err != nil {
			s.logger.Warn("Failed to write audit log",
				zap.String("action", action),
				zap.String("entity_id", entityID),
				zap.Error(err))
		}
	}()
}

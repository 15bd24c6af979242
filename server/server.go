package server

import (
	"fmt"
	"net/http"

	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/notify"
	"github.com/example/storefront/pkg/repository"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	router   *gin.Engine
	store    *repository.Store
	cache    *repository.RedisRepository
	audit    *repository.MongoRepository
	notifier *notify.Notifier
}

func New(cfg *config.Config, logger *zap.Logger, store *repository.Store,
	cache *repository.RedisRepository, audit *repository.MongoRepository,
	notifier *notify.Notifier) *Server {

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware(logger))

	return &Server{
		config:   cfg,
		logger:   logger,
		router:   router,
		store:    store,
		cache:    cache,
		audit:    audit,
		notifier: notifier,
	}
}

func (s *Server) SetupRoutes() {
	// Health check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		// Public catalog
		v1.GET("/products", s.listProducts)
		v1.GET("/products/:id", s.getProduct)
		v1.GET("/products/:id/reviews", s.listReviews)
		v1.GET("/categories", s.listCategories)

		// Customer routes
		customer := v1.Group("", s.identityRequired())
		{
			customer.POST("/products/:id/reviews", s.createReview)

			cart := customer.Group("/cart")
			{
				cart.GET("", s.getCart)
				cart.DELETE("", s.clearCart)
				cart.POST("/items", s.addCartItem)
				cart.PUT("/items/:id", s.updateCartItem)
				cart.DELETE("/items/:id", s.removeCartItem)
			}

			customer.POST("/checkout", s.submitCheckout)
			customer.GET("/orders", s.listOrders)
			customer.GET("/orders/:id", s.getOrder)
			customer.GET("/orders/:id/status", s.getOrderStatus)

			addresses := customer.Group("/addresses")
			{
				addresses.GET("", s.listAddresses)
				addresses.POST("", s.createAddress)
				addresses.DELETE("/:id", s.deleteAddress)
			}
		}

		// Admin back office
		admin := v1.Group("/admin", s.identityRequired(), s.adminRequired())
		{
			admin.GET("/orders", s.adminListOrders)
			admin.PUT("/orders/:id/status", s.adminUpdateOrderStatus)
			admin.GET("/payments/pending", s.adminListPendingPayments)
			admin.POST("/payments/:id/verify", s.adminVerifyPayment)
			admin.POST("/products", s.adminCreateProduct)
			admin.PUT("/products/:id", s.adminUpdateProduct)
			admin.DELETE("/products/:id", s.adminDeleteProduct)
			admin.PUT("/variants/:id/stock", s.adminSetVariantStock)
			admin.GET("/users", s.adminListUsers)
			admin.GET("/audit/:id", s.adminListAuditLogs)
		}
	}

	// Swagger
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.logger.Info("Storefront server starting", zap.String("address", addr))
	return s.router.Run(addr)
}

// Router exposes the engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

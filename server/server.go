package server

import (
	"fmt"
	"net/http"

	"github.com/example/storefront/pkg/bag"
	"github.com/example/storefront/pkg/catalog"
	"github.com/example/storefront/pkg/checkout"
	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/notify"
	"github.com/example/storefront/pkg/payment"
	"github.com/example/storefront/pkg/pricing"
	"github.com/example/storefront/pkg/profile"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Deps bundles everything the handlers need injected.
type Deps struct {
	Bags     bag.Store
	Pricer   *pricing.Builder
	Gateway  payment.Gateway
	Checkout *checkout.Service
	Catalog  catalog.Repository
	Profiles *profile.Service
	Notifier *notify.Notifier
}

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	router   *gin.Engine
	bags     bag.Store
	pricer   *pricing.Builder
	gateway  payment.Gateway
	checkout *checkout.Service
	catalog  catalog.Repository
	profiles *profile.Service
	notifier *notify.Notifier
}

func NewServer(cfg *config.Config, logger *zap.Logger, deps Deps) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware(logger))

	return &Server{
		config:   cfg,
		logger:   logger,
		router:   router,
		bags:     deps.Bags,
		pricer:   deps.Pricer,
		gateway:  deps.Gateway,
		checkout: deps.Checkout,
		catalog:  deps.Catalog,
		profiles: deps.Profiles,
		notifier: deps.Notifier,
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
		// Catalog routes
		products := v1.Group("/products")
		{
			products.GET("", s.listProducts)
			products.GET("/:id", s.getProduct)
			products.POST("", s.requireAdmin, s.createProduct)
			products.PUT("/:id", s.requireAdmin, s.updateProduct)
			products.DELETE("", s.requireAdmin, s.deleteProducts)
		}

		// Bag routes
		bagGroup := v1.Group("/bag")
		{
			bagGroup.GET("", s.getBag)
			bagGroup.POST("/items", s.addBagItem)
			bagGroup.PUT("/items/:product_id", s.updateBagItem)
			bagGroup.DELETE("/items/:product_id", s.removeBagItem)
			bagGroup.DELETE("", s.emptyBag)
		}

		// Checkout routes
		v1.GET("/checkout", s.getCheckout)
		v1.POST("/checkout", s.postCheckout)
		v1.POST("/checkout/cache-metadata", s.cacheCheckoutMetadata)
		v1.GET("/checkout-success/:order_number", s.checkoutSuccess)

		// Profile routes
		profileGroup := v1.Group("/profile")
		{
			profileGroup.GET("/orders", s.orderHistory)
			profileGroup.GET("/orders/:order_number", s.orderSummary)
			profileGroup.GET("/addresses", s.addressBook)
			profileGroup.POST("/addresses", s.addAddress)
			profileGroup.PUT("/addresses/:id", s.editAddress)
			profileGroup.DELETE("/addresses", s.deleteAddresses)
			profileGroup.POST("/addresses/:id/default", s.setDefaultAddress)
			profileGroup.GET("/saved", s.savedProducts)
			profileGroup.POST("/saved/:product_id", s.saveProduct)
			profileGroup.DELETE("/saved/:product_id", s.removeSavedProduct)
		}
	}

	// Swagger
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.logger.Info("Storefront starting", zap.String("address", addr))
	return s.router.Run(addr)
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

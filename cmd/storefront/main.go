package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/storefront/pkg/checkout"
	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/discovery"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/notify"
	"github.com/example/storefront/pkg/payment"
	"github.com/example/storefront/pkg/pricing"
	"github.com/example/storefront/pkg/profile"
	"github.com/example/storefront/pkg/repository"
	"github.com/example/storefront/server"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	// Load config
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Setup logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting storefront",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port))

	// Connect MySQL
	db, err := gorm.Open(mysql.Open(cfg.MySQL.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to MySQL", zap.Error(err))
	}
	if err := db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderLineItem{},
		&models.UserProfile{},
		&models.Address{},
		&models.SavedProduct{},
	); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Connect Redis for session bags
	redisRepo := repository.NewRedisRepository(&cfg.Redis)
	if err := redisRepo.Ping(context.Background()); err != nil {
		logger.Warn("Failed to connect to Redis", zap.Error(err))
	}
	bagStore := repository.NewBagStore(redisRepo, cfg.Redis.BagTTL)

	// Connect MongoDB for the checkout audit trail; the storefront runs
	// without it
	var auditor checkout.Auditor
	mongoRepo, err := repository.NewMongoRepository(&cfg.MongoDB)
	if err != nil {
		logger.Warn("Failed to connect to MongoDB, continuing without audit trail", zap.Error(err))
	} else {
		auditor = mongoRepo
	}

	// Setup service registry
	registry, err := discovery.NewServiceRegistry(&cfg.Etcd)
	if err != nil {
		logger.Warn("Failed to connect to etcd, continuing without service registry", zap.Error(err))
	}
	instance := &discovery.ServiceInstance{
		Name: cfg.Server.Name,
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	}
	if registry != nil {
		if err := registry.Register(context.Background(), instance); err != nil {
			logger.Warn("Failed to register service", zap.Error(err))
		}
	}

	// Order confirmation notifier
	notifier, err := notify.NewNotifier(logger)
	if err != nil {
		logger.Warn("Failed to start notifier, continuing without order confirmations", zap.Error(err))
		notifier = nil
	}

	// Wire domain services
	catalogRepo := repository.NewCatalogRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	pricer := pricing.NewBuilder(catalogRepo, pricing.Settings{
		DeliveryFlatRate:      decimal.NewFromFloat(cfg.Delivery.FlatRate),
		FreeDeliveryThreshold: decimal.NewFromFloat(cfg.Delivery.FreeDeliveryThreshold),
	})
	gateway := payment.NewStripeGateway(cfg.Stripe.SecretKey, logger)
	checkoutSvc := checkout.NewService(orderRepo, catalogRepo, pricer, bagStore, auditor, logger)
	profileSvc := profile.NewService(profileRepo, orderRepo, logger)

	srv := server.NewServer(cfg, logger, server.Deps{
		Bags:     bagStore,
		Pricer:   pricer,
		Gateway:  gateway,
		Checkout: checkoutSvc,
		Catalog:  catalogRepo,
		Profiles: profileSvc,
		Notifier: notifier,
	})
	srv.SetupRoutes()

	// Start server in goroutine
	srvErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			srvErr <- err
		}
	}()

	logger.Info("Storefront started successfully")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("Received shutdown signal")
	case err := <-srvErr:
		logger.Fatal("Server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if registry != nil {
		if err := registry.Deregister(shutdownCtx, instance); err != nil {
			logger.Warn("Failed to deregister service", zap.Error(err))
		}
		registry.Close()
	}
	if notifier != nil {
		notifier.Shutdown()
	}
	if mongoRepo != nil {
		mongoRepo.Close(shutdownCtx)
	}
	redisRepo.Close()

	logger.Info("Storefront stopped")
}

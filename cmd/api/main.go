// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atelier-textile/storefront-api/internal/config"
	"github.com/atelier-textile/storefront-api/internal/domain/cart"
	"github.com/atelier-textile/storefront-api/internal/domain/checkout"
	"github.com/atelier-textile/storefront-api/internal/domain/customer"
	"github.com/atelier-textile/storefront-api/internal/domain/order"
	"github.com/atelier-textile/storefront-api/internal/domain/payment"
	"github.com/atelier-textile/storefront-api/internal/domain/product"
	"github.com/atelier-textile/storefront-api/internal/infrastructure/database/postgres"
	"github.com/atelier-textile/storefront-api/internal/infrastructure/database/redis"
	"github.com/atelier-textile/storefront-api/internal/interfaces/http"
	"github.com/atelier-textile/storefront-api/internal/interfaces/http/handlers"
	"github.com/atelier-textile/storefront-api/internal/interfaces/http/routes"
	"github.com/atelier-textile/storefront-api/internal/pkg/auth"
	"github.com/atelier-textile/storefront-api/internal/pkg/email"
	"github.com/atelier-textile/storefront-api/internal/pkg/logger"
	"github.com/atelier-textile/storefront-api/internal/pkg/pdf"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	log := logger.New(cfg.Logging)
	log.WithFields(logrus.Fields{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Info("starting")

	db, err := postgres.NewConnection(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	redisClient, err := redis.NewConnection(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisClient.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.Health(ctx); err != nil {
		log.WithError(err).Fatal("Database health check failed")
	}
	if err := redisClient.Health(ctx); err != nil {
		log.WithError(err).Fatal("Redis health check failed")
	}
	cancel()

	if cfg.Database.AutoMigrate {
		migration := postgres.NewMigration(db.GetDB(), log)
		if err := migration.RunAutoMigrations(); err != nil {
			log.WithError(err).Fatal("Database migration failed")
		}
		if err := migration.CreateIndexes(); err != nil {
			log.WithError(err).Warn("Index creation failed")
		}
		if cfg.Database.Seed || cfg.IsDevelopment() {
			if err := migration.SeedInitialData(); err != nil {
				log.WithError(err).Warn("Data seeding failed")
			}
			if err := migration.GetTableInfo(); err != nil {
				log.WithError(err).Warn("Failed to read table info")
			}
		}
	}

	// Persistence
	gdb := db.GetDB()
	productRepo := postgres.NewProductRepository(gdb)
	orderRepo := postgres.NewOrderRepository(gdb)
	cartRecords := postgres.NewCartRecordRepository(gdb)
	directory := postgres.NewCustomerDirectory(gdb)

	// Domain services
	categoryService := product.NewCategoryService(productRepo)
	productService := product.NewService(productRepo, categoryService, log)
	cartService := cart.NewService(redis.NewCartPersister(redisClient, cfg.Redis.CartTTL), productService, log)
	orderService := order.NewService(orderRepo, log)
	customerService := customer.NewService(directory, log)

	transport, err := email.NewTransport(cfg.Email, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to configure email transport")
	}
	mailer := email.NewService(cfg.Email, cfg.Shop, transport, log)

	stripeProvider, err := payment.NewStripeProvider(payment.StripeProviderConfig{
		APIKey: cfg.Stripe.SecretKey,
		Logger: log,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to configure Stripe")
	}

	checkoutService := checkout.NewService(checkout.Deps{
		Orders:       orderService,
		Carts:        cart.NewRecordService(cartRecords),
		SessionCarts: cartService,
		Customers:    customerService,
		Gateway:      stripeProvider,
		Pricer:       cartService,
		Notifier:     mailer,
	}, checkout.Options{
		Currency:         cfg.Stripe.Currency,
		SuccessURL:       cfg.Stripe.SuccessURL,
		CancelURL:        cfg.Stripe.CancelURL,
		AllowedCountries: cfg.Stripe.AllowedCountries,
		ShippingFee:      cfg.Stripe.ShippingFee,
		ShippingLabel:    cfg.Stripe.ShippingLabel,
		Locale:           cfg.Shop.Locale,
	}, log)

	server := http.NewServer(cfg, http.Options{
		Handlers: routes.Handlers{
			Cart:     handlers.NewCartHandler(cartService, cfg.Redis.CartTTL, cfg.IsProduction(), log),
			Checkout: handlers.NewCheckoutHandler(checkoutService, cartService, log),
			Webhook:  handlers.NewWebhookHandler(payment.NewWebhookVerifier(cfg.Stripe.WebhookSecret), checkoutService, log),
			Product:  handlers.NewProductHandler(productService, categoryService, log),
			Category: handlers.NewCategoryHandler(categoryService, log),
			Order:    handlers.NewOrderHandler(orderService, log),
			Invoice:  handlers.NewInvoiceHandler(orderService, pdf.NewService(cfg.Shop), log),
			Profile:  handlers.NewUserProfileHandler(customerService, log),
			Contact:  handlers.NewContactHandler(mailer, log),
		},
		Guards: routes.Guards{
			Tokens: auth.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer),
			Admin:  auth.NewAdminAuthenticator(cfg.Auth.AdminToken, cfg.Auth.AdminTokenHash),
		},
		Limiter: redis.NewRateLimiter(redisClient, time.Minute),
		Checks: map[string]http.HealthChecker{
			"database": db,
			"redis":    redisClient,
		},
	}, log)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	log.Info("server shutdown completed")
}

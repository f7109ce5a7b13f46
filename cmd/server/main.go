package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/modehaus/membership/internal"
	"github.com/modehaus/membership/internal/billing"
	"github.com/modehaus/membership/internal/domain"
	"github.com/modehaus/membership/internal/handler"
	"github.com/modehaus/membership/internal/handler/webhook"
	"github.com/modehaus/membership/internal/middleware"
	"github.com/modehaus/membership/internal/router"
	"github.com/modehaus/membership/internal/service"
)

func run() error {
	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize Stripe billing provider
	stripeConfig := billing.StripeConfig{
		APIKey:        cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
	}
	billingProvider, err := billing.NewStripeProvider(stripeConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize Stripe provider: %w", err)
	}
	logger.Info("Stripe billing provider initialized", "test_mode", stripeConfig.IsTestMode())

	// Initialize services
	priceResolver := service.NewPriceResolver(billingProvider, domain.DefaultPlans(), logger)
	subscriptionService := service.NewSubscriptionService(billingProvider, priceResolver, logger)

	// Initialize handlers
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService, logger)
	stripeWebhookHandler := webhook.NewStripeHandler(billingProvider, webhook.StripeWebhookConfig{
		WebhookSecret: cfg.Stripe.WebhookSecret,
	}, logger)

	// Initialize Prometheus metrics
	metrics := middleware.NewMetrics("membership")

	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		metrics.Middleware,
		router.CORS(cfg.AllowedOrigins),
		router.Logger(logger),
	)

	// Metrics endpoint (protect via firewall in production)
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		metrics.Handler().ServeHTTP(w, req)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// API routes. The handlers check the method themselves so rejected
	// methods get a JSON body instead of the mux default.
	r.Any("/api/create-subscription", subscriptionHandler.CreateSubscription)
	r.Any("/api/webhook", stripeWebhookHandler.HandleWebhook)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("Starting server", "address", addr, "env", cfg.Env)

	if err := http.ListenAndServe(addr, r); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// Command provision creates the membership products and prices in Stripe.
// Safe to run repeatedly; existing plans are reused, not duplicated.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/modehaus/membership/internal"
	"github.com/modehaus/membership/internal/billing"
	"github.com/modehaus/membership/internal/domain"
	"github.com/modehaus/membership/internal/service"
)

func run() error {
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	provider, err := billing.NewStripeProvider(billing.StripeConfig{
		APIKey:        cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Stripe provider: %w", err)
	}

	resolver := service.NewPriceResolver(provider, domain.DefaultPlans(), logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	plans, err := resolver.EnsurePlans(ctx)
	if err != nil {
		return fmt.Errorf("failed to provision plans: %w", err)
	}

	fmt.Println("Stripe products setup completed")
	for _, p := range plans {
		fmt.Printf("  %-16s %-12s $%d.%02d/month  %s\n",
			p.PlanKey, p.Name, p.AmountCents/100, p.AmountCents%100, p.PriceID)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/modehaus/membership/internal/billing"
	"github.com/modehaus/membership/internal/domain"
)

// priceListLimit caps the price listing used for content matching. Stripe
// paginates past this, so a catalog larger than one page could miss matches
// and create a duplicate price. Accepted: the plan catalog is three entries.
const priceListLimit = 100

// priceCurrency is the only currency the catalog sells in.
const priceCurrency = "usd"

// PriceResolver finds or creates the provider price backing a plan.
//
// Resolution is idempotent by content: a price matches a plan when its
// product name, unit amount and billing interval all equal the plan's
// configured values. There is no local cache or dedup table; the provider's
// listing is consulted on every call, so repeated calls converge on the
// first price created. Two concurrent calls for the same plan can both miss
// and each create a price; the provider is the only arbiter and the earliest
// listed price wins on subsequent calls.
type PriceResolver struct {
	provider billing.Provider
	catalog  domain.PlanCatalog
	logger   *slog.Logger
}

// NewPriceResolver creates a price resolver over the given plan catalog.
func NewPriceResolver(provider billing.Provider, catalog domain.PlanCatalog, logger *slog.Logger) *PriceResolver {
	if logger == nil {
		logger = slog.Default()
	}

	return &PriceResolver{
		provider: provider,
		catalog:  catalog,
		logger:   logger.With("service", "price_resolver"),
	}
}

// Resolve returns the provider price id for a plan key, creating the product
// and price if no matching price exists yet.
//
// Unknown plan keys fail before any provider call. Provider failures
// propagate unretried.
func (r *PriceResolver) Resolve(ctx context.Context, planKey string) (string, error) {
	plan, ok := r.catalog.Lookup(planKey)
	if !ok {
		return "", domain.Errorf(domain.EINVALID, "price.resolve", "invalid plan identifier: %s", planKey)
	}

	prices, err := r.provider.ListRecurringPrices(ctx, priceListLimit)
	if err != nil {
		return "", err
	}

	// First match wins. Matches are exact on (name, amount, interval), so
	// duplicates only arise from concurrent creation races.
	for _, price := range prices {
		if price.ProductName == plan.Name &&
			price.UnitAmountCents == plan.AmountCents &&
			price.Interval == domain.BillingIntervalMonthly {
			r.logger.Debug("resolved existing price",
				"plan", planKey,
				"price_id", price.ID)
			return price.ID, nil
		}
	}

	product, err := r.provider.CreateProduct(ctx, billing.CreateProductParams{
		Name:        plan.Name,
		Description: plan.Description,
	})
	if err != nil {
		return "", err
	}

	price, err := r.provider.CreateRecurringPrice(ctx, billing.CreateRecurringPriceParams{
		ProductID:       product.ID,
		UnitAmountCents: plan.AmountCents,
		Currency:        priceCurrency,
		Interval:        domain.BillingIntervalMonthly,
		Nickname:        fmt.Sprintf("%s-monthly", planKey),
	})
	if err != nil {
		return "", err
	}

	r.logger.Info("created plan price",
		"plan", planKey,
		"product_id", product.ID,
		"price_id", price.ID)

	return price.ID, nil
}

// PlanPrice reports the provider price backing one catalog plan.
type PlanPrice struct {
	PlanKey     string `json:"plan_key"`
	Name        string `json:"name"`
	PriceID     string `json:"price_id"`
	AmountCents int64  `json:"amount_cents"`
}

// EnsurePlans resolves every catalog plan, creating any missing products and
// prices, and reports the resulting price ids. Used by the provisioning
// command; safe to re-run.
func (r *PriceResolver) EnsurePlans(ctx context.Context) ([]PlanPrice, error) {
	keys := r.catalog.Keys()
	sort.Strings(keys)

	results := make([]PlanPrice, 0, len(keys))
	for _, key := range keys {
		priceID, err := r.Resolve(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("ensure plan %s: %w", key, err)
		}

		plan, _ := r.catalog.Lookup(key)
		results = append(results, PlanPrice{
			PlanKey:     key,
			Name:        plan.Name,
			PriceID:     priceID,
			AmountCents: plan.AmountCents,
		})
	}

	return results, nil
}

package domain

// Plan describes a subscription tier the storefront can sell.
// Plans are static configuration: the catalog is built once at startup and
// never mutated. The billing provider owns the corresponding product and
// price records; plans only carry the content used to find or create them.
type Plan struct {
	// Key is the logical identifier the browser sends (e.g. "price_basic").
	// Unique within a catalog.
	Key string

	// Name is the product display name in the billing provider. Price
	// resolution matches on this name, so it must be stable.
	Name string

	// Description is the product description shown in the provider dashboard
	// and customer receipts.
	Description string

	// AmountCents is the monthly charge in the smallest currency unit.
	AmountCents int64

	// Interval is the billing interval. Only "month" is supported.
	Interval string
}

// BillingIntervalMonthly is the only interval the catalog supports today.
const BillingIntervalMonthly = "month"

// PlanCatalog is the read-only set of sellable plans, keyed by Plan.Key.
type PlanCatalog map[string]Plan

// Lookup returns the plan for key, or false if the key is not configured.
func (c PlanCatalog) Lookup(key string) (Plan, bool) {
	p, ok := c[key]
	return p, ok
}

// Keys returns the configured plan keys for iteration. Order is unspecified.
func (c PlanCatalog) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

// DefaultPlans returns the membership tiers sold at checkout.
func DefaultPlans() PlanCatalog {
	return PlanCatalog{
		"price_basic": {
			Key:         "price_basic",
			Name:        "Early Access",
			Description: "First to know about new collections, exclusive previews, member-only events",
			AmountCents: 999,
			Interval:    BillingIntervalMonthly,
		},
		"price_premium": {
			Key:         "price_premium",
			Name:        "VIP Access",
			Description: "Everything in Early Access + Personal styling sessions, free shipping & returns, limited edition items",
			AmountCents: 1999,
			Interval:    BillingIntervalMonthly,
		},
		"price_ultimate": {
			Key:         "price_ultimate",
			Name:        "Ultimate",
			Description: "Everything in VIP Access + Quarterly style box, priority customer service, invitation-only fashion shows",
			AmountCents: 3999,
			Interval:    BillingIntervalMonthly,
		},
	}
}

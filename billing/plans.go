package billing

import (
	"github.com/getori/ori/core-api/config"
	"github.com/getori/ori/core-api/models"
)

type Interval string

const (
	IntervalMonthly Interval = "monthly"
	IntervalYearly  Interval = "yearly"
)

// Plan describes one purchasable tier. AmountCents mirrors the amount
// configured on the Stripe price; it is used for display and tests, the
// provider remains the source of truth for what is charged.
type Plan struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	PriceID     string   `json:"price_id"`
	AmountCents int64    `json:"amount_cents"`
	Interval    Interval `json:"interval"`
}

// Catalog maps Stripe price ids to plan keys and back. Price ids come from
// the environment so each deployment binds its own Stripe account.
type Catalog struct {
	plans   []Plan
	byPrice map[string]Plan
	byKey   map[string]Plan
}

func NewCatalog(settings config.StripeSettings) *Catalog {
	plans := []Plan{
		{
			Key:         models.SubscriptionPlusMonthly,
			Name:        "Plus",
			PriceID:     settings.PricePlusMonthlyID,
			AmountCents: 500,
			Interval:    IntervalMonthly,
		},
		{
			Key:         models.SubscriptionPlusYearly,
			Name:        "Plus",
			PriceID:     settings.PricePlusYearlyID,
			AmountCents: 4800,
			Interval:    IntervalYearly,
		},
		{
			Key:         models.SubscriptionPremiumMonthly,
			Name:        "Premium",
			PriceID:     settings.PricePremiumMonthlyID,
			AmountCents: 1000,
			Interval:    IntervalMonthly,
		},
		{
			Key:         models.SubscriptionPremiumYearly,
			Name:        "Premium",
			PriceID:     settings.PricePremiumYearlyID,
			AmountCents: 9600,
			Interval:    IntervalYearly,
		},
	}

	byPrice := make(map[string]Plan, len(plans))
	byKey := make(map[string]Plan, len(plans))
	for _, plan := range plans {
		if plan.PriceID != "" {
			byPrice[plan.PriceID] = plan
		}
		byKey[plan.Key] = plan
	}

	return &Catalog{plans: plans, byPrice: byPrice, byKey: byKey}
}

func (c *Catalog) Plans() []Plan {
	return c.plans
}

// StatusFromPriceID is total: any price id that is not one of the four
// configured plan prices maps to the free status.
func (c *Catalog) StatusFromPriceID(priceID string) string {
	if plan, ok := c.byPrice[priceID]; ok {
		return plan.Key
	}
	return models.SubscriptionFree
}

// PlanKeyFromStatus returns the plan for a subscription status holding one
// of the four plan keys; ok is false for free, past_due and cancelled.
func (c *Catalog) PlanKeyFromStatus(status string) (Plan, bool) {
	plan, ok := c.byKey[status]
	return plan, ok
}

// PlanForPriceID returns the plan bound to a configured Stripe price id.
func (c *Catalog) PlanForPriceID(priceID string) (Plan, bool) {
	plan, ok := c.byPrice[priceID]
	return plan, ok
}

// ValidPriceID reports whether the price id belongs to the catalog. Used by
// the checkout path to reject arbitrary price ids from request bodies.
func (c *Catalog) ValidPriceID(priceID string) bool {
	_, ok := c.byPrice[priceID]
	return ok
}

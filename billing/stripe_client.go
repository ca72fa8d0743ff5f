package billing

import (
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// StripeClient is the slice of the Stripe API the billing service uses.
// Production wires the official client; tests substitute a mock.
type StripeClient interface {
	CreateCustomer(params *stripe.CustomerParams) (*stripe.Customer, error)
	GetCustomer(id string, params *stripe.CustomerParams) (*stripe.Customer, error)
	UpdateCustomer(id string, params *stripe.CustomerParams) (*stripe.Customer, error)
	CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	CreatePortalSession(params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error)
	GetSubscription(id string, params *stripe.SubscriptionParams) (*stripe.Subscription, error)
	CreateSubscription(params *stripe.SubscriptionParams) (*stripe.Subscription, error)
	AttachPaymentMethod(id string, params *stripe.PaymentMethodAttachParams) (*stripe.PaymentMethod, error)
	CreateSetupIntent(params *stripe.SetupIntentParams) (*stripe.SetupIntent, error)
}

type stripeClient struct {
	api *client.API
}

// NewStripeClient builds a client bound to the given secret key. The key is
// held by the client rather than the package-level stripe.Key so the
// dependency stays explicit.
func NewStripeClient(secretKey string) StripeClient {
	api := &client.API{}
	api.Init(secretKey, nil)

	return &stripeClient{api: api}
}

func (c *stripeClient) CreateCustomer(params *stripe.CustomerParams) (*stripe.Customer, error) {
	return c.api.Customers.New(params)
}

func (c *stripeClient) GetCustomer(id string, params *stripe.CustomerParams) (*stripe.Customer, error) {
	return c.api.Customers.Get(id, params)
}

func (c *stripeClient) UpdateCustomer(id string, params *stripe.CustomerParams) (*stripe.Customer, error) {
	return c.api.Customers.Update(id, params)
}

func (c *stripeClient) CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return c.api.CheckoutSessions.New(params)
}

func (c *stripeClient) CreatePortalSession(params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error) {
	return c.api.BillingPortalSessions.New(params)
}

func (c *stripeClient) GetSubscription(id string, params *stripe.SubscriptionParams) (*stripe.Subscription, error) {
	return c.api.Subscriptions.Get(id, params)
}

func (c *stripeClient) CreateSubscription(params *stripe.SubscriptionParams) (*stripe.Subscription, error) {
	return c.api.Subscriptions.New(params)
}

func (c *stripeClient) AttachPaymentMethod(id string, params *stripe.PaymentMethodAttachParams) (*stripe.PaymentMethod, error) {
	return c.api.PaymentMethods.Attach(id, params)
}

func (c *stripeClient) CreateSetupIntent(params *stripe.SetupIntentParams) (*stripe.SetupIntent, error) {
	return c.api.SetupIntents.New(params)
}

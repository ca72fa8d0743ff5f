package billing

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/stripe/stripe-go/v79"

	"github.com/getori/ori/core-api/models"
	"github.com/getori/ori/core-api/utils"
)

var (
	ErrNoCustomer   = errors.New("no billing customer on file")
	ErrUnknownPrice = errors.New("unknown price id")
)

// Store is the slice of the datastore the billing service needs.
type Store interface {
	FetchProfileByUserID(userID string) utils.Result[*models.UserProfile]
	FetchProfileByStripeCustomerID(customerID string) utils.Result[*models.UserProfile]
	SaveStripeCustomerID(userID string, customerID string) utils.Result[bool]
	SetSubscriptionByUserID(userID string, subscriptionID string, status string) utils.Result[bool]
	SetSubscriptionByCustomerID(customerID string, subscriptionID string, status string) utils.Result[bool]
	SetSubscriptionStatusByCustomerID(customerID string, status string) utils.Result[bool]
	ClearSubscriptionByCustomerID(customerID string) utils.Result[bool]
}

type Service struct {
	store       Store
	stripe      StripeClient
	catalog     *Catalog
	frontendURL string
	logger      *slog.Logger
}

func NewService(store Store, stripeClient StripeClient, catalog *Catalog, frontendURL string, logger *slog.Logger) *Service {
	return &Service{
		store:       store,
		stripe:      stripeClient,
		catalog:     catalog,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger.With("component", "billing"),
	}
}

func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// EnsureCustomer returns the profile's Stripe customer id, creating the
// customer on first use and persisting the id.
func (s *Service) EnsureCustomer(ctx context.Context, userID string, email string) utils.Result[string] {
	profileResult := s.store.FetchProfileByUserID(userID)
	if profileResult.Failure() {
		return utils.FailedResult[string](profileResult.Error())
	}
	profile := profileResult.Value()

	if profile.StripeCustomerID != nil && *profile.StripeCustomerID != "" {
		return utils.SuccessResult(*profile.StripeCustomerID)
	}

	params := &stripe.CustomerParams{
		Metadata: map[string]string{
			"user_id": userID,
		},
	}
	if email != "" {
		params.Email = stripe.String(email)
	}

	customer, err := s.stripe.CreateCustomer(params)
	if err != nil {
		return utils.FailedResult[string](err)
	}

	if saveResult := s.store.SaveStripeCustomerID(userID, customer.ID); saveResult.Failure() {
		return utils.FailedResult[string](saveResult.Error())
	}

	s.logger.Info("created stripe customer", "user_id", userID, "customer_id", customer.ID)

	return utils.SuccessResult(customer.ID)
}

// CreateCheckoutSession starts a subscription-mode checkout for one of the
// catalog prices and returns the hosted page URL.
func (s *Service) CreateCheckoutSession(ctx context.Context, userID string, email string, priceID string) utils.Result[string] {
	if !s.catalog.ValidPriceID(priceID) {
		return utils.FailedResult[string](ErrUnknownPrice).NonCapturable().NonRetryable()
	}

	customerResult := s.EnsureCustomer(ctx, userID, email)
	if customerResult.Failure() {
		return customerResult
	}

	params := &stripe.CheckoutSessionParams{
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer: stripe.String(customerResult.Value()),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.frontendURL + "/billing/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(s.frontendURL + "/billing/cancel"),
	}

	session, err := s.stripe.CreateCheckoutSession(params)
	if err != nil {
		return utils.FailedResult[string](err)
	}

	return utils.SuccessResult(session.URL)
}

// CreatePortalSession opens the billing portal for a user that already has
// a customer on file.
func (s *Service) CreatePortalSession(ctx context.Context, userID string) utils.Result[string] {
	profileResult := s.store.FetchProfileByUserID(userID)
	if profileResult.Failure() {
		return utils.FailedResult[string](profileResult.Error())
	}
	profile := profileResult.Value()

	if profile.StripeCustomerID == nil || *profile.StripeCustomerID == "" {
		return utils.FailedResult[string](ErrNoCustomer).NonCapturable().NonRetryable()
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(*profile.StripeCustomerID),
		ReturnURL: stripe.String(s.frontendURL + "/settings/billing"),
	}

	session, err := s.stripe.CreatePortalSession(params)
	if err != nil {
		return utils.FailedResult[string](err)
	}

	return utils.SuccessResult(session.URL)
}

// SubscriptionOutcome is returned by the embedded subscribe flow. The
// client secret lets the frontend confirm the first payment when Stripe
// requires it.
type SubscriptionOutcome struct {
	SubscriptionID string `json:"subscription_id"`
	Status         string `json:"status"`
	ClientSecret   string `json:"client_secret,omitempty"`
}

// CreateSubscription attaches the payment method, makes it the default and
// creates the subscription directly, bypassing hosted checkout.
func (s *Service) CreateSubscription(ctx context.Context, userID string, email string, priceID string, paymentMethodID string) utils.Result[*SubscriptionOutcome] {
	if !s.catalog.ValidPriceID(priceID) {
		return utils.FailedResult[*SubscriptionOutcome](ErrUnknownPrice).NonCapturable().NonRetryable()
	}

	customerResult := s.EnsureCustomer(ctx, userID, email)
	if customerResult.Failure() {
		return utils.FailedResult[*SubscriptionOutcome](customerResult.Error())
	}
	customerID := customerResult.Value()

	if _, err := s.stripe.AttachPaymentMethod(paymentMethodID, &stripe.PaymentMethodAttachParams{
		Customer: stripe.String(customerID),
	}); err != nil {
		return utils.FailedResult[*SubscriptionOutcome](err)
	}

	if _, err := s.stripe.UpdateCustomer(customerID, &stripe.CustomerParams{
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(paymentMethodID),
		},
	}); err != nil {
		return utils.FailedResult[*SubscriptionOutcome](err)
	}

	params := &stripe.SubscriptionParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(priceID)},
		},
		PaymentBehavior: stripe.String("default_incomplete"),
	}
	params.AddExpand("latest_invoice.payment_intent")

	subscription, err := s.stripe.CreateSubscription(params)
	if err != nil {
		return utils.FailedResult[*SubscriptionOutcome](err)
	}

	status := s.catalog.StatusFromPriceID(priceID)
	if saveResult := s.store.SetSubscriptionByUserID(userID, subscription.ID, status); saveResult.Failure() {
		return utils.FailedResult[*SubscriptionOutcome](saveResult.Error())
	}

	outcome := &SubscriptionOutcome{
		SubscriptionID: subscription.ID,
		Status:         status,
	}
	if subscription.LatestInvoice != nil && subscription.LatestInvoice.PaymentIntent != nil {
		outcome.ClientSecret = subscription.LatestInvoice.PaymentIntent.ClientSecret
	}

	return utils.SuccessResult(outcome)
}

// CreateSetupIntent prepares a SetupIntent so the frontend can collect a
// payment method without charging it.
func (s *Service) CreateSetupIntent(ctx context.Context, userID string, email string) utils.Result[string] {
	customerResult := s.EnsureCustomer(ctx, userID, email)
	if customerResult.Failure() {
		return customerResult
	}

	intent, err := s.stripe.CreateSetupIntent(&stripe.SetupIntentParams{
		Customer:           stripe.String(customerResult.Value()),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	})
	if err != nil {
		return utils.FailedResult[string](err)
	}

	return utils.SuccessResult(intent.ClientSecret)
}

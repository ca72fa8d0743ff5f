package billing

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/stripe/stripe-go/v79"

	"github.com/getori/ori/core-api/mailer"
	"github.com/getori/ori/core-api/models"
	"github.com/getori/ori/core-api/notifier"
	"github.com/getori/ori/core-api/utils"
)

const ErrorCodeInvalidPayload = "invalid_payload"

// Notifier dispatches best-effort notifications. Webhook processing never
// fails over a notification outcome.
type Notifier interface {
	Dispatch(ctx context.Context, input notifier.Input) utils.Result[notifier.Outcome]
}

// WebhookProcessor applies verified Stripe events to user profiles. The
// HTTP handler verifies the signature before anything reaches this type.
type WebhookProcessor struct {
	store    Store
	stripe   StripeClient
	catalog  *Catalog
	notifier Notifier
	deduper  models.EventDeduper
	logger   *slog.Logger
}

func NewWebhookProcessor(store Store, stripeClient StripeClient, catalog *Catalog, eventNotifier Notifier, deduper models.EventDeduper, logger *slog.Logger) *WebhookProcessor {
	return &WebhookProcessor{
		store:    store,
		stripe:   stripeClient,
		catalog:  catalog,
		notifier: eventNotifier,
		deduper:  deduper,
		logger:   logger.With("component", "webhook"),
	}
}

// ProcessEvent handles one verified event. Duplicate deliveries are
// acknowledged without reprocessing; a Redis failure on the dedup check
// fails open since the writes are last-write-wins anyway. A failed event
// has its dedup mark dropped so the provider's retry is reprocessed
// instead of being swallowed as a duplicate.
func (p *WebhookProcessor) ProcessEvent(ctx context.Context, event stripe.Event) utils.Result[bool] {
	if p.deduper != nil {
		fresh, err := p.deduper.MarkSeen(event.ID)
		if err != nil {
			p.logger.Warn("event dedup check failed, processing anyway",
				"event_id", event.ID,
				"error", err.Error())
		} else if !fresh {
			p.logger.Info("skipping duplicate event", "event_id", event.ID, "type", event.Type)
			return utils.SuccessResult(true)
		}
	}

	result := p.handleEvent(ctx, event)

	if result.Failure() && p.deduper != nil {
		if err := p.deduper.Forget(event.ID); err != nil {
			p.logger.Warn("could not clear dedup mark for failed event",
				"event_id", event.ID,
				"error", err.Error())
		}
	}

	return result
}

func (p *WebhookProcessor) handleEvent(ctx context.Context, event stripe.Event) utils.Result[bool] {
	switch event.Type {
	case "checkout.session.completed":
		return p.handleCheckoutCompleted(ctx, event)
	case "customer.subscription.created":
		return p.handleSubscriptionCreated(event)
	case "customer.subscription.updated":
		return p.handleSubscriptionUpdated(event)
	case "customer.subscription.deleted":
		return p.handleSubscriptionDeleted(event)
	case "invoice.payment_succeeded":
		p.logger.Info("invoice payment succeeded", "event_id", event.ID)
		return utils.SuccessResult(true)
	case "invoice.payment_failed":
		return p.handlePaymentFailed(ctx, event)
	case "customer.source.expiring":
		return p.handleSourceExpiring(ctx, event)
	default:
		p.logger.Info("ignoring unhandled event type", "event_id", event.ID, "type", event.Type)
		return utils.SuccessResult(true)
	}
}

func (p *WebhookProcessor) handleCheckoutCompleted(ctx context.Context, event stripe.Event) utils.Result[bool] {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return invalidPayload(err)
	}
	if session.Customer == nil || session.Subscription == nil {
		return invalidPayload(errMissingField("customer or subscription"))
	}

	subscription, err := p.stripe.GetSubscription(session.Subscription.ID, nil)
	if err != nil {
		return utils.FailedBoolResult(err)
	}

	status := p.statusFromSubscription(subscription)

	p.logger.Info("checkout completed",
		"event_id", event.ID,
		"customer_id", session.Customer.ID,
		"status", status)

	updateResult := p.store.SetSubscriptionByCustomerID(session.Customer.ID, subscription.ID, status)
	if updateResult.Failure() {
		return updateResult
	}

	if plan, ok := p.catalog.PlanForPriceID(subscriptionPriceID(subscription)); ok {
		p.dispatchNotification(ctx, notifier.Input{
			StripeCustomerID: session.Customer.ID,
			Category:         models.CategorySubscription,
			Template: func(unsubscribeURL string) mailer.Template {
				return mailer.SubscriptionConfirmationEmail(plan.Name, unsubscribeURL)
			},
			RecipientEmail: checkoutEmail(&session),
			IdempotencyKey: notifier.IdempotencyKey(event.ID, subscription.ID),
		})
	}

	return utils.SuccessResult(true)
}

func checkoutEmail(session *stripe.CheckoutSession) string {
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		return session.CustomerDetails.Email
	}
	return session.CustomerEmail
}

func (p *WebhookProcessor) handleSubscriptionCreated(event stripe.Event) utils.Result[bool] {
	var subscription stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &subscription); err != nil {
		return invalidPayload(err)
	}
	if subscription.Customer == nil {
		return invalidPayload(errMissingField("customer"))
	}

	status := p.statusFromSubscription(&subscription)

	p.logger.Info("subscription created",
		"event_id", event.ID,
		"customer_id", subscription.Customer.ID,
		"status", status)

	return p.store.SetSubscriptionByCustomerID(subscription.Customer.ID, subscription.ID, status)
}

func (p *WebhookProcessor) handleSubscriptionUpdated(event stripe.Event) utils.Result[bool] {
	var subscription stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &subscription); err != nil {
		return invalidPayload(err)
	}
	if subscription.Customer == nil {
		return invalidPayload(errMissingField("customer"))
	}

	status := p.statusFromSubscription(&subscription)

	// Provider lifecycle state overrides the plan key.
	switch subscription.Status {
	case stripe.SubscriptionStatusPastDue:
		status = models.SubscriptionPastDue
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusUnpaid:
		status = models.SubscriptionCancelled
	}

	p.logger.Info("subscription updated",
		"event_id", event.ID,
		"customer_id", subscription.Customer.ID,
		"status", status)

	return p.store.SetSubscriptionByCustomerID(subscription.Customer.ID, subscription.ID, status)
}

func (p *WebhookProcessor) handleSubscriptionDeleted(event stripe.Event) utils.Result[bool] {
	var subscription stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &subscription); err != nil {
		return invalidPayload(err)
	}
	if subscription.Customer == nil {
		return invalidPayload(errMissingField("customer"))
	}

	p.logger.Info("subscription deleted",
		"event_id", event.ID,
		"customer_id", subscription.Customer.ID)

	return p.store.ClearSubscriptionByCustomerID(subscription.Customer.ID)
}

func (p *WebhookProcessor) handlePaymentFailed(ctx context.Context, event stripe.Event) utils.Result[bool] {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return invalidPayload(err)
	}
	if invoice.Customer == nil {
		return invalidPayload(errMissingField("customer"))
	}

	updateResult := p.store.SetSubscriptionStatusByCustomerID(invoice.Customer.ID, models.SubscriptionPastDue)
	if updateResult.Failure() {
		return updateResult
	}

	chargeID := ""
	if invoice.Charge != nil {
		chargeID = invoice.Charge.ID
	}

	p.dispatchNotification(ctx, notifier.Input{
		StripeCustomerID: invoice.Customer.ID,
		Category:         models.CategoryPaymentFailure,
		Template:         mailer.PaymentFailureEmail,
		RecipientEmail:   invoice.CustomerEmail,
		IdempotencyKey:   notifier.IdempotencyKey(event.ID, chargeID),
	})

	return utils.SuccessResult(true)
}

func (p *WebhookProcessor) handleSourceExpiring(ctx context.Context, event stripe.Event) utils.Result[bool] {
	var card stripe.Card
	if err := json.Unmarshal(event.Data.Raw, &card); err != nil {
		return invalidPayload(err)
	}
	if card.Customer == nil {
		return invalidPayload(errMissingField("customer"))
	}

	email := ""
	if customer, err := p.stripe.GetCustomer(card.Customer.ID, nil); err == nil {
		email = customer.Email
	} else {
		p.logger.Warn("could not load customer for expiring card notice",
			"customer_id", card.Customer.ID,
			"error", err.Error())
	}

	p.dispatchNotification(ctx, notifier.Input{
		StripeCustomerID: card.Customer.ID,
		Category:         models.CategoryCardExpiring,
		Template:         mailer.CardExpiringEmail,
		RecipientEmail:   email,
		IdempotencyKey:   notifier.IdempotencyKey(event.ID, card.ID),
	})

	return utils.SuccessResult(true)
}

// dispatchNotification is best-effort: failures are logged and captured,
// never surfaced to the webhook response.
func (p *WebhookProcessor) dispatchNotification(ctx context.Context, input notifier.Input) {
	if p.notifier == nil {
		return
	}

	result := p.notifier.Dispatch(ctx, input)
	if result.Failure() {
		p.logger.Error("notification dispatch failed",
			"customer_id", input.StripeCustomerID,
			"category", input.Category,
			"error", result.ErrorMsg())
		utils.CaptureErrorResult(result)
		return
	}

	p.logger.Info("notification dispatched",
		"customer_id", input.StripeCustomerID,
		"category", input.Category,
		"outcome", string(result.Value()))
}

func (p *WebhookProcessor) statusFromSubscription(subscription *stripe.Subscription) string {
	return p.catalog.StatusFromPriceID(subscriptionPriceID(subscription))
}

func subscriptionPriceID(subscription *stripe.Subscription) string {
	if subscription.Items != nil && len(subscription.Items.Data) > 0 && subscription.Items.Data[0].Price != nil {
		return subscription.Items.Data[0].Price.ID
	}
	return ""
}

func invalidPayload(err error) utils.Result[bool] {
	return utils.FailedBoolResult(err).
		AddErrorDetails(ErrorCodeInvalidPayload, "event payload is missing required fields").
		NonRetryable().
		NonCapturable()
}

type errMissingField string

func (e errMissingField) Error() string {
	return "missing " + string(e)
}

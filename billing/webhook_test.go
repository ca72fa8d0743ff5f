package billing

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v79"

	"github.com/getori/ori/core-api/mailer"
	"github.com/getori/ori/core-api/models"
	"github.com/getori/ori/core-api/notifier"
	"github.com/getori/ori/core-api/utils"
)

type mockBillingStore struct {
	profile    *models.UserProfile
	profileErr error

	savedCustomerID string

	subCustomerID string
	subID         string
	subStatus     string

	statusCustomerID string
	status           string

	clearedCustomerID string

	userSubID   string
	userStatus  string
	updateError error
}

func (ms *mockBillingStore) FetchProfileByUserID(userID string) utils.Result[*models.UserProfile] {
	if ms.profileErr != nil {
		return utils.FailedResult[*models.UserProfile](ms.profileErr)
	}
	return utils.SuccessResult(ms.profile)
}

func (ms *mockBillingStore) FetchProfileByStripeCustomerID(customerID string) utils.Result[*models.UserProfile] {
	if ms.profileErr != nil {
		return utils.FailedResult[*models.UserProfile](ms.profileErr)
	}
	return utils.SuccessResult(ms.profile)
}

func (ms *mockBillingStore) SaveStripeCustomerID(userID string, customerID string) utils.Result[bool] {
	ms.savedCustomerID = customerID
	return utils.SuccessResult(true)
}

func (ms *mockBillingStore) SetSubscriptionByUserID(userID string, subscriptionID string, status string) utils.Result[bool] {
	ms.userSubID = subscriptionID
	ms.userStatus = status
	return utils.SuccessResult(true)
}

func (ms *mockBillingStore) SetSubscriptionByCustomerID(customerID string, subscriptionID string, status string) utils.Result[bool] {
	if ms.updateError != nil {
		return utils.FailedBoolResult(ms.updateError)
	}
	ms.subCustomerID = customerID
	ms.subID = subscriptionID
	ms.subStatus = status
	return utils.SuccessResult(true)
}

func (ms *mockBillingStore) SetSubscriptionStatusByCustomerID(customerID string, status string) utils.Result[bool] {
	if ms.updateError != nil {
		return utils.FailedBoolResult(ms.updateError)
	}
	ms.statusCustomerID = customerID
	ms.status = status
	return utils.SuccessResult(true)
}

func (ms *mockBillingStore) ClearSubscriptionByCustomerID(customerID string) utils.Result[bool] {
	ms.clearedCustomerID = customerID
	return utils.SuccessResult(true)
}

type mockStripeClient struct {
	customer        *stripe.Customer
	customerErr     error
	subscription    *stripe.Subscription
	subscriptionErr error
	checkoutSession *stripe.CheckoutSession
	portalSession   *stripe.BillingPortalSession
	setupIntent     *stripe.SetupIntent

	getSubscriptionID string
}

func (mc *mockStripeClient) CreateCustomer(params *stripe.CustomerParams) (*stripe.Customer, error) {
	return mc.customer, mc.customerErr
}

func (mc *mockStripeClient) GetCustomer(id string, params *stripe.CustomerParams) (*stripe.Customer, error) {
	return mc.customer, mc.customerErr
}

func (mc *mockStripeClient) UpdateCustomer(id string, params *stripe.CustomerParams) (*stripe.Customer, error) {
	return mc.customer, mc.customerErr
}

func (mc *mockStripeClient) CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return mc.checkoutSession, nil
}

func (mc *mockStripeClient) CreatePortalSession(params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error) {
	return mc.portalSession, nil
}

func (mc *mockStripeClient) GetSubscription(id string, params *stripe.SubscriptionParams) (*stripe.Subscription, error) {
	mc.getSubscriptionID = id
	return mc.subscription, mc.subscriptionErr
}

func (mc *mockStripeClient) CreateSubscription(params *stripe.SubscriptionParams) (*stripe.Subscription, error) {
	return mc.subscription, mc.subscriptionErr
}

func (mc *mockStripeClient) AttachPaymentMethod(id string, params *stripe.PaymentMethodAttachParams) (*stripe.PaymentMethod, error) {
	return &stripe.PaymentMethod{ID: id}, nil
}

func (mc *mockStripeClient) CreateSetupIntent(params *stripe.SetupIntentParams) (*stripe.SetupIntent, error) {
	return mc.setupIntent, nil
}

type mockNotifier struct {
	inputs         []notifier.Input
	returnedError  error
	executionCount int
}

func (mn *mockNotifier) Dispatch(ctx context.Context, input notifier.Input) utils.Result[notifier.Outcome] {
	mn.executionCount++
	mn.inputs = append(mn.inputs, input)

	if mn.returnedError != nil {
		return utils.FailedResult[notifier.Outcome](mn.returnedError)
	}
	return utils.SuccessResult(notifier.OutcomeSent)
}

type mockDeduper struct {
	fresh         bool
	returnedError error
	seen          []string
	forgotten     []string
}

func (md *mockDeduper) MarkSeen(eventID string) (bool, error) {
	md.seen = append(md.seen, eventID)
	return md.fresh, md.returnedError
}

func (md *mockDeduper) Forget(eventID string) error {
	md.forgotten = append(md.forgotten, eventID)
	return nil
}

// setNXDeduper behaves like the Redis store: a mark persists across
// deliveries until forgotten.
type setNXDeduper struct {
	keys map[string]bool
}

func newSetNXDeduper() *setNXDeduper {
	return &setNXDeduper{keys: map[string]bool{}}
}

func (sd *setNXDeduper) MarkSeen(eventID string) (bool, error) {
	if sd.keys[eventID] {
		return false, nil
	}
	sd.keys[eventID] = true
	return true, nil
}

func (sd *setNXDeduper) Forget(eventID string) error {
	delete(sd.keys, eventID)
	return nil
}

func setupWebhookProcessor() (*WebhookProcessor, *mockBillingStore, *mockStripeClient, *mockNotifier, *mockDeduper) {
	store := &mockBillingStore{}
	stripeClient := &mockStripeClient{}
	eventNotifier := &mockNotifier{}
	deduper := &mockDeduper{fresh: true}

	processor := NewWebhookProcessor(store, stripeClient, testCatalog(), eventNotifier, deduper, slog.Default())

	return processor, store, stripeClient, eventNotifier, deduper
}

func buildEvent(id string, eventType stripe.EventType, payload string) stripe.Event {
	return stripe.Event{
		ID:   id,
		Type: eventType,
		Data: &stripe.EventData{Raw: json.RawMessage(payload)},
	}
}

func TestProcessEventCheckoutCompleted(t *testing.T) {
	t.Run("should derive the plan key from the subscription price", func(t *testing.T) {
		// Setup
		processor, store, stripeClient, _, _ := setupWebhookProcessor()
		stripeClient.subscription = &stripe.Subscription{
			ID: "sub_1",
			Items: &stripe.SubscriptionItemList{
				Data: []*stripe.SubscriptionItem{
					{Price: &stripe.Price{ID: "price_plus_monthly"}},
				},
			},
		}

		event := buildEvent("evt_1", "checkout.session.completed",
			`{"customer": "cus_123", "subscription": "sub_1"}`)

		// Execute
		result := processor.ProcessEvent(context.Background(), event)

		// Assert
		assert.True(t, result.Success())
		assert.Equal(t, "sub_1", stripeClient.getSubscriptionID)
		assert.Equal(t, "cus_123", store.subCustomerID)
		assert.Equal(t, "sub_1", store.subID)
		assert.Equal(t, models.SubscriptionPlusMonthly, store.subStatus)
	})

	t.Run("should dispatch a subscription confirmation", func(t *testing.T) {
		// Setup
		processor, _, stripeClient, eventNotifier, _ := setupWebhookProcessor()
		stripeClient.subscription = &stripe.Subscription{
			ID: "sub_1",
			Items: &stripe.SubscriptionItemList{
				Data: []*stripe.SubscriptionItem{
					{Price: &stripe.Price{ID: "price_plus_monthly"}},
				},
			},
		}

		event := buildEvent("evt_1", "checkout.session.completed",
			`{"customer": "cus_123", "subscription": "sub_1", "customer_details": {"email": "buyer@example.com"}}`)

		// Execute
		result := processor.ProcessEvent(context.Background(), event)

		// Assert
		assert.True(t, result.Success())
		assert.Equal(t, 1, eventNotifier.executionCount)

		input := eventNotifier.inputs[0]
		assert.Equal(t, models.CategorySubscription, input.Category)
		assert.Equal(t, "buyer@example.com", input.RecipientEmail)
		assert.Equal(t, notifier.IdempotencyKey("evt_1", "sub_1"), input.IdempotencyKey)

		template := input.Template("https://getori.app/unsubscribe/token123")
		assert.Equal(t, mailer.TypeSubscriptionConfirmation, template.Type)
		assert.Contains(t, template.HTML, "Plus")
		assert.Contains(t, template.HTML, "https://getori.app/unsubscribe/token123")
	})

	t.Run("should fail retryably when the subscription lookup fails", func(t *testing.T) {
		// Setup
		processor, _, stripeClient, _, _ := setupWebhookProcessor()
		stripeClient.subscriptionErr = errors.New("stripe unavailable")

		event := buildEvent("evt_1", "checkout.session.completed",
			`{"customer": "cus_123", "subscription": "sub_1"}`)

		// Execute
		result := processor.ProcessEvent(context.Background(), event)

		// Assert
		assert.False(t, result.Success())
		assert.True(t, result.IsRetryable())
	})

	t.Run("should reject payloads without a customer", func(t *testing.T) {
		// Setup
		processor, _, _, _, _ := setupWebhookProcessor()

		event := buildEvent("evt_1", "checkout.session.completed", `{"subscription": "sub_1"}`)

		// Execute
		result := processor.ProcessEvent(context.Background(), event)

		// Assert
		assert.False(t, result.Success())
		assert.Equal(t, ErrorCodeInvalidPayload, result.ErrorCode())
		assert.False(t, result.IsRetryable())
	})
}

func TestProcessEventSubscriptionCreated(t *testing.T) {
	// Setup
	processor, store, _, _, _ := setupWebhookProcessor()

	event := buildEvent("evt_2", "customer.subscription.created",
		`{"id": "sub_2", "customer": "cus_123", "status": "active", "items": {"data": [{"price": {"id": "price_premium_yearly"}}]}}`)

	// Execute
	result := processor.ProcessEvent(context.Background(), event)

	// Assert
	assert.True(t, result.Success())
	assert.Equal(t, "cus_123", store.subCustomerID)
	assert.Equal(t, "sub_2", store.subID)
	assert.Equal(t, models.SubscriptionPremiumYearly, store.subStatus)
}

func TestProcessEventSubscriptionUpdated(t *testing.T) {
	t.Run("should recompute the plan key from the current price", func(t *testing.T) {
		// Setup
		processor, store, _, _, _ := setupWebhookProcessor()

		event := buildEvent("evt_3", "customer.subscription.updated",
			`{"id": "sub_3", "customer": "cus_123", "status": "active", "items": {"data": [{"price": {"id": "price_premium_monthly"}}]}}`)

		// Execute
		result := processor.ProcessEvent(context.Background(), event)

		// Assert
		assert.True(t, result.Success())
		assert.Equal(t, models.SubscriptionPremiumMonthly, store.subStatus)
	})

	t.Run("should override to past_due on provider past_due status", func(t *testing.T) {
		// Setup
		processor, store, _, _, _ := setupWebhookProcessor()

		event := buildEvent("evt_3", "customer.subscription.updated",
			`{"id": "sub_3", "customer": "cus_123", "status": "past_due", "items": {"data": [{"price": {"id": "price_premium_monthly"}}]}}`)

		// Execute
		result := processor.ProcessEvent(context.Background(), event)

		// Assert
		assert.True(t, result.Success())
		assert.Equal(t, models.SubscriptionPastDue, store.subStatus)
	})

	t.Run("should override to cancelled on canceled and unpaid statuses", func(t *testing.T) {
		for _, providerStatus := range []string{"canceled", "unpaid"} {
			// Setup
			processor, store, _, _, _ := setupWebhookProcessor()

			event := buildEvent("evt_3", "customer.subscription.updated",
				`{"id": "sub_3", "customer": "cus_123", "status": "`+providerStatus+`", "items": {"data": [{"price": {"id": "price_plus_yearly"}}]}}`)

			// Execute
			result := processor.ProcessEvent(context.Background(), event)

			// Assert
			assert.True(t, result.Success())
			assert.Equal(t, models.SubscriptionCancelled, store.subStatus)
		}
	})
}

func TestProcessEventSubscriptionDeleted(t *testing.T) {
	// Setup
	processor, store, _, _, _ := setupWebhookProcessor()

	event := buildEvent("evt_4", "customer.subscription.deleted",
		`{"id": "sub_4", "customer": "cus_123"}`)

	// Execute
	result := processor.ProcessEvent(context.Background(), event)

	// Assert
	assert.True(t, result.Success())
	assert.Equal(t, "cus_123", store.clearedCustomerID)
}

func TestProcessEventPaymentFailed(t *testing.T) {
	t.Run("should mark past_due and dispatch a notification", func(t *testing.T) {
		// Setup
		processor, store, _, eventNotifier, _ := setupWebhookProcessor()

		event := buildEvent("evt_5", "invoice.payment_failed",
			`{"customer": "cus_123", "customer_email": "user@example.com", "charge": "ch_1"}`)

		// Execute
		result := processor.ProcessEvent(context.Background(), event)

		// Assert
		assert.True(t, result.Success())
		assert.Equal(t, "cus_123", store.statusCustomerID)
		assert.Equal(t, models.SubscriptionPastDue, store.status)

		assert.Equal(t, 1, eventNotifier.executionCount)
		input := eventNotifier.inputs[0]
		assert.Equal(t, models.CategoryPaymentFailure, input.Category)
		assert.Equal(t, "user@example.com", input.RecipientEmail)
		assert.Equal(t, notifier.IdempotencyKey("evt_5", "ch_1"), input.IdempotencyKey)
		assert.Equal(t, mailer.TypePaymentFailure, input.Template("").Type)
	})

	t.Run("should still succeed when the notification fails", func(t *testing.T) {
		// Setup
		processor, store, _, eventNotifier, _ := setupWebhookProcessor()
		eventNotifier.returnedError = errors.New("resend unavailable")

		event := buildEvent("evt_5", "invoice.payment_failed",
			`{"customer": "cus_123", "customer_email": "user@example.com", "charge": "ch_1"}`)

		// Execute
		result := processor.ProcessEvent(context.Background(), event)

		// Assert
		assert.True(t, result.Success())
		assert.Equal(t, models.SubscriptionPastDue, store.status)
	})

	t.Run("should fail when the status write fails", func(t *testing.T) {
		// Setup
		processor, store, _, eventNotifier, deduper := setupWebhookProcessor()
		store.updateError = errors.New("database connection failed")

		event := buildEvent("evt_5", "invoice.payment_failed",
			`{"customer": "cus_123", "charge": "ch_1"}`)

		// Execute
		result := processor.ProcessEvent(context.Background(), event)

		// Assert
		assert.False(t, result.Success())
		assert.True(t, result.IsRetryable())
		assert.Equal(t, 0, eventNotifier.executionCount)

		// The dedup mark is dropped so the provider retry is reprocessed.
		assert.Equal(t, []string{"evt_5"}, deduper.forgotten)
	})
}

func TestProcessEventSourceExpiring(t *testing.T) {
	// Setup
	processor, store, stripeClient, eventNotifier, _ := setupWebhookProcessor()
	stripeClient.customer = &stripe.Customer{ID: "cus_123", Email: "user@example.com"}

	event := buildEvent("evt_6", "customer.source.expiring",
		`{"id": "card_1", "customer": "cus_123"}`)

	// Execute
	result := processor.ProcessEvent(context.Background(), event)

	// Assert
	assert.True(t, result.Success())

	// Notification only, no status write.
	assert.Empty(t, store.status)
	assert.Equal(t, 1, eventNotifier.executionCount)

	input := eventNotifier.inputs[0]
	assert.Equal(t, models.CategoryCardExpiring, input.Category)
	assert.Equal(t, "user@example.com", input.RecipientEmail)
	assert.Equal(t, notifier.IdempotencyKey("evt_6", "card_1"), input.IdempotencyKey)
}

func TestProcessEventDeduplication(t *testing.T) {
	t.Run("should acknowledge duplicates without writes", func(t *testing.T) {
		// Setup
		processor, store, _, _, deduper := setupWebhookProcessor()
		deduper.fresh = false

		event := buildEvent("evt_7", "customer.subscription.deleted",
			`{"id": "sub_7", "customer": "cus_123"}`)

		// Execute
		result := processor.ProcessEvent(context.Background(), event)

		// Assert
		assert.True(t, result.Success())
		assert.Equal(t, []string{"evt_7"}, deduper.seen)
		assert.Empty(t, store.clearedCustomerID)
	})

	t.Run("should reprocess a failed event on the provider retry", func(t *testing.T) {
		// Setup
		store := &mockBillingStore{updateError: errors.New("database connection failed")}
		deduper := newSetNXDeduper()
		processor := NewWebhookProcessor(store, &mockStripeClient{}, testCatalog(), &mockNotifier{}, deduper, slog.Default())

		event := buildEvent("evt_retry", "invoice.payment_failed",
			`{"customer": "cus_123", "charge": "ch_1"}`)

		// Execute: first delivery fails on the status write.
		firstResult := processor.ProcessEvent(context.Background(), event)

		store.updateError = nil
		retryResult := processor.ProcessEvent(context.Background(), event)

		// Assert: the retry is not swallowed as a duplicate.
		assert.False(t, firstResult.Success())
		assert.True(t, retryResult.Success())
		assert.Equal(t, "cus_123", store.statusCustomerID)
		assert.Equal(t, models.SubscriptionPastDue, store.status)
	})

	t.Run("should keep the dedup mark after a successful event", func(t *testing.T) {
		// Setup
		store := &mockBillingStore{}
		deduper := newSetNXDeduper()
		processor := NewWebhookProcessor(store, &mockStripeClient{}, testCatalog(), &mockNotifier{}, deduper, slog.Default())

		event := buildEvent("evt_once", "customer.subscription.deleted",
			`{"id": "sub_1", "customer": "cus_123"}`)

		// Execute
		firstResult := processor.ProcessEvent(context.Background(), event)

		store.clearedCustomerID = ""
		retryResult := processor.ProcessEvent(context.Background(), event)

		// Assert: the duplicate is acknowledged without a second write.
		assert.True(t, firstResult.Success())
		assert.True(t, retryResult.Success())
		assert.Empty(t, store.clearedCustomerID)
	})

	t.Run("should fail open when the dedup store errors", func(t *testing.T) {
		// Setup
		processor, store, _, _, deduper := setupWebhookProcessor()
		deduper.returnedError = errors.New("redis unavailable")

		event := buildEvent("evt_8", "customer.subscription.deleted",
			`{"id": "sub_8", "customer": "cus_123"}`)

		// Execute
		result := processor.ProcessEvent(context.Background(), event)

		// Assert
		assert.True(t, result.Success())
		assert.Equal(t, "cus_123", store.clearedCustomerID)
	})
}

func TestProcessEventUnhandledType(t *testing.T) {
	// Setup
	processor, store, _, eventNotifier, _ := setupWebhookProcessor()

	event := buildEvent("evt_9", "charge.refunded", `{}`)

	// Execute
	result := processor.ProcessEvent(context.Background(), event)

	// Assert
	assert.True(t, result.Success())
	assert.Empty(t, store.status)
	assert.Equal(t, 0, eventNotifier.executionCount)
}

func TestProcessEventPaymentSucceeded(t *testing.T) {
	// Setup
	processor, store, _, _, _ := setupWebhookProcessor()

	event := buildEvent("evt_10", "invoice.payment_succeeded", `{"customer": "cus_123"}`)

	// Execute
	result := processor.ProcessEvent(context.Background(), event)

	// Assert: log only, no writes.
	assert.True(t, result.Success())
	assert.Empty(t, store.status)
	assert.Empty(t, store.subStatus)
}

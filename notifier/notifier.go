package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/getori/ori/core-api/mailer"
	"github.com/getori/ori/core-api/models"
	"github.com/getori/ori/core-api/utils"
)

type Outcome string

const (
	// OutcomeSkipped means no email was attempted: preferences opted the
	// user out, or the idempotency key was already recorded.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeRecorded means the notification row exists but the email send
	// failed; the accompanying result carries the send error.
	OutcomeRecorded Outcome = "recorded"
	OutcomeSent     Outcome = "sent"
)

const ErrorCodeDeliveryFailed = "delivery_failed"

// Store is the slice of the datastore the notifier needs.
type Store interface {
	FetchProfileByUserID(userID string) utils.Result[*models.UserProfile]
	FetchProfileByStripeCustomerID(customerID string) utils.Result[*models.UserProfile]
	FetchOrCreatePreferences(userID string) utils.Result[*models.NotificationPreferences]
	InsertNotification(notification *models.Notification) utils.Result[bool]
	MarkNotificationSent(id string, resendEmailID string) utils.Result[bool]
	MarkNotificationFailed(id string) utils.Result[bool]
}

// Input describes one notification to dispatch. Exactly one of UserID or
// StripeCustomerID must identify the target. RecipientEmail may come from
// the triggering event (e.g. an invoice payload); when empty the dispatch
// is recorded as skipped since profiles do not store email addresses. The
// template is a builder so the body can carry the recipient's own
// unsubscribe link, derived from their preference row.
type Input struct {
	UserID           string
	StripeCustomerID string
	Category         string
	Template         mailer.TemplateBuilder
	RecipientEmail   string
	IdempotencyKey   string
}

type Service struct {
	store       Store
	sender      mailer.Sender
	frontendURL string
	logger      *slog.Logger
}

func NewService(store Store, sender mailer.Sender, frontendURL string, logger *slog.Logger) *Service {
	return &Service{
		store:       store,
		sender:      sender,
		frontendURL: frontendURL,
		logger:      logger.With("component", "notifier"),
	}
}

// IdempotencyKey builds the dedup key for an upstream event. Two
// notifications built from the same (event id, charge id) pair collide.
func IdempotencyKey(eventID string, chargeID string) string {
	return fmt.Sprintf("evt_%s_%s", eventID, chargeID)
}

// Dispatch records and attempts to deliver one notification. It never
// panics and reports every failure through the result so callers choose
// whether to log, capture or ignore; webhook callers never fail the
// webhook over a notification.
func (s *Service) Dispatch(ctx context.Context, input Input) utils.Result[Outcome] {
	profileResult := s.resolveProfile(input)
	if profileResult.Failure() {
		return utils.FailedResult[Outcome](profileResult.Error()).
			AddErrorDetails("profile_lookup_failed", "could not resolve notification target")
	}
	profile := profileResult.Value()

	preferencesResult := s.store.FetchOrCreatePreferences(profile.UserID)
	if preferencesResult.Failure() {
		return utils.FailedResult[Outcome](preferencesResult.Error()).
			AddErrorDetails("preferences_lookup_failed", "could not load notification preferences")
	}
	preferences := preferencesResult.Value()

	if preferences.Unsubscribed || !preferences.CategoryEnabled(input.Category) {
		s.logger.Info("notification skipped by preferences",
			"user_id", profile.UserID,
			"category", input.Category)
		return utils.SuccessResult(OutcomeSkipped)
	}

	template := input.Template(s.unsubscribeURL(preferences.UnsubscribeToken))

	if input.RecipientEmail == "" || !utils.IsValidEmail(input.RecipientEmail) {
		s.logger.Warn("notification skipped, no deliverable recipient",
			"user_id", profile.UserID,
			"type", template.Type)
		return utils.SuccessResult(OutcomeSkipped)
	}

	notification := &models.Notification{
		UserID:         profile.UserID,
		Type:           template.Type,
		Subject:        template.Subject,
		Message:        template.HTML,
		RecipientEmail: input.RecipientEmail,
	}
	if input.IdempotencyKey != "" {
		key := input.IdempotencyKey
		notification.IdempotencyKey = &key
	}

	insertResult := s.store.InsertNotification(notification)
	if insertResult.Failure() {
		return utils.FailedResult[Outcome](insertResult.Error()).
			AddErrorDetails("notification_insert_failed", "could not record notification")
	}
	if !insertResult.Value() {
		s.logger.Info("notification skipped, duplicate idempotency key",
			"user_id", profile.UserID,
			"idempotency_key", input.IdempotencyKey)
		return utils.SuccessResult(OutcomeSkipped)
	}

	emailID, err := s.sender.Send(ctx, mailer.Email{
		To:      input.RecipientEmail,
		Subject: template.Subject,
		HTML:    template.HTML,
	})
	if err != nil {
		if markResult := s.store.MarkNotificationFailed(notification.ID); markResult.Failure() {
			s.logger.Error("failed to mark notification as failed",
				"notification_id", notification.ID,
				"error", markResult.ErrorMsg())
		}
		return utils.FailedResult[Outcome](err).
			AddErrorDetails(ErrorCodeDeliveryFailed, "notification recorded but email delivery failed").
			NonRetryable()
	}

	if markResult := s.store.MarkNotificationSent(notification.ID, emailID); markResult.Failure() {
		s.logger.Error("failed to mark notification as sent",
			"notification_id", notification.ID,
			"error", markResult.ErrorMsg())
	}

	return utils.SuccessResult(OutcomeSent)
}

// unsubscribeURL builds the one-click unsubscribe link for a preference
// row's token. An empty token yields no link rather than a broken one.
func (s *Service) unsubscribeURL(token string) string {
	if token == "" {
		return ""
	}
	return strings.TrimRight(s.frontendURL, "/") + "/unsubscribe/" + token
}

func (s *Service) resolveProfile(input Input) utils.Result[*models.UserProfile] {
	if input.UserID != "" {
		return s.store.FetchProfileByUserID(input.UserID)
	}
	return s.store.FetchProfileByStripeCustomerID(input.StripeCustomerID)
}

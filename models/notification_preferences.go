package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/getori/ori/core-api/utils"
)

// Notification categories as stored on notification_preferences columns.
const (
	CategoryPaymentFailure    = "payment_failure"
	CategoryCardExpiring      = "card_expiring"
	CategoryTrialEnding       = "trial_ending"
	CategorySubscription      = "subscription"
	CategoryRecommendations   = "recommendations"
	CategoryApplicationStatus = "application_status"
	CategorySecurity          = "security"
	CategoryWeeklyDigest      = "weekly_digest"
)

type NotificationPreferences struct {
	ID                      string     `gorm:"primaryKey" json:"id"`
	UserID                  string     `gorm:"column:user_id" json:"user_id"`
	PaymentFailureEmails    bool       `json:"payment_failure_emails"`
	CardExpiringEmails      bool       `json:"card_expiring_emails"`
	TrialEndingEmails       bool       `json:"trial_ending_emails"`
	SubscriptionEmails      bool       `json:"subscription_emails"`
	RecommendationEmails    bool       `json:"recommendation_emails"`
	ApplicationStatusEmails bool       `json:"application_status_emails"`
	SecurityEmails          bool       `json:"security_emails"`
	WeeklyDigest            bool       `json:"weekly_digest"`
	Unsubscribed            bool       `json:"unsubscribed"`
	UnsubscribedAt          *time.Time `json:"unsubscribed_at"`
	UnsubscribeToken        string     `gorm:"column:unsubscribe_token" json:"-"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}

func (NotificationPreferences) TableName() string {
	return "notification_preferences"
}

// CategoryEnabled reports whether the given category is enabled. Unknown
// categories are allowed so new notification types default to deliverable.
func (p *NotificationPreferences) CategoryEnabled(category string) bool {
	switch category {
	case CategoryPaymentFailure:
		return p.PaymentFailureEmails
	case CategoryCardExpiring:
		return p.CardExpiringEmails
	case CategoryTrialEnding:
		return p.TrialEndingEmails
	case CategorySubscription:
		return p.SubscriptionEmails
	case CategoryRecommendations:
		return p.RecommendationEmails
	case CategoryApplicationStatus:
		return p.ApplicationStatusEmails
	case CategorySecurity:
		return p.SecurityEmails
	case CategoryWeeklyDigest:
		return p.WeeklyDigest
	}
	return true
}

func defaultPreferences(userID string) *NotificationPreferences {
	return &NotificationPreferences{
		ID:                      uuid.NewString(),
		UserID:                  userID,
		PaymentFailureEmails:    true,
		CardExpiringEmails:      true,
		TrialEndingEmails:       true,
		SubscriptionEmails:      true,
		RecommendationEmails:    true,
		ApplicationStatusEmails: true,
		SecurityEmails:          true,
		WeeklyDigest:            false,
		UnsubscribeToken:        uuid.NewString(),
	}
}

// FetchOrCreatePreferences returns the user's preference row, creating the
// default row on first read. The insert ignores a concurrent creator and
// re-reads so both callers see one row.
func (store *ApiStore) FetchOrCreatePreferences(userID string) utils.Result[*NotificationPreferences] {
	var preferences NotificationPreferences

	result := store.db.Connection.
		Where("user_id = ?", userID).
		Limit(1).
		Find(&preferences)

	if result.Error != nil {
		return utils.FailedResult[*NotificationPreferences](result.Error)
	}
	if preferences.ID != "" {
		return utils.SuccessResult(&preferences)
	}

	created := defaultPreferences(userID)
	insert := store.db.Connection.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(created)
	if insert.Error != nil {
		return utils.FailedResult[*NotificationPreferences](insert.Error)
	}
	if insert.RowsAffected > 0 {
		return utils.SuccessResult(created)
	}

	if err := store.db.Connection.
		Where("user_id = ?", userID).
		Limit(1).
		Find(&preferences).Error; err != nil {
		return utils.FailedResult[*NotificationPreferences](err)
	}

	return utils.SuccessResult(&preferences)
}

func (store *ApiStore) UpdatePreferences(userID string, updates map[string]any) utils.Result[*NotificationPreferences] {
	result := store.db.Connection.
		Model(&NotificationPreferences{}).
		Where("user_id = ?", userID).
		Updates(updates)

	if result.Error != nil {
		return utils.FailedResult[*NotificationPreferences](result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.FailedResult[*NotificationPreferences](gorm.ErrRecordNotFound).NonCapturable().NonRetryable()
	}

	var preferences NotificationPreferences
	if err := store.db.Connection.
		Where("user_id = ?", userID).
		Limit(1).
		Find(&preferences).Error; err != nil {
		return utils.FailedResult[*NotificationPreferences](err)
	}

	return utils.SuccessResult(&preferences)
}

// UnsubscribeByToken flips the global unsubscribe flag for the row holding
// the token. Unknown tokens are a non-capturable not-found.
func (store *ApiStore) UnsubscribeByToken(token string) utils.Result[bool] {
	result := store.db.Connection.
		Model(&NotificationPreferences{}).
		Where("unsubscribe_token = ?", token).
		Updates(map[string]any{
			"unsubscribed":    true,
			"unsubscribed_at": time.Now().UTC(),
		})

	if result.Error != nil {
		return utils.FailedBoolResult(result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.FailedBoolResult(gorm.ErrRecordNotFound).NonCapturable().NonRetryable()
	}

	return utils.SuccessResult(true)
}

func (store *ApiStore) UnsubscribeByUserID(userID string) utils.Result[bool] {
	result := store.db.Connection.
		Model(&NotificationPreferences{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"unsubscribed":    true,
			"unsubscribed_at": time.Now().UTC(),
		})

	if result.Error != nil {
		return utils.FailedBoolResult(result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.FailedBoolResult(gorm.ErrRecordNotFound).NonCapturable().NonRetryable()
	}

	return utils.SuccessResult(true)
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/getori/ori/core-api/utils"
)

const (
	NotificationPending = "pending"
	NotificationSent    = "sent"
	NotificationFailed  = "failed"
	NotificationSkipped = "skipped"
)

type Notification struct {
	ID             string    `gorm:"primaryKey" json:"id"`
	UserID         string    `gorm:"column:user_id" json:"user_id"`
	Type           string    `json:"type"`
	Subject        string    `json:"subject"`
	Message        string    `json:"message"`
	RecipientEmail string    `json:"recipient_email"`
	Status         string    `json:"status"`
	ResendEmailID  *string   `gorm:"column:resend_email_id" json:"resend_email_id"`
	IdempotencyKey *string   `gorm:"column:idempotency_key" json:"idempotency_key"`
	CreatedAt      time.Time `json:"created_at"`
}

// InsertNotification records a pending notification. When the row carries an
// idempotency key and another row already holds it, the insert is a no-op and
// the result value is false so callers can skip the send.
func (store *ApiStore) InsertNotification(notification *Notification) utils.Result[bool] {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.Status == "" {
		notification.Status = NotificationPending
	}

	result := store.db.Connection.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "idempotency_key"}},
			DoNothing: true,
		}).
		Create(notification)

	if result.Error != nil {
		return utils.FailedBoolResult(result.Error)
	}

	return utils.SuccessResult(result.RowsAffected > 0)
}

func (store *ApiStore) MarkNotificationSent(id string, resendEmailID string) utils.Result[bool] {
	result := store.db.Connection.
		Model(&Notification{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":          NotificationSent,
			"resend_email_id": resendEmailID,
		})

	if result.Error != nil {
		return utils.FailedBoolResult(result.Error)
	}

	return utils.SuccessResult(true)
}

func (store *ApiStore) MarkNotificationFailed(id string) utils.Result[bool] {
	result := store.db.Connection.
		Model(&Notification{}).
		Where("id = ?", id).
		Update("status", NotificationFailed)

	if result.Error != nil {
		return utils.FailedBoolResult(result.Error)
	}

	return utils.SuccessResult(true)
}

func (store *ApiStore) ListNotifications(userID string, limit int) utils.Result[[]Notification] {
	var notifications []Notification

	result := store.db.Connection.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications)

	if result.Error != nil {
		return utils.FailedResult[[]Notification](result.Error)
	}

	return utils.SuccessResult(notifications)
}

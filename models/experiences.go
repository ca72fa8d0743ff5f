package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/getori/ori/core-api/utils"
)

type Experience struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"column:user_id" json:"user_id"`
	Company     string    `json:"company"`
	Role        string    `json:"role"`
	StartDate   string    `json:"start_date"`
	EndDate     *string   `json:"end_date"`
	IsCurrent   bool      `json:"is_current"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (store *ApiStore) ListExperiences(userID string) utils.Result[[]Experience] {
	var experiences []Experience

	result := store.db.Connection.
		Where("user_id = ?", userID).
		Order("start_date DESC").
		Find(&experiences)

	if result.Error != nil {
		return utils.FailedResult[[]Experience](result.Error)
	}

	return utils.SuccessResult(experiences)
}

func (store *ApiStore) CreateExperience(experience *Experience) utils.Result[*Experience] {
	if experience.ID == "" {
		experience.ID = uuid.NewString()
	}

	result := store.db.Connection.Create(experience)
	if result.Error != nil {
		return utils.FailedResult[*Experience](result.Error)
	}

	return utils.SuccessResult(experience)
}

func (store *ApiStore) UpdateExperience(userID string, id string, updates map[string]any) utils.Result[*Experience] {
	result := store.db.Connection.
		Model(&Experience{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)

	if result.Error != nil {
		return utils.FailedResult[*Experience](result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.FailedResult[*Experience](gorm.ErrRecordNotFound).NonCapturable().NonRetryable()
	}

	var experience Experience
	if err := store.db.Connection.
		Where("id = ? AND user_id = ?", id, userID).
		Limit(1).
		Find(&experience).Error; err != nil {
		return utils.FailedResult[*Experience](err)
	}

	return utils.SuccessResult(&experience)
}

func (store *ApiStore) DeleteExperience(userID string, id string) utils.Result[bool] {
	result := store.db.Connection.
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&Experience{})

	if result.Error != nil {
		return utils.FailedBoolResult(result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.FailedBoolResult(gorm.ErrRecordNotFound).NonCapturable().NonRetryable()
	}

	return utils.SuccessResult(true)
}

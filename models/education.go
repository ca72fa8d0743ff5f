package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/getori/ori/core-api/utils"
)

type Education struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	UserID       string    `gorm:"column:user_id" json:"user_id"`
	Institution  string    `json:"institution"`
	Degree       string    `json:"degree"`
	FieldOfStudy *string   `json:"field_of_study"`
	StartDate    string    `json:"start_date"`
	EndDate      *string   `json:"end_date"`
	IsCurrent    bool      `json:"is_current"`
	Description  *string   `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Education) TableName() string {
	return "education"
}

func (store *ApiStore) ListEducation(userID string) utils.Result[[]Education] {
	var education []Education

	result := store.db.Connection.
		Where("user_id = ?", userID).
		Order("start_date DESC").
		Find(&education)

	if result.Error != nil {
		return utils.FailedResult[[]Education](result.Error)
	}

	return utils.SuccessResult(education)
}

func (store *ApiStore) CreateEducation(education *Education) utils.Result[*Education] {
	if education.ID == "" {
		education.ID = uuid.NewString()
	}

	result := store.db.Connection.Create(education)
	if result.Error != nil {
		return utils.FailedResult[*Education](result.Error)
	}

	return utils.SuccessResult(education)
}

func (store *ApiStore) UpdateEducation(userID string, id string, updates map[string]any) utils.Result[*Education] {
	result := store.db.Connection.
		Model(&Education{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)

	if result.Error != nil {
		return utils.FailedResult[*Education](result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.FailedResult[*Education](gorm.ErrRecordNotFound).NonCapturable().NonRetryable()
	}

	var education Education
	if err := store.db.Connection.
		Where("id = ? AND user_id = ?", id, userID).
		Limit(1).
		Find(&education).Error; err != nil {
		return utils.FailedResult[*Education](err)
	}

	return utils.SuccessResult(&education)
}

func (store *ApiStore) DeleteEducation(userID string, id string) utils.Result[bool] {
	result := store.db.Connection.
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&Education{})

	if result.Error != nil {
		return utils.FailedBoolResult(result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.FailedBoolResult(gorm.ErrRecordNotFound).NonCapturable().NonRetryable()
	}

	return utils.SuccessResult(true)
}
